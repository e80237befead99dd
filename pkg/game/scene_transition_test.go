package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSceneTransition_SwapAtMidpoint(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewSceneTransition(800 * time.Millisecond)
	tr.SetImmediate("bsi")

	tr.TransitionTo("humeral-site", start)
	assert.True(t, tr.Active())
	assert.Equal(t, "bsi", tr.Displayed())
	assert.InDelta(t, 0, tr.OverlayAlpha(start), 1e-9)

	tr.Update(start.Add(399 * time.Millisecond))
	assert.Equal(t, "bsi", tr.Displayed(), "old scene while fading out")

	tr.Update(start.Add(400 * time.Millisecond))
	assert.Equal(t, "humeral-site", tr.Displayed())
	assert.InDelta(t, 1, tr.OverlayAlpha(start.Add(400*time.Millisecond)), 1e-9)

	assert.False(t, tr.Update(start.Add(800*time.Millisecond)))
	assert.False(t, tr.Active())
	assert.Zero(t, tr.OverlayAlpha(start.Add(900*time.Millisecond)))
}

func TestSceneTransition_SameSceneNoop(t *testing.T) {
	tr := NewSceneTransition(800 * time.Millisecond)
	tr.SetImmediate("humeral-site")
	tr.TransitionTo("humeral-site", time.Now())
	assert.False(t, tr.Active())
}

// TestSceneTransition_SetImmediateCancels 新的运行直接切换场景，放弃进行中的淡入淡出
func TestSceneTransition_SetImmediateCancels(t *testing.T) {
	start := time.Now()
	tr := NewSceneTransition(800 * time.Millisecond)
	tr.SetImmediate("bsi")
	tr.TransitionTo("humeral-site", start)

	tr.SetImmediate("bsi")
	tr.Update(start.Add(time.Second))
	assert.Equal(t, "bsi", tr.Displayed())
	assert.False(t, tr.Active())
}

func TestSceneTransition_ZeroDuration(t *testing.T) {
	tr := NewSceneTransition(0)
	tr.SetImmediate("a")
	tr.TransitionTo("b", time.Now())
	assert.Equal(t, "b", tr.Displayed())
	assert.False(t, tr.Active())
}
