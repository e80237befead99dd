package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
)

// recordingScene 记录生命周期调用的测试场景
type recordingScene struct {
	name    string
	events  *[]string
	updates int
	draws   int
	delta   float64
}

func (r *recordingScene) Update(deltaTime float64) {
	r.updates++
	r.delta = deltaTime
}

func (r *recordingScene) Draw(screen *ebiten.Image) { r.draws++ }
func (r *recordingScene) OnEnter() { *r.events = append(*r.events, "enter:"+r.name) }
func (r *recordingScene) OnLeave() { *r.events = append(*r.events, "leave:"+r.name) }

// plainScene 不实现生命周期接口
type plainScene struct{ updates int }

func (p *plainScene) Update(float64) { p.updates++ }
func (p *plainScene) Draw(*ebiten.Image) {}

func TestSceneManager_Empty(t *testing.T) {
	sm := NewSceneManager(nil)
	assert.Nil(t, sm.GetCurrentScene())
	assert.Equal(t, 0, sm.Switches())

	// 没有活动场景时不应 panic
	sm.Update(1.0 / 60)
	sm.Draw(nil)
}

func TestSceneManager_UpdateAndDraw(t *testing.T) {
	var events []string
	training := &recordingScene{name: "training", events: &events}
	sm := NewSceneManager(nil)
	sm.SwitchTo(training)

	sm.Update(0.016)
	// 场景不访问屏幕，传 nil 即可
	sm.Draw(nil)

	assert.Equal(t, 1, training.updates)
	assert.Equal(t, 1, training.draws)
	assert.InDelta(t, 0.016, training.delta, 1e-9)
}

func TestSceneManager_Lifecycle(t *testing.T) {
	var events []string
	training := &recordingScene{name: "training", events: &events}
	debrief := &recordingScene{name: "debrief", events: &events}
	sm := NewSceneManager(nil)

	sm.SwitchTo(training)
	sm.SwitchTo(debrief)
	sm.SwitchTo(training)

	assert.Equal(t, []string{
		"enter:training",
		"leave:training", "enter:debrief",
		"leave:debrief", "enter:training",
	}, events)
	assert.Equal(t, 3, sm.Switches())
	assert.Same(t, training, sm.GetCurrentScene())
}

func TestSceneManager_SwitchToSelf(t *testing.T) {
	var events []string
	training := &recordingScene{name: "training", events: &events}
	sm := NewSceneManager(nil)

	sm.SwitchTo(training)
	sm.SwitchTo(training)

	assert.Equal(t, []string{"enter:training"}, events)
	assert.Equal(t, 1, sm.Switches())
}

func TestSceneManager_OnlyActiveSceneUpdates(t *testing.T) {
	a, b := &plainScene{}, &plainScene{}
	sm := NewSceneManager(nil)

	sm.SwitchTo(a)
	sm.Update(0.016)
	sm.SwitchTo(b)
	sm.Update(0.016)
	sm.Update(0.016)

	assert.Equal(t, 1, a.updates)
	assert.Equal(t, 2, b.updates)
}
