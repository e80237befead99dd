package trainer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

func newTestTrainer(t *testing.T, hooks Hooks) (*Trainer, *game.ManualClock) {
	t.Helper()
	cfg, err := config.LoadProcedureConfig("../../data/procedures/ezio_humeral.yaml")
	require.NoError(t, err)
	clock := game.NewManualClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	tr, err := New(cfg, Options{Clock: clock, Hooks: hooks})
	require.NoError(t, err)
	return tr, clock
}

func TestTrainer_Start(t *testing.T) {
	var entered []int
	tr, _ := newTestTrainer(t, Hooks{OnStepEnter: func(s game.Step) { entered = append(entered, s.Ordinal) }})

	assert.Equal(t, []int{1}, entered)
	assert.Equal(t, "Step 1: Don BSI Equipment", tr.CurrentStep().Title)
	assert.Equal(t, "face_hands", tr.DisplayedScene().Background)
	assert.Len(t, tr.TrayTools(), 2)
	assert.Zero(t, tr.Snapshot().Progress())
}

func TestTrainer_GestureHooks(t *testing.T) {
	var outcomes []game.Outcome
	var messages []string
	tr, clock := newTestTrainer(t, Hooks{
		OnOutcome:  func(o game.Outcome) { outcomes = append(outcomes, o) },
		OnFeedback: func(f game.Feedback) { messages = append(messages, f.Message) },
	})

	require.NoError(t, tr.BeginFromTray("gloves", utils.Point{X: 50, Y: 550}))
	tr.Move(utils.Point{X: 300, Y: 300})
	assert.True(t, tr.Dragging())
	out := tr.Release(utils.Point{X: 400, Y: 420})
	require.True(t, out.Accepted)

	out = tr.OnGestureReleased(scene.Item{Type: "eye_pro", ImageKey: "eye_pro", X: 700, Y: 60, Width: 150, Height: 150})
	assert.Equal(t, game.ReasonOutOfRange, out.Reason)

	require.Len(t, outcomes, 2)
	assert.Equal(t, []string{"✓ Gloves donned", "Place eye protection on the face"}, messages)

	fb, ok := tr.Feedback()
	require.True(t, ok)
	assert.Equal(t, game.CategoryError, fb.Category)
	clock.Advance(2 * time.Second)
	_, ok = tr.Feedback()
	assert.False(t, ok)

	assert.Equal(t, 1, tr.Snapshot().Errors)
}

// TestTrainer_PerfectRun 按正确操作完成全部十个步骤
func TestTrainer_PerfectRun(t *testing.T) {
	var complete []game.ProcedureSnapshot
	tr, clock := newTestTrainer(t, Hooks{OnRunComplete: func(s game.ProcedureSnapshot) { complete = append(complete, s) }})
	reg := tr.Registry()

	settle := func() {
		for i := 0; i < 40; i++ {
			clock.Advance(100 * time.Millisecond)
			tr.Update()
		}
	}
	drop := func(tool string, at utils.Point, rotation float64) {
		t.Helper()
		require.NoError(t, tr.BeginFromTray(tool, utils.Point{X: 50, Y: 550}))
		for rotation != 0 {
			step := reg.RotationStep()
			if rotation < 0 {
				step = -step
			}
			require.True(t, tr.Rotate(step))
			rotation -= step
		}
		out := tr.Release(at)
		require.True(t, out.Accepted, "%s: %s", tool, out.Message)
	}
	anchorDrop := func(tool, anchorName string, target utils.Point) {
		t.Helper()
		tl, _ := reg.Tool(tool)
		a, _ := reg.Anchor(anchorName)
		s := reg.TrayScale()
		drop(tool, utils.CenterForAnchor(target, tl.Width*s, tl.Height*s, a), 0)
	}
	humeral, _ := reg.Target("humeral")
	hands, _ := reg.Target("hands")
	face, _ := reg.Target("face")

	drop("gloves", hands, 0)
	drop("eye_pro", face, 0)
	settle()
	require.Equal(t, 2, tr.CurrentStep().Ordinal)

	drop("alcohol_pad", humeral, 0)
	settle()

	// 插入器针尖对准目标
	anchorDrop("io_driver", "driverTip", humeral)
	settle()
	require.Equal(t, 4, tr.CurrentStep().Ordinal)

	ok, err := tr.BeginFromScene(humeral)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, tr.Release(utils.Point{X: 656, Y: 468}).Accepted)
	settle()

	drop("io_dressing", humeral, 0)
	settle()
	anchorDrop("extension_set", "extHubEnd", humeral)
	settle()

	var ext scene.Item
	for _, it := range tr.VisibleItems() {
		if it.ImageKey == "extension_set" {
			ext = it
		}
	}
	portEnd, _ := reg.Anchor("extPortEnd")
	anchorDrop("syringe", "syringeTip", utils.AnchorPoint(ext.Box(), portEnd))
	settle()
	drop("plunger", humeral, 0)
	settle()

	require.Equal(t, 9, tr.CurrentStep().Ordinal)
	require.True(t, tr.OnTap(humeral).Accepted)
	settle()
	drop("sf600", utils.Point{X: 400, Y: 300}, 0)
	settle()

	require.True(t, tr.Complete())
	require.Len(t, complete, 1)
	assert.Equal(t, 0, complete[0].Errors)
	assert.Equal(t, 10, len(complete[0].Completed))
	assert.Equal(t, 1.0, complete[0].Progress())
	for _, flag := range []string{"glovesDonned", "eyeProDonned", "siteCleaned", "driverInserted", "styletDisposed",
		"sharpsDisposed", "dressingApplied", "extensionAttached", "flushed", "siteChecked", "documented"} {
		assert.True(t, complete[0].Flags[flag], flag)
	}
	assert.False(t, complete[0].Flags["syringeAttached"], "cleared by the flush")
}

func TestTrainer_AdvanceCancelsDrag(t *testing.T) {
	tr, _ := newTestTrainer(t, Hooks{})
	require.NoError(t, tr.BeginFromTray("gloves", utils.Point{X: 50, Y: 550}))

	tr.Advance()
	assert.False(t, tr.Dragging())
	assert.Equal(t, 2, tr.CurrentStep().Ordinal)
}

func TestTrainer_ResetRun(t *testing.T) {
	var entered []int
	tr, clock := newTestTrainer(t, Hooks{OnStepEnter: func(s game.Step) { entered = append(entered, s.Ordinal) }})
	tr.Advance()
	tr.Advance()
	tr.Advance()
	clock.Advance(time.Minute)
	ok, _ := tr.BeginFromScene(utils.Point{X: 384, Y: 300})
	require.True(t, ok)

	tr.ResetRun()

	snap := tr.Snapshot()
	assert.Equal(t, 1, snap.CurrentStep)
	assert.Empty(t, snap.Completed)
	assert.Zero(t, snap.Elapsed)
	assert.False(t, tr.Dragging())
	assert.Empty(t, tr.VisibleItems())
	assert.Equal(t, []int{1, 2, 3, 4, 1}, entered)
}

func TestMergeHooks(t *testing.T) {
	var order []string
	merged := MergeHooks(
		Hooks{OnOutcome: func(game.Outcome) { order = append(order, "a") }},
		Hooks{},
		Hooks{OnOutcome: func(game.Outcome) { order = append(order, "b") }, OnFeedback: func(game.Feedback) { order = append(order, "fb") }},
	)

	merged.OnOutcome(game.Outcome{})
	merged.OnFeedback(game.Feedback{})
	assert.Equal(t, []string{"a", "b", "fb"}, order)
	assert.Nil(t, merged.OnStepEnter)
}
