package systems

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

var (
	hands   = utils.Point{X: 400, Y: 420}
	face    = utils.Point{X: 400, Y: 176}
	humeral = utils.Point{X: 384, Y: 300}
	sharps  = utils.Point{X: 656, Y: 468}
)

// testRig 组装好的一套系统，使用手动时钟
type testRig struct {
	clock       *game.ManualClock
	registry    *game.StepRegistry
	state       *game.ProcedureState
	model       *scene.Model
	scheduler   *game.Scheduler
	transition  *game.SceneTransition
	feedback    *game.FeedbackBoard
	progression *ProgressionSystem
	validation  *ValidationSystem
	drag        *DragSystem

	entered   []int
	completed int
}

func newTestRig(t *testing.T, opts game.RegistryOptions) *testRig {
	t.Helper()
	cfg, err := config.LoadProcedureConfig("../../data/procedures/ezio_humeral.yaml")
	require.NoError(t, err)

	r := &testRig{clock: game.NewManualClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))}
	r.registry = game.NewStepRegistry(cfg, opts)
	r.state = game.NewProcedureState(r.registry.Len())
	r.model = scene.NewModel()
	r.scheduler = game.NewScheduler(r.clock, nil)
	r.transition = game.NewSceneTransition(r.registry.TransitionDuration())
	r.feedback = game.NewFeedbackBoard(r.registry.FeedbackDuration())
	r.progression = NewProgressionSystem(r.registry, r.state, r.model, r.scheduler, r.transition, r.feedback, r.clock, nil)
	r.validation, err = NewValidationSystem(r.registry, r.state, r.model, r.scheduler, r.feedback, r.progression, r.clock, nil)
	require.NoError(t, err)
	r.drag = NewDragSystem(r.registry, r.state, r.model, r.progression, r.validation, nil)

	r.progression.SetCallbacks(
		func(s game.Step) { r.entered = append(r.entered, s.Ordinal) },
		func(game.ProcedureSnapshot) { r.completed++ },
	)
	r.progression.ResetRun()
	return r
}

// tick 推进时钟并执行一帧更新
func (r *testRig) tick(d time.Duration) {
	r.clock.Advance(d)
	r.progression.Update()
}

// skipTo 直接推进到指定步骤（不校验）
func (r *testRig) skipTo(ordinal int) {
	for r.state.CurrentStep < ordinal {
		r.progression.Advance()
	}
}

// trayItem 构造一个从托盘拖出的物品，中心位于 at
func (r *testRig) trayItem(toolID string, at utils.Point) scene.Item {
	tool, ok := r.registry.Tool(toolID)
	if !ok {
		return scene.Item{Type: toolID, ImageKey: toolID, X: at.X, Y: at.Y, Width: 50, Height: 50}
	}
	s := r.registry.TrayScale()
	return scene.Item{
		Type:     tool.ID,
		ImageKey: tool.ImageKey,
		X:        at.X,
		Y:        at.Y,
		Width:    tool.Width * s,
		Height:   tool.Height * s,
	}
}

// dropFromTray 通过拖拽系统完成一次托盘拖放
func (r *testRig) dropFromTray(t *testing.T, toolID string, at utils.Point) game.Outcome {
	t.Helper()
	require.NoError(t, r.drag.BeginFromTray(toolID, utils.Point{X: 60, Y: 560}))
	return r.drag.Release(at)
}

func (r *testRig) itemsOfType(imageKey string) []scene.Item {
	var found []scene.Item
	for _, it := range r.model.Items() {
		if it.ImageKey == imageKey {
			found = append(found, it)
		}
	}
	return found
}
