package systems

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
)

// ProgressionSystem 流程推进系统
//
// 职责：
//   - 独占 ProcedureState：推进步骤、结束运行、开始新的运行
//   - 进入步骤时布置步骤作用域物品（幂等）
//   - 场景变化时启动淡出/淡入切换（纯表现）
//   - 以运行ID、代数和步骤标记延迟推进任务，过期任务由调度器丢弃
//
// 状态机：步骤 1..N，最后一步之后进入完成状态。完成状态下 Advance 不做任何事。
type ProgressionSystem struct {
	registry   *game.StepRegistry
	state      *game.ProcedureState
	model      *scene.Model
	scheduler  *game.Scheduler
	transition *game.SceneTransition
	feedback   *game.FeedbackBoard
	clock      game.Clock
	logger     *log.Logger

	// advancePending 已排队推进，当前步骤不再接受手势
	advancePending bool

	onStepEnter   func(game.Step)
	onRunComplete func(game.ProcedureSnapshot)
}

// NewProgressionSystem 创建流程推进系统
//
// 参数：
//
//	registry - 步骤注册表
//	state - 运行状态（由本系统独占修改）
//	model - 场景物品模型
//	scheduler - 延迟任务调度器（本系统负责设置其标签校验函数）
//	transition - 场景切换器
//	feedback - 反馈文字面板
//	clock - 时钟
//	logger - 日志（可为 nil）
func NewProgressionSystem(
	registry *game.StepRegistry,
	state *game.ProcedureState,
	model *scene.Model,
	scheduler *game.Scheduler,
	transition *game.SceneTransition,
	feedback *game.FeedbackBoard,
	clock game.Clock,
	logger *log.Logger,
) *ProgressionSystem {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	p := &ProgressionSystem{
		registry:   registry,
		state:      state,
		model:      model,
		scheduler:  scheduler,
		transition: transition,
		feedback:   feedback,
		clock:      clock,
		logger:     logger.WithPrefix("ProgressionSystem"),
	}
	scheduler.SetGuard(p.tagIsLive)
	return p
}

// SetCallbacks 设置进入步骤和运行完成的回调
func (p *ProgressionSystem) SetCallbacks(onStepEnter func(game.Step), onRunComplete func(game.ProcedureSnapshot)) {
	p.onStepEnter = onStepEnter
	p.onRunComplete = onRunComplete
}

// CurrentStep 返回当前步骤；运行完成后返回最后一步
func (p *ProgressionSystem) CurrentStep() game.Step {
	ordinal := p.state.CurrentStep
	if ordinal < 1 {
		ordinal = 1
	}
	if ordinal > p.registry.Len() {
		ordinal = p.registry.Len()
	}
	return p.registry.StepAt(ordinal)
}

// AdvancePending 返回是否已排队推进
func (p *ProgressionSystem) AdvancePending() bool {
	return p.advancePending
}

// StepTag 返回当前步骤的任务标签
func (p *ProgressionSystem) StepTag() game.Tag {
	return game.Tag{RunID: p.state.RunID, Generation: p.state.Generation, Step: p.state.CurrentStep}
}

// RunTag 返回当前运行的任务标签（不绑定步骤）
func (p *ProgressionSystem) RunTag() game.Tag {
	return game.Tag{RunID: p.state.RunID, Generation: p.state.Generation}
}

// tagIsLive 判断任务标签是否仍属于当前运行（和当前步骤）
func (p *ProgressionSystem) tagIsLive(tag game.Tag) bool {
	if tag.RunID != p.state.RunID || tag.Generation != p.state.Generation {
		return false
	}
	if tag.Step == 0 {
		return true
	}
	return !p.state.Complete && tag.Step == p.state.CurrentStep
}

// ResetRun 开始新的运行
//
// 原子地清空：运行ID/代数、标记、已用工具、已完成步骤、错误计数、
// 永久物品和拖拽物品、未执行的延迟任务。然后直接显示第一步的场景（无淡入淡出）
// 并布置第一步。
func (p *ProgressionSystem) ResetRun() {
	now := p.clock.Now()
	first := p.registry.First()

	p.scheduler.CancelAll()
	p.model.Clear()
	p.feedback.Clear()
	p.state.Reset(now, first.Scene)
	p.transition.SetImmediate(first.Scene)
	p.advancePending = false

	p.logger.Info("run started", "run", p.state.RunID, "generation", p.state.Generation)

	p.SetupStep(first.Ordinal)
	p.enterStep(first)
}

// Advance 完成当前步骤并进入下一步；最后一步之后进入完成状态
func (p *ProgressionSystem) Advance() {
	if p.state.Complete {
		p.logger.Debug("advance ignored, run complete")
		return
	}
	now := p.clock.Now()
	p.advancePending = false

	current := p.state.CurrentStep
	p.state.MarkCompleted(current)

	if current >= p.registry.Len() {
		p.state.Complete = true
		p.state.EndTime = now
		snap := p.state.Snapshot(now)
		p.logger.Info("run complete",
			"completed", len(snap.Completed),
			"errors", snap.Errors,
			"elapsed", snap.Elapsed.Round(time.Millisecond))
		if p.onRunComplete != nil {
			p.onRunComplete(snap)
		}
		return
	}

	p.state.CurrentStep = current + 1
	next := p.registry.StepAt(p.state.CurrentStep)

	if next.Scene != p.state.Scene {
		p.logger.Debug("scene change", "from", p.state.Scene, "to", next.Scene)
		p.state.Scene = next.Scene
		p.transition.TransitionTo(next.Scene, now)
	}

	p.SetupStep(next.Ordinal)
	p.enterStep(next)
}

// ScheduleAdvance 在 delay 之后推进当前步骤
// 同一步骤只排队一次；任务在运行或步骤变化后失效
func (p *ProgressionSystem) ScheduleAdvance(delay time.Duration) {
	if p.advancePending || p.state.Complete {
		return
	}
	p.advancePending = true
	p.scheduler.Schedule("advance", delay, p.StepTag(), p.Advance)
}

// SetupStep 布置步骤作用域物品
//
// 对每个布置物品独立判断：已存在（同图片键、同步骤作用域）则跳过，缺失则重新创建。
// 因此连续调用两次与调用一次结果相同，手动清除后再调用会完整重建。
func (p *ProgressionSystem) SetupStep(ordinal int) {
	step := p.registry.StepAt(ordinal)
	for _, setup := range step.Setup {
		_, exists := p.model.FindByTag(func(it scene.Item) bool {
			return it.ImageKey == setup.ImageKey && it.OnlyStep == ordinal
		})
		if exists {
			continue
		}
		p.model.AddPermanent(scene.Item{
			Type:           setup.Type,
			ImageKey:       setup.ImageKey,
			X:              setup.Position.X,
			Y:              setup.Position.Y,
			Width:          setup.Width,
			Height:         setup.Height,
			OnlyStep:       ordinal,
			SceneDraggable: setup.SceneDraggable,
			OriginX:        setup.Position.X,
			OriginY:        setup.Position.Y,
		})
		p.logger.Debug("setup item placed", "step", ordinal, "item", setup.ImageKey)
	}
}

// Update 执行到期的延迟任务并推进场景切换
func (p *ProgressionSystem) Update() {
	p.scheduler.Update()
	p.transition.Update(p.clock.Now())
}

func (p *ProgressionSystem) enterStep(step game.Step) {
	p.logger.Info("step entered", "step", step.Ordinal, "title", step.Title)
	if p.onStepEnter != nil {
		p.onStepEnter(step)
	}
}
