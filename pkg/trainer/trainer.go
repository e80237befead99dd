// Package trainer 把步骤注册表、运行状态、场景模型和各个系统组装成一个训练器
//
// 前端（ebiten 窗口、命令行模拟）只和 Trainer 打交道：
// 把归一化到场景坐标的指针事件交给它，每帧调用 Update，并读取快照和场景物品用于绘制。
// 所有方法都必须在同一个协程中调用。
package trainer

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/systems"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

// Options 训练器选项
type Options struct {
	// Clock 时间源，默认系统时钟
	Clock game.Clock
	// Logger 日志，默认丢弃
	Logger *log.Logger
	// CoarsePointer 触摸等粗指针设备，放大容差半径
	CoarsePointer bool
	// Hooks 观察回调
	Hooks Hooks
}

// Trainer 一个流程的训练器
type Trainer struct {
	clock  game.Clock
	logger *log.Logger
	hooks  Hooks

	registry   *game.StepRegistry
	state      *game.ProcedureState
	model      *scene.Model
	scheduler  *game.Scheduler
	transition *game.SceneTransition
	feedback   *game.FeedbackBoard

	progression *systems.ProgressionSystem
	validation  *systems.ValidationSystem
	drag        *systems.DragSystem
}

// New 创建训练器并开始第一次运行
func New(cfg *config.ProcedureConfig, opts Options) (*Trainer, error) {
	if opts.Clock == nil {
		opts.Clock = game.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	t := &Trainer{
		clock:  opts.Clock,
		logger: opts.Logger.WithPrefix("Trainer"),
		hooks:  opts.Hooks,
	}

	t.registry = game.NewStepRegistry(cfg, game.RegistryOptions{CoarsePointer: opts.CoarsePointer})
	t.state = game.NewProcedureState(t.registry.Len())
	t.model = scene.NewModel()
	t.scheduler = game.NewScheduler(t.clock, opts.Logger)
	t.transition = game.NewSceneTransition(t.registry.TransitionDuration())
	t.feedback = game.NewFeedbackBoard(t.registry.FeedbackDuration())
	t.feedback.SetListener(t.emitFeedback)

	t.progression = systems.NewProgressionSystem(
		t.registry, t.state, t.model, t.scheduler, t.transition, t.feedback, t.clock, opts.Logger)
	t.progression.SetCallbacks(t.emitStepEnter, t.emitRunComplete)

	validation, err := systems.NewValidationSystem(
		t.registry, t.state, t.model, t.scheduler, t.feedback, t.progression, t.clock, opts.Logger)
	if err != nil {
		return nil, err
	}
	t.validation = validation
	t.drag = systems.NewDragSystem(t.registry, t.state, t.model, t.progression, t.validation, opts.Logger)

	t.logger.Info("procedure loaded", "id", t.registry.ProcedureID(), "steps", t.registry.Len(), "coarse", opts.CoarsePointer)
	t.progression.ResetRun()
	return t, nil
}

// OnGestureReleased 判定一个已经放下的物品
// 拖拽进行中时由 Release 调用同一校验；这里供不经过拖拽系统的调用方使用
func (t *Trainer) OnGestureReleased(item scene.Item) game.Outcome {
	return t.emitOutcome(t.validation.Validate(item))
}

// OnTap 判定一次点击
func (t *Trainer) OnTap(p utils.Point) game.Outcome {
	return t.emitOutcome(t.drag.Tap(p))
}

// BeginFromTray 从工具托盘开始拖拽
func (t *Trainer) BeginFromTray(toolID string, p utils.Point) error {
	return t.drag.BeginFromTray(toolID, p)
}

// BeginFromScene 从场景中拾取物品开始拖拽
func (t *Trainer) BeginFromScene(p utils.Point) (bool, error) {
	return t.drag.BeginFromScene(p)
}

// Move 拖拽物品跟随指针
func (t *Trainer) Move(p utils.Point) {
	t.drag.Move(p)
}

// Rotate 旋转拖拽物品，返回是否旋转
func (t *Trainer) Rotate(delta float64) bool {
	return t.drag.Rotate(delta)
}

// Release 松开拖拽物品并判定
func (t *Trainer) Release(p utils.Point) game.Outcome {
	return t.emitOutcome(t.drag.Release(p))
}

// Cancel 放弃拖拽
func (t *Trainer) Cancel() bool {
	return t.drag.Cancel()
}

// Dragging 返回是否有进行中的拖拽
func (t *Trainer) Dragging() bool {
	return t.drag.Dragging()
}

// Dragged 返回拖拽物品的副本
func (t *Trainer) Dragged() (scene.Item, bool) {
	d := t.model.Dragged()
	if d == nil {
		return scene.Item{}, false
	}
	return *d, true
}

// TrayTools 返回当前托盘中的工具
func (t *Trainer) TrayTools() []game.Tool {
	return t.drag.TrayTools()
}

// VisibleItems 返回当前步骤可见的永久物品（按绘制顺序）
func (t *Trainer) VisibleItems() []scene.Item {
	return t.model.VisibleItems(t.state.CurrentStep)
}

// CurrentStep 返回当前步骤；运行完成后返回最后一步
func (t *Trainer) CurrentStep() game.Step {
	return t.progression.CurrentStep()
}

// Snapshot 返回运行状态快照
func (t *Trainer) Snapshot() game.ProcedureSnapshot {
	return t.state.Snapshot(t.clock.Now())
}

// Complete 返回运行是否已完成
func (t *Trainer) Complete() bool {
	return t.state.Complete
}

// Feedback 返回正在显示的反馈文字
func (t *Trainer) Feedback() (game.Feedback, bool) {
	return t.feedback.Current(t.clock.Now())
}

// DisplayedScene 返回屏幕上应当显示的场景（切换过程中可能落后于运行状态）
func (t *Trainer) DisplayedScene() config.SceneConfig {
	s, _ := t.registry.Scene(t.transition.Displayed())
	return s
}

// OverlayAlpha 返回场景切换遮罩的不透明度
func (t *Trainer) OverlayAlpha() float64 {
	return t.transition.OverlayAlpha(t.clock.Now())
}

// Registry 返回步骤注册表
func (t *Trainer) Registry() *game.StepRegistry {
	return t.registry
}

// Advance 立即完成当前步骤（调试跳过）
func (t *Trainer) Advance() {
	t.logger.Debug("manual advance", "step", t.state.CurrentStep)
	t.drag.Cancel()
	t.progression.Advance()
}

// ResetRun 放弃当前运行并重新开始
func (t *Trainer) ResetRun() {
	t.drag.Reset()
	t.progression.ResetRun()
}

// Update 每帧调用：执行到期的延迟任务，推进场景切换
func (t *Trainer) Update() {
	t.progression.Update()
}

// Elapsed 返回当前运行的用时
func (t *Trainer) Elapsed() time.Duration {
	return t.state.Elapsed(t.clock.Now())
}

func (t *Trainer) emitOutcome(out game.Outcome) game.Outcome {
	if t.hooks.OnOutcome != nil {
		t.hooks.OnOutcome(out)
	}
	return out
}

func (t *Trainer) emitStepEnter(step game.Step) {
	if t.hooks.OnStepEnter != nil {
		t.hooks.OnStepEnter(step)
	}
}

func (t *Trainer) emitRunComplete(snap game.ProcedureSnapshot) {
	if t.hooks.OnRunComplete != nil {
		t.hooks.OnRunComplete(snap)
	}
}

func (t *Trainer) emitFeedback(fb game.Feedback) {
	if t.hooks.OnFeedback != nil {
		t.hooks.OnFeedback(fb)
	}
}
