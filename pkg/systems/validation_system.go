package systems

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

// ValidationSystem 手势校验系统
//
// 职责：
//   - 按当前步骤序号找到该步骤的规则，对放下的物品或点击做判定
//   - 拒绝：错误计数加一，显示纠正提示
//   - 接受：设置标记、标记工具已用、按持久化策略处理物品、生成道具，
//     显示确认提示并排队推进
//
// 运行状态由 ProgressionSystem 独占，本系统通过同一个指针请求修改。
type ValidationSystem struct {
	registry    *game.StepRegistry
	state       *game.ProcedureState
	model       *scene.Model
	scheduler   *game.Scheduler
	feedback    *game.FeedbackBoard
	progression *ProgressionSystem
	clock       game.Clock
	logger      *log.Logger

	rules map[int]Rule
}

// NewValidationSystem 创建校验系统，并为每个步骤构建规则
// 规则引用了未知的目标、锚点或种类时返回错误
func NewValidationSystem(
	registry *game.StepRegistry,
	state *game.ProcedureState,
	model *scene.Model,
	scheduler *game.Scheduler,
	feedback *game.FeedbackBoard,
	progression *ProgressionSystem,
	clock game.Clock,
	logger *log.Logger,
) (*ValidationSystem, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	rules, err := BuildRules(registry)
	if err != nil {
		return nil, err
	}
	return &ValidationSystem{
		registry:    registry,
		state:       state,
		model:       model,
		scheduler:   scheduler,
		feedback:    feedback,
		progression: progression,
		clock:       clock,
		logger:      logger.WithPrefix("ValidationSystem"),
		rules:       rules,
	}, nil
}

// RuleFor 返回指定步骤的规则
func (v *ValidationSystem) RuleFor(ordinal int) Rule {
	return v.rules[ordinal]
}

// Validate 判定一次放下的物品
//
// 从场景中拾取的物品未被接受时，回到它的初始位置（容器缺失重建场景时由重建负责）。
func (v *ValidationSystem) Validate(item scene.Item) game.Outcome {
	out := v.validate(item)
	if !out.Accepted && item.FromScene && out.Reason != game.ReasonSceneRebuilt {
		v.respawn(item)
	}
	return out
}

func (v *ValidationSystem) validate(item scene.Item) game.Outcome {
	if v.state.Complete {
		return game.Ignore(0, game.ReasonInactive)
	}
	step := v.progression.CurrentStep()
	if v.progression.AdvancePending() {
		v.logger.Debug("gesture ignored, advance pending", "step", step.Ordinal, "item", item.Type)
		return game.Ignore(step.Ordinal, game.ReasonIgnored)
	}

	out := v.rules[step.Ordinal].evaluate(v, step, item)
	v.logger.Debug("gesture validated",
		"step", step.Ordinal,
		"item", item.Type,
		"x", item.X, "y", item.Y,
		"rotation", item.Rotation,
		"reason", out.Reason)
	return out
}

// Tap 判定一次点击
// 当前步骤不是点击规则时忽略
func (v *ValidationSystem) Tap(p utils.Point) game.Outcome {
	if v.state.Complete {
		return game.Ignore(0, game.ReasonInactive)
	}
	step := v.progression.CurrentStep()
	rule, ok := v.rules[step.Ordinal].(*tapRule)
	if !ok || v.progression.AdvancePending() {
		return game.Ignore(step.Ordinal, game.ReasonIgnored)
	}
	return rule.evaluateTap(v, step, p)
}

// reject 记录一次学员错误
func (v *ValidationSystem) reject(step game.Step, reason game.Reason, message string) game.Outcome {
	v.state.IncrementErrors()
	v.feedback.Show(message, game.CategoryError, v.clock.Now())
	v.logger.Info("rejected", "step", step.Ordinal, "reason", reason, "errors", v.state.Errors)
	return game.Reject(step.Ordinal, reason, message)
}

// acceptance 一次接受要应用的变更
type acceptance struct {
	message string
	flags   []string
	effects ruleEffects
	// place 持久化策略为 keep 时放入永久物品的物品
	place *scene.Item
	// removeScoped 移除当前步骤的全部作用域物品
	removeScoped bool
}

// accept 应用接受的副作用；advance 为 true 时排队推进
func (v *ValidationSystem) accept(step game.Step, item scene.Item, acc acceptance, advance bool) game.Outcome {
	for _, f := range acc.flags {
		if f != "" {
			v.state.SetFlag(f)
		}
	}
	for _, f := range acc.effects.setFlags {
		v.state.SetFlag(f)
	}
	for _, f := range acc.effects.clearFlags {
		v.state.ClearFlag(f)
	}

	if _, ok := v.registry.Tool(item.Type); ok {
		v.state.Consume(item.Type)
	}

	if step.Persistence == config.PersistenceKeep && acc.place != nil {
		v.model.AddPermanent(*acc.place)
	}
	for _, key := range acc.effects.removes {
		n := v.model.RemoveByType(key)
		v.logger.Debug("removed items", "image", key, "count", n)
	}
	if acc.removeScoped {
		v.model.RemoveWhere(func(it scene.Item) bool { return it.OnlyStep == step.Ordinal })
	}
	for _, sp := range acc.effects.spawn {
		v.model.AddPermanent(scene.Item{
			Type:     sp.Type,
			ImageKey: sp.Image,
			X:        acc.effects.spawnAt.X,
			Y:        acc.effects.spawnAt.Y,
			Width:    sp.Width,
			Height:   sp.Height,
		})
	}

	v.feedback.Show(acc.message, game.CategorySuccess, v.clock.Now())
	v.logger.Info("accepted", "step", step.Ordinal, "item", item.Type)

	if advance {
		v.progression.ScheduleAdvance(acc.effects.advanceDelay)
	}
	return game.Accept(step.Ordinal, acc.message)
}

// respawn 场景物品回到初始位置
func (v *ValidationSystem) respawn(item scene.Item) {
	item.ID = 0
	item.FromScene = false
	item.X, item.Y = item.OriginX, item.OriginY
	item.Rotation = 0
	v.model.AddPermanent(item)
	v.logger.Debug("item respawned", "item", item.Type, "x", item.X, "y", item.Y)
}
