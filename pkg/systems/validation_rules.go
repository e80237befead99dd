package systems

import (
	"fmt"
	"time"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

// Rule 步骤校验规则
//
// 规则集合是封闭的：只有本包中的六种规则实现了该接口，
// 每个步骤在加载时按配置的 kind 构建出对应的规则。
type Rule interface {
	// Kind 返回规则种类（与配置中的 kind 一致）
	Kind() string
	evaluate(v *ValidationSystem, step game.Step, item scene.Item) game.Outcome
}

// containmentTarget 区域包含规则的一个子目标（名称已解析为坐标）
type containmentTarget struct {
	tool     string
	point    utils.Point
	anchor   utils.Point
	radius   float64
	flag     string
	snap     *config.SnapConfig
	messages config.MessageConfig
}

// containmentRule 把指定工具放到固定目标点附近
// 可以有多个子目标，全部完成后分段提示并推进
type containmentRule struct {
	targets    []containmentTarget
	completion *config.CompletionConfig
	common     ruleEffects
}

// angleRule 带旋转的针尖位置 + 与竖直方向的夹角
type angleRule struct {
	tool      string
	point     utils.Point
	tip       utils.Point
	radius    float64
	tolerance float64
	flag      string
	common    ruleEffects
}

// chainedRule 物品锚点对齐到前置物品的锚点
type chainedRule struct {
	tool               string
	anchor             utils.Point
	requiresFlag       string
	prerequisite       string
	prerequisiteAnchor utils.Point
	radius             float64
	flag               string
	snap               *config.SnapConfig
	common             ruleEffects
}

// disposalRule 把场景中的物品丢进容器
type disposalRule struct {
	tool      string
	container string
	flag      string
	common    ruleEffects
}

// tapRule 点击目标点（没有拖拽物品）
type tapRule struct {
	point  utils.Point
	radius float64
	flag   string
	common ruleEffects
}

// actionRule 只校验物品类型和前置标记，不做几何判定
type actionRule struct {
	tool         string
	requiresFlag string
	flag         string
	common       ruleEffects
}

// ruleEffects 各规则共有的接受副作用和文本
type ruleEffects struct {
	setFlags     []string
	clearFlags   []string
	removes      []string
	spawn        []config.SpawnConfig
	spawnAt      utils.Point
	advanceDelay time.Duration
	messages     config.MessageConfig
}

func (containmentRule) Kind() string { return config.RuleContainment }
func (angleRule) Kind() string       { return config.RuleAngle }
func (chainedRule) Kind() string     { return config.RuleChained }
func (disposalRule) Kind() string    { return config.RuleDisposal }
func (tapRule) Kind() string         { return config.RuleTap }
func (actionRule) Kind() string      { return config.RuleAction }

// BuildRules 为每个步骤构建校验规则（按步骤序号索引）
// 目标、锚点或规则类型无法解析时返回错误
func BuildRules(registry *game.StepRegistry) (map[int]Rule, error) {
	rules := make(map[int]Rule, registry.Len())
	for _, step := range registry.Steps() {
		rule, err := buildRule(registry, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step.Ordinal, err)
		}
		rules[step.Ordinal] = rule
	}
	return rules, nil
}

func buildRule(registry *game.StepRegistry, step game.Step) (Rule, error) {
	rc := step.Rule

	common := ruleEffects{
		setFlags:     rc.SetFlags,
		clearFlags:   rc.ClearFlags,
		removes:      rc.Removes,
		spawn:        rc.Spawn,
		advanceDelay: registry.AdvanceDelay(),
		messages:     rc.Messages,
	}
	if rc.AdvanceDelayMs > 0 {
		common.advanceDelay = time.Duration(rc.AdvanceDelayMs) * time.Millisecond
	}
	if rc.Target != "" {
		p, err := resolveTarget(registry, rc.Target)
		if err != nil {
			return nil, err
		}
		common.spawnAt = p
	}

	switch rc.Kind {
	case config.RuleContainment:
		rule := &containmentRule{completion: rc.Completion, common: common}
		for _, tc := range rc.Targets {
			p, err := resolveTarget(registry, tc.Target)
			if err != nil {
				return nil, err
			}
			a, err := resolveAnchor(registry, tc.Anchor)
			if err != nil {
				return nil, err
			}
			rule.targets = append(rule.targets, containmentTarget{
				tool:     tc.Tool,
				point:    p,
				anchor:   a,
				radius:   tc.Radius,
				flag:     tc.Flag,
				snap:     tc.Snap,
				messages: mergeMessages(tc.Messages, rc.Messages),
			})
		}
		return rule, nil

	case config.RuleAngle:
		tip, err := resolveAnchor(registry, rc.Anchor)
		if err != nil {
			return nil, err
		}
		return &angleRule{
			tool:      rc.Tool,
			point:     common.spawnAt,
			tip:       tip,
			radius:    rc.Radius,
			tolerance: rc.AngleTolerance,
			flag:      rc.Flag,
			common:    common,
		}, nil

	case config.RuleChained:
		a, err := resolveAnchor(registry, rc.Anchor)
		if err != nil {
			return nil, err
		}
		pa, err := resolveAnchor(registry, rc.PrerequisiteAnchor)
		if err != nil {
			return nil, err
		}
		return &chainedRule{
			tool:               rc.Tool,
			anchor:             a,
			requiresFlag:       rc.RequiresFlag,
			prerequisite:       rc.Prerequisite,
			prerequisiteAnchor: pa,
			radius:             rc.Radius,
			flag:               rc.Flag,
			snap:               rc.Snap,
			common:             common,
		}, nil

	case config.RuleDisposal:
		return &disposalRule{
			tool:      rc.Tool,
			container: rc.Container,
			flag:      rc.Flag,
			common:    common,
		}, nil

	case config.RuleTap:
		return &tapRule{
			point:  common.spawnAt,
			radius: rc.Radius,
			flag:   rc.Flag,
			common: common,
		}, nil

	case config.RuleAction:
		return &actionRule{
			tool:         rc.Tool,
			requiresFlag: rc.RequiresFlag,
			flag:         rc.Flag,
			common:       common,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrUnknownRuleKind, rc.Kind)
}

func resolveTarget(registry *game.StepRegistry, name string) (utils.Point, error) {
	p, ok := registry.Target(name)
	if !ok {
		return utils.Point{}, fmt.Errorf("%w: %q", config.ErrUnknownTarget, name)
	}
	return p, nil
}

func resolveAnchor(registry *game.StepRegistry, name string) (utils.Point, error) {
	if name == "" {
		name = config.AnchorCenter
	}
	a, ok := registry.Anchor(name)
	if !ok {
		return utils.Point{}, fmt.Errorf("%w: %q", config.ErrUnknownAnchor, name)
	}
	return a, nil
}

// mergeMessages 子目标未配置的文本回退到规则级文本
func mergeMessages(specific, fallback config.MessageConfig) config.MessageConfig {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return config.MessageConfig{
		Success:          pick(specific.Success, fallback.Success),
		WrongTool:        pick(specific.WrongTool, fallback.WrongTool),
		Failure:          pick(specific.Failure, fallback.Failure),
		Angle:            pick(specific.Angle, fallback.Angle),
		Prerequisite:     pick(specific.Prerequisite, fallback.Prerequisite),
		ContainerMissing: pick(specific.ContainerMissing, fallback.ContainerMissing),
	}
}

// snappedItem 构造吸附后的永久物品：物品锚点精确落在 target 上
func snappedItem(item scene.Item, snap *config.SnapConfig, target, anchor utils.Point, ordinal int) scene.Item {
	center := utils.CenterForAnchor(utils.QuantizePoint(target), snap.Width, snap.Height, anchor)
	placed := scene.Item{
		Type:     item.Type,
		ImageKey: item.ImageKey,
		X:        center.X,
		Y:        center.Y,
		Width:    snap.Width,
		Height:   snap.Height,
	}
	if snap.Scoped {
		placed.OnlyStep = ordinal
	}
	return placed
}

// droppedItem 没有吸附配置时按放下时的位置保留物品
func droppedItem(item scene.Item) scene.Item {
	item.ID = 0
	item.FromScene = false
	return item
}

func (r *containmentRule) evaluate(v *ValidationSystem, step game.Step, item scene.Item) game.Outcome {
	var target *containmentTarget
	for i := range r.targets {
		if r.targets[i].tool == item.Type {
			target = &r.targets[i]
			break
		}
	}
	if target == nil {
		return v.reject(step, game.ReasonWrongTool, r.common.messages.WrongTool)
	}

	// 已完成的子目标再次放置不计错误
	if v.state.Flag(target.flag) {
		return game.Ignore(step.Ordinal, game.ReasonIgnored)
	}

	at := utils.AnchorPoint(item.Box(), target.anchor)
	d := utils.Distance(at, target.point)
	if d > target.radius {
		v.logger.Debug("containment out of range", "tool", item.Type, "distance", d, "radius", target.radius)
		return v.reject(step, game.ReasonOutOfRange, target.messages.Failure)
	}

	acc := acceptance{
		message: target.messages.Success,
		flags:   []string{target.flag},
		effects: r.common,
	}
	// 规则级标记在全部子目标完成后设置
	acc.effects.setFlags = nil
	if target.snap != nil {
		placed := snappedItem(item, target.snap, target.point, target.anchor, step.Ordinal)
		acc.place = &placed
	} else {
		placed := droppedItem(item)
		acc.place = &placed
	}

	out := v.accept(step, item, acc, false)

	for _, t := range r.targets {
		if !v.state.Flag(t.flag) {
			return out
		}
	}

	// 全部子目标完成：分段提示，然后推进
	delay := r.common.advanceDelay
	if r.completion != nil {
		messageDelay := time.Duration(r.completion.MessageDelayMs) * time.Millisecond
		delay = messageDelay + time.Duration(r.completion.AdvanceDelayMs)*time.Millisecond
		if msg := r.completion.Message; msg != "" {
			v.scheduler.Schedule("completion message", messageDelay, v.progression.StepTag(), func() {
				v.feedback.Show(msg, game.CategorySuccess, v.clock.Now())
			})
		}
	}
	for _, f := range r.common.setFlags {
		v.state.SetFlag(f)
	}
	v.progression.ScheduleAdvance(delay)
	return out
}

func (r *angleRule) evaluate(v *ValidationSystem, step game.Step, item scene.Item) game.Outcome {
	if item.Type != r.tool {
		return v.reject(step, game.ReasonWrongTool, r.common.messages.WrongTool)
	}

	tip := utils.RotatedTipOffset(item.Box(), r.tip)
	d := utils.Distance(tip, r.point)
	if d > r.radius {
		v.logger.Debug("tip out of range", "distance", d, "radius", r.radius)
		return v.reject(step, game.ReasonOutOfRange, r.common.messages.Failure)
	}

	off := utils.AngleFromVertical(item.Rotation)
	if off > r.tolerance {
		v.logger.Debug("bad angle", "off", off, "tolerance", r.tolerance)
		return v.reject(step, game.ReasonBadAngle, formatAngle(r.common.messages.Angle, off))
	}

	acc := acceptance{message: r.common.messages.Success, flags: []string{r.flag}, effects: r.common}
	if step.Persistence == config.PersistenceKeep {
		placed := droppedItem(item)
		acc.place = &placed
	}
	return v.accept(step, item, acc, true)
}

func formatAngle(format string, off float64) string {
	if format == "" {
		return ""
	}
	return fmt.Sprintf(format, off)
}

func (r *chainedRule) evaluate(v *ValidationSystem, step game.Step, item scene.Item) game.Outcome {
	if item.Type != r.tool {
		return v.reject(step, game.ReasonWrongTool, r.common.messages.WrongTool)
	}

	if r.requiresFlag != "" && !v.state.Flag(r.requiresFlag) {
		return v.reject(step, game.ReasonMissingPrerequisite, r.common.messages.Prerequisite)
	}
	prereq, ok := v.model.FindByTag(func(it scene.Item) bool {
		return it.ImageKey == r.prerequisite && it.VisibleAt(step.Ordinal)
	})
	if !ok {
		v.logger.Warn("prerequisite item missing", "step", step.Ordinal, "prerequisite", r.prerequisite)
		return v.reject(step, game.ReasonMissingPrerequisite, r.common.messages.Prerequisite)
	}

	target := utils.AnchorPoint(prereq.Box(), r.prerequisiteAnchor)
	at := utils.AnchorPoint(item.Box(), r.anchor)
	d := utils.Distance(at, target)
	if d > r.radius {
		v.logger.Debug("anchor out of range", "distance", d, "radius", r.radius)
		return v.reject(step, game.ReasonOutOfRange, r.common.messages.Failure)
	}

	acc := acceptance{message: r.common.messages.Success, flags: []string{r.flag}, effects: r.common}
	if r.snap != nil {
		placed := snappedItem(item, r.snap, target, r.anchor, step.Ordinal)
		acc.place = &placed
	} else {
		placed := droppedItem(item)
		acc.place = &placed
	}
	return v.accept(step, item, acc, true)
}

func (r *disposalRule) evaluate(v *ValidationSystem, step game.Step, item scene.Item) game.Outcome {
	if item.Type != r.tool {
		return v.reject(step, game.ReasonWrongTool, r.common.messages.WrongTool)
	}

	container, ok := v.model.FindByTag(func(it scene.Item) bool {
		return it.ImageKey == r.container && it.OnlyStep == step.Ordinal
	})
	if !ok {
		// 布置逻辑应当保证容器存在；缺失说明场景被破坏，重建后让学员重试
		v.logger.Error("disposal container missing, rebuilding step scene",
			"step", step.Ordinal, "container", r.container)
		v.progression.SetupStep(step.Ordinal)
		return v.reject(step, game.ReasonSceneRebuilt, r.common.messages.ContainerMissing)
	}

	// 放下点（物品中心）必须落在容器矩形内，边界算作内部
	if !container.Bounds().Contains(item.Center()) {
		return v.reject(step, game.ReasonOutsideContainer, r.common.messages.Failure)
	}

	acc := acceptance{message: r.common.messages.Success, flags: []string{r.flag}, effects: r.common, removeScoped: true}
	return v.accept(step, item, acc, true)
}

func (r *tapRule) evaluate(v *ValidationSystem, step game.Step, item scene.Item) game.Outcome {
	return v.reject(step, game.ReasonWrongTool, r.common.messages.WrongTool)
}

func (r *tapRule) evaluateTap(v *ValidationSystem, step game.Step, p utils.Point) game.Outcome {
	d := utils.Distance(p, r.point)
	if d > r.radius {
		v.logger.Debug("tap out of range", "distance", d, "radius", r.radius)
		return v.reject(step, game.ReasonOutOfRange, r.common.messages.Failure)
	}
	acc := acceptance{message: r.common.messages.Success, flags: []string{r.flag}, effects: r.common}
	return v.accept(step, scene.Item{}, acc, true)
}

func (r *actionRule) evaluate(v *ValidationSystem, step game.Step, item scene.Item) game.Outcome {
	if item.Type != r.tool {
		return v.reject(step, game.ReasonWrongTool, r.common.messages.WrongTool)
	}
	if r.requiresFlag != "" && !v.state.Flag(r.requiresFlag) {
		return v.reject(step, game.ReasonMissingPrerequisite, r.common.messages.Prerequisite)
	}

	acc := acceptance{message: r.common.messages.Success, flags: []string{r.flag}, effects: r.common}
	if step.Persistence == config.PersistenceKeep {
		placed := droppedItem(item)
		acc.place = &placed
	}
	return v.accept(step, item, acc, true)
}
