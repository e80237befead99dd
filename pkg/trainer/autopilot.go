package trainer

import (
	"errors"
	"fmt"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/systems"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

// mistakeItem 故意放错时使用的物品类型（不在任何步骤中出现）
const mistakeItem = "wrong_item"

// ErrSceneItemMissing 步骤需要的场景物品（前置物品、容器）不在场景中
var ErrSceneItemMissing = errors.New("scene item missing")

// Gesture 自动操作执行的一次手势
type Gesture struct {
	// Tool 物品类型；点击为空
	Tool string
	// At 放下点（物品中心）或点击点
	At      utils.Point
	Outcome game.Outcome
}

// Autopilot 根据当前步骤的规则推算并执行正确的手势
// 只通过 Trainer 的公开操作驱动，和真实学员走相同的路径
type Autopilot struct {
	t *Trainer
}

// NewAutopilot 创建自动操作
func NewAutopilot(t *Trainer) *Autopilot {
	return &Autopilot{t: t}
}

// Perform 执行当前步骤的正确手势
// 区域包含规则有多个子目标时依次执行每一个
func (a *Autopilot) Perform() ([]Gesture, error) {
	if a.t.Complete() {
		return nil, systems.ErrRunComplete
	}
	step := a.t.CurrentStep()
	rule := step.Rule
	reg := a.t.Registry()

	switch rule.Kind {
	case config.RuleContainment:
		gestures := make([]Gesture, 0, len(rule.Targets))
		for _, tc := range rule.Targets {
			at, err := a.target(tc.Target)
			if err != nil {
				return gestures, err
			}
			g, err := a.drop(tc.Tool, at, tc.Anchor)
			if err != nil {
				return gestures, err
			}
			gestures = append(gestures, g)
		}
		return gestures, nil

	case config.RuleAngle:
		at, err := a.target(rule.Target)
		if err != nil {
			return nil, err
		}
		return a.dropOne(rule.Tool, at, rule.Anchor)

	case config.RuleChained:
		prereq, ok := a.findItem(func(it scene.Item) bool { return it.ImageKey == rule.Prerequisite })
		if !ok {
			return nil, fmt.Errorf("step %d: %w: %q", step.Ordinal, ErrSceneItemMissing, rule.Prerequisite)
		}
		anchor, err := a.anchor(rule.PrerequisiteAnchor)
		if err != nil {
			return nil, err
		}
		return a.dropOne(rule.Tool, utils.AnchorPoint(prereq.Box(), anchor), rule.Anchor)

	case config.RuleDisposal:
		item, ok := a.findItem(func(it scene.Item) bool { return it.Type == rule.Tool && it.SceneDraggable })
		if !ok {
			return nil, fmt.Errorf("step %d: %w: %q", step.Ordinal, ErrSceneItemMissing, rule.Tool)
		}
		container, ok := a.findItem(func(it scene.Item) bool { return it.ImageKey == rule.Container })
		if !ok {
			return nil, fmt.Errorf("step %d: %w: %q", step.Ordinal, ErrSceneItemMissing, rule.Container)
		}
		if _, err := a.t.BeginFromScene(item.Center()); err != nil {
			return nil, err
		}
		out := a.t.Release(container.Center())
		return []Gesture{{Tool: item.Type, At: container.Center(), Outcome: out}}, nil

	case config.RuleTap:
		at, err := a.target(rule.Target)
		if err != nil {
			return nil, err
		}
		return []Gesture{{At: at, Outcome: a.t.OnTap(at)}}, nil

	case config.RuleAction:
		w, h := reg.CanvasSize()
		return a.dropOne(rule.Tool, utils.Point{X: w / 2, Y: h / 2}, "")
	}
	return nil, fmt.Errorf("step %d: %w: %q", step.Ordinal, config.ErrUnknownRuleKind, rule.Kind)
}

// Mistake 放下一个不属于任何步骤的物品，必然被判为拿错工具
func (a *Autopilot) Mistake() Gesture {
	item := scene.Item{Type: mistakeItem, ImageKey: mistakeItem, X: 1, Y: 1, Width: 10, Height: 10}
	return Gesture{Tool: mistakeItem, At: item.Center(), Outcome: a.t.OnGestureReleased(item)}
}

func (a *Autopilot) dropOne(tool string, at utils.Point, anchorName string) ([]Gesture, error) {
	g, err := a.drop(tool, at, anchorName)
	if err != nil {
		return nil, err
	}
	return []Gesture{g}, nil
}

// drop 从托盘拿起工具，使它的锚点正好落在 at 上再松开
func (a *Autopilot) drop(toolID string, at utils.Point, anchorName string) (Gesture, error) {
	reg := a.t.Registry()
	tool, ok := reg.Tool(toolID)
	if !ok {
		return Gesture{}, fmt.Errorf("%w: %q", config.ErrUnknownTool, toolID)
	}
	anchor, err := a.anchor(anchorName)
	if err != nil {
		return Gesture{}, err
	}

	scale := reg.TrayScale()
	center := utils.CenterForAnchor(at, tool.Width*scale, tool.Height*scale, anchor)
	if err := a.t.BeginFromTray(toolID, center); err != nil {
		return Gesture{}, err
	}
	return Gesture{Tool: toolID, At: center, Outcome: a.t.Release(center)}, nil
}

func (a *Autopilot) target(name string) (utils.Point, error) {
	p, ok := a.t.Registry().Target(name)
	if !ok {
		return utils.Point{}, fmt.Errorf("%w: %q", config.ErrUnknownTarget, name)
	}
	return p, nil
}

func (a *Autopilot) anchor(name string) (utils.Point, error) {
	if name == "" {
		name = config.AnchorCenter
	}
	p, ok := a.t.Registry().Anchor(name)
	if !ok {
		return utils.Point{}, fmt.Errorf("%w: %q", config.ErrUnknownAnchor, name)
	}
	return p, nil
}

func (a *Autopilot) findItem(match func(scene.Item) bool) (scene.Item, bool) {
	for _, it := range a.t.VisibleItems() {
		if match(it) {
			return it, true
		}
	}
	return scene.Item{}, false
}
