package config

import (
	"fmt"
	"slices"
)

// validateProcedureConfig 验证流程配置的完整性和合法性
func validateProcedureConfig(cfg *ProcedureConfig) error {
	if cfg.ID == "" {
		return fmt.Errorf("procedure ID is required")
	}
	if cfg.Name == "" {
		return fmt.Errorf("procedure name is required")
	}
	if cfg.TrayScale < 0 || cfg.CoarsePointerScale < 1 {
		return fmt.Errorf("trayScale must be positive and coarsePointerScale at least 1")
	}
	if len(cfg.Scenes) == 0 {
		return fmt.Errorf("at least one scene is required")
	}
	if len(cfg.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for name, a := range cfg.Anchors {
		if a.X < 0 || a.X > 1 || a.Y < 0 || a.Y > 1 {
			return fmt.Errorf("anchor %q: normalized coordinates must be within [0, 1], got (%g, %g)", name, a.X, a.Y)
		}
	}

	scenes := make(map[string]bool, len(cfg.Scenes))
	for i, s := range cfg.Scenes {
		if s.ID == "" {
			return fmt.Errorf("scene %d: id is required", i)
		}
		scenes[s.ID] = true
	}

	seen := make(map[string]bool, len(cfg.Tools))
	for i, t := range cfg.Tools {
		if t.ID == "" {
			return fmt.Errorf("tool %d: id is required", i)
		}
		if seen[t.ID] {
			return fmt.Errorf("tool %q: duplicate id", t.ID)
		}
		seen[t.ID] = true
		if t.Width <= 0 || t.Height <= 0 {
			return fmt.Errorf("tool %q: width and height must be positive", t.ID)
		}
	}

	for i := range cfg.Steps {
		ordinal := i + 1
		if err := validateStep(cfg, &cfg.Steps[i], scenes); err != nil {
			return fmt.Errorf("step %d: %w", ordinal, err)
		}
	}

	return nil
}

func validateStep(cfg *ProcedureConfig, step *StepConfig, scenes map[string]bool) error {
	if step.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !scenes[step.Scene] {
		return fmt.Errorf("%w %q", ErrUnknownScene, step.Scene)
	}
	for _, id := range step.Tools {
		if _, ok := cfg.Tool(id); !ok {
			return fmt.Errorf("tools: %w %q", ErrUnknownTool, id)
		}
	}

	switch step.Persistence {
	case PersistenceKeep, PersistenceRemove, PersistenceNone:
	default:
		return fmt.Errorf("persistence must be one of: keep, remove, got %q", step.Persistence)
	}

	for j, item := range step.Setup {
		if item.Type == "" {
			return fmt.Errorf("setup %d: type is required", j)
		}
		if item.Width <= 0 || item.Height <= 0 {
			return fmt.Errorf("setup %d (%s): width and height must be positive", j, item.Type)
		}
		if item.Target != "" {
			if _, ok := cfg.Targets[item.Target]; !ok {
				return fmt.Errorf("setup %d (%s): %w %q", j, item.Type, ErrUnknownTarget, item.Target)
			}
		}
	}

	return validateRule(cfg, step)
}

func validateRule(cfg *ProcedureConfig, step *StepConfig) error {
	rule := &step.Rule

	if step.Persistence == PersistenceRemove {
		if rule.Snap != nil {
			return fmt.Errorf("rule: snap cannot be combined with persistence remove")
		}
		for _, t := range rule.Targets {
			if t.Snap != nil {
				return fmt.Errorf("rule: snap on target %q cannot be combined with persistence remove", t.Target)
			}
		}
	}
	for j, s := range rule.Spawn {
		if s.Type == "" || s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("rule: spawn %d needs a type and a positive size", j)
		}
	}

	switch rule.Kind {
	case RuleContainment:
		if len(rule.Targets) == 0 {
			return fmt.Errorf("containment rule: at least one target is required")
		}
		for j, t := range rule.Targets {
			if err := requireTool(cfg, step, t.Tool); err != nil {
				return fmt.Errorf("containment target %d: %w", j, err)
			}
			if err := requireTarget(cfg, t.Target); err != nil {
				return fmt.Errorf("containment target %d: %w", j, err)
			}
			if err := requireAnchor(cfg, t.Anchor); err != nil {
				return fmt.Errorf("containment target %d: %w", j, err)
			}
			if t.Radius <= 0 {
				return fmt.Errorf("containment target %d: radius must be positive", j)
			}
			if t.Flag == "" {
				return fmt.Errorf("containment target %d: flag is required", j)
			}
		}

	case RuleAngle:
		if err := requireTool(cfg, step, rule.Tool); err != nil {
			return fmt.Errorf("angle rule: %w", err)
		}
		if err := requireTarget(cfg, rule.Target); err != nil {
			return fmt.Errorf("angle rule: %w", err)
		}
		if err := requireAnchor(cfg, rule.Anchor); err != nil {
			return fmt.Errorf("angle rule: %w", err)
		}
		if rule.Radius <= 0 || rule.AngleTolerance <= 0 {
			return fmt.Errorf("angle rule: radius and angleTolerance must be positive")
		}
		if rule.Flag == "" {
			return fmt.Errorf("angle rule: flag is required")
		}

	case RuleChained:
		if err := requireTool(cfg, step, rule.Tool); err != nil {
			return fmt.Errorf("chained rule: %w", err)
		}
		if rule.Prerequisite == "" {
			return fmt.Errorf("chained rule: prerequisite is required")
		}
		if err := requireAnchor(cfg, rule.Anchor); err != nil {
			return fmt.Errorf("chained rule: %w", err)
		}
		if err := requireAnchor(cfg, rule.PrerequisiteAnchor); err != nil {
			return fmt.Errorf("chained rule: prerequisite %w", err)
		}
		if rule.Radius <= 0 {
			return fmt.Errorf("chained rule: radius must be positive")
		}
		if rule.Flag == "" {
			return fmt.Errorf("chained rule: flag is required")
		}

	case RuleDisposal:
		if rule.Tool == "" || rule.Container == "" {
			return fmt.Errorf("disposal rule: tool and container are required")
		}
		// 场景自愈依赖步骤初始化物品，二者都必须在 setup 中声明
		for _, want := range []string{rule.Tool, rule.Container} {
			if !slices.ContainsFunc(step.Setup, func(s SetupItemConfig) bool { return s.Image == want }) {
				return fmt.Errorf("disposal rule: %q must be declared in setup", want)
			}
		}
		if rule.Flag == "" && len(rule.SetFlags) == 0 {
			return fmt.Errorf("disposal rule: flag is required")
		}

	case RuleTap:
		if err := requireTarget(cfg, rule.Target); err != nil {
			return fmt.Errorf("tap rule: %w", err)
		}
		if rule.Radius <= 0 {
			return fmt.Errorf("tap rule: radius must be positive")
		}
		if rule.Flag == "" {
			return fmt.Errorf("tap rule: flag is required")
		}

	case RuleAction:
		if err := requireTool(cfg, step, rule.Tool); err != nil {
			return fmt.Errorf("action rule: %w", err)
		}
		if rule.Flag == "" {
			return fmt.Errorf("action rule: flag is required")
		}

	default:
		return fmt.Errorf("%w %q", ErrUnknownRuleKind, rule.Kind)
	}

	return nil
}

// requireTool 工具必须在目录中，且出现在本步骤的托盘里
func requireTool(cfg *ProcedureConfig, step *StepConfig, id string) error {
	if _, ok := cfg.Tool(id); !ok {
		return fmt.Errorf("%w %q", ErrUnknownTool, id)
	}
	if !slices.Contains(step.Tools, id) {
		return fmt.Errorf("tool %q is not offered in this step's tray", id)
	}
	return nil
}

func requireTarget(cfg *ProcedureConfig, name string) error {
	if _, ok := cfg.Targets[name]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownTarget, name)
	}
	return nil
}

func requireAnchor(cfg *ProcedureConfig, name string) error {
	if _, ok := cfg.Anchors[name]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownAnchor, name)
	}
	return nil
}
