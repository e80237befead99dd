package game

import (
	"fmt"
	"math"
	"time"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

// Tool 工具目录条目（不可变）
type Tool struct {
	ID        string
	Name      string
	ImageKey  string
	Width     float64
	Height    float64
	Rotatable bool
}

// SetupItem 进入步骤时放入场景的步骤作用域物品（位置已解析）
type SetupItem struct {
	Type           string
	ImageKey       string
	Position       utils.Point
	Width          float64
	Height         float64
	SceneDraggable bool
}

// Remedial 补救指导
type Remedial struct {
	Title       string
	Description string
	Hints       []string
}

// Step 步骤定义（加载后不可变）
type Step struct {
	Ordinal     int
	Title       string
	Instruction string
	Scene       string
	Tools       []string
	Persistence string
	Setup       []SetupItem
	// Rule 校验规则配置；半径已按指针精度缩放
	Rule     config.RuleConfig
	Remedial Remedial
}

// HasTool 判断工具是否出现在本步骤的托盘中
func (s Step) HasTool(id string) bool {
	for _, t := range s.Tools {
		if t == id {
			return true
		}
	}
	return false
}

// RegistryOptions 构建步骤注册表的选项
type RegistryOptions struct {
	// CoarsePointer 为 true 时所有容差半径乘以流程配置的粗指针系数（四舍五入到整数像素）
	CoarsePointer bool
}

// StepRegistry 有序、不可变的步骤目录
type StepRegistry struct {
	procedureID string
	name        string
	taskNumber  string

	canvasWidth  float64
	canvasHeight float64
	trayScale    float64
	rotationStep float64

	feedbackDuration   time.Duration
	transitionDuration time.Duration
	advanceDelay       time.Duration

	steps   []Step
	tools   map[string]Tool
	order   []string
	targets map[string]utils.Point
	anchors map[string]utils.Point
	scenes  map[string]config.SceneConfig
}

// NewStepRegistry 从流程配置构建步骤注册表
// 配置已经过 config 包校验；这里只做单位换算和位置解析
func NewStepRegistry(cfg *config.ProcedureConfig, opts RegistryOptions) *StepRegistry {
	r := &StepRegistry{
		procedureID:        cfg.ID,
		name:               cfg.Name,
		taskNumber:         cfg.TaskNumber,
		canvasWidth:        cfg.CanvasWidth,
		canvasHeight:       cfg.CanvasHeight,
		trayScale:          cfg.TrayScale,
		rotationStep:       cfg.RotationStep,
		feedbackDuration:   millis(cfg.FeedbackDurationMs),
		transitionDuration: millis(cfg.TransitionDurationMs),
		advanceDelay:       millis(cfg.AdvanceDelayMs),
		tools:              make(map[string]Tool, len(cfg.Tools)),
		targets:            make(map[string]utils.Point, len(cfg.Targets)),
		anchors:            make(map[string]utils.Point, len(cfg.Anchors)),
		scenes:             make(map[string]config.SceneConfig, len(cfg.Scenes)),
	}

	for _, t := range cfg.Tools {
		r.tools[t.ID] = Tool{
			ID:        t.ID,
			Name:      t.Name,
			ImageKey:  t.Image,
			Width:     t.Width,
			Height:    t.Height,
			Rotatable: t.Rotatable,
		}
		r.order = append(r.order, t.ID)
	}
	for name, p := range cfg.Targets {
		r.targets[name] = utils.QuantizePoint(utils.Point{X: p.X, Y: p.Y})
	}
	for name, a := range cfg.Anchors {
		r.anchors[name] = utils.Point{X: a.X, Y: a.Y}
	}
	for _, s := range cfg.Scenes {
		r.scenes[s.ID] = s
	}

	scale := 1.0
	if opts.CoarsePointer {
		scale = cfg.CoarsePointerScale
	}

	r.steps = make([]Step, 0, len(cfg.Steps))
	for i, sc := range cfg.Steps {
		step := Step{
			Ordinal:     i + 1,
			Title:       sc.Title,
			Instruction: sc.Instruction,
			Scene:       sc.Scene,
			Tools:       append([]string(nil), sc.Tools...),
			Persistence: sc.Persistence,
			Rule:        scaleRule(sc.Rule, scale),
			Remedial: Remedial{
				Title:       sc.Remedial.Title,
				Description: sc.Remedial.Description,
				Hints:       append([]string(nil), sc.Remedial.Hints...),
			},
		}
		for _, item := range sc.Setup {
			pos := utils.Point{X: item.X, Y: item.Y}
			if item.Target != "" {
				pos = r.targets[item.Target]
			}
			step.Setup = append(step.Setup, SetupItem{
				Type:           item.Type,
				ImageKey:       item.Image,
				Position:       utils.QuantizePoint(pos),
				Width:          item.Width,
				Height:         item.Height,
				SceneDraggable: item.SceneDraggable,
			})
		}
		r.steps = append(r.steps, step)
	}

	return r
}

// scaleRule 按指针精度缩放容差半径（角度容差不变）
func scaleRule(rule config.RuleConfig, scale float64) config.RuleConfig {
	targets := make([]config.TargetRuleConfig, len(rule.Targets))
	copy(targets, rule.Targets)
	rule.Targets = targets

	if scale == 1 {
		return rule
	}
	rule.Radius = math.Round(rule.Radius * scale)
	for i := range rule.Targets {
		rule.Targets[i].Radius = math.Round(rule.Targets[i].Radius * scale)
	}
	return rule
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// StepAt 返回指定序号的步骤
// 序号越界是程序错误（流程在最后一步之后只会进入完成状态），直接 panic
func (r *StepRegistry) StepAt(ordinal int) Step {
	if ordinal < 1 || ordinal > len(r.steps) {
		panic(fmt.Sprintf("step ordinal %d out of range [1, %d]", ordinal, len(r.steps)))
	}
	return r.steps[ordinal-1]
}

// Len 返回步骤数量
func (r *StepRegistry) Len() int {
	return len(r.steps)
}

// First 返回第一步
func (r *StepRegistry) First() Step {
	return r.StepAt(1)
}

// Steps 返回全部步骤的副本
func (r *StepRegistry) Steps() []Step {
	return append([]Step(nil), r.steps...)
}

// Tool 按ID查找工具
func (r *StepRegistry) Tool(id string) (Tool, bool) {
	t, ok := r.tools[id]
	return t, ok
}

// Tools 按配置顺序返回全部工具
func (r *StepRegistry) Tools() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, id := range r.order {
		tools = append(tools, r.tools[id])
	}
	return tools
}

// Target 按名称查找固定目标点
func (r *StepRegistry) Target(name string) (utils.Point, bool) {
	p, ok := r.targets[name]
	return p, ok
}

// Anchor 按名称查找归一化锚点
func (r *StepRegistry) Anchor(name string) (utils.Point, bool) {
	a, ok := r.anchors[name]
	return a, ok
}

// Scene 按ID查找场景定义
func (r *StepRegistry) Scene(id string) (config.SceneConfig, bool) {
	s, ok := r.scenes[id]
	return s, ok
}

// ProcedureID 返回流程ID
func (r *StepRegistry) ProcedureID() string { return r.procedureID }

// Name 返回任务名称
func (r *StepRegistry) Name() string { return r.name }

// TaskNumber 返回任务编号
func (r *StepRegistry) TaskNumber() string { return r.taskNumber }

// CanvasSize 返回工作区尺寸
func (r *StepRegistry) CanvasSize() (float64, float64) {
	return r.canvasWidth, r.canvasHeight
}

// TrayScale 返回托盘拾取缩放比例
func (r *StepRegistry) TrayScale() float64 { return r.trayScale }

// RotationStep 返回每次旋转按键的角度
func (r *StepRegistry) RotationStep() float64 { return r.rotationStep }

// FeedbackDuration 返回反馈文字显示时长
func (r *StepRegistry) FeedbackDuration() time.Duration { return r.feedbackDuration }

// TransitionDuration 返回场景切换总时长
func (r *StepRegistry) TransitionDuration() time.Duration { return r.transitionDuration }

// AdvanceDelay 返回默认推进延迟
func (r *StepRegistry) AdvanceDelay() time.Duration { return r.advanceDelay }
