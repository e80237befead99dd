package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/embedded"
)

// 规则类型
const (
	RuleContainment = "containment" // 区域包含：物品中心（或锚点）落在目标半径内
	RuleAngle       = "angle"       // 角度门控：旋转后的针尖在目标半径内且角度偏差在容差内
	RuleChained     = "chained"     // 锚点链：目标是已放置物品上的锚点
	RuleDisposal    = "disposal"    // 丢弃：放下点落在容器矩形内，失败则物品回到原位
	RuleTap         = "tap"         // 点击评估：没有拖拽物品，直接点击目标
	RuleAction      = "action"      // 动作：只检查物品类型和前置标记，不做几何判定
)

// 物品保留策略
const (
	PersistenceKeep   = "keep"   // 接受后把吸附物品放入永久物品集合
	PersistenceRemove = "remove" // 接受后物品消失，并移除规则声明的道具
	PersistenceNone   = ""       // 未声明：物品直接丢弃
)

// ProcedureConfig 训练流程配置
// 描述一个完整的操作流程：工作区尺寸、固定目标点、锚点、工具目录和有序步骤列表
type ProcedureConfig struct {
	ID         string `yaml:"id"`         // 流程ID，如 "ezio-humeral"
	Name       string `yaml:"name"`       // 任务名称
	TaskNumber string `yaml:"taskNumber"` // 任务编号（仅用于显示）

	CanvasWidth  float64 `yaml:"canvasWidth"`  // 工作区宽度，默认 800
	CanvasHeight float64 `yaml:"canvasHeight"` // 工作区高度，默认 600

	TrayScale            float64 `yaml:"trayScale"`            // 从工具托盘拾取时的缩放比例，默认 0.3
	FeedbackDurationMs   int     `yaml:"feedbackDurationMs"`   // 反馈文字显示时长，默认 2000
	TransitionDurationMs int     `yaml:"transitionDurationMs"` // 场景切换淡入淡出总时长，默认 800
	AdvanceDelayMs       int     `yaml:"advanceDelayMs"`       // 接受后推进到下一步的默认延迟，默认 1500
	RotationStep         float64 `yaml:"rotationStep"`         // 每次旋转按键的角度，默认 5
	CoarsePointerScale   float64 `yaml:"coarsePointerScale"`   // 粗指针（触屏）设备的容差放大系数，默认 1.8

	Targets map[string]PointConfig `yaml:"targets"` // 固定目标点（场景坐标）
	Anchors map[string]PointConfig `yaml:"anchors"` // 归一化锚点（0..1）
	Scenes  []SceneConfig          `yaml:"scenes"`
	Tools   []ToolConfig           `yaml:"tools"`
	Steps   []StepConfig           `yaml:"steps"` // 有序步骤，序号从 1 开始
}

// PointConfig 一个二维坐标
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SceneConfig 场景（背景）定义
type SceneConfig struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Background string `yaml:"background"` // 背景图片键（可选）
}

// ToolConfig 工具目录条目
type ToolConfig struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Image     string  `yaml:"image"`     // 图片键，默认与 ID 相同
	Width     float64 `yaml:"width"`     // 图片原始宽度
	Height    float64 `yaml:"height"`    // 图片原始高度
	Rotatable bool    `yaml:"rotatable"` // 拖拽时是否允许旋转（Q/E）
}

// StepConfig 单个步骤定义
type StepConfig struct {
	Title       string            `yaml:"title"`
	Instruction string            `yaml:"instruction"`
	Scene       string            `yaml:"scene"`
	Tools       []string          `yaml:"tools"`       // 本步骤托盘中出现的工具
	Persistence string            `yaml:"persistence"` // keep | remove | 空
	Setup       []SetupItemConfig `yaml:"setup"`       // 进入步骤时生成的步骤作用域物品
	Rule        RuleConfig        `yaml:"rule"`
	Remedial    RemedialConfig    `yaml:"remedial"`
}

// SetupItemConfig 步骤初始化时放入场景的物品
// 位置可以用 target 指定（固定目标点），也可以直接给出 x/y
type SetupItemConfig struct {
	Type           string  `yaml:"type"`
	Image          string  `yaml:"image"` // 默认与 Type 相同
	Target         string  `yaml:"target"`
	X              float64 `yaml:"x"`
	Y              float64 `yaml:"y"`
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	SceneDraggable bool    `yaml:"sceneDraggable"`
}

// RuleConfig 步骤的校验规则（按 Kind 区分的带标签变体）
// 各字段是否生效取决于 Kind，校验在 validateRule 中完成
type RuleConfig struct {
	Kind string `yaml:"kind"`

	// 通用
	Tool           string   `yaml:"tool"`           // 期望的物品类型（containment 使用 targets 中的 tool）
	Target         string   `yaml:"target"`         // 固定目标点名称（angle、tap）
	Anchor         string   `yaml:"anchor"`         // 被拖拽物品上参与判定的锚点，默认 center
	Radius         float64  `yaml:"radius"`         // 容差半径（像素）
	Flag           string   `yaml:"flag"`           // 接受时设置的状态标记
	SetFlags       []string `yaml:"setFlags"`       // 接受时额外设置的标记
	ClearFlags     []string `yaml:"clearFlags"`     // 接受时清除的标记
	RequiresFlag   string   `yaml:"requiresFlag"`   // 前置标记
	Removes        []string `yaml:"removes"`        // 接受时移除的永久物品（按图片键）
	AdvanceDelayMs int      `yaml:"advanceDelayMs"` // 覆盖流程默认推进延迟

	// angle
	AngleTolerance float64 `yaml:"angleTolerance"` // 允许偏离竖直方向的角度（度）

	// chained
	Prerequisite       string `yaml:"prerequisite"`       // 前置永久物品（图片键）
	PrerequisiteAnchor string `yaml:"prerequisiteAnchor"` // 前置物品上的锚点

	// disposal
	Container string `yaml:"container"` // 容器物品（图片键，步骤作用域）

	// containment
	Targets    []TargetRuleConfig `yaml:"targets"`
	Completion *CompletionConfig  `yaml:"completion"`

	Snap  *SnapConfig   `yaml:"snap"`
	Spawn []SpawnConfig `yaml:"spawn"`

	Messages MessageConfig `yaml:"messages"`
}

// TargetRuleConfig 区域包含规则的一个子目标
type TargetRuleConfig struct {
	Tool     string        `yaml:"tool"`
	Target   string        `yaml:"target"`
	Anchor   string        `yaml:"anchor"`
	Radius   float64       `yaml:"radius"`
	Flag     string        `yaml:"flag"`
	Snap     *SnapConfig   `yaml:"snap"`
	Messages MessageConfig `yaml:"messages"`
}

// CompletionConfig 多个子目标全部完成后的分段提示
type CompletionConfig struct {
	Message        string `yaml:"message"`
	MessageDelayMs int    `yaml:"messageDelayMs"` // 最后一个子目标完成到显示完成提示的延迟
	AdvanceDelayMs int    `yaml:"advanceDelayMs"` // 显示完成提示到推进的延迟
}

// SnapConfig 接受后在目标处放置的吸附物品
type SnapConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Scoped bool    `yaml:"scoped"` // 吸附物品只在当前步骤可见
}

// SpawnConfig 接受后在目标处生成的道具（如插入后留下的导管座）
type SpawnConfig struct {
	Type   string  `yaml:"type"`
	Image  string  `yaml:"image"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// MessageConfig 规则的反馈文本
type MessageConfig struct {
	Success          string `yaml:"success"`
	WrongTool        string `yaml:"wrongTool"`
	Failure          string `yaml:"failure"`          // 位置不符合要求
	Angle            string `yaml:"angle"`            // 角度不符合要求，%.0f 占位为偏差角度
	Prerequisite     string `yaml:"prerequisite"`     // 前置条件不满足
	ContainerMissing string `yaml:"containerMissing"` // 容器缺失（场景自愈）
}

// RemedialConfig 补救指导
type RemedialConfig struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Hints       []string `yaml:"hints"`
}

// LoadProcedureConfig 从YAML文件加载流程配置
func LoadProcedureConfig(path string) (*ProcedureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read procedure config file %s: %w", path, err)
	}

	cfg, err := ParseProcedureConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseProcedureConfig 解析YAML数据，应用默认值并校验
// 嵌入资源和测试直接使用此函数
func ParseProcedureConfig(data []byte) (*ProcedureConfig, error) {
	var cfg ProcedureConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse procedure config YAML: %w", err)
	}

	applyProcedureDefaults(&cfg)

	if err := validateProcedureConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid procedure config: %w", err)
	}

	return &cfg, nil
}

// Tool 按ID查找工具
func (c *ProcedureConfig) Tool(id string) (ToolConfig, bool) {
	for _, t := range c.Tools {
		if t.ID == id {
			return t, true
		}
	}
	return ToolConfig{}, false
}

// applyProcedureDefaults 为缺失的可选字段设置默认值
func applyProcedureDefaults(cfg *ProcedureConfig) {
	if cfg.CanvasWidth == 0 {
		cfg.CanvasWidth = 800
	}
	if cfg.CanvasHeight == 0 {
		cfg.CanvasHeight = 600
	}
	if cfg.TrayScale == 0 {
		cfg.TrayScale = 0.3
	}
	if cfg.FeedbackDurationMs == 0 {
		cfg.FeedbackDurationMs = 2000
	}
	if cfg.TransitionDurationMs == 0 {
		cfg.TransitionDurationMs = 800
	}
	if cfg.AdvanceDelayMs == 0 {
		cfg.AdvanceDelayMs = 1500
	}
	if cfg.RotationStep == 0 {
		cfg.RotationStep = 5
	}
	if cfg.CoarsePointerScale == 0 {
		cfg.CoarsePointerScale = 1.8
	}

	// center 锚点总是可用
	if cfg.Anchors == nil {
		cfg.Anchors = make(map[string]PointConfig)
	}
	if _, ok := cfg.Anchors[AnchorCenter]; !ok {
		cfg.Anchors[AnchorCenter] = PointConfig{X: 0.5, Y: 0.5}
	}

	for i := range cfg.Tools {
		if cfg.Tools[i].Image == "" {
			cfg.Tools[i].Image = cfg.Tools[i].ID
		}
	}

	for i := range cfg.Steps {
		step := &cfg.Steps[i]
		for j := range step.Setup {
			if step.Setup[j].Image == "" {
				step.Setup[j].Image = step.Setup[j].Type
			}
		}
		rule := &step.Rule
		if rule.Anchor == "" {
			rule.Anchor = AnchorCenter
		}
		if rule.Kind == RuleChained && rule.PrerequisiteAnchor == "" {
			rule.PrerequisiteAnchor = AnchorCenter
		}
		for j := range rule.Targets {
			if rule.Targets[j].Anchor == "" {
				rule.Targets[j].Anchor = AnchorCenter
			}
		}
		for j := range rule.Spawn {
			if rule.Spawn[j].Image == "" {
				rule.Spawn[j].Image = rule.Spawn[j].Type
			}
		}
	}
}

// LoadProcedure 按路径加载流程配置
// data/ 下且嵌入资源中存在的路径从嵌入资源读取，其余从磁盘读取
func LoadProcedure(path string) (*ProcedureConfig, error) {
	if embedded.IsEmbeddedPath(path) && embedded.Exists(path) {
		data, err := embedded.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded procedure config %s: %w", path, err)
		}
		cfg, err := ParseProcedureConfig(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return cfg, nil
	}
	return LoadProcedureConfig(path)
}

// ListEmbeddedProcedures 列出嵌入资源中的全部流程配置路径
func ListEmbeddedProcedures() ([]string, error) {
	return embedded.Glob("data/procedures/*.yaml")
}
