package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultProcedurePath 内置流程配置在嵌入资源中的路径
const DefaultProcedurePath = "data/procedures/ezio_humeral.yaml"

// Settings 运行时设置
// 来源优先级：命令行参数 > IOTRAINER_* 环境变量 > 配置文件 > 默认值
type Settings struct {
	// Procedure 流程配置文件路径；以 "data/" 开头时从嵌入资源读取
	Procedure string `mapstructure:"procedure"`
	// Verbose 输出调试日志
	Verbose bool `mapstructure:"verbose"`
	// CoarsePointer 触屏等粗指针设备，放大所有容差半径
	CoarsePointer bool `mapstructure:"coarse_pointer"`
	// MetricsAddr Prometheus 指标监听地址，空表示不启动
	MetricsAddr string `mapstructure:"metrics_addr"`

	Debug  DebugSettings  `mapstructure:"debug"`
	Window WindowSettings `mapstructure:"window"`
}

// DebugSettings 调试选项
type DebugSettings struct {
	ShowHotspots  bool `mapstructure:"show_hotspots"`   // 显示目标热区
	ShowNeedleTip bool `mapstructure:"show_needle_tip"` // 显示插入器针尖
	AllowSkip     bool `mapstructure:"allow_skip"`      // 允许 N 键跳过当前步骤
}

// WindowSettings 窗口选项
type WindowSettings struct {
	Scale float64 `mapstructure:"scale"` // 窗口相对工作区的缩放
	Title string  `mapstructure:"title"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() *Settings {
	return &Settings{
		Procedure: DefaultProcedurePath,
		Window: WindowSettings{
			Scale: 1,
			Title: "IO Procedural Trainer",
		},
	}
}

// SetDefaults 将默认设置注册到 viper
func SetDefaults(v *viper.Viper) {
	defaults := DefaultSettings()

	v.SetDefault("procedure", defaults.Procedure)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("coarse_pointer", defaults.CoarsePointer)
	v.SetDefault("metrics_addr", defaults.MetricsAddr)

	v.SetDefault("debug.show_hotspots", defaults.Debug.ShowHotspots)
	v.SetDefault("debug.show_needle_tip", defaults.Debug.ShowNeedleTip)
	v.SetDefault("debug.allow_skip", defaults.Debug.AllowSkip)

	v.SetDefault("window.scale", defaults.Window.Scale)
	v.SetDefault("window.title", defaults.Window.Title)
}

// ConfigureEnv 绑定 IOTRAINER_* 环境变量
// 嵌套键中的点替换为下划线，如 IOTRAINER_DEBUG_SHOW_HOTSPOTS 对应 debug.show_hotspots
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix("IOTRAINER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadSettings 从 viper 读取设置并校验
func LoadSettings(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.Procedure == "" {
		return nil, fmt.Errorf("procedure path is required")
	}
	if s.Window.Scale <= 0 {
		return nil, fmt.Errorf("window.scale must be positive, got %g", s.Window.Scale)
	}
	return &s, nil
}
