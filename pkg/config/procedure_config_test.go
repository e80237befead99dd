package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundledProcedure = "../../data/procedures/ezio_humeral.yaml"

// minimalYAML 最小合法配置：一个场景、一个工具、一个区域包含步骤
const minimalYAML = `id: mini
name: Mini
targets:
  site: { x: 100, y: 100 }
scenes:
  - id: main
tools:
  - { id: pad, name: Pad, width: 100, height: 100 }
steps:
  - title: Clean
    scene: main
    tools: [pad]
    rule:
      kind: containment
      targets:
        - { tool: pad, target: site, radius: 40, flag: cleaned }
`

func TestLoadProcedureConfig_Bundled(t *testing.T) {
	cfg, err := LoadProcedureConfig(bundledProcedure)
	require.NoError(t, err)

	assert.Equal(t, "ezio-humeral", cfg.ID)
	require.Len(t, cfg.Steps, 10)
	assert.Len(t, cfg.Tools, 10)

	// 目标点与原始布局一致
	assert.Equal(t, PointConfig{X: 400, Y: 176}, cfg.Targets["face"])
	assert.Equal(t, PointConfig{X: 400, Y: 420}, cfg.Targets["hands"])
	assert.Equal(t, PointConfig{X: 384, Y: 300}, cfg.Targets["humeral"])

	kinds := make([]string, 0, len(cfg.Steps))
	for _, s := range cfg.Steps {
		kinds = append(kinds, s.Rule.Kind)
	}
	assert.Equal(t, []string{
		RuleContainment, RuleContainment, RuleAngle, RuleDisposal, RuleContainment,
		RuleChained, RuleChained, RuleAction, RuleTap, RuleAction,
	}, kinds)

	driver, ok := cfg.Tool("io_driver")
	require.True(t, ok)
	assert.True(t, driver.Rotatable)
	assert.Equal(t, "io_driver", driver.Image, "image defaults to the tool id")

	for i, s := range cfg.Steps {
		assert.NotEmpty(t, s.Remedial.Title, "step %d remedial title", i+1)
		assert.NotEmpty(t, s.Remedial.Hints, "step %d remedial hints", i+1)
	}
}

func TestParseProcedureConfig_Defaults(t *testing.T) {
	cfg, err := ParseProcedureConfig([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 800.0, cfg.CanvasWidth)
	assert.Equal(t, 600.0, cfg.CanvasHeight)
	assert.Equal(t, 0.3, cfg.TrayScale)
	assert.Equal(t, 2000, cfg.FeedbackDurationMs)
	assert.Equal(t, 800, cfg.TransitionDurationMs)
	assert.Equal(t, 1500, cfg.AdvanceDelayMs)
	assert.Equal(t, 5.0, cfg.RotationStep)
	assert.Equal(t, 1.8, cfg.CoarsePointerScale)
	assert.Equal(t, PointConfig{X: 0.5, Y: 0.5}, cfg.Anchors[AnchorCenter])
	assert.Equal(t, AnchorCenter, cfg.Steps[0].Rule.Targets[0].Anchor)
}

func TestLoadProcedureConfig_FileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProcedureConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("id: [unterminated"), 0644))
		_, err := LoadProcedureConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})
}

// TestParseProcedureConfig_Invalid 配置错误在加载时暴露，并可用哨兵错误判断
func TestParseProcedureConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr error
		wantMsg string
	}{
		{
			name:    "未知规则类型",
			mutate:  func(s string) string { return strings.Replace(s, "kind: containment", "kind: teleport", 1) },
			wantErr: ErrUnknownRuleKind,
		},
		{
			name:    "未知目标点",
			mutate:  func(s string) string { return strings.Replace(s, "target: site", "target: moon", 1) },
			wantErr: ErrUnknownTarget,
		},
		{
			name:    "未知工具",
			mutate:  func(s string) string { return strings.Replace(s, "tools: [pad]", "tools: [pad, scalpel]", 1) },
			wantErr: ErrUnknownTool,
		},
		{
			name:    "未知场景",
			mutate:  func(s string) string { return strings.Replace(s, "scene: main", "scene: attic", 1) },
			wantErr: ErrUnknownScene,
		},
		{
			name: "未知锚点",
			mutate: func(s string) string {
				return strings.Replace(s, "radius: 40,", "radius: 40, anchor: tip,", 1)
			},
			wantErr: ErrUnknownAnchor,
		},
		{
			name:    "半径非正",
			mutate:  func(s string) string { return strings.Replace(s, "radius: 40", "radius: 0", 1) },
			wantMsg: "radius must be positive",
		},
		{
			name:    "缺少步骤",
			mutate:  func(s string) string { return s[:strings.Index(s, "steps:")] },
			wantMsg: "at least one step is required",
		},
		{
			name:    "非法保留策略",
			mutate:  func(s string) string { return strings.Replace(s, "tools: [pad]\n", "tools: [pad]\n    persistence: hoard\n", 1) },
			wantMsg: "persistence must be one of",
		},
		{
			name: "吸附与 remove 冲突",
			mutate: func(s string) string {
				s = strings.Replace(s, "tools: [pad]\n", "tools: [pad]\n    persistence: remove\n", 1)
				return strings.Replace(s, "flag: cleaned }", "flag: cleaned, snap: { width: 10, height: 10 } }", 1)
			},
			wantMsg: "snap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProcedureConfig([]byte(tt.mutate(minimalYAML)))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.Contains(t, err.Error(), "invalid procedure config")
		})
	}
}

func TestParseProcedureConfig_DisposalNeedsSetup(t *testing.T) {
	yamlText := `id: d
name: D
scenes: [{ id: main }]
steps:
  - title: Dispose
    scene: main
    setup:
      - { type: sharps, x: 10, y: 10, width: 20, height: 20 }
    rule:
      kind: disposal
      tool: stylet
      container: sharps
      flag: disposed
`
	_, err := ParseProcedureConfig([]byte(yamlText))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"stylet" must be declared in setup`)
}
