package utils

import (
	"math"
	"testing"
)

// TestEaseInOutCubic 测试三次方缓入缓出函数
func TestEaseInOutCubic(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"中点", 0.5, 0.5},
		{"终点", 1.0, 1.0},
		{"四分之一", 0.25, 0.0625}, // 4 * 0.25^3
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseInOutCubic(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseInOutCubic(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFadeOverlayAlpha 遮罩在中点完全不透明，两端完全透明
func TestFadeOverlayAlpha(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		expected float64
	}{
		{"开始", 0, 0},
		{"中点", 0.5, 1},
		{"结束", 1, 0},
		{"越界截断-负", -0.3, 0},
		{"越界截断-正", 1.7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FadeOverlayAlpha(tt.progress)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("FadeOverlayAlpha(%v) = %v, 期望 %v", tt.progress, result, tt.expected)
			}
		})
	}

	// 对称性
	if math.Abs(FadeOverlayAlpha(0.2)-FadeOverlayAlpha(0.8)) > 1e-9 {
		t.Errorf("fade should be symmetric around the midpoint")
	}
}
