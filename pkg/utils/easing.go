package utils

import "math"

// Easing Functions (缓动函数)
//
// 用于场景切换淡入淡出的透明度曲线。
// 所有函数接受进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。

// EaseLinear 线性缓动（无缓动）
func EaseLinear(t float64) float64 {
	return t
}

// EaseInOutCubic 三次方缓入缓出
//
//	t < 0.5: f(t) = 4t³
//	t >= 0.5: f(t) = 1 - (-2t + 2)³ / 2
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Clamp01 将值限制在 [0, 1]
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// FadeOverlayAlpha 计算场景切换遮罩的不透明度
//
// 前半段淡出（遮罩 0 -> 1），后半段淡入（遮罩 1 -> 0），两段都使用 EaseInOutCubic。
// progress 为切换总进度（0..1），超出范围会被截断。
func FadeOverlayAlpha(progress float64) float64 {
	p := Clamp01(progress)
	if p < 0.5 {
		return EaseInOutCubic(p * 2)
	}
	return EaseInOutCubic((1 - p) * 2)
}
