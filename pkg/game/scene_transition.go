package game

import (
	"time"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

// SceneTransition 工作区背景场景的淡出/淡入切换
//
// 纯表现层：流程状态中的场景在推进时立即改变，这里只决定屏幕上显示哪个背景，
// 以及遮罩的不透明度。前半段淡出旧场景，中点切换，后半段淡入新场景。
type SceneTransition struct {
	duration time.Duration

	displayed string
	pending   string
	start     time.Time
	active    bool
}

// NewSceneTransition 创建场景切换器
func NewSceneTransition(duration time.Duration) *SceneTransition {
	return &SceneTransition{duration: duration}
}

// SetImmediate 立即切换到场景（无淡入淡出），用于开始新的运行
func (t *SceneTransition) SetImmediate(scene string) {
	t.displayed = scene
	t.pending = ""
	t.active = false
}

// TransitionTo 开始切换到新场景
// 切换进行中再次调用时，以最新目标为准并重新计时
func (t *SceneTransition) TransitionTo(scene string, now time.Time) {
	if scene == t.displayed && !t.active {
		return
	}
	if t.duration <= 0 {
		t.SetImmediate(scene)
		return
	}
	t.pending = scene
	t.start = now
	t.active = true
}

// Update 推进切换进度，返回切换是否仍在进行
func (t *SceneTransition) Update(now time.Time) bool {
	if !t.active {
		return false
	}
	elapsed := now.Sub(t.start)
	if elapsed >= t.duration/2 && t.pending != "" {
		t.displayed = t.pending
		t.pending = ""
	}
	if elapsed >= t.duration {
		t.active = false
	}
	return t.active
}

// Displayed 返回当前显示的场景
func (t *SceneTransition) Displayed() string {
	return t.displayed
}

// Active 返回切换是否进行中
func (t *SceneTransition) Active() bool {
	return t.active
}

// OverlayAlpha 返回遮罩不透明度（0 表示完全可见，1 表示完全遮住）
func (t *SceneTransition) OverlayAlpha(now time.Time) float64 {
	if !t.active || t.duration <= 0 {
		return 0
	}
	progress := float64(now.Sub(t.start)) / float64(t.duration)
	return utils.FadeOverlayAlpha(progress)
}
