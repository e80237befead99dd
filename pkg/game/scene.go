package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 是训练器的一个界面
type Scene interface {
	// Update 推进场景逻辑，deltaTime 为距上一帧的秒数
	Update(deltaTime float64)
	// Draw 绘制到 screen
	Draw(screen *ebiten.Image)
}

// SceneEnterer 场景成为活动场景时收到 OnEnter
type SceneEnterer interface {
	OnEnter()
}

// SceneLeaver 场景被切走时收到 OnLeave
type SceneLeaver interface {
	OnLeave()
}
