package game

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager 管理训练器的顶层界面（训练工作区、总结界面）
// 同一时刻只有一个场景接收 Update 和 Draw
type SceneManager struct {
	currentScene Scene
	logger       *log.Logger
	switches     int
}

// NewSceneManager 创建场景管理器，初始没有活动场景
func NewSceneManager(logger *log.Logger) *SceneManager {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &SceneManager{logger: logger.WithPrefix("SceneManager")}
}

// SwitchTo 切换活动场景
// 旧场景实现 SceneLeaver 时先收到 OnLeave，新场景实现 SceneEnterer 时再收到 OnEnter
// 切换到当前场景本身不做任何事
func (sm *SceneManager) SwitchTo(scene Scene) {
	if scene == sm.currentScene {
		return
	}
	if l, ok := sm.currentScene.(SceneLeaver); ok {
		l.OnLeave()
	}
	prev := sm.currentScene
	sm.currentScene = scene
	sm.switches++
	if e, ok := scene.(SceneEnterer); ok {
		e.OnEnter()
	}
	sm.logger.Debug("scene switched", "from", sceneName(prev), "to", sceneName(scene), "switches", sm.switches)
}

// GetCurrentScene 返回当前活动的场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// Switches 返回累计切换次数
func (sm *SceneManager) Switches() int {
	return sm.switches
}

// Update 更新当前场景，deltaTime 单位为秒
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw 绘制当前场景
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}

func sceneName(s Scene) string {
	if s == nil {
		return "none"
	}
	return fmt.Sprintf("%T", s)
}
