// Package app 提供训练器窗口的核心包装器
//
// 该包把训练器、训练场景和总结界面组装成一个 ebiten.Game，
// 命令行的 run 子命令通过 NewApp() 创建并交给 ebiten.RunGame。
package app

import (
	"image/color"
	"io"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scenes"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/trainer"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

// Config 定义应用启动配置
type Config struct {
	// Settings 运行时设置（指针精度、调试开关、窗口）
	Settings *config.Settings
	// Procedure 已加载并校验过的流程配置
	Procedure *config.ProcedureConfig
	// Logger 日志，默认丢弃
	Logger *log.Logger
	// Hooks 训练器观察回调（指标等）
	Hooks trainer.Hooks
	// Clock 时间源，默认系统时钟
	Clock game.Clock
}

// App 是训练器窗口的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	trainer      *trainer.Trainer
	training     *scenes.TrainingScene
	logger       *log.Logger

	screenWidth  int
	screenHeight int
	windowScale  float64

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建训练器窗口
func NewApp(cfg Config) (*App, error) {
	if cfg.Settings == nil {
		cfg.Settings = config.DefaultSettings()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	tr, err := trainer.New(cfg.Procedure, trainer.Options{
		Clock:         cfg.Clock,
		Logger:        cfg.Logger,
		// 触屏设备默认放大容差
		CoarsePointer: cfg.Settings.CoarsePointer || utils.IsMobile(),
		Hooks:         cfg.Hooks,
	})
	if err != nil {
		return nil, err
	}

	w, h := tr.Registry().CanvasSize()
	sw, sh := config.ScreenSize(w, h)
	a := &App{
		sceneManager: game.NewSceneManager(cfg.Logger),
		trainer:      tr,
		logger:       cfg.Logger.WithPrefix("App"),
		screenWidth:  sw,
		screenHeight: sh,
		windowScale:  cfg.Settings.Window.Scale,
	}

	a.training = scenes.NewTrainingScene(tr, cfg.Settings.Debug, cfg.Logger)
	a.training.SetOnComplete(a.showDebrief)
	a.sceneManager.SwitchTo(a.training)

	return a, nil
}

// showDebrief 运行完成后切换到总结界面
func (a *App) showDebrief(snap game.ProcedureSnapshot) {
	a.logger.Info("run complete", "errors", snap.Errors, "elapsed", snap.Elapsed)
	a.sceneManager.SwitchTo(scenes.NewDebriefScene(a.trainer.Registry().Name(), snap, a.restart))
}

// restart 从总结界面回到训练场景并重新开始
func (a *App) restart() {
	a.training.Restart()
	a.sceneManager.SwitchTo(a.training)
}

// WindowSize 返回按设置缩放后的窗口尺寸
func (a *App) WindowSize() (int, int) {
	return int(float64(a.screenWidth) * a.windowScale), int(float64(a.screenHeight) * a.windowScale)
}

// Update 更新训练逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.WindowSize())
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			a.logger.Debug("exit fullscreen, resetting window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.screenWidth, a.screenHeight
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// Trainer 返回训练器
func (a *App) Trainer() *trainer.Trainer {
	return a.trainer
}
