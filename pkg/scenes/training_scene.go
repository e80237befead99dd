package scenes

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/systems"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/trainer"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

// command 键盘命令
type command int

const (
	commandRotateLeft command = iota
	commandRotateRight
	commandSkip
	commandRestart
)

// TrainingScene 训练工作区
// 把指针事件翻译成拖拽系统的调用，并绘制场景、托盘、反馈和计时器
type TrainingScene struct {
	trainer *trainer.Trainer
	debug   config.DebugSettings
	logger  *log.Logger
	pointer *utils.PointerTracker

	canvasWidth  float64
	canvasHeight float64

	// pressedTray 本次按下发生在工具托盘上
	pressedTray bool
	// reported 本次运行的完成事件已上报
	reported   bool
	onComplete func(game.ProcedureSnapshot)
}

// NewTrainingScene 创建训练场景
func NewTrainingScene(tr *trainer.Trainer, debug config.DebugSettings, logger *log.Logger) *TrainingScene {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	w, h := tr.Registry().CanvasSize()
	return &TrainingScene{
		trainer:      tr,
		debug:        debug,
		logger:       logger.WithPrefix("TrainingScene"),
		pointer:      utils.NewPointerTracker(),
		canvasWidth:  w,
		canvasHeight: h,
	}
}

// SetOnComplete 设置运行完成时的回调（每次运行只调用一次）
func (s *TrainingScene) SetOnComplete(fn func(game.ProcedureSnapshot)) {
	s.onComplete = fn
}

// Restart 放弃当前运行并从第一步重新开始
func (s *TrainingScene) Restart() {
	s.trainer.ResetRun()
	s.pressedTray = false
	s.reported = false
}

// OnLeave 切走时放弃进行中的拖拽
func (s *TrainingScene) OnLeave() {
	if s.trainer.Cancel() {
		s.logger.Debug("drag cancelled on leave")
	}
	s.pointer.Reset()
	s.pressedTray = false
}

// Update 处理输入并推进训练器
func (s *TrainingScene) Update(deltaTime float64) {
	for _, cmd := range s.pollCommands() {
		s.apply(cmd)
	}
	s.handlePointer(s.pointer.Poll())
	s.tick()
}

func (s *TrainingScene) tick() {
	s.trainer.Update()
	if s.trainer.Complete() && !s.reported {
		s.reported = true
		if s.onComplete != nil {
			s.onComplete(s.trainer.Snapshot())
		}
	}
}

func (s *TrainingScene) pollCommands() []command {
	var cmds []command
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		cmds = append(cmds, commandRotateLeft)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		cmds = append(cmds, commandRotateRight)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		cmds = append(cmds, commandSkip)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		cmds = append(cmds, commandRestart)
	}
	return cmds
}

func (s *TrainingScene) apply(cmd command) {
	step := s.trainer.Registry().RotationStep()
	switch cmd {
	case commandRotateLeft:
		s.trainer.Rotate(-step)
	case commandRotateRight:
		s.trainer.Rotate(step)
	case commandSkip:
		if !s.debug.AllowSkip {
			return
		}
		s.trainer.Advance()
	case commandRestart:
		s.Restart()
	}
}

// handlePointer 处理一次指针事件（屏幕坐标）
func (s *TrainingScene) handlePointer(ev utils.PointerEvent) {
	sx, sy := config.ScreenToScene(ev.X, ev.Y)
	p := utils.Point{X: sx, Y: sy}

	switch ev.Phase {
	case utils.PointerDown:
		s.pressedTray = false
		tools := s.trainer.TrayTools()
		if i, ok := config.TraySlotAt(ev.X, ev.Y, s.canvasWidth, len(tools)); ok {
			s.pressedTray = true
			s.logIgnored(s.trainer.BeginFromTray(tools[i].ID, p))
			return
		}
		if s.inCanvas(ev) {
			_, err := s.trainer.BeginFromScene(p)
			s.logIgnored(err)
		}

	case utils.PointerMove:
		if s.trainer.Dragging() {
			s.trainer.Move(p)
		}

	case utils.PointerUp:
		switch {
		case s.trainer.Dragging() && s.inCanvas(ev):
			s.trainer.Release(p)
		case s.trainer.Dragging():
			// 放回托盘或拖出工作区视为放弃
			s.trainer.Cancel()
		case ev.Tap && !s.pressedTray && s.inCanvas(ev):
			s.trainer.OnTap(p)
		}
		s.pressedTray = false

	case utils.PointerCancel:
		s.trainer.Cancel()
		s.pressedTray = false
	}
}

func (s *TrainingScene) inCanvas(ev utils.PointerEvent) bool {
	return config.InCanvas(ev.X, ev.Y, s.canvasWidth, s.canvasHeight)
}

func (s *TrainingScene) logIgnored(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, systems.ErrRunComplete) || errors.Is(err, systems.ErrToolUnavailable) {
		s.logger.Debug("pickup ignored", "err", err)
		return
	}
	s.logger.Warn("pickup failed", "err", err)
}

// Draw 绘制训练场景
func (s *TrainingScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	s.drawCanvas(screen)
	s.drawHeader(screen)
	s.drawTray(screen)
	s.drawFeedback(screen)
	s.drawOverlay(screen)
}

func (s *TrainingScene) drawHeader(screen *ebiten.Image) {
	sw, _ := config.ScreenSize(s.canvasWidth, s.canvasHeight)
	fillRect(screen, 0, 0, float64(sw), config.HeaderHeight, colorHeader)

	step := s.trainer.CurrentStep()
	reg := s.trainer.Registry()
	snap := s.trainer.Snapshot()

	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("Step %d/%d: %s", step.Ordinal, reg.Len(), step.Title), 10, 6)
	maxChars := int(s.canvasWidth-20) / debugGlyphWidth
	drawLines(screen, wrapText(step.Instruction, maxChars), 10, 6+debugLineHeight)

	status := fmt.Sprintf("%s  Errors: %d", formatElapsed(snap.Elapsed), snap.Errors)
	ebitenutil.DebugPrintAt(screen, status, int(s.canvasWidth)+config.TrayPadding, 6)
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("Progress %3.0f%%", snap.Progress()*100), int(s.canvasWidth)+config.TrayPadding, 6+debugLineHeight)
}

func (s *TrainingScene) drawCanvas(screen *ebiten.Image) {
	sc := s.trainer.DisplayedScene()
	fillRect(screen, 0, config.HeaderHeight, s.canvasWidth, s.canvasHeight, colorForKey(sc.ID, scenePalette))
	ebitenutil.DebugPrintAt(screen, sc.Name, 10, int(config.HeaderHeight)+6)

	for _, it := range s.trainer.VisibleItems() {
		s.drawItem(screen, it, 255)
	}
	if s.debug.ShowHotspots {
		s.drawHotspots(screen)
	}
	if d, ok := s.trainer.Dragged(); ok {
		s.drawItem(screen, d, 200)
		if s.debug.ShowNeedleTip {
			s.drawNeedleTip(screen, d)
		}
	}
}

// drawItem 绘制一个物品：填充矩形、边框、图片键标签和朝向指示线
func (s *TrainingScene) drawItem(screen *ebiten.Image, it scene.Item, alpha uint8) {
	x, y := config.SceneToScreen(it.X-it.Width/2, it.Y-it.Height/2)
	fill := colorForKey(it.ImageKey, palette)
	fill.A = alpha
	fillRect(screen, x, y, it.Width, it.Height, fill)
	strokeRect(screen, x, y, it.Width, it.Height, colorOutline)
	ebitenutil.DebugPrintAt(screen, it.ImageKey, int(x)+2, int(y)+2)

	if it.Rotation != 0 {
		cx, cy := config.SceneToScreen(it.X, it.Y)
		rad := it.Rotation * math.Pi / 180
		ex := cx + math.Sin(rad)*it.Height/2
		ey := cy - math.Cos(rad)*it.Height/2
		vector.StrokeLine(screen, float32(cx), float32(cy), float32(ex), float32(ey), 2, colorOutline, false)
	}
}

// drawHotspots 绘制当前步骤的目标热区（调试）
func (s *TrainingScene) drawHotspots(screen *ebiten.Image) {
	step := s.trainer.CurrentStep()
	reg := s.trainer.Registry()
	rule := step.Rule

	circle := func(p utils.Point, radius float64) {
		x, y := config.SceneToScreen(p.X, p.Y)
		vector.StrokeCircle(screen, float32(x), float32(y), float32(radius), 2, colorHotspot, false)
	}

	switch rule.Kind {
	case config.RuleContainment:
		for _, t := range rule.Targets {
			if p, ok := reg.Target(t.Target); ok {
				circle(p, t.Radius)
			}
		}
	case config.RuleAngle, config.RuleTap:
		if p, ok := reg.Target(rule.Target); ok {
			circle(p, rule.Radius)
		}
	case config.RuleChained:
		anchor, ok := reg.Anchor(rule.PrerequisiteAnchor)
		if !ok {
			return
		}
		for _, it := range s.trainer.VisibleItems() {
			if it.ImageKey == rule.Prerequisite {
				circle(utils.AnchorPoint(it.Box(), anchor), rule.Radius)
			}
		}
	case config.RuleDisposal:
		for _, it := range s.trainer.VisibleItems() {
			if it.ImageKey == rule.Container {
				b := it.Bounds()
				x, y := config.SceneToScreen(b.Left, b.Top)
				vector.StrokeRect(screen, float32(x), float32(y),
					float32(b.Right-b.Left), float32(b.Bottom-b.Top), 2, colorHotspot, false)
			}
		}
	}
}

// drawNeedleTip 绘制拖拽中插入器的针尖位置（调试）
func (s *TrainingScene) drawNeedleTip(screen *ebiten.Image, d scene.Item) {
	rule := s.trainer.CurrentStep().Rule
	if rule.Kind != config.RuleAngle || d.Type != rule.Tool {
		return
	}
	anchor, ok := s.trainer.Registry().Anchor(rule.Anchor)
	if !ok {
		return
	}
	tip := utils.RotatedTipOffset(d.Box(), anchor)
	x, y := config.SceneToScreen(tip.X, tip.Y)
	vector.DrawFilledCircle(screen, float32(x), float32(y), 4, colorNeedleTip, false)
}

func (s *TrainingScene) drawTray(screen *ebiten.Image) {
	fillRect(screen, s.canvasWidth, config.HeaderHeight, config.TrayWidth, s.canvasHeight, colorTray)
	for i, tool := range s.trainer.TrayTools() {
		x, y, w, h := config.TraySlotBounds(i, s.canvasWidth)
		fillRect(screen, x, y, w, h, colorTraySlot)
		swatch := colorForKey(tool.ImageKey, palette)
		fillRect(screen, x+6, y+6, h-12, h-12, swatch)
		strokeRect(screen, x, y, w, h, colorOutline)
		drawLines(screen, wrapText(tool.Name, int(w-h)/debugGlyphWidth), int(x+h), int(y)+6)
	}
}

func (s *TrainingScene) drawFeedback(screen *ebiten.Image) {
	fb, ok := s.trainer.Feedback()
	if !ok {
		return
	}
	y := config.HeaderHeight + s.canvasHeight - config.FeedbackBandHeight
	fillRect(screen, 0, y, s.canvasWidth, config.FeedbackBandHeight, categoryColor(fb.Category))
	ebitenutil.DebugPrintAt(screen, fb.Message, 10, int(y)+6)
}

// drawOverlay 绘制场景切换的淡入淡出遮罩
func (s *TrainingScene) drawOverlay(screen *ebiten.Image) {
	a := s.trainer.OverlayAlpha()
	if a <= 0 {
		return
	}
	fillRect(screen, 0, config.HeaderHeight, s.canvasWidth, s.canvasHeight,
		color.RGBA{A: uint8(math.Round(a * 255))})
}
