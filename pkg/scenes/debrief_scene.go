package scenes

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
)

// DebriefScene 运行完成后的总结界面
// 显示完成步骤数、错误次数和用时，按 R 或点击重新开始
type DebriefScene struct {
	name      string
	snapshot  game.ProcedureSnapshot
	onRestart func()
}

// NewDebriefScene 创建总结界面
func NewDebriefScene(procedureName string, snap game.ProcedureSnapshot, onRestart func()) *DebriefScene {
	return &DebriefScene{name: procedureName, snapshot: snap, onRestart: onRestart}
}

// Lines 返回总结文字
func (d *DebriefScene) Lines() []string {
	return []string{
		"DEBRIEF",
		d.name,
		"",
		fmt.Sprintf("Steps completed: %d/%d", len(d.snapshot.Completed), d.snapshot.TotalSteps),
		fmt.Sprintf("Errors:          %d", d.snapshot.Errors),
		fmt.Sprintf("Time:            %s", formatElapsed(d.snapshot.Elapsed)),
		"",
		"Press R or click to train again",
	}
}

// Update 等待重新开始
func (d *DebriefScene) Update(deltaTime float64) {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) ||
		inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) ||
		len(inpututil.AppendJustReleasedTouchIDs(nil)) > 0 {
		d.restart()
	}
}

func (d *DebriefScene) restart() {
	if d.onRestart != nil {
		d.onRestart()
	}
}

// Draw 绘制总结
func (d *DebriefScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	b := screen.Bounds()
	lines := d.Lines()

	y := b.Dy()/2 - len(lines)*debugLineHeight/2
	for _, l := range lines {
		x := b.Dx()/2 - len(l)*debugGlyphWidth/2
		ebitenutil.DebugPrintAt(screen, l, x, y)
		y += debugLineHeight
	}
}
