package scenes

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
)

// debugGlyphWidth DebugPrint 字体每个字符的宽度（像素）
const debugGlyphWidth = 6

// debugLineHeight DebugPrint 字体的行高（像素）
const debugLineHeight = 16

var (
	colorBackground = color.RGBA{R: 26, G: 32, B: 44, A: 255}
	colorHeader     = color.RGBA{R: 45, G: 55, B: 72, A: 255}
	colorTray       = color.RGBA{R: 36, G: 44, B: 58, A: 255}
	colorTraySlot   = color.RGBA{R: 74, G: 85, B: 104, A: 255}
	colorOutline    = color.RGBA{R: 226, G: 232, B: 240, A: 255}
	colorHotspot    = color.RGBA{R: 255, G: 214, B: 0, A: 200}
	colorNeedleTip  = color.RGBA{R: 255, G: 64, B: 64, A: 255}
	colorSuccess    = color.RGBA{R: 56, G: 161, B: 105, A: 230}
	colorError      = color.RGBA{R: 197, G: 48, B: 48, A: 230}
	colorInfo       = color.RGBA{R: 49, G: 130, B: 206, A: 230}
)

// palette 物品和场景的填充色
var palette = []color.RGBA{
	{R: 72, G: 187, B: 120, A: 255},
	{R: 66, G: 153, B: 225, A: 255},
	{R: 237, G: 137, B: 54, A: 255},
	{R: 159, G: 122, B: 234, A: 255},
	{R: 236, G: 201, B: 75, A: 255},
	{R: 56, G: 178, B: 172, A: 255},
	{R: 237, G: 100, B: 166, A: 255},
	{R: 160, G: 174, B: 192, A: 255},
}

// scenePalette 场景背景色（偏暗，保证物品清晰）
var scenePalette = []color.RGBA{
	{R: 60, G: 46, B: 40, A: 255},
	{R: 40, G: 58, B: 52, A: 255},
	{R: 44, G: 48, B: 72, A: 255},
	{R: 64, G: 52, B: 64, A: 255},
}

// colorForKey 按图片键选择稳定的填充色
func colorForKey(key string, colors []color.RGBA) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return colors[h.Sum32()%uint32(len(colors))]
}

// categoryColor 返回反馈类别对应的底色
func categoryColor(c game.Category) color.RGBA {
	switch c {
	case game.CategorySuccess:
		return colorSuccess
	case game.CategoryError:
		return colorError
	default:
		return colorInfo
	}
}

// formatElapsed 格式化为 mm:ss，超过 99 分钟时分钟数照常增长
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// wrapText 按字符宽度折行（DebugPrint 字体是等宽的）
// 单个超长单词不拆分
func wrapText(s string, maxChars int) []string {
	if maxChars <= 0 {
		return []string{s}
	}
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(s) {
		if line.Len() > 0 && line.Len()+1+len(word) > maxChars {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// drawLines 逐行绘制文字，返回下一行的 y
func drawLines(screen *ebiten.Image, lines []string, x, y int) int {
	for _, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, x, y)
		y += debugLineHeight
	}
	return y
}

// fillRect 绘制填充矩形
func fillRect(screen *ebiten.Image, x, y, w, h float64, clr color.Color) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), clr, false)
}

// strokeRect 绘制矩形边框
func strokeRect(screen *ebiten.Image, x, y, w, h float64, clr color.Color) {
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, clr, false)
}
