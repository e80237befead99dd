// Package utils 提供场景坐标计算相关的工具函数
//
// geometry.go 提供空间校验使用的几何工具：点距离、锚点解析、带旋转的针尖位置、
// 矩形包含判定以及角度折算。
//
// # 坐标系统
//
//   - **场景坐标**：相对于工作区左上角（像素），指针事件在进入核心前已归一化到该坐标系
//   - **物品锚点**：物品的 X/Y 表示其包围盒中心（与渲染时 -w/2, -h/2 的绘制约定一致）
//   - **归一化锚点**：相对于物品自身未旋转包围盒的分数坐标（0..1，左上角为原点）
//
// # 精确吸附
//
// 锚点偏移量统一量化到 1/1024 像素（二进制有限小数），吸附时用同一偏移量反推中心，
// 因此"先吸附、再读取锚点"得到的坐标与目标完全相等（距离为 0，而不是"足够小"）。
package utils

import "math"

// anchorQuantum 锚点偏移量化精度（每像素的份数）
const anchorQuantum = 1024.0

// Point 场景坐标中的一个点（像素）
type Point struct {
	X float64
	Y float64
}

// Add 返回 p + o
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub 返回 p - o
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Box 以中心为锚点的物品包围盒
type Box struct {
	Center   Point
	Width    float64
	Height   float64
	Rotation float64 // 旋转角度（度），仅针尖计算使用
}

// Rect 轴对齐矩形（边界包含在内）
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Distance 计算两点之间的欧几里得距离
func Distance(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Quantize 将坐标值量化到 1/1024 像素
func Quantize(v float64) float64 {
	return math.Round(v*anchorQuantum) / anchorQuantum
}

// QuantizePoint 对点的两个分量做量化
// 所有吸附到场景中的物品中心都应先量化，保证后续锚点链计算无舍入误差
func QuantizePoint(p Point) Point {
	return Point{X: Quantize(p.X), Y: Quantize(p.Y)}
}

// AnchorOffset 计算归一化锚点相对于包围盒中心的偏移（已量化）
//
// 参数：
//   - width, height: 包围盒尺寸
//   - norm: 归一化锚点（0..1）
//
// 返回：
//   - 相对中心的偏移量（像素）
func AnchorOffset(width, height float64, norm Point) Point {
	return Point{
		X: Quantize((norm.X - 0.5) * width),
		Y: Quantize((norm.Y - 0.5) * height),
	}
}

// AnchorPoint 将归一化锚点映射到场景绝对坐标
//
// 注意：此函数不考虑旋转。除插入器针尖外，接头对齐校验一律忽略物品旋转。
func AnchorPoint(box Box, norm Point) Point {
	return box.Center.Add(AnchorOffset(box.Width, box.Height, norm))
}

// CenterForAnchor 反推包围盒中心，使其归一化锚点恰好落在 target 上
//
// 与 AnchorPoint 互为逆运算：AnchorPoint(Box{Center: CenterForAnchor(t, w, h, n), ...}, n) == t，
// 前提是 target 本身已量化（场景中所有吸附物品的锚点都满足这一条件）。
func CenterForAnchor(target Point, width, height float64, norm Point) Point {
	return target.Sub(AnchorOffset(width, height, norm))
}

// RotatedTipOffset 计算带旋转物品的针尖绝对位置
//
// 偏移量以物品左上角为基准（offset.X * width, offset.Y * height），
// 按物品旋转角度旋转该偏移向量后，再叠加到未旋转的左上角上。
// 仅用于方向对校验有意义的物品（插入器）。
func RotatedTipOffset(box Box, offset Point) Point {
	ox := box.Width * offset.X
	oy := box.Height * offset.Y

	angle := box.Rotation * math.Pi / 180
	cos, sin := math.Cos(angle), math.Sin(angle)
	rx := ox*cos - oy*sin
	ry := ox*sin + oy*cos

	return Point{
		X: box.Center.X + rx - box.Width/2,
		Y: box.Center.Y + ry - box.Height/2,
	}
}

// AngleFromVertical 计算旋转角度偏离竖直方向的最小角度
// 取绝对值后归一化到 [0, 360)，再折算到较短的一侧弧
//
// 示例：350 -> 10, -20 -> 20, 730 -> 10
func AngleFromVertical(rotation float64) float64 {
	a := math.Mod(math.Abs(rotation), 360)
	return math.Min(a, 360-a)
}

// RectFromCenter 由中心点和尺寸构造轴对齐矩形
func RectFromCenter(center Point, width, height float64) Rect {
	return Rect{
		Left:   center.X - width/2,
		Top:    center.Y - height/2,
		Right:  center.X + width/2,
		Bottom: center.Y + height/2,
	}
}

// Contains 判断点是否落在矩形内（边界算作内部）
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}
