package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ============================================================================
// 指针跟踪器 - 把鼠标和触摸统一成按下/移动/松开/取消事件
// ============================================================================

// PointerPhase 指针事件阶段
type PointerPhase int

const (
	// PointerIdle 没有事件
	PointerIdle PointerPhase = iota
	// PointerDown 刚按下
	PointerDown
	// PointerMove 按住移动
	PointerMove
	// PointerUp 松开
	PointerUp
	// PointerCancel 手势被中断（触摸丢失、窗口失去焦点）
	PointerCancel
)

// TapSlop 按下到松开的移动距离不超过该值（像素）时视为点击
const TapSlop = 6.0

// PointerSample 一帧的原始指针输入
type PointerSample struct {
	// Pressed 鼠标左键按下或有活动触摸
	Pressed bool
	// JustPressed 本帧刚按下
	JustPressed bool
	// Lost 正在跟踪的触摸消失但没有收到松开事件，或窗口失去焦点
	Lost bool
	X, Y int
	// TouchID 触摸ID，鼠标为 -1
	TouchID ebiten.TouchID
}

// PointerEvent 指针事件（逻辑屏幕坐标）
type PointerEvent struct {
	Phase PointerPhase
	X, Y  float64
	// Tap 松开时移动距离在 TapSlop 以内
	Tap bool
}

// PointerTracker 指针状态机
// 同一时刻只跟踪一个指针（第一个按下的触摸或鼠标左键）
type PointerTracker struct {
	active    bool
	touchID   ebiten.TouchID
	startX    int
	startY    int
	lastX     int
	lastY     int
	maxTravel float64
}

// NewPointerTracker 创建指针跟踪器
func NewPointerTracker() *PointerTracker {
	return &PointerTracker{touchID: -1}
}

// Poll 读取 ebiten 输入并返回本帧事件（每帧调用一次）
func (t *PointerTracker) Poll() PointerEvent {
	return t.Step(t.sample())
}

// Step 用一帧原始输入推进状态机
func (t *PointerTracker) Step(s PointerSample) PointerEvent {
	if !t.active {
		if !s.JustPressed {
			return PointerEvent{}
		}
		t.active = true
		t.touchID = s.TouchID
		t.startX, t.startY = s.X, s.Y
		t.lastX, t.lastY = s.X, s.Y
		t.maxTravel = 0
		return PointerEvent{Phase: PointerDown, X: float64(s.X), Y: float64(s.Y)}
	}

	if s.Lost {
		t.reset()
		return PointerEvent{Phase: PointerCancel, X: float64(t.lastX), Y: float64(t.lastY)}
	}

	if !s.Pressed {
		// 触摸松开时位置已不可读，使用最后一次位置
		x, y := t.lastX, t.lastY
		if t.touchID < 0 {
			x, y = s.X, s.Y
		}
		t.track(x, y)
		tap := t.maxTravel <= TapSlop
		t.reset()
		return PointerEvent{Phase: PointerUp, X: float64(x), Y: float64(y), Tap: tap}
	}

	t.track(s.X, s.Y)
	return PointerEvent{Phase: PointerMove, X: float64(s.X), Y: float64(s.Y)}
}

// Active 返回是否正在跟踪一个指针
func (t *PointerTracker) Active() bool {
	return t.active
}

// Reset 放弃正在跟踪的指针，下一次按下重新开始
func (t *PointerTracker) Reset() {
	t.reset()
}

func (t *PointerTracker) track(x, y int) {
	t.lastX, t.lastY = x, y
	d := Distance(
		Point{X: float64(t.startX), Y: float64(t.startY)},
		Point{X: float64(x), Y: float64(y)},
	)
	if d > t.maxTravel {
		t.maxTravel = d
	}
}

func (t *PointerTracker) reset() {
	t.active = false
	t.touchID = -1
	t.maxTravel = 0
}

// sample 读取本帧的 ebiten 输入，优先检测触摸
func (t *PointerTracker) sample() PointerSample {
	focused := ebiten.IsFocused()

	if !t.active {
		if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
			x, y := ebiten.TouchPosition(ids[0])
			return PointerSample{Pressed: true, JustPressed: true, X: x, Y: y, TouchID: ids[0]}
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			x, y := ebiten.CursorPosition()
			return PointerSample{Pressed: true, JustPressed: true, X: x, Y: y, TouchID: -1}
		}
		return PointerSample{TouchID: -1}
	}

	if t.touchID >= 0 {
		if inpututil.IsTouchJustReleased(t.touchID) {
			return PointerSample{TouchID: t.touchID}
		}
		for _, id := range ebiten.AppendTouchIDs(nil) {
			if id == t.touchID {
				x, y := ebiten.TouchPosition(id)
				return PointerSample{Pressed: true, X: x, Y: y, TouchID: id, Lost: !focused}
			}
		}
		return PointerSample{TouchID: t.touchID, Lost: true}
	}

	x, y := ebiten.CursorPosition()
	return PointerSample{
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		X:       x,
		Y:       y,
		TouchID: -1,
		Lost:    !focused,
	}
}
