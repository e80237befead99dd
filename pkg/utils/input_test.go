package utils

import (
	"testing"
)

func TestPointerTrackerInitialState(t *testing.T) {
	pt := NewPointerTracker()

	if pt.Active() {
		t.Error("Expected tracker to be inactive initially")
	}

	// 没有按下时不产生事件
	ev := pt.Step(PointerSample{TouchID: -1})
	if ev.Phase != PointerIdle {
		t.Errorf("Expected PointerIdle, got %v", ev.Phase)
	}

	// 未按下时的松开被忽略
	ev = pt.Step(PointerSample{X: 10, Y: 10, TouchID: -1})
	if ev.Phase != PointerIdle {
		t.Errorf("Expected stray release to be ignored, got %v", ev.Phase)
	}
}

func TestPointerTrackerMouseDrag(t *testing.T) {
	pt := NewPointerTracker()

	ev := pt.Step(PointerSample{Pressed: true, JustPressed: true, X: 100, Y: 200, TouchID: -1})
	if ev.Phase != PointerDown || ev.X != 100 || ev.Y != 200 {
		t.Fatalf("Expected PointerDown at (100, 200), got %+v", ev)
	}
	if !pt.Active() {
		t.Error("Expected tracker to be active after press")
	}

	ev = pt.Step(PointerSample{Pressed: true, X: 150, Y: 280, TouchID: -1})
	if ev.Phase != PointerMove || ev.X != 150 || ev.Y != 280 {
		t.Errorf("Expected PointerMove at (150, 280), got %+v", ev)
	}

	ev = pt.Step(PointerSample{X: 160, Y: 290, TouchID: -1})
	if ev.Phase != PointerUp {
		t.Fatalf("Expected PointerUp, got %v", ev.Phase)
	}
	if ev.X != 160 || ev.Y != 290 {
		t.Errorf("Expected mouse release at cursor (160, 290), got (%v, %v)", ev.X, ev.Y)
	}
	if ev.Tap {
		t.Error("Expected a long drag not to count as a tap")
	}
	if pt.Active() {
		t.Error("Expected tracker to be inactive after release")
	}
}

func TestPointerTrackerTap(t *testing.T) {
	tests := []struct {
		name   string
		moveX  int
		upX    int
		expect bool
	}{
		{"原地松开", 100, 100, true},
		{"小幅抖动", 104, 103, true},
		{"移出又移回", 130, 100, false},
		{"刚好超出", 100, 107, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := NewPointerTracker()
			pt.Step(PointerSample{Pressed: true, JustPressed: true, X: 100, Y: 100, TouchID: -1})
			pt.Step(PointerSample{Pressed: true, X: tt.moveX, Y: 100, TouchID: -1})
			ev := pt.Step(PointerSample{X: tt.upX, Y: 100, TouchID: -1})

			if ev.Phase != PointerUp {
				t.Fatalf("Expected PointerUp, got %v", ev.Phase)
			}
			if ev.Tap != tt.expect {
				t.Errorf("Expected Tap=%v, got %v", tt.expect, ev.Tap)
			}
		})
	}
}

func TestPointerTrackerTouchRelease(t *testing.T) {
	pt := NewPointerTracker()

	pt.Step(PointerSample{Pressed: true, JustPressed: true, X: 10, Y: 20, TouchID: 3})
	pt.Step(PointerSample{Pressed: true, X: 30, Y: 40, TouchID: 3})

	// 触摸松开时位置读数为零，应使用最后一次位置
	ev := pt.Step(PointerSample{TouchID: 3})
	if ev.Phase != PointerUp {
		t.Fatalf("Expected PointerUp, got %v", ev.Phase)
	}
	if ev.X != 30 || ev.Y != 40 {
		t.Errorf("Expected release at last touch position (30, 40), got (%v, %v)", ev.X, ev.Y)
	}
}

func TestPointerTrackerCancel(t *testing.T) {
	pt := NewPointerTracker()

	pt.Step(PointerSample{Pressed: true, JustPressed: true, X: 10, Y: 20, TouchID: 5})
	pt.Step(PointerSample{Pressed: true, X: 50, Y: 60, TouchID: 5})

	ev := pt.Step(PointerSample{TouchID: 5, Lost: true})
	if ev.Phase != PointerCancel {
		t.Fatalf("Expected PointerCancel, got %v", ev.Phase)
	}
	if ev.X != 50 || ev.Y != 60 {
		t.Errorf("Expected cancel at last position (50, 60), got (%v, %v)", ev.X, ev.Y)
	}
	if pt.Active() {
		t.Error("Expected tracker to be inactive after cancel")
	}

	// 取消后可以开始新的手势
	ev = pt.Step(PointerSample{Pressed: true, JustPressed: true, X: 1, Y: 2, TouchID: -1})
	if ev.Phase != PointerDown {
		t.Errorf("Expected new PointerDown after cancel, got %v", ev.Phase)
	}
}

func TestPointerTracker_Reset(t *testing.T) {
	tr := NewPointerTracker()
	tr.Step(PointerSample{Pressed: true, JustPressed: true, X: 10, Y: 10, TouchID: -1})
	if !tr.Active() {
		t.Fatal("expected active after press")
	}
	tr.Reset()
	if tr.Active() {
		t.Error("expected inactive after Reset")
	}
	// 松开的残余帧不产生事件
	if ev := tr.Step(PointerSample{X: 10, Y: 10, TouchID: -1}); ev.Phase != PointerIdle {
		t.Errorf("phase = %v, want PointerIdle", ev.Phase)
	}
}
