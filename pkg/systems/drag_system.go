package systems

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

var (
	// ErrDragInProgress 已有进行中的拖拽
	ErrDragInProgress = errors.New("drag already in progress")
	// ErrToolUnavailable 工具不在当前步骤的托盘中或已使用
	ErrToolUnavailable = errors.New("tool not available in this step")
	// ErrRunComplete 运行已结束
	ErrRunComplete = errors.New("run complete")
)

// DragSystem 拖拽交互系统
//
// 同一时刻至多一个拖拽手势。拖拽物品保存在 scene.Model 中，
// 本系统只负责创建、移动、旋转它，并在松开时交给 ValidationSystem。
//
// 取消（指针离开窗口、触摸被系统中断）直接丢弃拖拽物品，不做校验也不计错误；
// 从场景中拾取的物品放回拾取前的位置。
type DragSystem struct {
	registry    *game.StepRegistry
	state       *game.ProcedureState
	model       *scene.Model
	progression *ProgressionSystem
	validation  *ValidationSystem
	logger      *log.Logger

	// grabOffset 拾取时物品中心相对指针的偏移，避免物品跳到指针下
	grabOffset utils.Point
	// pickedUp 从场景中拾取的物品在拾取前的状态
	pickedUp *scene.Item
}

// NewDragSystem 创建拖拽交互系统
func NewDragSystem(
	registry *game.StepRegistry,
	state *game.ProcedureState,
	model *scene.Model,
	progression *ProgressionSystem,
	validation *ValidationSystem,
	logger *log.Logger,
) *DragSystem {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &DragSystem{
		registry:    registry,
		state:       state,
		model:       model,
		progression: progression,
		validation:  validation,
		logger:      logger.WithPrefix("DragSystem"),
	}
}

// Dragging 返回是否有进行中的拖拽
func (d *DragSystem) Dragging() bool {
	return d.model.Dragged() != nil
}

// TrayTools 返回当前步骤托盘中可用的工具（按步骤配置顺序，已使用的不显示）
func (d *DragSystem) TrayTools() []game.Tool {
	if d.state.Complete {
		return nil
	}
	step := d.progression.CurrentStep()
	tools := make([]game.Tool, 0, len(step.Tools))
	for _, id := range step.Tools {
		if d.state.IsConsumed(id) {
			continue
		}
		if t, ok := d.registry.Tool(id); ok {
			tools = append(tools, t)
		}
	}
	return tools
}

// BeginFromTray 从工具托盘开始拖拽
// 新物品按工具目录尺寸乘以托盘缩放比例创建，中心位于指针处
func (d *DragSystem) BeginFromTray(toolID string, p utils.Point) error {
	if d.Dragging() {
		return ErrDragInProgress
	}
	if d.state.Complete {
		return ErrRunComplete
	}
	step := d.progression.CurrentStep()
	tool, ok := d.registry.Tool(toolID)
	if !ok || !step.HasTool(toolID) || d.state.IsConsumed(toolID) {
		return ErrToolUnavailable
	}

	scale := d.registry.TrayScale()
	d.model.SetDragged(&scene.Item{
		Type:     tool.ID,
		ImageKey: tool.ImageKey,
		X:        p.X,
		Y:        p.Y,
		Width:    tool.Width * scale,
		Height:   tool.Height * scale,
	})
	d.grabOffset = utils.Point{}
	d.pickedUp = nil
	d.logger.Debug("drag from tray", "tool", toolID, "x", p.X, "y", p.Y)
	return nil
}

// BeginFromScene 从场景中拾取物品开始拖拽
// 指针下没有可拖拽物品时返回 false；物品在拖拽期间从永久物品中移除
func (d *DragSystem) BeginFromScene(p utils.Point) (bool, error) {
	if d.Dragging() {
		return false, ErrDragInProgress
	}
	if d.state.Complete {
		return false, ErrRunComplete
	}
	hit, ok := d.model.HitTest(p, d.state.CurrentStep)
	if !ok {
		return false, nil
	}
	item, ok := d.model.Take(hit.ID)
	if !ok {
		return false, nil
	}
	before := item
	d.pickedUp = &before

	item.FromScene = true
	d.model.SetDragged(&item)
	d.grabOffset = item.Center().Sub(p)
	d.logger.Debug("drag from scene", "item", item.Type, "x", p.X, "y", p.Y)
	return true, nil
}

// Move 拖拽物品跟随指针
func (d *DragSystem) Move(p utils.Point) {
	item := d.model.Dragged()
	if item == nil {
		return
	}
	c := p.Add(d.grabOffset)
	item.X, item.Y = c.X, c.Y
}

// Rotate 旋转拖拽物品（仅可旋转的工具），返回是否旋转
func (d *DragSystem) Rotate(delta float64) bool {
	item := d.model.Dragged()
	if item == nil {
		return false
	}
	tool, ok := d.registry.Tool(item.Type)
	if !ok || !tool.Rotatable {
		return false
	}
	item.Rotation += delta
	d.logger.Debug("rotated", "item", item.Type, "rotation", item.Rotation)
	return true
}

// Release 松开拖拽物品并校验
// 无论结果如何拖拽物品都会被清除；没有进行中的拖拽时返回 no_gesture
func (d *DragSystem) Release(p utils.Point) game.Outcome {
	dragged := d.model.Dragged()
	if dragged == nil {
		return game.Ignore(d.state.CurrentStep, game.ReasonNoGesture)
	}
	d.Move(p)
	item := *dragged
	d.clear()
	return d.validation.Validate(item)
}

// Cancel 放弃拖拽（不校验、不计错误），返回是否有拖拽被放弃
func (d *DragSystem) Cancel() bool {
	dragged := d.model.Dragged()
	if dragged == nil {
		return false
	}
	d.logger.Debug("drag cancelled", "item", dragged.Type)
	if d.pickedUp != nil {
		d.model.AddPermanent(*d.pickedUp)
	}
	d.clear()
	return true
}

// Tap 点击工作区
// 拖拽进行中的点击不做处理
func (d *DragSystem) Tap(p utils.Point) game.Outcome {
	if d.Dragging() {
		return game.Ignore(d.state.CurrentStep, game.ReasonIgnored)
	}
	return d.validation.Tap(p)
}

// Reset 丢弃拖拽状态（开始新的运行时使用，模型已被清空）
func (d *DragSystem) Reset() {
	d.clear()
}

func (d *DragSystem) clear() {
	d.model.SetDragged(nil)
	d.grabOffset = utils.Point{}
	d.pickedUp = nil
}
