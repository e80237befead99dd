// Package scene 维护工作区中物品的集合
//
// 物品分为两类：
//   - 永久物品：有序集合，按添加顺序绘制（后添加的在上层），直到被显式移除
//   - 拖拽物品：至多一个，只在拖拽手势进行期间存在
//
// 永久物品以实体的形式保存在 ecs.EntityManager 中，每个物品由若干组件描述
// （位置、尺寸、旋转、步骤作用域、场景可拖拽标记）。所有修改立即生效，
// 下一次渲染和命中测试就能看到结果。
package scene

import (
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/components"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/ecs"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/utils"
)

// Item 工作区中的一个物品（值类型快照）
type Item struct {
	// ID 永久物品的实体ID；拖拽物品和尚未放置的物品为 0
	ID ecs.EntityID

	Type     string
	ImageKey string

	// X, Y 包围盒中心
	X, Y          float64
	Width, Height float64
	Rotation      float64

	// OnlyStep 非 0 时物品只在该步骤可见
	OnlyStep int

	// SceneDraggable 物品可以直接从场景中拾取
	SceneDraggable bool
	// OriginX, OriginY 场景可拖拽物品的初始位置
	OriginX, OriginY float64

	// FromScene 拖拽物品是从场景中拾取的（而不是从工具托盘）
	FromScene bool
}

// Center 返回物品中心
func (it Item) Center() utils.Point {
	return utils.Point{X: it.X, Y: it.Y}
}

// Box 返回物品的包围盒（含旋转）
func (it Item) Box() utils.Box {
	return utils.Box{
		Center:   it.Center(),
		Width:    it.Width,
		Height:   it.Height,
		Rotation: it.Rotation,
	}
}

// Bounds 返回物品未旋转的轴对齐包围矩形
func (it Item) Bounds() utils.Rect {
	return utils.RectFromCenter(it.Center(), it.Width, it.Height)
}

// VisibleAt 判断物品在指定步骤是否可见
func (it Item) VisibleAt(step int) bool {
	return it.OnlyStep == 0 || it.OnlyStep == step
}

// Model 场景物品模型
type Model struct {
	em      *ecs.EntityManager
	dragged *Item
}

// NewModel 创建空的场景物品模型
func NewModel() *Model {
	return &Model{em: ecs.NewEntityManager()}
}

// AddPermanent 添加一个永久物品，返回其实体ID
// item.ID 会被忽略
func (m *Model) AddPermanent(item Item) ecs.EntityID {
	id := m.em.CreateEntity()
	ecs.AddComponent(m.em, id, &components.SceneItemComponent{Type: item.Type, ImageKey: item.ImageKey})
	ecs.AddComponent(m.em, id, &components.PositionComponent{X: item.X, Y: item.Y})
	ecs.AddComponent(m.em, id, &components.SizeComponent{Width: item.Width, Height: item.Height})
	if item.Rotation != 0 {
		ecs.AddComponent(m.em, id, &components.RotationComponent{Degrees: item.Rotation})
	}
	if item.OnlyStep != 0 {
		ecs.AddComponent(m.em, id, &components.StepScopeComponent{Step: item.OnlyStep})
	}
	if item.SceneDraggable {
		ecs.AddComponent(m.em, id, &components.SceneDraggableComponent{OriginX: item.OriginX, OriginY: item.OriginY})
	}
	return id
}

// Get 按实体ID读取永久物品
func (m *Model) Get(id ecs.EntityID) (Item, bool) {
	if !ecs.HasComponent[*components.SceneItemComponent](m.em, id) {
		return Item{}, false
	}
	return m.itemFromEntity(id), true
}

// Items 按绘制顺序返回全部永久物品（包括当前不可见的步骤作用域物品）
func (m *Model) Items() []Item {
	ids := ecs.GetEntitiesWith1[*components.SceneItemComponent](m.em)
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, m.itemFromEntity(id))
	}
	return items
}

// VisibleItems 按绘制顺序返回在指定步骤可见的永久物品
func (m *Model) VisibleItems(step int) []Item {
	all := m.Items()
	visible := all[:0]
	for _, it := range all {
		if it.VisibleAt(step) {
			visible = append(visible, it)
		}
	}
	return visible
}

// FindByTag 返回第一个满足条件的永久物品（按绘制顺序）
func (m *Model) FindByTag(match func(Item) bool) (Item, bool) {
	for _, it := range m.Items() {
		if match(it) {
			return it, true
		}
	}
	return Item{}, false
}

// RemoveByType 移除所有图片键匹配的永久物品，返回移除数量
func (m *Model) RemoveByType(imageKey string) int {
	return m.RemoveWhere(func(it Item) bool { return it.ImageKey == imageKey })
}

// RemoveWhere 移除所有满足条件的永久物品，返回移除数量
func (m *Model) RemoveWhere(match func(Item) bool) int {
	removed := 0
	for _, it := range m.Items() {
		if match(it) && m.em.DestroyEntity(it.ID) {
			removed++
		}
	}
	return removed
}

// Take 从永久物品中取出一个物品（移除并返回）
// 用于从场景中拾取物品，避免拖拽期间同一物品被绘制两次
func (m *Model) Take(id ecs.EntityID) (Item, bool) {
	it, ok := m.Get(id)
	if !ok {
		return Item{}, false
	}
	m.em.DestroyEntity(id)
	return it, true
}

// HitTest 返回指定点下最上层的、当前步骤可见的场景可拖拽物品
// 命中判定使用未旋转的包围矩形，边界算作命中
func (m *Model) HitTest(p utils.Point, step int) (Item, bool) {
	ids := ecs.GetEntitiesWith2[*components.SceneItemComponent, *components.SceneDraggableComponent](m.em)
	for i := len(ids) - 1; i >= 0; i-- {
		it := m.itemFromEntity(ids[i])
		if it.VisibleAt(step) && it.Bounds().Contains(p) {
			return it, true
		}
	}
	return Item{}, false
}

// SetDragged 设置（或用 nil 清除）拖拽物品
func (m *Model) SetDragged(item *Item) {
	if item == nil {
		m.dragged = nil
		return
	}
	copied := *item
	copied.ID = 0
	m.dragged = &copied
}

// Dragged 返回当前拖拽物品，没有拖拽时返回 nil
// 返回的指针归模型所有，拖拽控制器通过它更新位置和旋转
func (m *Model) Dragged() *Item {
	return m.dragged
}

// Len 返回永久物品数量
func (m *Model) Len() int {
	return m.em.Count()
}

// Clear 清空永久物品和拖拽物品
func (m *Model) Clear() {
	m.em.Clear()
	m.dragged = nil
}

func (m *Model) itemFromEntity(id ecs.EntityID) Item {
	it := Item{ID: id}
	if c, ok := ecs.GetComponent[*components.SceneItemComponent](m.em, id); ok {
		it.Type = c.Type
		it.ImageKey = c.ImageKey
	}
	if c, ok := ecs.GetComponent[*components.PositionComponent](m.em, id); ok {
		it.X, it.Y = c.X, c.Y
	}
	if c, ok := ecs.GetComponent[*components.SizeComponent](m.em, id); ok {
		it.Width, it.Height = c.Width, c.Height
	}
	if c, ok := ecs.GetComponent[*components.RotationComponent](m.em, id); ok {
		it.Rotation = c.Degrees
	}
	if c, ok := ecs.GetComponent[*components.StepScopeComponent](m.em, id); ok {
		it.OnlyStep = c.Step
	}
	if c, ok := ecs.GetComponent[*components.SceneDraggableComponent](m.em, id); ok {
		it.SceneDraggable = true
		it.OriginX, it.OriginY = c.OriginX, c.OriginY
	}
	return it
}
