package components

// PositionComponent 存储物品包围盒中心在场景坐标中的位置（像素）
type PositionComponent struct {
	X float64
	Y float64
}

// SizeComponent 存储物品的显示尺寸（像素）
type SizeComponent struct {
	Width  float64
	Height float64
}

// RotationComponent 存储物品的旋转角度（度，顺时针为正）
// 只有可旋转的工具（插入器）才会携带非零旋转
type RotationComponent struct {
	Degrees float64
}

// SceneItemComponent 标识一个放置在工作区中的物品
type SceneItemComponent struct {
	// Type 物品类型（工具ID或场景道具ID，如 "extension_set"、"stylet"）
	Type string
	// ImageKey 渲染使用的图片键；按类型移除物品时也以它为准
	ImageKey string
}

// StepScopeComponent 将物品限定在某一个步骤内可见
//
// 当前步骤与 Step 不同时，物品既不渲染也不参与命中测试，
// 但仍保留在永久物品集合中（返回该步骤时重新可见）。
type StepScopeComponent struct {
	Step int
}

// SceneDraggableComponent 标记可以直接从场景中拾取的物品（而不是从工具托盘）
// Origin 是物品的初始位置，放置失败时物品会被放回这里
type SceneDraggableComponent struct {
	OriginX float64
	OriginY float64
}
