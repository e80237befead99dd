package config

// 布局配置常量
// 本文件定义了训练窗口的屏幕布局：顶部信息栏、左侧工作区、右侧工具托盘

// 屏幕布局
// 工作区使用"场景坐标系"（相对于工作区左上角），与流程配置中的目标点一致
// 屏幕坐标 = 场景坐标 + (0, HeaderHeight)
const (
	// HeaderHeight 顶部信息栏高度（步骤标题、说明、计时器）
	HeaderHeight = 72.0

	// TrayWidth 右侧工具托盘宽度
	TrayWidth = 200.0

	// TrayPadding 托盘内边距
	TrayPadding = 16.0

	// TraySlotHeight 每个工具槽的高度
	TraySlotHeight = 64.0

	// TraySlotGap 工具槽之间的间距
	TraySlotGap = 10.0

	// FeedbackBandHeight 工作区底部反馈条高度
	FeedbackBandHeight = 28.0
)

// ScreenSize 返回逻辑屏幕尺寸（工作区 + 信息栏 + 托盘）
func ScreenSize(canvasWidth, canvasHeight float64) (int, int) {
	return int(canvasWidth + TrayWidth), int(canvasHeight + HeaderHeight)
}

// ScreenToScene 屏幕坐标转换为场景坐标
func ScreenToScene(screenX, screenY float64) (float64, float64) {
	return screenX, screenY - HeaderHeight
}

// SceneToScreen 场景坐标转换为屏幕坐标
func SceneToScreen(sceneX, sceneY float64) (float64, float64) {
	return sceneX, sceneY + HeaderHeight
}

// InCanvas 判断屏幕坐标是否落在工作区内（边界算作内部）
func InCanvas(screenX, screenY, canvasWidth, canvasHeight float64) bool {
	return screenX >= 0 && screenX <= canvasWidth &&
		screenY >= HeaderHeight && screenY <= HeaderHeight+canvasHeight
}

// TraySlotBounds 返回第 index 个工具槽的屏幕矩形
// 返回值：x, y, width, height
func TraySlotBounds(index int, canvasWidth float64) (float64, float64, float64, float64) {
	x := canvasWidth + TrayPadding
	y := HeaderHeight + TrayPadding + float64(index)*(TraySlotHeight+TraySlotGap)
	return x, y, TrayWidth - 2*TrayPadding, TraySlotHeight
}

// TraySlotAt 返回屏幕坐标所在的工具槽序号
// count 为当前托盘中的工具数量；不在任何槽内时返回 false
func TraySlotAt(screenX, screenY, canvasWidth float64, count int) (int, bool) {
	for i := 0; i < count; i++ {
		x, y, w, h := TraySlotBounds(i, canvasWidth)
		if screenX >= x && screenX <= x+w && screenY >= y && screenY <= y+h {
			return i, true
		}
	}
	return 0, false
}
