//go:build mobile

package utils

// IsMobile 检测当前是否在触屏移动设备上运行
// 移动端编译时返回 true，训练器默认按粗指针放大容差
func IsMobile() bool {
	return true
}
