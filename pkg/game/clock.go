package game

import (
	"sync"
	"time"
)

// Clock 单调时间源
// 计时器显示、反馈过期和延迟任务调度都从这里读取当前时间
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系统时间（time.Now 自带单调读数）
type SystemClock struct{}

// Now 返回当前时间
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock 手动推进的时钟
// 用于测试和无界面模拟：时间只在调用 Advance 时前进
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock 创建从 start 开始的手动时钟
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now 返回当前时间
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance 推进时钟
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
