package game

import "time"

// Feedback 一条反馈文字
type Feedback struct {
	Message  string
	Category Category
	ShownAt  time.Time
}

// FeedbackBoard 反馈文字面板
// 同一时刻只显示一条消息，新消息覆盖旧消息，超过显示时长后自动隐藏
type FeedbackBoard struct {
	duration time.Duration
	current  *Feedback
	listener func(Feedback)
}

// NewFeedbackBoard 创建反馈面板
func NewFeedbackBoard(duration time.Duration) *FeedbackBoard {
	return &FeedbackBoard{duration: duration}
}

// Show 显示一条消息；空消息会被忽略
func (b *FeedbackBoard) Show(message string, category Category, now time.Time) {
	if message == "" {
		return
	}
	b.current = &Feedback{Message: message, Category: category, ShownAt: now}
	if b.listener != nil {
		b.listener(*b.current)
	}
}

// SetListener 设置新消息的监听函数
func (b *FeedbackBoard) SetListener(fn func(Feedback)) {
	b.listener = fn
}

// Duration 返回显示时长
func (b *FeedbackBoard) Duration() time.Duration {
	return b.duration
}

// Current 返回仍在显示时长内的消息
func (b *FeedbackBoard) Current(now time.Time) (Feedback, bool) {
	if b.current == nil {
		return Feedback{}, false
	}
	if now.Sub(b.current.ShownAt) >= b.duration {
		return Feedback{}, false
	}
	return *b.current, true
}

// Clear 清除当前消息
func (b *FeedbackBoard) Clear() {
	b.current = nil
}
