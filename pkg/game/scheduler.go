package game

import (
	"cmp"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Tag 延迟任务所属的运行上下文
// 任务触发时若上下文已变化（重新开始运行、步骤已推进），任务被丢弃
type Tag struct {
	RunID      uuid.UUID
	Generation uint64
	// Step 为 0 表示运行级任务，只校验运行ID和代数
	Step int
}

// TagGuard 判断任务标签是否仍然有效
type TagGuard func(Tag) bool

type scheduledTask struct {
	seq  uint64
	name string
	due  time.Time
	tag  Tag
	fn   func()
}

// Scheduler 基于时钟的延迟任务调度器
//
// 单线程协作式：任务只在 Update 中执行。同一次 Update 中，
// 任务执行期间新加入的任务要等到下一次 Update 才会检查，避免零延迟任务形成死循环。
type Scheduler struct {
	clock  Clock
	guard  TagGuard
	tasks  []scheduledTask
	seq    uint64
	logger *log.Logger
}

// NewScheduler 创建调度器
func NewScheduler(clock Clock, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Scheduler{
		clock:  clock,
		logger: logger.WithPrefix("Scheduler"),
	}
}

// SetGuard 设置标签校验函数
func (s *Scheduler) SetGuard(guard TagGuard) {
	s.guard = guard
}

// Schedule 在 delay 之后执行 fn
func (s *Scheduler) Schedule(name string, delay time.Duration, tag Tag, fn func()) {
	s.seq++
	s.tasks = append(s.tasks, scheduledTask{
		seq:  s.seq,
		name: name,
		due:  s.clock.Now().Add(delay),
		tag:  tag,
		fn:   fn,
	})
	s.logger.Debug("scheduled", "task", name, "delay", delay, "step", tag.Step)
}

// Update 执行所有到期任务，返回实际执行的任务数
// 到期任务按到期时间、再按加入顺序执行
func (s *Scheduler) Update() int {
	now := s.clock.Now()

	var due, pending []scheduledTask
	for _, t := range s.tasks {
		if !t.due.After(now) {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	if len(due) == 0 {
		return 0
	}
	s.tasks = pending

	slices.SortFunc(due, func(a, b scheduledTask) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	ran := 0
	for _, t := range due {
		// 前一个任务可能已经改变了运行上下文，逐个校验
		if s.guard != nil && !s.guard(t.tag) {
			s.logger.Debug("dropped stale task", "task", t.name, "step", t.tag.Step)
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

// CancelAll 丢弃所有未执行的任务
func (s *Scheduler) CancelAll() {
	s.tasks = s.tasks[:0]
}

// Pending 返回未执行的任务数量
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}
