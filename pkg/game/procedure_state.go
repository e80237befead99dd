package game

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ProcedureState 学员的一次训练运行
//
// 由流程推进系统独占；校验系统通过同一个指针请求修改，不持有副本。
// Reset 原子地清空所有运行状态。
type ProcedureState struct {
	RunID      uuid.UUID
	Generation uint64

	CurrentStep int
	TotalSteps  int
	Scene       string

	Errors    int
	StartTime time.Time
	EndTime   time.Time
	Complete  bool

	completed map[int]bool
	flags     map[string]bool
	consumed  map[string]bool
}

// NewProcedureState 创建空的运行状态（需要 Reset 后才能使用）
func NewProcedureState(totalSteps int) *ProcedureState {
	return &ProcedureState{
		TotalSteps: totalSteps,
		completed:  make(map[int]bool),
		flags:      make(map[string]bool),
		consumed:   make(map[string]bool),
	}
}

// Reset 开始新的运行：新的运行ID和代数，清空标记、已用工具、已完成步骤和错误计数
func (s *ProcedureState) Reset(now time.Time, firstScene string) {
	s.RunID = uuid.New()
	s.Generation++
	s.CurrentStep = 1
	s.Scene = firstScene
	s.Errors = 0
	s.StartTime = now
	s.EndTime = time.Time{}
	s.Complete = false
	clear(s.completed)
	clear(s.flags)
	clear(s.consumed)
}

// Flag 读取状态标记
func (s *ProcedureState) Flag(name string) bool {
	return s.flags[name]
}

// SetFlag 设置状态标记
func (s *ProcedureState) SetFlag(name string) {
	s.flags[name] = true
}

// ClearFlag 清除状态标记
func (s *ProcedureState) ClearFlag(name string) {
	delete(s.flags, name)
}

// IncrementErrors 错误计数加一
func (s *ProcedureState) IncrementErrors() {
	s.Errors++
}

// Consume 标记工具已使用（不再出现在托盘中）
func (s *ProcedureState) Consume(toolID string) {
	s.consumed[toolID] = true
}

// IsConsumed 判断工具是否已使用
func (s *ProcedureState) IsConsumed(toolID string) bool {
	return s.consumed[toolID]
}

// MarkCompleted 标记步骤已完成
func (s *ProcedureState) MarkCompleted(ordinal int) {
	s.completed[ordinal] = true
}

// IsCompleted 判断步骤是否已完成
func (s *ProcedureState) IsCompleted(ordinal int) bool {
	return s.completed[ordinal]
}

// CompletedCount 返回已完成步骤数量
func (s *ProcedureState) CompletedCount() int {
	return len(s.completed)
}

// Elapsed 返回运行时长；运行结束后固定为结束时刻
func (s *ProcedureState) Elapsed(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.Complete {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

// ProcedureSnapshot 运行状态的只读快照（供界面和计时器显示）
type ProcedureSnapshot struct {
	RunID       uuid.UUID
	CurrentStep int
	TotalSteps  int
	Scene       string
	Completed   []int
	Errors      int
	Elapsed     time.Duration
	Complete    bool
	Flags       map[string]bool
	Consumed    []string
}

// Progress 返回完成比例（0..1）
func (p ProcedureSnapshot) Progress() float64 {
	if p.TotalSteps == 0 {
		return 0
	}
	return float64(len(p.Completed)) / float64(p.TotalSteps)
}

// Snapshot 生成当前状态的快照
func (s *ProcedureState) Snapshot(now time.Time) ProcedureSnapshot {
	return ProcedureSnapshot{
		RunID:       s.RunID,
		CurrentStep: s.CurrentStep,
		TotalSteps:  s.TotalSteps,
		Scene:       s.Scene,
		Completed:   slices.Sorted(maps.Keys(s.completed)),
		Errors:      s.Errors,
		Elapsed:     s.Elapsed(now),
		Complete:    s.Complete,
		Flags:       maps.Clone(s.flags),
		Consumed:    slices.Sorted(maps.Keys(s.consumed)),
	}
}
