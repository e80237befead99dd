package trainer

import "github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"

// Hooks 训练过程的观察回调，任意字段都可以为 nil
type Hooks struct {
	// OnOutcome 每次手势判定之后调用（包括被忽略的手势）
	OnOutcome func(game.Outcome)
	// OnStepEnter 进入步骤时调用（包括新运行的第一步）
	OnStepEnter func(game.Step)
	// OnRunComplete 最后一步完成时调用
	OnRunComplete func(game.ProcedureSnapshot)
	// OnFeedback 反馈面板显示新消息时调用
	OnFeedback func(game.Feedback)
}

// MergeHooks 合并多组回调，按参数顺序依次调用
func MergeHooks(hooks ...Hooks) Hooks {
	var merged Hooks
	for _, h := range hooks {
		merged.OnOutcome = chain(merged.OnOutcome, h.OnOutcome)
		merged.OnStepEnter = chain(merged.OnStepEnter, h.OnStepEnter)
		merged.OnRunComplete = chain(merged.OnRunComplete, h.OnRunComplete)
		merged.OnFeedback = chain(merged.OnFeedback, h.OnFeedback)
	}
	return merged
}

func chain[T any](first, second func(T)) func(T) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(v T) {
		first(v)
		second(v)
	}
}
