package game

// Reason 手势结果的原因
type Reason string

const (
	ReasonAccepted            Reason = "accepted"
	ReasonWrongTool           Reason = "wrong_tool"           // 物品类型与步骤不符，不做几何判定
	ReasonOutOfRange          Reason = "out_of_range"         // 位置超出容差
	ReasonBadAngle            Reason = "bad_angle"            // 角度超出容差
	ReasonMissingPrerequisite Reason = "missing_prerequisite" // 前置步骤未完成
	ReasonOutsideContainer    Reason = "outside_container"    // 放下点不在容器内
	ReasonSceneRebuilt        Reason = "scene_rebuilt"        // 步骤场景缺失，已自愈重建
	ReasonIgnored             Reason = "ignored"              // 重复放置或推进已排队，无副作用
	ReasonNoGesture           Reason = "no_gesture"           // 没有进行中的拖拽
	ReasonInactive            Reason = "inactive"             // 流程已结束
)

// Category 反馈文字的类别
type Category string

const (
	CategorySuccess Category = "success"
	CategoryError   Category = "error"
	CategoryInfo    Category = "info"
)

// Outcome 一次手势的判定结果
// 学员的错误操作是正常结果而不是 error
type Outcome struct {
	Accepted bool
	Reason   Reason
	Message  string
	Category Category
	// Step 判定时的步骤序号
	Step int
}

// Rejected 判断是否为计入错误次数的拒绝
func (o Outcome) Rejected() bool {
	if o.Accepted {
		return false
	}
	switch o.Reason {
	case ReasonIgnored, ReasonNoGesture, ReasonInactive:
		return false
	}
	return true
}

// Accept 构造接受结果
func Accept(step int, message string) Outcome {
	return Outcome{Accepted: true, Reason: ReasonAccepted, Message: message, Category: CategorySuccess, Step: step}
}

// Reject 构造拒绝结果
func Reject(step int, reason Reason, message string) Outcome {
	return Outcome{Reason: reason, Message: message, Category: CategoryError, Step: step}
}

// Ignore 构造无副作用的结果（不计错误、不显示消息）
func Ignore(step int, reason Reason) Outcome {
	return Outcome{Reason: reason, Category: CategoryInfo, Step: step}
}
