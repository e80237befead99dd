package config

import "errors"

// AnchorCenter 物品中心锚点，始终存在
const AnchorCenter = "center"

// 配置校验的哨兵错误，可以用 errors.Is 判断
var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrUnknownTarget   = errors.New("unknown target")
	ErrUnknownAnchor   = errors.New("unknown anchor")
	ErrUnknownScene    = errors.New("unknown scene")
	ErrUnknownRuleKind = errors.New("unknown rule kind")
)
