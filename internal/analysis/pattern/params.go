package pattern

import (
	"errors"
	"fmt"
)

// 检测参数默认值。
const (
	DefaultLookbackPeriod = 100
	DefaultMinConfidence  = 0.7
	MaxLookbackPeriod     = 500
)

// ErrInvalidLookback 回看窗口非正或超过 MaxLookbackPeriod。
// 窗口小于形态所需的 K 线数时不是错误，只是检不出结果。
var ErrInvalidLookback = errors.New("lookback period out of range")

// ErrInvalidConfidence 置信度阈值超出 [0, 1]。
var ErrInvalidConfidence = errors.New("min confidence out of range")

// ErrUnknownKind 请求了不支持的形态类别。
var ErrUnknownKind = errors.New("unknown pattern kind")

// Params 一次检测的入参。零值字段按默认值补齐，Kinds 为空表示全部。
type Params struct {
	LookbackPeriod int     `json:"lookback_period"`
	MinConfidence  float64 `json:"min_confidence"`
	Kinds          []Kind  `json:"kinds,omitempty"`
}

// withDefaults 补齐零值字段，不修改原值。
func (p Params) withDefaults() Params {
	if p.LookbackPeriod == 0 {
		p.LookbackPeriod = DefaultLookbackPeriod
	}
	if p.MinConfidence == 0 {
		p.MinConfidence = DefaultMinConfidence
	}
	if len(p.Kinds) == 0 {
		p.Kinds = AllKinds()
	}
	return p
}

// Validate 校验补齐后的参数，返回可用 errors.Is 判别的类型化错误。
func (p Params) Validate() error {
	if p.LookbackPeriod <= 0 || p.LookbackPeriod > MaxLookbackPeriod {
		return fmt.Errorf("lookback_period=%d (want 1..%d): %w",
			p.LookbackPeriod, MaxLookbackPeriod, ErrInvalidLookback)
	}
	if p.MinConfidence < 0 || p.MinConfidence > 1 {
		return fmt.Errorf("min_confidence=%v: %w", p.MinConfidence, ErrInvalidConfidence)
	}
	known := make(map[Kind]struct{}, len(AllKinds()))
	for _, k := range AllKinds() {
		known[k] = struct{}{}
	}
	for _, k := range p.Kinds {
		if _, ok := known[k]; !ok {
			return fmt.Errorf("kind=%q: %w", k, ErrUnknownKind)
		}
	}
	return nil
}

// kindSet 便于各族快速判断是否被请求。
func (p Params) kindSet() map[Kind]struct{} {
	set := make(map[Kind]struct{}, len(p.Kinds))
	for _, k := range p.Kinds {
		set[k] = struct{}{}
	}
	return set
}
