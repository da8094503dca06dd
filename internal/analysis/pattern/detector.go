package pattern

import (
	"fmt"
	"sort"

	"crest/internal/logger"
	"crest/internal/market"
)

// Detector 图形形态检测门面：裁剪回看窗口、调度各族检测器、
// 过滤并汇总结果。单个族 panic 不影响其余族（隔离后记日志继续）。
type Detector struct {
	scoring Scoring
	radius  int
}

// NewDetector 构造检测器。scoring 传 nil 使用默认打分。
func NewDetector(scoring Scoring) *Detector {
	if scoring == nil {
		scoring = DefaultScoring{}
	}
	return &Detector{scoring: scoring, radius: 0} // radius=0 → 各检测器内取默认半径
}

// Detect 在 candles 的最后 LookbackPeriod 根上跑所有被请求的形态族，
// 返回按置信度降序排列、且不低于 MinConfidence 的命中。
// 结果内的下标均相对调用方传入的完整切片。
func (d *Detector) Detect(candles []market.Candle, params Params) ([]Analysis, error) {
	params = params.withDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := market.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	offset := 0
	window := candles
	if len(candles) > params.LookbackPeriod {
		offset = len(candles) - params.LookbackPeriod
		window = candles[offset:]
	}

	wanted := params.kindSet()
	has := func(kinds ...Kind) bool {
		for _, k := range kinds {
			if _, ok := wanted[k]; ok {
				return true
			}
		}
		return false
	}

	var results []Analysis
	if has(KindHeadAndShoulders) {
		results = append(results, d.runFamily("head_shoulders", func() []Analysis {
			return detectHeadShoulders(window, d.radius, false, d.scoring)
		})...)
	}
	if has(KindInverseHeadAndShoulders) {
		results = append(results, d.runFamily("inverse_head_shoulders", func() []Analysis {
			return detectHeadShoulders(window, d.radius, true, d.scoring)
		})...)
	}
	if has(KindAscendingTriangle, KindDescendingTriangle, KindSymmetricalTriangle) {
		triangles := d.runFamily("triangle", func() []Analysis {
			return detectTriangles(window, d.radius, d.scoring)
		})
		for _, a := range triangles {
			if _, ok := wanted[a.Kind]; ok {
				results = append(results, a)
			}
		}
	}
	if has(KindDoubleTop) {
		results = append(results, d.runFamily("double_top", func() []Analysis {
			return detectDoubles(window, d.radius, false, d.scoring)
		})...)
	}
	if has(KindDoubleBottom) {
		results = append(results, d.runFamily("double_bottom", func() []Analysis {
			return detectDoubles(window, d.radius, true, d.scoring)
		})...)
	}

	filtered := results[:0]
	for _, a := range results {
		if a.Confidence < params.MinConfidence {
			continue
		}
		if offset > 0 {
			a = shiftIndices(a, offset)
		}
		filtered = append(filtered, a)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Confidence > filtered[j].Confidence
	})
	return filtered, nil
}

// runFamily 隔离执行单个形态族：panic 只丢掉该族的结果。
func (d *Detector) runFamily(name string, fn func() []Analysis) (out []Analysis) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[pattern] %s 检测器 panic，跳过该族: %v", name, r)
			out = nil
		}
	}()
	return fn()
}

// shiftIndices 把窗口内的下标映射回完整切片的下标。
func shiftIndices(a Analysis, offset int) Analysis {
	a.StartIndex += offset
	a.EndIndex += offset
	lines := make([]Line, len(a.Visualization.Lines))
	for i, l := range a.Visualization.Lines {
		l.FromIndex += offset
		l.ToIndex += offset
		lines[i] = l
	}
	a.Visualization.Lines = lines
	if len(a.Visualization.Areas) > 0 {
		areas := make([]Area, len(a.Visualization.Areas))
		for i, ar := range a.Visualization.Areas {
			ar.FromIndex += offset
			ar.ToIndex += offset
			areas[i] = ar
		}
		a.Visualization.Areas = areas
	}
	return a
}
