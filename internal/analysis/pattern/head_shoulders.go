package pattern

import (
	"math"
	"sort"

	"crest/internal/analysis/extrema"
	"crest/internal/market"
)

// 头肩形态的几何约束。
const (
	hsMaxShoulderDiff = 0.03 // 两肩价差比上限
	hsMaxResults      = 3
)

// detectHeadShoulders 在窗口内穷举 (左肩, 头, 右肩) 三元组。
// inverse=true 时检测头肩底：主序列换成谷，颈线点换成峰，比较方向取反。
func detectHeadShoulders(candles []market.Candle, radius int, inverse bool, sc Scoring) []Analysis {
	primary := extrema.FindPeaks(candles, radius)
	neckSrc := extrema.FindTroughs(candles, radius)
	if inverse {
		primary, neckSrc = extrema.FindTroughs(candles, radius), extrema.FindPeaks(candles, radius)
	}
	if len(primary) < 3 || len(neckSrc) < 2 {
		return nil
	}

	higher := func(a, b float64) bool { return a > b }
	if inverse {
		higher = func(a, b float64) bool { return a < b }
	}

	out := make([]Analysis, 0, 4)
	for i := 0; i < len(primary)-2; i++ {
		for j := i + 1; j < len(primary)-1; j++ {
			for k := j + 1; k < len(primary); k++ {
				left, head, right := primary[i], primary[j], primary[k]
				if !higher(head.Value, left.Value) || !higher(head.Value, right.Value) {
					continue
				}
				shoulderDiff := relDiff(left.Value, right.Value)
				if shoulderDiff > hsMaxShoulderDiff {
					continue
				}
				leftNeck, ok := extremeBetween(neckSrc, left.Index, head.Index, !inverse)
				if !ok {
					continue
				}
				rightNeck, ok := extremeBetween(neckSrc, head.Index, right.Index, !inverse)
				if !ok {
					continue
				}
				necklineDiff := relDiff(leftNeck.Value, rightNeck.Value)
				timeSym := timeSymmetry(left.Index, head.Index, right.Index)
				conf := sc.HeadShoulders(shoulderDiff, necklineDiff, timeSym)

				out = append(out, buildHeadShoulders(candles, inverse, conf,
					left, head, right, leftNeck, rightNeck,
					shoulderDiff, necklineDiff, timeSym))
			}
		}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Confidence > out[b].Confidence })
	if len(out) > hsMaxResults {
		out = out[:hsMaxResults]
	}
	return out
}

// extremeBetween 在 (lo, hi) 开区间内找最深的颈线点：
// pickMin=true 取最低谷（头肩顶），否则取最高峰（头肩底）。
func extremeBetween(points []extrema.Point, lo, hi int, pickMin bool) (extrema.Point, bool) {
	var best extrema.Point
	found := false
	for _, p := range points {
		if p.Index <= lo || p.Index >= hi {
			continue
		}
		if !found ||
			(pickMin && p.Value < best.Value) ||
			(!pickMin && p.Value > best.Value) {
			best = p
			found = true
		}
	}
	return best, found
}

// timeSymmetry 头到两肩的时间间距越接近，对称度越高，范围 [0,1]。
func timeSymmetry(left, head, right int) float64 {
	l := float64(head - left)
	r := float64(right - head)
	longer := math.Max(l, r)
	if longer == 0 {
		return 0
	}
	return 1 - math.Abs(l-r)/longer
}

func buildHeadShoulders(candles []market.Candle, inverse bool, conf float64,
	left, head, right, leftNeck, rightNeck extrema.Point,
	shoulderDiff, necklineDiff, timeSym float64) Analysis {

	kind := KindHeadAndShoulders
	direction := BiasBearish
	vertexKind, neckKind := PointPeak, PointTrough
	if inverse {
		kind = KindInverseHeadAndShoulders
		direction = BiasBullish
		vertexKind, neckKind = PointTrough, PointPeak
	}

	// 颈线价取两个颈线点均值；目标位 = 颈线 ± 头到颈线的高度。
	neckline := (leftNeck.Value + rightNeck.Value) / 2
	height := math.Abs(head.Value - neckline)
	target := neckline - height
	if inverse {
		target = neckline + height
	}

	points := []KeyPoint{
		{Time: candles[left.Index].OpenTime, Value: left.Value, Kind: vertexKind, Label: "Left Shoulder"},
		{Time: candles[leftNeck.Index].OpenTime, Value: leftNeck.Value, Kind: neckKind, Label: "Neckline"},
		{Time: candles[head.Index].OpenTime, Value: head.Value, Kind: vertexKind, Label: "Head"},
		{Time: candles[rightNeck.Index].OpenTime, Value: rightNeck.Value, Kind: neckKind, Label: "Neckline"},
		{Time: candles[right.Index].OpenTime, Value: right.Value, Kind: vertexKind, Label: "Right Shoulder"},
		{Time: candles[len(candles)-1].CloseTime, Value: target, Kind: PointTarget, Label: "Target"},
	}

	return Analysis{
		Kind:       kind,
		StartTime:  candles[left.Index].OpenTime,
		EndTime:    candles[right.Index].OpenTime,
		StartIndex: left.Index,
		EndIndex:   right.Index,
		Confidence: conf,
		Direction:  direction,
		Visualization: Visualization{
			KeyPoints: points,
			Lines: []Line{
				{FromIndex: leftNeck.Index, ToIndex: rightNeck.Index, Role: "neckline", Style: "dashed"},
				{FromIndex: left.Index, ToIndex: head.Index, Role: "outline", Style: "solid"},
				{FromIndex: head.Index, ToIndex: right.Index, Role: "outline", Style: "solid"},
			},
		},
		Metrics: Metrics{
			FormationPeriod: right.Index - left.Index + 1,
			Symmetry:        timeSym,
			BreakoutLevel:   neckline,
			TargetLevel:     target,
			StopLoss:        head.Value,
			HeadShoulders: &HeadShouldersMetrics{
				LeftShoulderPrice:  left.Value,
				HeadPrice:          head.Value,
				RightShoulderPrice: right.Value,
				NecklinePrice:      neckline,
				ShoulderDiff:       shoulderDiff,
				NecklineDiff:       necklineDiff,
				TimeSymmetry:       timeSym,
			},
		},
	}
}

// relDiff 相对价差比：|a-b| / max(a,b)。两值均为 0 时返回 0。
func relDiff(a, b float64) float64 {
	denom := math.Max(a, b)
	if denom == 0 {
		return 0
	}
	return math.Abs(a-b) / denom
}
