package pattern

import (
	"math"
	"sort"

	"crest/internal/analysis/extrema"
	"crest/internal/market"
)

// 双顶/双底的几何约束。
const (
	doubleMaxPriceDiff = 0.01 // 两个极值的价差比上限
	doubleMaxResults   = 2
)

// detectDoubles 穷举同类极值两两组合。bottom=true 检测双底：
// 主序列换成谷，颈线点换成两谷之间的最高峰。
func detectDoubles(candles []market.Candle, radius int, bottom bool, sc Scoring) []Analysis {
	primary := extrema.FindPeaks(candles, radius)
	neckSrc := extrema.FindTroughs(candles, radius)
	if bottom {
		primary, neckSrc = extrema.FindTroughs(candles, radius), extrema.FindPeaks(candles, radius)
	}
	if len(primary) < 2 || len(neckSrc) < 1 {
		return nil
	}

	out := make([]Analysis, 0, 4)
	for i := 0; i < len(primary)-1; i++ {
		for j := i + 1; j < len(primary); j++ {
			first, second := primary[i], primary[j]
			priceDiff := relDiff(first.Value, second.Value)
			if priceDiff > doubleMaxPriceDiff {
				continue
			}
			neck, ok := extremeBetween(neckSrc, first.Index, second.Index, !bottom)
			if !ok {
				continue
			}
			conf := sc.Double(priceDiff)
			out = append(out, buildDouble(candles, bottom, conf, first, second, neck, priceDiff))
		}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Confidence > out[b].Confidence })
	if len(out) > doubleMaxResults {
		out = out[:doubleMaxResults]
	}
	return out
}

func buildDouble(candles []market.Candle, bottom bool, conf float64,
	first, second, neck extrema.Point, priceDiff float64) Analysis {

	kind := KindDoubleTop
	direction := BiasBearish
	vertexKind, neckKind := PointPeak, PointTrough
	firstLabel, secondLabel := "First Top", "Second Top"
	if bottom {
		kind = KindDoubleBottom
		direction = BiasBullish
		vertexKind, neckKind = PointTrough, PointPeak
		firstLabel, secondLabel = "First Bottom", "Second Bottom"
	}

	// 目标位 = 颈线 ± 顶（底）到颈线的高度；止损放在更极端的那个顶（底）。
	neckline := neck.Value
	height := math.Abs(first.Value - neckline)
	target := neckline - height
	stop := math.Max(first.Value, second.Value)
	if bottom {
		target = neckline + height
		stop = math.Min(first.Value, second.Value)
	}

	return Analysis{
		Kind:       kind,
		StartTime:  candles[first.Index].OpenTime,
		EndTime:    candles[second.Index].OpenTime,
		StartIndex: first.Index,
		EndIndex:   second.Index,
		Confidence: conf,
		Direction:  direction,
		Visualization: Visualization{
			KeyPoints: []KeyPoint{
				{Time: candles[first.Index].OpenTime, Value: first.Value, Kind: vertexKind, Label: firstLabel},
				{Time: candles[neck.Index].OpenTime, Value: neck.Value, Kind: neckKind, Label: "Neckline"},
				{Time: candles[second.Index].OpenTime, Value: second.Value, Kind: vertexKind, Label: secondLabel},
				{Time: candles[len(candles)-1].CloseTime, Value: target, Kind: PointTarget, Label: "Target"},
			},
			Lines: []Line{
				{FromIndex: first.Index, ToIndex: second.Index, Role: "neckline", Style: "dashed"},
			},
		},
		Metrics: Metrics{
			FormationPeriod: second.Index - first.Index + 1,
			BreakoutLevel:   neckline,
			TargetLevel:     target,
			StopLoss:        stop,
			Double: &DoubleMetrics{
				FirstPeakPrice:  first.Value,
				SecondPeakPrice: second.Value,
				NecklinePrice:   neckline,
				PriceDiff:       priceDiff,
			},
		},
	}
}
