package pattern

import (
	"math"
	"sort"

	"crest/internal/analysis/extrema"
	"crest/internal/analysis/trendline"
	"crest/internal/market"
)

// 三角形扫描参数。
const (
	triangleMinWindow      = 20
	triangleMaxWindow      = 60
	triangleWindowStep     = 5
	triangleSlopeThreshold = 0.001 // 斜率绝对值低于该值视为"平"
	triangleMaxResults     = 2
)

// detectTriangles 以 20,25,...,min(60,n) 的窗口长度各扫一遍序列尾部，
// 对窗口内的摆动高/低点分别拟合趋势线，按斜率组合分类。
func detectTriangles(candles []market.Candle, radius int, sc Scoring) []Analysis {
	n := len(candles)
	out := make([]Analysis, 0, 4)
	for window := triangleMinWindow; window <= n && window <= triangleMaxWindow; window += triangleWindowStep {
		start := n - window
		slice := candles[start:]
		highs := extrema.FindPeaks(slice, radius)
		lows := extrema.FindTroughs(slice, radius)
		if len(highs) < 2 || len(lows) < 2 {
			continue
		}
		highLine := trendline.Fit(highs)
		lowLine := trendline.Fit(lows)
		kind, ok := classifyTriangle(highLine.Slope, lowLine.Slope)
		if !ok {
			continue
		}
		conf := sc.Triangle(kind, highLine.Slope, lowLine.Slope)
		out = append(out, buildTriangle(candles, start, window, kind, conf, highs, lows, highLine, lowLine))
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Confidence > out[b].Confidence })
	if len(out) > triangleMaxResults {
		out = out[:triangleMaxResults]
	}
	return out
}

// classifyTriangle 按两条趋势线斜率给出三角形类别：
// 上升 = 阻力平 + 支撑升；下降 = 阻力降 + 支撑平；对称 = 阻力降 + 支撑升。
func classifyTriangle(highSlope, lowSlope float64) (Kind, bool) {
	t := triangleSlopeThreshold
	flatHigh := math.Abs(highSlope) < t
	flatLow := math.Abs(lowSlope) < t
	switch {
	case flatHigh && lowSlope > t:
		return KindAscendingTriangle, true
	case highSlope < -t && flatLow:
		return KindDescendingTriangle, true
	case highSlope < -t && lowSlope > t:
		return KindSymmetricalTriangle, true
	}
	return "", false
}

func buildTriangle(candles []market.Candle, start, window int, kind Kind, conf float64,
	highs, lows []extrema.Point, highLine, lowLine trendline.Line) Analysis {

	lastHigh := highs[len(highs)-1].Value
	lastLow := lows[len(lows)-1].Value
	// 最宽处的高度用于量度目标位。
	height := math.Abs(highs[0].Value - lows[0].Value)

	var breakout, target, stop float64
	direction := BiasNeutral
	switch kind {
	case KindAscendingTriangle:
		direction = BiasBullish
		breakout = lastHigh
		target = breakout + height
		stop = lastLow
	case KindDescendingTriangle:
		direction = BiasBearish
		breakout = lastLow
		target = breakout - height
		stop = lastHigh
	default:
		// 对称三角形方向中性：目标/止损给出上下对称的突破投影带。
		breakout = (lastHigh + lastLow) / 2
		target = breakout + height/2
		stop = breakout - height/2
	}

	points := make([]KeyPoint, 0, len(highs)+len(lows)+1)
	for _, p := range highs {
		points = append(points, KeyPoint{
			Time: candles[start+p.Index].OpenTime, Value: p.Value, Kind: PointPeak, Label: "Swing High",
		})
	}
	for _, p := range lows {
		points = append(points, KeyPoint{
			Time: candles[start+p.Index].OpenTime, Value: p.Value, Kind: PointTrough, Label: "Swing Low",
		})
	}
	points = append(points, KeyPoint{
		Time: candles[len(candles)-1].CloseTime, Value: target, Kind: PointTarget, Label: "Target",
	})
	points = sortKeyPoints(points)

	end := len(candles) - 1
	return Analysis{
		Kind:       kind,
		StartTime:  candles[start].OpenTime,
		EndTime:    candles[end].OpenTime,
		StartIndex: start,
		EndIndex:   end,
		Confidence: conf,
		Direction:  direction,
		Visualization: Visualization{
			KeyPoints: points,
			Lines: []Line{
				{FromIndex: start + highs[0].Index, ToIndex: start + highs[len(highs)-1].Index, Role: "resistance", Style: "solid"},
				{FromIndex: start + lows[0].Index, ToIndex: start + lows[len(lows)-1].Index, Role: "support", Style: "solid"},
			},
			Areas: []Area{
				{FromIndex: start, ToIndex: end, Top: highs[0].Value, Bottom: lows[0].Value, Role: "convergence"},
			},
		},
		Metrics: Metrics{
			FormationPeriod: window,
			BreakoutLevel:   breakout,
			TargetLevel:     target,
			StopLoss:        stop,
			Triangle: &TriangleMetrics{
				HighSlope: highLine.Slope,
				LowSlope:  lowLine.Slope,
				LastHigh:  lastHigh,
				LastLow:   lastLow,
				Window:    window,
			},
		},
	}
}

// sortKeyPoints 按时间稳定排序并丢弃撞在同一时刻的重复点，
// 保证可视化骨架严格按时间升序。
func sortKeyPoints(points []KeyPoint) []KeyPoint {
	sort.SliceStable(points, func(a, b int) bool { return points[a].Time < points[b].Time })
	w := 0
	for _, p := range points {
		if w > 0 && p.Time == points[w-1].Time {
			continue
		}
		points[w] = p
		w++
	}
	return points[:w]
}
