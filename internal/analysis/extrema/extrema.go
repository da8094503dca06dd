package extrema

import (
	"math"

	"crest/internal/market"
)

// DefaultRadius 滑动比较窗口的默认半径。
const DefaultRadius = 5

// Point 一个局部极值：index 为 K 线下标，Value 取自 high（峰）或 low（谷）。
type Point struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// FindPeaks 返回局部峰：candles[i].High 严格大于 ±radius 邻域内所有 high。
// n <= 2*radius 时返回空。结果按下标升序。
func FindPeaks(candles []market.Candle, radius int) []Point {
	return find(candles, radius, true)
}

// FindTroughs 返回局部谷，对称地比较 low（严格小于）。
func FindTroughs(candles []market.Candle, radius int) []Point {
	return find(candles, radius, false)
}

func find(candles []market.Candle, radius int, isPeak bool) []Point {
	if radius <= 0 {
		radius = DefaultRadius
	}
	n := len(candles)
	if n <= 2*radius {
		return nil
	}
	out := make([]Point, 0, 8)
	for i := radius; i < n-radius; i++ {
		v := value(candles[i], isPeak)
		if !isFinite(v) {
			continue
		}
		ok := true
		for j := i - radius; j <= i+radius; j++ {
			if j == i {
				continue
			}
			w := value(candles[j], isPeak)
			if !isFinite(w) {
				ok = false
				break
			}
			if isPeak && w >= v {
				ok = false
				break
			}
			if !isPeak && w <= v {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, Point{Index: i, Value: v})
		}
	}
	return out
}

func value(c market.Candle, isPeak bool) float64 {
	if isPeak {
		return c.High
	}
	return c.Low
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
