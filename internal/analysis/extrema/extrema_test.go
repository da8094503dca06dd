package extrema

import (
	"testing"

	"crest/internal/market"
)

func candlesFrom(values []float64) []market.Candle {
	out := make([]market.Candle, len(values))
	for i, v := range values {
		out[i] = market.Candle{
			OpenTime:  int64(i) * 60000,
			CloseTime: int64(i)*60000 + 59999,
			Open:      v,
			High:      v,
			Low:       v - 1,
			Close:     v,
			Volume:    1,
		}
	}
	return out
}

func TestFindPeaksStrict(t *testing.T) {
	// 单峰在中心，半径 2。
	c := candlesFrom([]float64{1, 2, 3, 5, 3, 2, 1})
	peaks := FindPeaks(c, 2)
	if len(peaks) != 1 {
		t.Fatalf("应检出 1 个峰, 实际=%d", len(peaks))
	}
	if peaks[0].Index != 3 || peaks[0].Value != 5 {
		t.Fatalf("峰位置应为 index=3 value=5, 实际=%+v", peaks[0])
	}
}

func TestFindPeaksTieRejected(t *testing.T) {
	// 平台顶：两个等高点互相打破严格大于，均不算峰。
	c := candlesFrom([]float64{1, 2, 5, 5, 2, 1, 0})
	if peaks := FindPeaks(c, 2); len(peaks) != 0 {
		t.Fatalf("等高平台不应产生峰, 实际=%+v", peaks)
	}
}

func TestFindTroughs(t *testing.T) {
	c := candlesFrom([]float64{9, 8, 7, 5, 7, 8, 9})
	troughs := FindTroughs(c, 2)
	if len(troughs) != 1 {
		t.Fatalf("应检出 1 个谷, 实际=%d", len(troughs))
	}
	if troughs[0].Index != 3 || troughs[0].Value != 4 {
		t.Fatalf("谷位置应为 index=3 value=4(low=close-1), 实际=%+v", troughs[0])
	}
}

func TestShortSeriesReturnsNil(t *testing.T) {
	c := candlesFrom([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	if got := FindPeaks(c, 5); got != nil {
		t.Fatalf("n <= 2*radius 应返回空, 实际=%+v", got)
	}
}

func TestDefaultRadiusApplied(t *testing.T) {
	values := make([]float64, 21)
	for i := range values {
		values[i] = 100 - float64(absInt(i-10)) // 顶在 index 10
	}
	c := candlesFrom(values)
	peaks := FindPeaks(c, 0) // 0 → DefaultRadius
	if len(peaks) != 1 || peaks[0].Index != 10 {
		t.Fatalf("默认半径下应在 index=10 检出峰, 实际=%+v", peaks)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
