package market

import (
	"errors"
	"math"
	"testing"
)

func mkSeries(times []int64, closes []float64) []Candle {
	out := make([]Candle, len(times))
	for i := range times {
		out[i] = Candle{
			OpenTime:  times[i],
			CloseTime: times[i] + 59999,
			Open:      closes[i],
			High:      closes[i] + 1,
			Low:       closes[i] - 1,
			Close:     closes[i],
			Volume:    10,
		}
	}
	return out
}

func TestValidateSeriesOK(t *testing.T) {
	c := mkSeries([]int64{0, 60000, 120000}, []float64{100, 101, 102})
	if err := ValidateSeries(c); err != nil {
		t.Fatalf("合法序列不应报错, 实际=%v", err)
	}
}

func TestValidateSeriesNonMonotonic(t *testing.T) {
	c := mkSeries([]int64{0, 60000, 60000}, []float64{100, 101, 102})
	err := ValidateSeries(c)
	if !errors.Is(err, ErrNonMonotonic) {
		t.Fatalf("时间重复应命中 ErrNonMonotonic, 实际=%v", err)
	}
}

func TestValidateSeriesMalformed(t *testing.T) {
	c := mkSeries([]int64{0, 60000}, []float64{100, 101})
	c[1].High = math.NaN()
	err := ValidateSeries(c)
	if !errors.Is(err, ErrMalformedCandle) {
		t.Fatalf("NaN 价格应命中 ErrMalformedCandle, 实际=%v", err)
	}

	c = mkSeries([]int64{0, 60000}, []float64{100, 101})
	c[0].Low = -5
	if err := ValidateSeries(c); !errors.Is(err, ErrMalformedCandle) {
		t.Fatalf("负价应命中 ErrMalformedCandle, 实际=%v", err)
	}
}

func TestExtractSeries(t *testing.T) {
	c := mkSeries([]int64{0, 60000}, []float64{100, 102})
	closes, highs, lows, volumes := ExtractSeries(c)
	if len(closes) != 2 || len(highs) != 2 || len(lows) != 2 || len(volumes) != 2 {
		t.Fatalf("四条序列长度应均为 2")
	}
	if closes[1] != 102 || highs[1] != 103 || lows[1] != 101 || volumes[1] != 10 {
		t.Fatalf("序列取值异常: close=%v high=%v low=%v vol=%v", closes[1], highs[1], lows[1], volumes[1])
	}
}
