package market

import (
	"errors"
	"fmt"
	"math"
)

// Candle 单根 K 线，时间为毫秒（与 Binance kline 约定一致），按时间升序排列。
// 值类型，调用方持有；引擎不修改。
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Trades    int64   `json:"trades,omitempty"`
}

// ErrNonMonotonic K 线时间非严格递增（调用方契约被破坏）。
var ErrNonMonotonic = errors.New("candle open times are not strictly ascending")

// ErrMalformedCandle K 线价格字段包含 NaN/Inf 或负值。
var ErrMalformedCandle = errors.New("candle contains malformed price fields")

// ValidateSeries 在进入分析引擎前做防御式校验：
// 时间必须严格递增，价格必须是有限非负数。
func ValidateSeries(candles []Candle) error {
	for i, c := range candles {
		if i > 0 && c.OpenTime <= candles[i-1].OpenTime {
			return fmt.Errorf("candle %d (open_time=%d): %w", i, c.OpenTime, ErrNonMonotonic)
		}
		for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("candle %d (open_time=%d): %w", i, c.OpenTime, ErrMalformedCandle)
			}
		}
	}
	return nil
}

// ExtractSeries 拆出 close/high/low/volume 四条序列，供指标与图形计算复用。
func ExtractSeries(candles []Candle) (closes, highs, lows, volumes []float64) {
	n := len(candles)
	if n == 0 {
		return nil, nil, nil, nil
	}
	closes = make([]float64, n)
	highs = make([]float64, n)
	lows = make([]float64, n)
	volumes = make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}
	return closes, highs, lows, volumes
}
