package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"crest/internal/market"
)

// Settings 指标窗口参数，零值在计算时补齐默认。
type Settings struct {
	Symbol   string
	Interval string
	EMA      EMASettings
	RSI      RSISettings
	ATR      ATRSettings
}

type EMASettings struct {
	Fast int `json:"fast,omitempty"`
	Slow int `json:"slow,omitempty"`
}

type RSISettings struct {
	Period     int     `json:"period,omitempty"`
	Oversold   float64 `json:"oversold,omitempty"`
	Overbought float64 `json:"overbought,omitempty"`
}

type ATRSettings struct {
	Period int `json:"period,omitempty"`
}

// Value 单个指标的最新值与状态标签。
type Value struct {
	Latest float64 `json:"latest"`
	State  string  `json:"state,omitempty"`
	Note   string  `json:"note,omitempty"`
}

// Snapshot 检测窗口的指标环境，用于充实形态描述与筛选表格。
type Snapshot struct {
	Symbol   string           `json:"symbol"`
	Interval string           `json:"interval"`
	Count    int              `json:"count"`
	Values   map[string]Value `json:"values"`
}

// BuildSnapshot 计算 EMA/RSI/ATR 三组指标的最新状态。
func BuildSnapshot(candles []market.Candle, cfg Settings) (Snapshot, error) {
	snap := Snapshot{
		Symbol:   cfg.Symbol,
		Interval: cfg.Interval,
		Count:    len(candles),
		Values:   make(map[string]Value),
	}
	if len(candles) == 0 {
		return snap, fmt.Errorf("no candles")
	}
	closes, highs, lows, _ := market.ExtractSeries(candles)
	lastClose := closes[len(closes)-1]

	if cfg.EMA.Fast <= 0 {
		cfg.EMA.Fast = 21
	}
	if cfg.EMA.Slow <= 0 {
		cfg.EMA.Slow = 55
	}
	if len(closes) > cfg.EMA.Fast {
		fast := lastValid(sanitizeSeries(talib.Ema(closes, cfg.EMA.Fast)))
		snap.Values["ema_fast"] = Value{
			Latest: round4(fast),
			State:  relativeState(lastClose, fast),
			Note:   fmt.Sprintf("EMA%d vs price", cfg.EMA.Fast),
		}
	}
	if len(closes) > cfg.EMA.Slow {
		slow := lastValid(sanitizeSeries(talib.Ema(closes, cfg.EMA.Slow)))
		snap.Values["ema_slow"] = Value{
			Latest: round4(slow),
			State:  relativeState(lastClose, slow),
			Note:   fmt.Sprintf("EMA%d vs price", cfg.EMA.Slow),
		}
	}

	if cfg.RSI.Period <= 0 {
		cfg.RSI.Period = 14
	}
	if cfg.RSI.Overbought == 0 {
		cfg.RSI.Overbought = 70
	}
	if cfg.RSI.Oversold == 0 {
		cfg.RSI.Oversold = 30
	}
	if len(closes) > cfg.RSI.Period {
		rsi := lastValid(sanitizeSeries(talib.Rsi(closes, cfg.RSI.Period)))
		state := "neutral"
		switch {
		case rsi >= cfg.RSI.Overbought:
			state = "overbought"
		case rsi <= cfg.RSI.Oversold:
			state = "oversold"
		}
		snap.Values["rsi"] = Value{
			Latest: round4(rsi),
			State:  state,
			Note:   fmt.Sprintf("RSI%d", cfg.RSI.Period),
		}
	}

	if cfg.ATR.Period <= 0 {
		cfg.ATR.Period = 14
	}
	if len(closes) > cfg.ATR.Period {
		atr := lastValid(sanitizeSeries(talib.Atr(highs, lows, closes, cfg.ATR.Period)))
		state := ""
		if lastClose > 0 {
			state = fmt.Sprintf("%.2f%% of price", atr/lastClose*100)
		}
		snap.Values["atr"] = Value{
			Latest: round4(atr),
			State:  state,
			Note:   fmt.Sprintf("ATR%d", cfg.ATR.Period),
		}
	}

	return snap, nil
}

// sanitizeSeries 把 NaN/Inf 归零，talib 前导段会产生无效值。
func sanitizeSeries(src []float64) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = 0
			continue
		}
		out[i] = v
	}
	return out
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != 0 {
			return series[i]
		}
	}
	return 0
}

func relativeState(price, ref float64) string {
	if ref == 0 {
		return "unknown"
	}
	if price >= ref {
		return "above"
	}
	return "below"
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
