package indicator

import (
	"testing"

	"crest/internal/market"
)

func trendingCandles(n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		v := 100 + float64(i)*0.5
		out[i] = market.Candle{
			OpenTime:  int64(i) * 60000,
			CloseTime: int64(i)*60000 + 59999,
			Open:      v, High: v + 1, Low: v - 1, Close: v, Volume: 10,
		}
	}
	return out
}

func TestBuildSnapshot(t *testing.T) {
	candles := trendingCandles(120)
	snap, err := BuildSnapshot(candles, Settings{Symbol: "BTCUSDT", Interval: "4h"})
	if err != nil {
		t.Fatalf("计算快照失败: %v", err)
	}
	if snap.Symbol != "BTCUSDT" || snap.Count != 120 {
		t.Fatalf("快照元信息异常: %+v", snap)
	}
	for _, key := range []string{"ema_fast", "ema_slow", "rsi", "atr"} {
		v, ok := snap.Values[key]
		if !ok {
			t.Fatalf("快照应包含 %s", key)
		}
		if v.Latest <= 0 {
			t.Fatalf("%s 最新值应为正, 实际=%v", key, v.Latest)
		}
	}
	// 单边上行：价格在均线上方，RSI 处于超买区。
	if snap.Values["ema_fast"].State != "above" {
		t.Fatalf("上行序列价格应在快线上方, 实际=%v", snap.Values["ema_fast"].State)
	}
	if snap.Values["rsi"].State != "overbought" {
		t.Fatalf("单边上行 RSI 应为超买, 实际=%+v", snap.Values["rsi"])
	}
}

func TestBuildSnapshotShortSeries(t *testing.T) {
	// 不足指标周期时对应指标缺席，但不报错。
	snap, err := BuildSnapshot(trendingCandles(10), Settings{})
	if err != nil {
		t.Fatalf("短序列不应报错: %v", err)
	}
	if _, ok := snap.Values["ema_slow"]; ok {
		t.Fatalf("10 根 K 线不应产出 EMA55")
	}
}

func TestBuildSnapshotEmpty(t *testing.T) {
	if _, err := BuildSnapshot(nil, Settings{}); err == nil {
		t.Fatalf("空序列应报错")
	}
}
