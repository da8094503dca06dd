package pattern

import (
	"crest/internal/market"
)

// anchor 分段线性合成序列的锚点。
type anchor struct {
	index int
	value float64
}

// synthSeries 在锚点之间线性插值，产出一条可控形状的价格序列。
// High 取插值，Low 取插值减 1，保证峰谷检测走同一形状。
func synthSeries(anchors ...anchor) []market.Candle {
	n := anchors[len(anchors)-1].index + 1
	values := make([]float64, n)
	for i := 0; i < len(anchors)-1; i++ {
		a, b := anchors[i], anchors[i+1]
		span := b.index - a.index
		for j := 0; j <= span; j++ {
			frac := float64(j) / float64(span)
			values[a.index+j] = a.value + (b.value-a.value)*frac
		}
	}
	out := make([]market.Candle, n)
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

// headShouldersSeries 标准头肩顶：肩 110/110.5，头 120，颈线 ~102。
func headShouldersSeries() []market.Candle {
	return synthSeries(
		anchor{0, 100},
		anchor{20, 110},
		anchor{30, 102},
		anchor{45, 120},
		anchor{60, 102.5},
		anchor{70, 110.5},
		anchor{99, 95},
	)
}

// doubleTopSeries 标准双顶：100 与 100.5，颈线谷 92。
func doubleTopSeries() []market.Candle {
	return synthSeries(
		anchor{0, 88},
		anchor{12, 100},
		anchor{24, 92},
		anchor{36, 100.5},
		anchor{49, 90},
	)
}

// ascendingTriangleSeries 平顶 100、低点逐级抬升的锯齿。
func ascendingTriangleSeries() []market.Candle {
	return synthSeries(
		anchor{0, 95},
		anchor{2, 90},
		anchor{8, 100},
		anchor{14, 93},
		anchor{20, 100},
		anchor{26, 96},
		anchor{32, 100},
		anchor{39, 97},
	)
}

// symmetricalTriangleSeries 高点压低、低点抬升的收敛锯齿。
func symmetricalTriangleSeries() []market.Candle {
	return synthSeries(
		anchor{0, 95},
		anchor{2, 90},
		anchor{8, 103},
		anchor{14, 93},
		anchor{20, 100},
		anchor{26, 96},
		anchor{32, 97},
		anchor{39, 96.5},
	)
}
