package pattern

import (
	"errors"
	"testing"

	"crest/internal/market"
)

func TestDetectParamValidation(t *testing.T) {
	d := NewDetector(nil)
	candles := doubleTopSeries()

	if _, err := d.Detect(candles, Params{LookbackPeriod: -5}); !errors.Is(err, ErrInvalidLookback) {
		t.Fatalf("回看 -5 应命中 ErrInvalidLookback, 实际=%v", err)
	}
	if _, err := d.Detect(candles, Params{LookbackPeriod: 600}); !errors.Is(err, ErrInvalidLookback) {
		t.Fatalf("回看 600 应命中 ErrInvalidLookback, 实际=%v", err)
	}
	if _, err := d.Detect(candles, Params{MinConfidence: 1.5}); !errors.Is(err, ErrInvalidConfidence) {
		t.Fatalf("阈值 1.5 应命中 ErrInvalidConfidence, 实际=%v", err)
	}
	if _, err := d.Detect(candles, Params{Kinds: []Kind{"wedge"}}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("未知类别应命中 ErrUnknownKind, 实际=%v", err)
	}
}

func TestDetectSmallLookbackAllowed(t *testing.T) {
	// 小于形态最小规模的回看窗口是合法参数，只是检不出结果。
	d := NewDetector(nil)
	got, err := d.Detect(headShouldersSeries(), Params{LookbackPeriod: 15, MinConfidence: 0.1})
	if err != nil {
		t.Fatalf("回看 15 不应报错: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("15 根窗口内不应有命中, 实际=%d", len(got))
	}
}

func TestDetectMonotonicSeriesEmpty(t *testing.T) {
	// 单边上行序列没有内部极值，所有族都应返回空集。
	d := NewDetector(nil)
	got, err := d.Detect(synthSeries(anchor{0, 100}, anchor{99, 170}), Params{MinConfidence: 0.1})
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("单边上行不应检出任何形态, 实际=%+v", got)
	}
}

func TestDetectRejectsBadSeries(t *testing.T) {
	d := NewDetector(nil)
	candles := doubleTopSeries()
	candles[10].OpenTime = candles[9].OpenTime
	if _, err := d.Detect(candles, Params{}); !errors.Is(err, market.ErrNonMonotonic) {
		t.Fatalf("乱序 K 线应命中 ErrNonMonotonic, 实际=%v", err)
	}
}

func TestDetectKindFilter(t *testing.T) {
	d := NewDetector(nil)
	// 头肩序列里两肩也构成一个合法双顶；只请求头肩时双顶必须被排除。
	got, err := d.Detect(headShouldersSeries(), Params{Kinds: []Kind{KindHeadAndShoulders}})
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if len(got) != 1 || got[0].Kind != KindHeadAndShoulders {
		t.Fatalf("只应返回头肩顶, 实际=%+v", got)
	}

	got, err = d.Detect(headShouldersSeries(), Params{})
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	kinds := make(map[Kind]bool)
	for _, a := range got {
		kinds[a.Kind] = true
	}
	if !kinds[KindHeadAndShoulders] || !kinds[KindDoubleTop] {
		t.Fatalf("默认全类别应同时命中头肩顶与双顶, 实际=%v", kinds)
	}
}

func TestDetectSortedAndFiltered(t *testing.T) {
	d := NewDetector(nil)
	got, err := d.Detect(headShouldersSeries(), Params{MinConfidence: 0.9})
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("0.9 阈值下应仍有命中")
	}
	for i, a := range got {
		if a.Confidence < 0.9 {
			t.Fatalf("第 %d 个结果低于阈值: %v", i, a.Confidence)
		}
		if i > 0 && a.Confidence > got[i-1].Confidence {
			t.Fatalf("结果应按置信度降序, 第 %d 个=%v 前一个=%v", i, a.Confidence, got[i-1].Confidence)
		}
	}
	// 阈值高过一切命中时返回空集而非错误。
	got, err = d.Detect(headShouldersSeries(), Params{MinConfidence: 0.999})
	if err != nil || len(got) != 0 {
		t.Fatalf("超高阈值应返回空集, 实际 len=%d err=%v", len(got), err)
	}
}

func TestDetectLookbackOffset(t *testing.T) {
	// 前面垫 50 根缓慢爬升的 K 线，回看 50 只覆盖双顶尾部；
	// 返回的下标必须映射回完整切片。
	pad := synthSeries(anchor{0, 60}, anchor{49, 87})
	tail := doubleTopSeries()
	candles := make([]market.Candle, 0, len(pad)+len(tail))
	candles = append(candles, pad...)
	base := pad[len(pad)-1].OpenTime + 60000
	for i, c := range tail {
		c.OpenTime = base + int64(i)*60000
		c.CloseTime = c.OpenTime + 59999
		candles = append(candles, c)
	}

	d := NewDetector(nil)
	got, err := d.Detect(candles, Params{LookbackPeriod: 50, Kinds: []Kind{KindDoubleTop}})
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("应检出 1 个双顶, 实际=%d", len(got))
	}
	a := got[0]
	if a.StartIndex != 62 || a.EndIndex != 86 {
		t.Fatalf("下标应映射回完整切片 [62,86], 实际=[%d,%d]", a.StartIndex, a.EndIndex)
	}
	if candles[a.StartIndex].OpenTime != a.StartTime {
		t.Fatalf("StartTime 应与 StartIndex 的 K 线一致: %d vs %d", a.StartTime, candles[a.StartIndex].OpenTime)
	}
	for _, l := range a.Visualization.Lines {
		if l.FromIndex < 50 || l.ToIndex >= len(candles) {
			t.Fatalf("参考线下标越界: %+v", l)
		}
	}
}

// panicScoring 让头肩打分直接 panic，验证族级隔离。
type panicScoring struct{ DefaultScoring }

func (panicScoring) HeadShoulders(_, _, _ float64) float64 {
	panic("scoring exploded")
}

func TestDetectFamilyIsolation(t *testing.T) {
	d := NewDetector(panicScoring{})
	got, err := d.Detect(headShouldersSeries(), Params{
		Kinds: []Kind{KindHeadAndShoulders, KindDoubleTop},
	})
	if err != nil {
		t.Fatalf("单族 panic 不应冒泡成错误: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("头肩族 panic 后双顶族应照常返回")
	}
	for _, a := range got {
		if a.Kind == KindHeadAndShoulders {
			t.Fatalf("panic 的族不应产出结果: %+v", a)
		}
	}
}

func TestParamsDefaults(t *testing.T) {
	p := Params{}.withDefaults()
	if p.LookbackPeriod != DefaultLookbackPeriod || p.MinConfidence != DefaultMinConfidence {
		t.Fatalf("零值应补齐默认参数, 实际=%+v", p)
	}
	if len(p.Kinds) != len(AllKinds()) {
		t.Fatalf("Kinds 为空应展开为全部类别, 实际=%d", len(p.Kinds))
	}
}
