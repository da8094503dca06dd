package pattern

import (
	"math"
	"testing"
)

func TestDetectHeadShoulders(t *testing.T) {
	candles := headShouldersSeries()
	got := detectHeadShoulders(candles, 0, false, DefaultScoring{})
	if len(got) != 1 {
		t.Fatalf("应检出 1 个头肩顶, 实际=%d", len(got))
	}
	a := got[0]
	if a.Kind != KindHeadAndShoulders || a.Direction != BiasBearish {
		t.Fatalf("类别/方向异常: kind=%v direction=%v", a.Kind, a.Direction)
	}
	if a.StartIndex != 20 || a.EndIndex != 70 {
		t.Fatalf("形态区间应为 [20,70], 实际=[%d,%d]", a.StartIndex, a.EndIndex)
	}
	// 肩差与颈差都很小、时间完全对称，公式溢出后封顶 0.95。
	if a.Confidence != 0.95 {
		t.Fatalf("置信度应封顶 0.95, 实际=%v", a.Confidence)
	}
	m := a.Metrics.HeadShoulders
	if m == nil {
		t.Fatalf("头肩指标子块不应为空")
	}
	if m.HeadPrice != 120 || m.LeftShoulderPrice != 110 || m.RightShoulderPrice != 110.5 {
		t.Fatalf("头肩价位异常: %+v", m)
	}
	if math.Abs(m.TimeSymmetry-1) > 1e-9 {
		t.Fatalf("等距头肩 time_symmetry 应为 1, 实际=%v", m.TimeSymmetry)
	}
	// 目标位 = 颈线 - (头 - 颈线)。
	wantTarget := m.NecklinePrice - (120 - m.NecklinePrice)
	if math.Abs(a.Metrics.TargetLevel-wantTarget) > 1e-9 {
		t.Fatalf("目标位应为 %v, 实际=%v", wantTarget, a.Metrics.TargetLevel)
	}
	if a.Metrics.StopLoss != 120 {
		t.Fatalf("止损应放在头部价位 120, 实际=%v", a.Metrics.StopLoss)
	}
	// 关键点严格按时间升序。
	pts := a.Visualization.KeyPoints
	if len(pts) != 6 {
		t.Fatalf("应有 6 个关键点(含目标), 实际=%d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Time <= pts[i-1].Time {
			t.Fatalf("关键点时间应严格递增, 第 %d 个=%+v", i, pts[i])
		}
	}
}

func TestHeadShouldersShoulderDiffRejected(t *testing.T) {
	// 右肩比左肩低 9%，超出 3% 上限。
	candles := synthSeries(
		anchor{0, 100},
		anchor{20, 110},
		anchor{30, 95},
		anchor{45, 120},
		anchor{60, 95},
		anchor{70, 100},
		anchor{99, 90},
	)
	if got := detectHeadShoulders(candles, 0, false, DefaultScoring{}); len(got) != 0 {
		t.Fatalf("肩差超限不应命中, 实际=%+v", got)
	}
}

func TestHeadShouldersHeadMustDominate(t *testing.T) {
	// 中间峰不是最高点，不构成头。
	candles := synthSeries(
		anchor{0, 100},
		anchor{20, 120},
		anchor{30, 102},
		anchor{45, 110},
		anchor{60, 102},
		anchor{70, 120.5},
		anchor{99, 95},
	)
	if got := detectHeadShoulders(candles, 0, false, DefaultScoring{}); len(got) != 0 {
		t.Fatalf("头不高于双肩不应命中, 实际=%+v", got)
	}
}

func TestDetectInverseHeadShoulders(t *testing.T) {
	// 头肩顶镜像到 200 以下。
	candles := synthSeries(
		anchor{0, 100},
		anchor{20, 90},
		anchor{30, 98},
		anchor{45, 80},
		anchor{60, 97.5},
		anchor{70, 89.5},
		anchor{99, 105},
	)
	got := detectHeadShoulders(candles, 0, true, DefaultScoring{})
	if len(got) != 1 {
		t.Fatalf("应检出 1 个头肩底, 实际=%d", len(got))
	}
	a := got[0]
	if a.Kind != KindInverseHeadAndShoulders || a.Direction != BiasBullish {
		t.Fatalf("类别/方向异常: kind=%v direction=%v", a.Kind, a.Direction)
	}
	m := a.Metrics.HeadShoulders
	if m == nil || m.HeadPrice >= m.LeftShoulderPrice {
		t.Fatalf("头肩底的头应低于肩, 实际=%+v", m)
	}
	// 看涨目标在颈线上方。
	if a.Metrics.TargetLevel <= m.NecklinePrice {
		t.Fatalf("头肩底目标位应高于颈线, target=%v neckline=%v", a.Metrics.TargetLevel, m.NecklinePrice)
	}
}

func TestTimeSymmetry(t *testing.T) {
	if got := timeSymmetry(0, 10, 20); math.Abs(got-1) > 1e-9 {
		t.Fatalf("等距应为 1, 实际=%v", got)
	}
	if got := timeSymmetry(0, 10, 15); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("10:5 间距应为 0.5, 实际=%v", got)
	}
}
