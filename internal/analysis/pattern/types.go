package pattern

// Kind 图形形态类别。
type Kind string

const (
	KindHeadAndShoulders        Kind = "head_and_shoulders"
	KindInverseHeadAndShoulders Kind = "inverse_head_and_shoulders"
	KindAscendingTriangle       Kind = "ascending_triangle"
	KindDescendingTriangle      Kind = "descending_triangle"
	KindSymmetricalTriangle     Kind = "symmetrical_triangle"
	KindDoubleTop               Kind = "double_top"
	KindDoubleBottom            Kind = "double_bottom"
)

// AllKinds 返回全部支持的形态类别（默认检测集合）。
func AllKinds() []Kind {
	return []Kind{
		KindHeadAndShoulders,
		KindInverseHeadAndShoulders,
		KindAscendingTriangle,
		KindDescendingTriangle,
		KindSymmetricalTriangle,
		KindDoubleTop,
		KindDoubleBottom,
	}
}

// Bias 形态蕴含的方向判断。
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// 可视化关键点类别。
const (
	PointPeak   = "peak"
	PointTrough = "trough"
	PointTarget = "target"
)

// KeyPoint 可视化骨架上的一个标注顶点，时间为毫秒。
type KeyPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
	Kind  string  `json:"kind"`
	Label string  `json:"label,omitempty"`
}

// Line 连接两个 K 线下标的参考线。
type Line struct {
	FromIndex int    `json:"from_index"`
	ToIndex   int    `json:"to_index"`
	Role      string `json:"role"`
	Style     string `json:"style,omitempty"`
}

// Area 阴影区域（例如三角形收敛带）。
type Area struct {
	FromIndex int     `json:"from_index"`
	ToIndex   int     `json:"to_index"`
	Top       float64 `json:"top"`
	Bottom    float64 `json:"bottom"`
	Role      string  `json:"role,omitempty"`
}

// Visualization 供 UI 层直接描画的骨架；KeyPoints 严格按时间升序。
type Visualization struct {
	KeyPoints []KeyPoint `json:"key_points"`
	Lines     []Line     `json:"lines"`
	Areas     []Area     `json:"areas,omitempty"`
}

// Metrics 形态的交易指标。公共字段所有形态都有，
// 各族的细节走按需填充的指针子块（缺省省略）。
type Metrics struct {
	FormationPeriod int     `json:"formation_period"`
	Symmetry        float64 `json:"symmetry,omitempty"`
	BreakoutLevel   float64 `json:"breakout_level"`
	TargetLevel     float64 `json:"target_level"`
	StopLoss        float64 `json:"stop_loss"`

	HeadShoulders *HeadShouldersMetrics `json:"head_shoulders,omitempty"`
	Triangle      *TriangleMetrics      `json:"triangle,omitempty"`
	Double        *DoubleMetrics        `json:"double,omitempty"`
}

// HeadShouldersMetrics 头肩形态的细节。
type HeadShouldersMetrics struct {
	LeftShoulderPrice  float64 `json:"left_shoulder_price"`
	HeadPrice          float64 `json:"head_price"`
	RightShoulderPrice float64 `json:"right_shoulder_price"`
	NecklinePrice      float64 `json:"neckline_price"`
	ShoulderDiff       float64 `json:"shoulder_diff"`
	NecklineDiff       float64 `json:"neckline_diff"`
	TimeSymmetry       float64 `json:"time_symmetry"`
}

// TriangleMetrics 三角形态的细节。
type TriangleMetrics struct {
	HighSlope float64 `json:"high_slope"`
	LowSlope  float64 `json:"low_slope"`
	LastHigh  float64 `json:"last_high"`
	LastLow   float64 `json:"last_low"`
	Window    int     `json:"window"`
}

// DoubleMetrics 双顶/双底形态的细节。
type DoubleMetrics struct {
	FirstPeakPrice  float64 `json:"first_peak_price"`
	SecondPeakPrice float64 `json:"second_peak_price"`
	NecklinePrice   float64 `json:"neckline_price"`
	PriceDiff       float64 `json:"price_diff"`
}

// Analysis 一次检测命中的完整结果。纯值对象，构造后不再修改；
// 持久化 id 与入库时间由存储层负责。
type Analysis struct {
	Kind          Kind          `json:"kind"`
	StartTime     int64         `json:"start_time"`
	EndTime       int64         `json:"end_time"`
	StartIndex    int           `json:"start_index"`
	EndIndex      int           `json:"end_index"`
	Confidence    float64       `json:"confidence"`
	Visualization Visualization `json:"visualization"`
	Metrics       Metrics       `json:"metrics"`
	Direction     Bias          `json:"direction"`
}
