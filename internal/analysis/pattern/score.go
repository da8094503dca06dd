package pattern

import "math"

// 各族置信度打分的基准常数。
const (
	baseConfidence = 0.7

	hsShoulderWeight = 0.15
	hsNecklineWeight = 0.15
	hsSymmetryWeight = 0.10
	hsMaxConfidence  = 0.95

	triangleBonusWeight   = 0.25
	triangleMaxConfidence = 0.95

	doubleDiffWeight = 0.3
)

// Scoring 把几何量换算成置信度。拆成接口是为了让调参
// （或离线回测出来的替代公式）不用动检测器本身。
type Scoring interface {
	// HeadShoulders 输入肩部价差比、颈线价差比与时间对称度，均在 [0,1]。
	HeadShoulders(shoulderDiff, necklineDiff, timeSymmetry float64) float64
	// Triangle 输入该窗口的高点/低点趋势线斜率。
	Triangle(kind Kind, highSlope, lowSlope float64) float64
	// Double 输入两顶（底）的价差比。
	Double(priceDiff float64) float64
}

// DefaultScoring 生产默认打分。
type DefaultScoring struct{}

func (DefaultScoring) HeadShoulders(shoulderDiff, necklineDiff, timeSymmetry float64) float64 {
	conf := baseConfidence
	conf += math.Min(hsShoulderWeight, (1-shoulderDiff*10)*hsShoulderWeight)
	conf += math.Min(hsNecklineWeight, (1-necklineDiff*20)*hsNecklineWeight)
	conf += timeSymmetry * hsSymmetryWeight
	if conf > hsMaxConfidence {
		conf = hsMaxConfidence
	}
	return clamp01(conf)
}

func (DefaultScoring) Triangle(kind Kind, highSlope, lowSlope float64) float64 {
	var bonus float64
	switch kind {
	case KindAscendingTriangle:
		// 阻力线越平，形态越标准。
		bonus = triangleBonusWeight * (1 - math.Min(1, math.Abs(highSlope)/triangleSlopeThreshold))
	case KindDescendingTriangle:
		bonus = triangleBonusWeight * (1 - math.Min(1, math.Abs(lowSlope)/triangleSlopeThreshold))
	case KindSymmetricalTriangle:
		// 两条线斜率越接近互为镜像，对称度越高。
		denom := math.Max(math.Abs(highSlope), math.Abs(lowSlope))
		if denom > 0 {
			bonus = triangleBonusWeight * (1 - math.Min(1, math.Abs(highSlope+lowSlope)/denom))
		}
	}
	conf := baseConfidence + bonus
	if conf > triangleMaxConfidence {
		conf = triangleMaxConfidence
	}
	return clamp01(conf)
}

func (DefaultScoring) Double(priceDiff float64) float64 {
	return clamp01(baseConfidence + doubleDiffWeight*(1-priceDiff))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
