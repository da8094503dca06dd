package trendline

import (
	"crest/internal/analysis/extrema"
)

// Line 最小二乘拟合结果：value = Slope*index + Intercept。
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Fit 对 (index, value) 摆动点做普通最小二乘回归。
// 点数不足 2 时返回水平线（slope=0），截距取仅有点的值或 0。
func Fit(points []extrema.Point) Line {
	n := len(points)
	if n == 0 {
		return Line{}
	}
	if n == 1 {
		return Line{Slope: 0, Intercept: points[0].Value}
	}
	var sumX, sumY, sumXY, sumXX float64
	fn := float64(n)
	for _, p := range points {
		x := float64(p.Index)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return Line{Slope: 0, Intercept: sumY / fn}
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	return Line{Slope: slope, Intercept: intercept}
}

// ValueAt 返回直线在指定下标处的价格。
func (l Line) ValueAt(index int) float64 {
	return l.Slope*float64(index) + l.Intercept
}
