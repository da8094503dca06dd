package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"crest/internal/analysis/pattern"
	"crest/internal/market"
)

// Options 图表渲染参数。
type Options struct {
	Title  string
	Width  string
	Height string
}

func (o Options) withDefaults() Options {
	if o.Width == "" {
		o.Width = "1280px"
	}
	if o.Height == "" {
		o.Height = "720px"
	}
	return o
}

// RenderHTML 把 K 线与形态骨架渲染成可独立打开的 HTML。
// 每个形态叠加两层：关键点散点 + 参考线段。
func RenderHTML(w io.Writer, candles []market.Candle, analyses []pattern.Analysis, o Options) error {
	if len(candles) == 0 {
		return fmt.Errorf("没有可渲染的 K 线")
	}
	o = o.withDefaults()

	x := make([]string, len(candles))
	kdata := make([]opts.KlineData, len(candles))
	timeToX := make(map[int64]int, len(candles))
	for i, c := range candles {
		x[i] = time.UnixMilli(c.OpenTime).UTC().Format("01-02 15:04")
		kdata[i] = opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}}
		timeToX[c.OpenTime] = i
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: o.Width, Height: o.Height}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	kline.SetXAxis(x).AddSeries("kline", kdata)

	for _, a := range analyses {
		kline.Overlap(keyPointLayer(x, timeToX, a))
		for _, seg := range lineLayers(x, candles, a) {
			kline.Overlap(seg)
		}
	}
	return kline.Render(w)
}

// keyPointLayer 标注峰/谷/目标位。
func keyPointLayer(x []string, timeToX map[int64]int, a pattern.Analysis) *charts.Scatter {
	scatter := charts.NewScatter()
	data := make([]opts.ScatterData, 0, len(a.Visualization.KeyPoints))
	for _, p := range a.Visualization.KeyPoints {
		idx, ok := timeToX[p.Time]
		if !ok {
			// 目标位标记落在最后一根收盘时刻，对齐到末根。
			idx = len(x) - 1
		}
		data = append(data, opts.ScatterData{
			Name:       p.Label,
			Value:      []any{x[idx], p.Value},
			SymbolSize: 12,
		})
	}
	scatter.SetXAxis(x).AddSeries(string(a.Kind), data)
	return scatter
}

// lineLayers 为每条参考线生成一段两点折线（颈线、支撑/阻力、轮廓）。
func lineLayers(x []string, candles []market.Candle, a pattern.Analysis) []*charts.Line {
	out := make([]*charts.Line, 0, len(a.Visualization.Lines))
	for _, l := range a.Visualization.Lines {
		if l.FromIndex < 0 || l.ToIndex >= len(candles) || l.FromIndex >= l.ToIndex {
			continue
		}
		fromVal := anchorValue(candles, a, l.FromIndex)
		toVal := anchorValue(candles, a, l.ToIndex)

		data := make([]opts.LineData, len(candles))
		for i := range data {
			data[i] = opts.LineData{Value: nil}
		}
		span := float64(l.ToIndex - l.FromIndex)
		for i := l.FromIndex; i <= l.ToIndex; i++ {
			frac := float64(i-l.FromIndex) / span
			data[i] = opts.LineData{Value: fromVal + (toVal-fromVal)*frac}
		}

		line := charts.NewLine()
		line.SetXAxis(x).AddSeries(l.Role, data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Type: l.Style}),
		)
		out = append(out, line)
	}
	return out
}

// anchorValue 优先用与该下标同时刻的关键点价位，否则退回收盘价。
func anchorValue(candles []market.Candle, a pattern.Analysis, idx int) float64 {
	t := candles[idx].OpenTime
	for _, p := range a.Visualization.KeyPoints {
		if p.Time == t {
			return p.Value
		}
	}
	return candles[idx].Close
}

// WriteHTMLFile 渲染到输出目录，返回生成的文件路径。
func WriteHTMLFile(dir, name string, candles []market.Candle, analyses []pattern.Analysis, o Options) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建图表目录失败: %w", err)
	}
	path := filepath.Join(dir, name+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建图表文件失败: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := RenderHTML(f, candles, analyses, o); err != nil {
		return "", err
	}
	return path, nil
}
