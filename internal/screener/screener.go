package screener

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"

	"crest/internal/analysis/pattern"
	"crest/internal/logger"
	"crest/internal/market"
)

// Config 扫描参数。
type Config struct {
	Interval     string
	HistoryLimit int
	Concurrency  int
	Detect       pattern.Params
}

func (c Config) withDefaults() Config {
	if c.Interval == "" {
		c.Interval = "4h"
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 500
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return c
}

// Result 单个标的的扫描结果。
type Result struct {
	Symbol   string             `json:"symbol"`
	Analyses []pattern.Analysis `json:"analyses"`
	Err      error              `json:"-"`
}

// Screener 对一组标的并发跑形态检测。
type Screener struct {
	source   market.Source
	detector *pattern.Detector
	cfg      Config
}

func New(source market.Source, detector *pattern.Detector, cfg Config) *Screener {
	return &Screener{source: source, detector: detector, cfg: cfg.withDefaults()}
}

// Scan 并发拉取行情并检测，单个标的失败不中断整轮。
// 结果按最高置信度降序。
func (s *Screener) Scan(ctx context.Context, symbols []string) ([]Result, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("没有可扫描的标的")
	}
	start := time.Now()

	var mu sync.Mutex
	results := make([]Result, 0, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			res := s.scanOne(gctx, symbol)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return topConfidence(results[i]) > topConfidence(results[j])
	})
	logger.Infof("[screener] 扫描 %d 个标的完成，用时 %s", len(symbols), time.Since(start).Round(time.Millisecond))
	return results, nil
}

func (s *Screener) scanOne(ctx context.Context, symbol string) Result {
	candles, err := s.source.FetchHistory(ctx, symbol, s.cfg.Interval, s.cfg.HistoryLimit)
	if err != nil {
		logger.Warnf("[screener] %s 拉取行情失败: %v", symbol, err)
		return Result{Symbol: symbol, Err: err}
	}
	analyses, err := s.detector.Detect(candles, s.cfg.Detect)
	if err != nil {
		logger.Warnf("[screener] %s 检测失败: %v", symbol, err)
		return Result{Symbol: symbol, Err: err}
	}
	return Result{Symbol: symbol, Analyses: analyses}
}

func topConfidence(r Result) float64 {
	if len(r.Analyses) == 0 {
		return -1
	}
	return r.Analyses[0].Confidence
}

// RenderTable 把扫描结果打成终端表格，空结果的标的折叠成一行统计。
func RenderTable(w io.Writer, results []Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Symbol", "Pattern", "Direction", "Confidence", "Breakout", "Target", "Stop"})

	row := 0
	empty := 0
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		if len(r.Analyses) == 0 {
			empty++
			continue
		}
		for _, a := range r.Analyses {
			row++
			t.AppendRow(table.Row{
				row,
				r.Symbol,
				string(a.Kind),
				string(a.Direction),
				fmt.Sprintf("%.2f", a.Confidence),
				fmt.Sprintf("%.4g", a.Metrics.BreakoutLevel),
				fmt.Sprintf("%.4g", a.Metrics.TargetLevel),
				fmt.Sprintf("%.4g", a.Metrics.StopLoss),
			})
		}
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("无形态 %d / 失败 %d", empty, failed), "", "", "", "", "", ""})
	t.SetStyle(table.StyleLight)
	t.Render()
}
