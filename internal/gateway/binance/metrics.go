package binance

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TickerStats 24 小时行情摘要，筛选器用它排序候选标的。
type TickerStats struct {
	Symbol        string
	LastPrice     float64
	ChangePercent float64
	QuoteVolume   float64
}

// Get24hStats 获取单个交易对的 24 小时统计。
func (s *Source) Get24hStats(ctx context.Context, symbol string) (TickerStats, error) {
	if s == nil || s.client == nil {
		return TickerStats{}, fmt.Errorf("binance source 未初始化")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return TickerStats{}, fmt.Errorf("symbol 不能为空")
	}
	res, err := s.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return TickerStats{}, err
	}
	for _, entry := range res {
		if entry == nil {
			continue
		}
		if strings.EqualFold(entry.Symbol, symbol) {
			return TickerStats{
				Symbol:        entry.Symbol,
				LastPrice:     parseFloat(entry.LastPrice),
				ChangePercent: parseFloat(entry.PriceChangePercent),
				QuoteVolume:   parseFloat(entry.QuoteVolume),
			}, nil
		}
	}
	return TickerStats{}, fmt.Errorf("%s 无 24h 统计数据", symbol)
}

// ListSymbols 按计价资产列出可交易的现货交易对，按 24h 成交额降序，
// 最多返回 max 个。筛选器用它构建默认扫描集合。
func (s *Source) ListSymbols(ctx context.Context, quoteAsset string, max int) ([]string, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("binance source 未初始化")
	}
	quoteAsset = strings.ToUpper(strings.TrimSpace(quoteAsset))
	if quoteAsset == "" {
		quoteAsset = "USDT"
	}
	if max <= 0 {
		max = 30
	}

	info, err := s.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取 exchangeInfo 失败: %w", err)
	}
	tradable := make(map[string]bool, len(info.Symbols))
	for _, sym := range info.Symbols {
		if sym.Status == "TRADING" && sym.QuoteAsset == quoteAsset {
			tradable[sym.Symbol] = true
		}
	}

	stats, err := s.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取 24h 统计失败: %w", err)
	}
	type ranked struct {
		symbol string
		volume float64
	}
	candidates := make([]ranked, 0, len(stats))
	for _, entry := range stats {
		if entry == nil || !tradable[entry.Symbol] {
			continue
		}
		candidates = append(candidates, ranked{entry.Symbol, parseFloat(entry.QuoteVolume)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].volume > candidates[j].volume })
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.symbol
	}
	return out, nil
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}
