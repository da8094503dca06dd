package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sdk "github.com/adshao/go-binance/v2"

	"crest/internal/logger"
	"crest/internal/market"
)

const maxHistoryLimit = 1000

// Source 实现了 market.Source，基于官方 REST 接口拉取现货 K 线。
type Source struct {
	cfg    Config
	client *sdk.Client
}

// NewSource 构造 Binance 接入。公开行情不需要 API Key。
func NewSource(cfg Config) *Source {
	cfg = (&cfg).withDefaults()
	cli := sdk.NewClient(cfg.APIKey, cfg.APISecret)
	cli.BaseURL = strings.TrimRight(cfg.RESTBaseURL, "/")
	cli.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}
	return &Source{cfg: cfg, client: cli}
}

// FetchHistory 拉取最近 limit 根 K 线并转换为内部格式（升序）。
func (s *Source) FetchHistory(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("binance source 未初始化")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol 不能为空")
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	raw, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取 %s %s K 线失败: %w", symbol, interval, err)
	}

	out := make([]market.Candle, 0, len(raw))
	for _, k := range raw {
		c, err := convertKline(k)
		if err != nil {
			logger.Warnf("[binance] %s %s 跳过无法解析的 K 线 open_time=%d: %v", symbol, interval, k.OpenTime, err)
			continue
		}
		out = append(out, c)
	}
	logger.Debugf("[binance] %s %s 拉取 %d 根 K 线", symbol, interval, len(out))
	return out, nil
}

// Close 目前没有需要释放的长连接，保留以满足 market.Source。
func (s *Source) Close() error { return nil }

func convertKline(k *sdk.Kline) (market.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("open: %w", err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("high: %w", err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("low: %w", err)
	}
	closePx, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("close: %w", err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("volume: %w", err)
	}
	return market.Candle{
		OpenTime:  k.OpenTime,
		CloseTime: k.CloseTime,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePx,
		Volume:    vol,
		Trades:    k.TradeNum,
	}, nil
}
