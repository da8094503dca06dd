package screener

import (
	"context"
	"errors"
	"strings"
)

// SymbolProvider 给出一轮扫描的标的集合。
type SymbolProvider interface {
	List(ctx context.Context) ([]string, error)
	Name() string
}

// NormalizeSymbols 统一大写、去重、补齐 USDT 后缀。
func NormalizeSymbols(symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return nil, errors.New("symbol list is empty")
	}
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasSuffix(s, "USDT") {
			s += "USDT"
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, errors.New("symbol list is empty after normalization")
	}
	return out, nil
}

// StaticSymbolProvider 配置文件里写死的标的集合。
type StaticSymbolProvider struct{ symbols []string }

func NewStaticProvider(symbols []string) *StaticSymbolProvider {
	return &StaticSymbolProvider{symbols: symbols}
}

func (p *StaticSymbolProvider) Name() string { return "static" }

func (p *StaticSymbolProvider) List(_ context.Context) ([]string, error) {
	return NormalizeSymbols(p.symbols)
}

// exchangeLister 由 Binance 网关满足：按成交额取前 N 个可交易对。
type exchangeLister interface {
	ListSymbols(ctx context.Context, quoteAsset string, max int) ([]string, error)
}

// ExchangeSymbolProvider 按 24h 成交额从交易所取头部标的。
type ExchangeSymbolProvider struct {
	lister     exchangeLister
	quoteAsset string
	max        int
}

func NewExchangeProvider(lister exchangeLister, quoteAsset string, max int) *ExchangeSymbolProvider {
	return &ExchangeSymbolProvider{lister: lister, quoteAsset: quoteAsset, max: max}
}

func (p *ExchangeSymbolProvider) Name() string { return "exchange" }

func (p *ExchangeSymbolProvider) List(ctx context.Context) ([]string, error) {
	if p.lister == nil {
		return nil, errors.New("exchange lister 未配置")
	}
	return p.lister.ListSymbols(ctx, p.quoteAsset, p.max)
}
