package store

import (
	"context"
	"errors"
	"sync"

	"crest/internal/market"
)

// KlineCache 缓存 symbol+interval 的最近序列，避免重复拉取行情。
type KlineCache interface {
	Set(ctx context.Context, symbol, interval string, ks []market.Candle) error
	Export(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error)
}

// MemoryKlineCache 内存实现，带上限裁剪。
type MemoryKlineCache struct {
	mu   sync.RWMutex
	max  int
	data map[string][]market.Candle
}

func NewMemoryKlineCache(max int) *MemoryKlineCache {
	if max <= 0 {
		max = 1000
	}
	return &MemoryKlineCache{max: max, data: make(map[string][]market.Candle)}
}

func key(symbol, interval string) string { return symbol + "@" + interval }

// Set 全量替换指定 symbol+interval 的序列，超限时保留末尾。
func (s *MemoryKlineCache) Set(ctx context.Context, symbol, interval string, ks []market.Candle) error {
	if symbol == "" || interval == "" {
		return errors.New("symbol/interval 不能为空")
	}
	if len(ks) > s.max {
		ks = ks[len(ks)-s.max:]
	}
	dst := make([]market.Candle, len(ks))
	copy(dst, ks)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(symbol, interval)] = dst
	return nil
}

// Export 返回最近 limit 根 K 线的拷贝（按时间升序），无缓存时返回空。
func (s *MemoryKlineCache) Export(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if symbol == "" || interval == "" {
		return nil, errors.New("symbol/interval 不能为空")
	}
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.data[key(symbol, interval)]
	if len(cur) == 0 {
		return nil, nil
	}
	if limit > len(cur) {
		limit = len(cur)
	}
	out := make([]market.Candle, limit)
	copy(out, cur[len(cur)-limit:])
	return out, nil
}
