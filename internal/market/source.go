package market

import "context"

// Source 统一对接外部行情供应商。引擎本身不拉数据，
// 只消费 Source 产出的升序 K 线序列。
type Source interface {
	// FetchHistory 拉取最近 limit 根 K 线并按时间升序返回。
	FetchHistory(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
	// Close 释放底层资源。
	Close() error
}
