package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config 进程全量配置，TOML 格式。缺省字段在 Load 时补齐。
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Binance  BinanceConfig  `toml:"binance"`
	Store    StoreConfig    `toml:"store"`
	Chart    ChartConfig    `toml:"chart"`
	Detect   DetectConfig   `toml:"detect"`
	Screener ScreenerConfig `toml:"screener"`
	Describe DescribeConfig `toml:"describe"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type ServerConfig struct {
	Addr            string `toml:"addr"`
	ShutdownSeconds int    `toml:"shutdown_seconds"`
}

type BinanceConfig struct {
	RESTBaseURL    string `toml:"rest_base_url"`
	APIKey         string `toml:"api_key"`
	APISecret      string `toml:"api_secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type StoreConfig struct {
	Path     string `toml:"path"`
	MaxKline int    `toml:"max_kline"`
}

type ChartConfig struct {
	OutputDir      string `toml:"output_dir"`
	Width          string `toml:"width"`
	Height         string `toml:"height"`
	SnapshotWaitMS int    `toml:"snapshot_wait_ms"`
}

type DetectConfig struct {
	LookbackPeriod int     `toml:"lookback_period"`
	MinConfidence  float64 `toml:"min_confidence"`
	HistoryLimit   int     `toml:"history_limit"`
}

type ScreenerConfig struct {
	Symbols     []string `toml:"symbols"`
	QuoteAsset  string   `toml:"quote_asset"`
	Interval    string   `toml:"interval"`
	Concurrency int      `toml:"concurrency"`
	MaxSymbols  int      `toml:"max_symbols"`
}

type DescribeConfig struct {
	Enabled bool          `toml:"enabled"`
	Models  []ModelConfig `toml:"models"`
}

type ModelConfig struct {
	ID             string            `toml:"id"`
	Provider       string            `toml:"provider"`
	APIURL         string            `toml:"api_url"`
	APIKey         string            `toml:"api_key"`
	Model          string            `toml:"model"`
	Enabled        bool              `toml:"enabled"`
	TimeoutSeconds int               `toml:"timeout_seconds"`
	Headers        map[string]string `toml:"headers"`
}

// Load 读取 TOML 配置文件并补齐默认值。文件不存在时返回纯默认配置。
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg.withDefaults(), nil
			}
			return cfg, fmt.Errorf("读取配置失败: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("解析配置失败: %w", err)
		}
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8720"
	}
	if c.Server.ShutdownSeconds <= 0 {
		c.Server.ShutdownSeconds = 10
	}
	if c.Binance.RESTBaseURL == "" {
		c.Binance.RESTBaseURL = "https://api.binance.com"
	}
	if c.Binance.TimeoutSeconds <= 0 {
		c.Binance.TimeoutSeconds = 15
	}
	if c.Store.Path == "" {
		c.Store.Path = "crest.db"
	}
	if c.Store.MaxKline <= 0 {
		c.Store.MaxKline = 1000
	}
	if c.Chart.OutputDir == "" {
		c.Chart.OutputDir = "charts"
	}
	if c.Chart.Width == "" {
		c.Chart.Width = "1280px"
	}
	if c.Chart.Height == "" {
		c.Chart.Height = "720px"
	}
	if c.Chart.SnapshotWaitMS <= 0 {
		c.Chart.SnapshotWaitMS = 800
	}
	if c.Detect.LookbackPeriod <= 0 {
		c.Detect.LookbackPeriod = 100
	}
	if c.Detect.MinConfidence <= 0 {
		c.Detect.MinConfidence = 0.7
	}
	if c.Detect.HistoryLimit <= 0 {
		c.Detect.HistoryLimit = 500
	}
	if c.Screener.QuoteAsset == "" {
		c.Screener.QuoteAsset = "USDT"
	}
	if c.Screener.Interval == "" {
		c.Screener.Interval = "4h"
	}
	if c.Screener.Concurrency <= 0 {
		c.Screener.Concurrency = 4
	}
	if c.Screener.MaxSymbols <= 0 {
		c.Screener.MaxSymbols = 30
	}
	return c
}

// Timeout 转换成 time.Duration，避免调用方到处换算。
func (c BinanceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
