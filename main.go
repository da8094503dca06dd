package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"crest/internal/analysis/pattern"
	"crest/internal/config"
	"crest/internal/describe"
	"crest/internal/gateway/binance"
	"crest/internal/gateway/provider"
	"crest/internal/logger"
	"crest/internal/screener"
	"crest/internal/store"
	patternsapi "crest/internal/transport/http/patterns"
)

func main() {
	var (
		cfgPath = flag.String("config", "crest.toml", "配置文件路径")
		scan    = flag.Bool("scan", false, "跑一轮筛选器后退出（默认启动 HTTP 服务）")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := binance.NewSource(binance.Config{
		RESTBaseURL: cfg.Binance.RESTBaseURL,
		APIKey:      cfg.Binance.APIKey,
		APISecret:   cfg.Binance.APISecret,
		HTTPTimeout: cfg.Binance.Timeout(),
	})
	defer func() { _ = source.Close() }()

	detector := pattern.NewDetector(nil)

	if *scan {
		if err := runScan(ctx, cfg, source, detector); err != nil {
			logger.Errorf("筛选器失败: %v", err)
			os.Exit(1)
		}
		return
	}
	if err := runServer(ctx, cfg, source, detector); err != nil {
		logger.Errorf("服务退出: %v", err)
		os.Exit(1)
	}
}

func runScan(ctx context.Context, cfg config.Config, source *binance.Source, detector *pattern.Detector) error {
	var prov screener.SymbolProvider
	if len(cfg.Screener.Symbols) > 0 {
		prov = screener.NewStaticProvider(cfg.Screener.Symbols)
	} else {
		prov = screener.NewExchangeProvider(source, cfg.Screener.QuoteAsset, cfg.Screener.MaxSymbols)
	}
	symbols, err := prov.List(ctx)
	if err != nil {
		return fmt.Errorf("获取标的列表失败 (%s): %w", prov.Name(), err)
	}

	sc := screener.New(source, detector, screener.Config{
		Interval:     cfg.Screener.Interval,
		HistoryLimit: cfg.Detect.HistoryLimit,
		Concurrency:  cfg.Screener.Concurrency,
		Detect: pattern.Params{
			LookbackPeriod: cfg.Detect.LookbackPeriod,
			MinConfidence:  cfg.Detect.MinConfidence,
		},
	})
	results, err := sc.Scan(ctx, symbols)
	if err != nil {
		return err
	}
	screener.RenderTable(os.Stdout, results)
	return nil
}

func runServer(ctx context.Context, cfg config.Config, source *binance.Source, detector *pattern.Detector) error {
	analyses, err := store.OpenAnalysisStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = analyses.Close() }()
	cache := store.NewMemoryKlineCache(cfg.Store.MaxKline)

	var describer *describe.Describer
	if providers := provider.BuildProviders(cfg.Describe); len(providers) > 0 {
		describer = describe.NewDescriber(providers, 0)
	} else if cfg.Describe.Enabled {
		logger.Warnf("describe.enabled=true 但没有可用模型，描述功能关闭")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router := patternsapi.NewRouter(source, cache, detector, analyses, describer, cfg.Chart, cfg.Detect)
	router.Register(engine.Group("/api/patterns"))

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: engine}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP 服务监听 %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infof("收到退出信号，开始优雅关停")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
