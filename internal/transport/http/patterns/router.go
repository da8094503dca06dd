package patterns

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"crest/internal/analysis/indicator"
	"crest/internal/analysis/pattern"
	"crest/internal/chart"
	"crest/internal/config"
	"crest/internal/describe"
	"crest/internal/logger"
	"crest/internal/market"
	"crest/internal/store"
)

// Router 形态检测 API。
type Router struct {
	source    market.Source
	cache     store.KlineCache
	detector  *pattern.Detector
	analyses  *store.AnalysisStore
	describer *describe.Describer
	chartCfg  config.ChartConfig
	detectCfg config.DetectConfig
}

// NewRouter 组装依赖。describer 可为 nil（未配置模型时）。
func NewRouter(source market.Source, cache store.KlineCache, detector *pattern.Detector,
	analyses *store.AnalysisStore, describer *describe.Describer,
	chartCfg config.ChartConfig, detectCfg config.DetectConfig) *Router {
	return &Router{
		source:    source,
		cache:     cache,
		detector:  detector,
		analyses:  analyses,
		describer: describer,
		chartCfg:  chartCfg,
		detectCfg: detectCfg,
	}
}

// Register 挂载路由。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/detect", r.handleDetect)
	group.GET("", r.handleList)
	group.GET("/:id", r.handleGet)
	group.GET("/:id/chart", r.handleChart)
}

// DetectRequest 检测请求体。零值参数按配置默认补齐。
type DetectRequest struct {
	Symbol         string         `json:"symbol" binding:"required"`
	Interval       string         `json:"interval"`
	Limit          int            `json:"limit"`
	LookbackPeriod int            `json:"lookback_period"`
	MinConfidence  float64        `json:"min_confidence"`
	Kinds          []pattern.Kind `json:"kinds"`
	Describe       bool           `json:"describe"`
}

// DetectResponseItem 单条命中，含入库 id。
type DetectResponseItem struct {
	ID          string           `json:"id"`
	Analysis    pattern.Analysis `json:"analysis"`
	Description string           `json:"description,omitempty"`
}

func (r *Router) handleDetect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	interval := strings.ToLower(strings.TrimSpace(req.Interval))
	if interval == "" {
		interval = "4h"
	}
	limit := req.Limit
	if limit <= 0 {
		limit = r.detectCfg.HistoryLimit
	}

	candles, err := r.fetchCandles(c, symbol, interval, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if len(candles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%s %s 无行情数据", symbol, interval)})
		return
	}

	params := pattern.Params{
		LookbackPeriod: req.LookbackPeriod,
		MinConfidence:  req.MinConfidence,
		Kinds:          req.Kinds,
	}
	if params.LookbackPeriod == 0 {
		params.LookbackPeriod = r.detectCfg.LookbackPeriod
	}
	if params.MinConfidence == 0 {
		params.MinConfidence = r.detectCfg.MinConfidence
	}

	analyses, err := r.detector.Detect(candles, params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pattern.ErrInvalidLookback) ||
			errors.Is(err, pattern.ErrInvalidConfidence) ||
			errors.Is(err, pattern.ErrUnknownKind) ||
			errors.Is(err, market.ErrNonMonotonic) ||
			errors.Is(err, market.ErrMalformedCandle) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	records, err := r.analyses.SaveBatch(c, symbol, interval, analyses)
	if err != nil {
		logger.Errorf("[patterns-api] 入库失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]DetectResponseItem, 0, len(records))
	for _, rec := range records {
		item := DetectResponseItem{ID: rec.ID, Analysis: rec.Analysis}
		if req.Describe && r.describer.Enabled() {
			snap, serr := indicator.BuildSnapshot(candles, indicator.Settings{Symbol: symbol, Interval: interval})
			if serr == nil {
				if text, derr := r.describer.Describe(c, symbol, interval, rec.Analysis, snap); derr == nil {
					item.Description = text
				} else {
					logger.Warnf("[patterns-api] 生成描述失败: %v", derr)
				}
			}
		}
		items = append(items, item)
	}

	logger.Infof("[patterns-api] %s %s 检出 %d 个形态 (client=%s)", symbol, interval, len(items), c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"interval": interval,
		"count":    len(items),
		"patterns": items,
	})
}

func (r *Router) handleList(c *gin.Context) {
	symbol := c.Query("symbol")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := r.analyses.List(c, symbol, limit)
	if err != nil {
		logger.Errorf("[patterns-api] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "patterns": records})
}

func (r *Router) handleGet(c *gin.Context) {
	id := c.Param("id")
	rec, err := r.analyses.Get(c, id)
	if err != nil {
		if errors.Is(err, store.ErrAnalysisNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// handleChart 按入库记录重新拉取行情并渲染骨架图。
func (r *Router) handleChart(c *gin.Context) {
	id := c.Param("id")
	rec, err := r.analyses.Get(c, id)
	if err != nil {
		if errors.Is(err, store.ErrAnalysisNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	candles, err := r.fetchCandles(c, rec.Symbol, rec.Interval, r.detectCfg.HistoryLimit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	path, err := chart.WriteHTMLFile(r.chartCfg.OutputDir, rec.ID, candles, []pattern.Analysis{rec.Analysis}, chart.Options{
		Title:  fmt.Sprintf("%s %s %s", rec.Symbol, rec.Interval, rec.Kind),
		Width:  r.chartCfg.Width,
		Height: r.chartCfg.Height,
	})
	if err != nil {
		logger.Errorf("[patterns-api] 渲染图表失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// format=png 时再走无头浏览器截图。
	if strings.EqualFold(c.Query("format"), "png") {
		pngPath := chart.PNGPath(path)
		wait := time.Duration(r.chartCfg.SnapshotWaitMS) * time.Millisecond
		if err := chart.Snapshot(c, path, pngPath, wait); err != nil {
			logger.Errorf("[patterns-api] 截图失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.File(pngPath)
		return
	}
	c.File(path)
}

// fetchCandles 先查缓存，不够再回源并回填。
func (r *Router) fetchCandles(c *gin.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if r.cache != nil {
		cached, err := r.cache.Export(c, symbol, interval, limit)
		if err == nil && len(cached) >= limit {
			return cached, nil
		}
	}
	candles, err := r.source.FetchHistory(c, symbol, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("拉取行情失败: %w", err)
	}
	if r.cache != nil && len(candles) > 0 {
		if cerr := r.cache.Set(c, symbol, interval, candles); cerr != nil {
			logger.Debugf("[patterns-api] 回填缓存失败: %v", cerr)
		}
	}
	return candles, nil
}
