package describe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crest/internal/analysis/indicator"
	"crest/internal/analysis/pattern"
	"crest/internal/gateway/provider"
	"crest/internal/logger"
)

const systemPrompt = "你是一名严谨的技术分析助手。根据给出的图形形态检测结果与指标环境，" +
	"用中文输出一段不超过 200 字的解读：形态含义、关键价位（突破/目标/止损）与风险提示。" +
	"不要编造数据，不要给出仓位建议。"

// Describer 把检测结果交给模型生成自然语言解读。
// providers 按顺序尝试，第一个成功的结果即返回。
type Describer struct {
	providers []provider.ModelProvider
	timeout   time.Duration
}

func NewDescriber(providers []provider.ModelProvider, timeout time.Duration) *Describer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Describer{providers: providers, timeout: timeout}
}

// Enabled 是否有可用的模型。
func (d *Describer) Enabled() bool {
	return d != nil && len(d.providers) > 0
}

// Describe 生成单个形态的解读文本。所有模型都失败时返回最后一个错误。
func (d *Describer) Describe(ctx context.Context, symbol, interval string, a pattern.Analysis, snap indicator.Snapshot) (string, error) {
	if !d.Enabled() {
		return "", fmt.Errorf("没有可用的模型")
	}
	userPrompt, err := buildPrompt(symbol, interval, a, snap)
	if err != nil {
		return "", err
	}

	var lastErr error
	for _, p := range d.providers {
		if !p.Enabled() {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, d.timeout)
		text, err := p.Call(callCtx, provider.ChatPayload{
			System: systemPrompt,
			User:   userPrompt,
		})
		cancel()
		if err != nil {
			logger.Warnf("[describe] %s 调用失败: %v", p.ID(), err)
			lastErr = err
			continue
		}
		return strings.TrimSpace(text), nil
	}
	return "", fmt.Errorf("所有模型均失败: %w", lastErr)
}

func buildPrompt(symbol, interval string, a pattern.Analysis, snap indicator.Snapshot) (string, error) {
	payload := map[string]any{
		"symbol":     symbol,
		"interval":   interval,
		"kind":       a.Kind,
		"direction":  a.Direction,
		"confidence": a.Confidence,
		"metrics":    a.Metrics,
		"indicators": snap.Values,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("组装 prompt 失败: %w", err)
	}
	return "检测结果如下（JSON）：\n" + PrettyJSON(string(b)), nil
}

// PrettyJSON 尝试对 JSON 文本进行缩进美化；失败则返回原文。
func PrettyJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return raw
	}
	return string(b)
}
