package provider

import (
	"fmt"
	"strings"
	"time"

	"crest/internal/config"
	"crest/internal/logger"
)

// BuildProviders 把 describe 配置展开成可调用的模型列表。
// 总开关关闭时返回空；逐条跳过未启用的模型。
func BuildProviders(cfg config.DescribeConfig) []ModelProvider {
	if !cfg.Enabled {
		return nil
	}
	out := make([]ModelProvider, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		if !m.Enabled {
			continue
		}
		client := &OpenAIChatClient{
			BaseURL:      m.APIURL,
			APIKey:       m.APIKey,
			Model:        m.Model,
			ExtraHeaders: m.Headers,
		}
		if m.TimeoutSeconds > 0 {
			client.Timeout = time.Duration(m.TimeoutSeconds) * time.Second
		}
		out = append(out, NewOpenAIModelProvider(modelID(m), true, client))
	}
	return out
}

// modelID 未显式配置 id 时生成稳定 ID（provider:model），避免日志里出现空标识。
func modelID(m config.ModelConfig) string {
	if id := strings.TrimSpace(m.ID); id != "" {
		return id
	}
	base := strings.TrimSpace(m.Provider)
	if base == "" {
		base = "provider"
	}
	id := base
	if model := strings.TrimSpace(m.Model); model != "" {
		id = fmt.Sprintf("%s:%s", base, model)
	}
	logger.Warnf("未配置 describe.models.id，已为 %q 生成 ID: %s", m.Provider, id)
	return id
}
