package provider

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// ChatPayload 一次模型调用的输入。
type ChatPayload struct {
	System     string
	User       string
	MaxTokens  int
	ExpectJSON bool
}

// ModelProvider 统一抽象一个可调用的模型。
type ModelProvider interface {
	ID() string
	Enabled() bool
	Call(ctx context.Context, payload ChatPayload) (string, error)
}

func ensureCtx(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func normalizeRetries(n int) int {
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}

// shouldRetry 限流与 5xx 可重试，其余状态直接失败。
func shouldRetry(status int) bool {
	return status == 429 || status/100 == 5
}

func parseRetryAfter(raw string, attempt int) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 && secs <= 60 {
			return time.Duration(secs) * time.Second
		}
	}
	// 指数退避，封顶 8s。
	wait := time.Duration(1<<uint(attempt)) * time.Second
	if wait > 8*time.Second {
		wait = 8 * time.Second
	}
	return wait
}

func redactHeaders(headers map[string]string) map[string]string {
	return headers
}
