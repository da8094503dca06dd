package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// 全局 logger：包级函数直接使用，避免在每个组件里穿参。
var (
	mu  sync.RWMutex
	log = newLogger(zerolog.InfoLevel)
)

func newLogger(level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// SetLevel 按字符串调整日志级别（debug/info/warn/error），非法输入回退 info。
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	mu.Lock()
	log = newLogger(parsed)
	mu.Unlock()
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &log
}

func Debugf(format string, args ...any) {
	current().Debug().Msg(fmt.Sprintf(format, args...))
}

func Infof(format string, args ...any) {
	current().Info().Msg(fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	current().Warn().Msg(fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	current().Error().Msg(fmt.Sprintf(format, args...))
}

// LogLLMPayload 按 debug 级别输出发往模型的请求体，便于排查 prompt 问题。
func LogLLMPayload(model, payload string) {
	current().Debug().Str("model", model).Msg(payload)
}
