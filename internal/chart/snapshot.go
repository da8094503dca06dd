package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"crest/internal/logger"
)

// PNGPath 由 HTML 路径推导同名 PNG 输出路径。
func PNGPath(htmlPath string) string {
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".png"
}

// Snapshot 用无头浏览器把渲染好的 HTML 截成 PNG。
// wait 给 echarts 前端留出绘制时间。
func Snapshot(ctx context.Context, htmlPath, pngPath string, wait time.Duration) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("解析图表路径失败: %w", err)
	}
	if wait <= 0 {
		wait = 800 * time.Millisecond
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
		)...)
	defer cancelAlloc()
	runCtx, cancelRun := chromedp.NewContext(allocCtx)
	defer cancelRun()

	var buf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.Sleep(wait),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return fmt.Errorf("截图失败: %w", err)
	}
	if err := os.WriteFile(pngPath, buf, 0o644); err != nil {
		return fmt.Errorf("写入 PNG 失败: %w", err)
	}
	logger.Debugf("[chart] 截图完成: %s (%d bytes)", pngPath, len(buf))
	return nil
}
