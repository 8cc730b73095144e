package visual

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

const snapshotPage = `<!DOCTYPE html><html><head><meta charset="utf-8">` +
	`<style>html,body{margin:0;background:#fff;font-family:sans-serif}</style></head><body>%s</body></html>`

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable 检查本机能否启动 headless Chrome，只探测一次。
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

// SnapshotHTML wraps an SVG document in a blank page for screenshotting.
func SnapshotHTML(svg []byte) []byte {
	return []byte(fmt.Sprintf(snapshotPage, svg))
}

// RenderPNG screenshots an SVG chart at the given size.
func RenderPNG(ctx context.Context, svg []byte, width, height int, timeout time.Duration) ([]byte, error) {
	if len(svg) == 0 {
		return nil, fmt.Errorf("empty svg")
	}
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, fmt.Errorf("headless chrome unavailable: %w", err)
	}
	return renderHTMLToPNG(ctx, SnapshotHTML(svg), width, height, timeout)
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int, timeout time.Duration) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible("svg", chromedp.ByQuery),
		chromedp.FullScreenshot(&screenshot, 100),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
