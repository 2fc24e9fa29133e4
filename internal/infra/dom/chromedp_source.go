package dom

import (
	"context"
	"fmt"
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

type chromedpSource struct {
	allocCtx      context.Context
	allocCtxFuc   context.CancelFunc
	pageCtx       context.Context
	pageCtxFuc    context.CancelFunc
	timeoutCtxFuc context.CancelFunc
	selectors     selectorSet
}

// InitChromedpSource chromedp实现的页面源,与rod实现遵守同一个ItemSource契约
func InitChromedpSource(ctx context.Context, cfg *config.Config) ItemSource {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Chromedp.Headless),
		chromedp.Flag("disable-blink-features", cfg.Chromedp.DisableBlinkFeatures),
		chromedp.Flag("incognito", cfg.Chromedp.Incognito),
		chromedp.Flag("disable-dev-shm-usage", cfg.Chromedp.DisableDevShmUsage),
		chromedp.Flag("no-sandbox", cfg.Chromedp.NoSandbox),
		chromedp.UserDataDir(cfg.Chromedp.UserDataDir),
		chromedp.UserAgent(cfg.Chromedp.UserAgent),
	)
	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, time.Duration(cfg.Chromedp.LifeTime)*time.Second)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(timeoutCtx, opts...)
	pageCtx, cancelPage := chromedp.NewContext(allocCtx)

	return &chromedpSource{
		allocCtx:      allocCtx,
		allocCtxFuc:   cancelAlloc,
		pageCtx:       pageCtx,
		pageCtxFuc:    cancelPage,
		timeoutCtxFuc: cancelTimeout,
		selectors:     selectorsFromConfig(cfg),
	}
}

func (cs *chromedpSource) Navigate(url string) error {
	err := chromedp.Run(cs.pageCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return fmt.Errorf("导航失败: %v", err)
	}
	return nil
}

func (cs *chromedpSource) VisibleItems() ([]*ItemView, error) {
	js := fmt.Sprintf("(() => {%s})()", visibleItemsJSBody(cs.selectors))
	var jsonText string
	if err := chromedp.Run(cs.pageCtx, chromedp.Evaluate(js, &jsonText)); err != nil {
		return nil, fmt.Errorf("读取可见元素失败: %v", err)
	}
	return decodeItemViews(jsonText)
}

func (cs *chromedpSource) ViewportHeight() (float64, error) {
	var height float64
	if err := chromedp.Run(cs.pageCtx, chromedp.Evaluate(`window.innerHeight`, &height)); err != nil {
		return 0, fmt.Errorf("获取视口高度失败: %v", err)
	}
	return height, nil
}

func (cs *chromedpSource) DocumentHeight() (float64, error) {
	var height float64
	if err := chromedp.Run(cs.pageCtx, chromedp.Evaluate(`document.body.scrollHeight`, &height)); err != nil {
		return 0, fmt.Errorf("获取页面高度失败: %v", err)
	}
	return height, nil
}

func (cs *chromedpSource) ScrollBy(px float64) error {
	js := fmt.Sprintf(`window.scrollBy({top: %f, behavior: 'smooth'})`, px)
	if err := chromedp.Run(cs.pageCtx, chromedp.Evaluate(js, nil)); err != nil {
		return fmt.Errorf("滚动失败: %v", err)
	}
	return nil
}

func (cs *chromedpSource) JumpToBottom() error {
	js := `window.scrollTo({top: document.body.scrollHeight, behavior: 'smooth'})`
	if err := chromedp.Run(cs.pageCtx, chromedp.Evaluate(js, nil)); err != nil {
		return fmt.Errorf("跳转到底部失败: %v", err)
	}
	return nil
}

func (cs *chromedpSource) UpdateOverlay(status *Status) error {
	js := fmt.Sprintf("(() => {%s})()", overlayJSBody(status.Text()))
	var ok bool
	if err := chromedp.Run(cs.pageCtx, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("更新状态条失败: %v", err)
	}
	return nil
}

func (cs *chromedpSource) Close() {
	cs.pageCtxFuc()
	cs.allocCtxFuc()
	cs.timeoutCtxFuc()
}
