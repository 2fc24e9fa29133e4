package dom

import (
	"fmt"
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

type rodSource struct {
	browser   *rod.Browser
	page      *rod.Page
	selectors selectorSet
	// ownBrowser 为true时Close负责关闭浏览器,浏览器池模式下由池回收
	ownBrowser bool
}

// InitRodSource 启动浏览器并返回rod实现的页面源
func InitRodSource(cfg *config.Config) (ItemSource, error) {
	l := launcher.New().
		Headless(cfg.Rod.Headless).
		Leakless(cfg.Rod.Leakless)
	if cfg.Rod.Bin != "" {
		l = l.Bin(cfg.Rod.Bin)
	}
	if cfg.Rod.UserDataDir != "" {
		l = l.UserDataDir(cfg.Rod.UserDataDir)
	}
	if cfg.Rod.DisableBlinkFeatures != "" {
		l = l.Set("disable-blink-features", cfg.Rod.DisableBlinkFeatures)
	}
	if cfg.Rod.UserAgent != "" {
		l = l.Set("user-agent", cfg.Rod.UserAgent)
	}
	if cfg.Rod.Incognito {
		l = l.Set("incognito")
	}
	if cfg.Rod.DisableDevShmUsage {
		l = l.Set("disable-dev-shm-usage")
	}
	if cfg.Rod.NoSandbox {
		l = l.Set("no-sandbox")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}
	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}
	return &rodSource{
		browser:    browser,
		selectors:  selectorsFromConfig(cfg),
		ownBrowser: true,
	}, nil
}

// InitRodSourceWithBrowser 复用已连接的浏览器(浏览器池模式)
func InitRodSourceWithBrowser(browser *rod.Browser, cfg *config.Config) ItemSource {
	return &rodSource{
		browser:   browser,
		selectors: selectorsFromConfig(cfg),
	}
}

func (rs *rodSource) Navigate(url string) error {
	page, err := stealth.Page(rs.browser)
	if err != nil {
		return fmt.Errorf("创建页面失败: %w", err)
	}
	rs.page = page
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("导航失败: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("等待页面加载失败: %w", err)
	}
	time.Sleep(2 * time.Second)
	return nil
}

func (rs *rodSource) VisibleItems() ([]*ItemView, error) {
	js := fmt.Sprintf("() => {%s}", visibleItemsJSBody(rs.selectors))
	res, err := rs.page.Eval(js)
	if err != nil {
		return nil, fmt.Errorf("读取可见元素失败: %w", err)
	}
	return decodeItemViews(res.Value.Str())
}

func (rs *rodSource) ViewportHeight() (float64, error) {
	res, err := rs.page.Eval(`() => window.innerHeight`)
	if err != nil {
		return 0, fmt.Errorf("获取视口高度失败: %w", err)
	}
	return res.Value.Num(), nil
}

func (rs *rodSource) DocumentHeight() (float64, error) {
	res, err := rs.page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, fmt.Errorf("获取页面高度失败: %w", err)
	}
	return res.Value.Num(), nil
}

func (rs *rodSource) ScrollBy(px float64) error {
	js := fmt.Sprintf(`() => window.scrollBy({top: %f, behavior: 'smooth'})`, px)
	if _, err := rs.page.Eval(js); err != nil {
		return fmt.Errorf("滚动失败: %w", err)
	}
	return nil
}

func (rs *rodSource) JumpToBottom() error {
	js := `() => window.scrollTo({top: document.body.scrollHeight, behavior: 'smooth'})`
	if _, err := rs.page.Eval(js); err != nil {
		return fmt.Errorf("跳转到底部失败: %w", err)
	}
	return nil
}

func (rs *rodSource) UpdateOverlay(status *Status) error {
	js := fmt.Sprintf("() => {%s}", overlayJSBody(status.Text()))
	if _, err := rs.page.Eval(js); err != nil {
		return fmt.Errorf("更新状态条失败: %w", err)
	}
	return nil
}

func (rs *rodSource) Close() {
	if rs.page != nil {
		rs.page.MustClose()
	}
	if rs.ownBrowser {
		rs.browser.MustClose()
	}
}
