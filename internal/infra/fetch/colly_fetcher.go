package fetch

import (
	"fmt"
	"log"
	"net/http/cookiejar"
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/gocolly/colly/v2"
)

// Fetcher 拉取单个页面的静态HTML,供快照模式离线解析
type Fetcher interface {
	Fetch(url string) (string, error)
}

type collyFetcher struct {
	colly *colly.Collector
}

func InitCollyFetcher(cfg *config.Config) Fetcher {
	var opts []colly.CollectorOption
	opts = append(opts,
		colly.MaxDepth(cfg.Colly.MaxDepth),
		colly.Async(cfg.Colly.Async),
		colly.UserAgent(cfg.Colly.UserAgent),
		colly.AllowedDomains(cfg.Colly.AllowedDomains...),
	)
	if cfg.Colly.IgnoreRobotsTxt {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}
	c := colly.NewCollector(opts...)
	c.Limit(&colly.LimitRule{
		Delay:       time.Duration(cfg.Colly.Delay) * time.Second,
		RandomDelay: time.Duration(cfg.Colly.RandomDelay) * time.Second,
	})
	if cfg.Colly.EnableCookieJar {
		jar, err := cookiejar.New(cfg.Colly.CookieJarOptions)
		if err != nil {
			panic(err)
		}
		c.SetCookieJar(jar)
	}
	log.Printf("InitCollyFetcher, maxDepth: %d, async: %v, delay: %d, randomDelay: %d",
		cfg.Colly.MaxDepth, cfg.Colly.Async, cfg.Colly.Delay, cfg.Colly.RandomDelay)
	return &collyFetcher{
		colly: c,
	}
}

// Fetch 每次克隆采集器注册回调,避免回调在多次拉取之间累积
func (cf *collyFetcher) Fetch(url string) (string, error) {
	clone := cf.colly.Clone()
	var body []byte
	clone.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	if err := clone.Visit(url); err != nil {
		return "", fmt.Errorf("访问URL失败: %w", err)
	}
	clone.Wait()
	if len(body) == 0 {
		return "", fmt.Errorf("页面响应为空, url: %s", url)
	}
	return string(body), nil
}
