package parallel

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/LouYuanbo1/goodsharvester/internal/domain/entity"
	"github.com/LouYuanbo1/goodsharvester/internal/domain/model"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/embedding"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/persistence/es"
	"github.com/LouYuanbo1/goodsharvester/internal/service/harvest"
	"github.com/LouYuanbo1/goodsharvester/param"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"golang.org/x/sync/errgroup"
)

// ParallelService 并行采集多个列表页
// 单个页面内仍是单一控制流,并发只发生在相互独立的会话之间,
// 每个会话独占一个池中浏览器和自己的两级存储
type ParallelService[C entity.Crawlable[D], D model.Document] interface {
	HarvestAll(ctx context.Context, operations []*param.Harvest) error
	Close()
}

type rodPoolService[C entity.Crawlable[D], D model.Document] struct {
	cfg           *config.Config
	browserPool   rod.Pool[rod.Browser]
	createBrowser func() (*rod.Browser, error)
	poolSize      int
	typedEsClient es.TypedEsClient[D]
	embedder      embedding.Embedder
}

func InitRodPoolService[C entity.Crawlable[D], D model.Document](
	cfg *config.Config,
	poolSize int,
	typedEsClient es.TypedEsClient[D],
	embedder embedding.Embedder,
) (ParallelService[C, D], error) {
	controlURLCh := make(chan string, poolSize)
	for instanceID := range poolSize {
		instanceDataDir := fmt.Sprintf("%s/instance_%d", cfg.Rod.UserDataDir, instanceID)
		if err := os.MkdirAll(instanceDataDir, 0755); err != nil {
			return nil, fmt.Errorf("创建实例数据目录失败: %w", err)
		}

		l := launcher.New().
			Headless(cfg.Rod.Headless).
			Leakless(cfg.Rod.Leakless).
			UserDataDir(instanceDataDir)
		if cfg.Rod.Bin != "" {
			l = l.Bin(cfg.Rod.Bin)
		}
		if cfg.Rod.DisableBlinkFeatures != "" {
			l = l.Set("disable-blink-features", cfg.Rod.DisableBlinkFeatures)
		}
		if cfg.Rod.UserAgent != "" {
			l = l.Set("user-agent", cfg.Rod.UserAgent)
		}
		if cfg.Rod.DisableDevShmUsage {
			l = l.Set("disable-dev-shm-usage")
		}
		if cfg.Rod.NoSandbox {
			l = l.Set("no-sandbox")
		}

		urlStr, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("启动浏览器失败: %w", err)
		}
		log.Printf("浏览器实例 %d 连接URL: %s", instanceID, urlStr)
		controlURLCh <- urlStr
	}
	close(controlURLCh)

	browserPool := rod.NewBrowserPool(poolSize)
	createBrowser := func() (*rod.Browser, error) {
		urlStr := <-controlURLCh
		browser := rod.New().ControlURL(urlStr)
		if err := browser.Connect(); err != nil {
			return nil, fmt.Errorf("连接浏览器失败: %w", err)
		}
		return browser, nil
	}

	return &rodPoolService[C, D]{
		cfg:           cfg,
		browserPool:   browserPool,
		createBrowser: createBrowser,
		poolSize:      poolSize,
		typedEsClient: typedEsClient,
		embedder:      embedder,
	}, nil
}

// HarvestAll 对每个列表页跑一个独立会话,并发数受池大小限制
// 任何会话出错不会打断其他会话,错误由errgroup收齐后统一返回第一个
func (rps *rodPoolService[C, D]) HarvestAll(ctx context.Context, operations []*param.Harvest) error {
	validOperations := rps.operationsChecker(operations)
	if len(validOperations) == 0 {
		return fmt.Errorf("没有有效的采集参数")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rps.poolSize)
	for _, op := range validOperations {
		g.Go(func() error {
			return rps.harvestOne(ctx, op)
		})
	}
	return g.Wait()
}

func (rps *rodPoolService[C, D]) harvestOne(ctx context.Context, op *param.Harvest) error {
	browser, err := rps.browserPool.Get(rps.createBrowser)
	if err != nil {
		return fmt.Errorf("获取浏览器失败: %w", err)
	}
	defer rps.browserPool.Put(browser)

	source := dom.InitRodSourceWithBrowser(browser, rps.cfg)
	defer source.Close()

	service := harvest.InitHarvestService[C, D](rps.cfg, source, rps.typedEsClient, rps.embedder)
	state, err := service.RunSession(ctx, op)
	if err != nil {
		return fmt.Errorf("采集会话失败, url: %s: %w", op.Url, err)
	}
	log.Printf("会话结束, url: %s, 终态 %s, 已上传 %d 条", op.Url, state, service.Store().UploadedCount())
	return nil
}

func (rps *rodPoolService[C, D]) operationsChecker(operations []*param.Harvest) []*param.Harvest {
	validOperations := make([]*param.Harvest, 0, len(operations))
	for _, op := range operations {
		if op.IsValid() {
			validOperations = append(validOperations, op)
		} else {
			log.Printf("无效的采集参数,已经跳过: %v", op)
		}
	}
	return validOperations
}

func (rps *rodPoolService[C, D]) Close() {
	rps.browserPool.Cleanup(func(b *rod.Browser) { b.MustClose() })
}
