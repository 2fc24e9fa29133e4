package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/LouYuanbo1/goodsharvester/internal/domain/entity"
	"github.com/LouYuanbo1/goodsharvester/internal/domain/model"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/embedding"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/fetch"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/persistence/es"
	"github.com/LouYuanbo1/goodsharvester/internal/service/harvest"
	"github.com/LouYuanbo1/goodsharvester/param"
)

//go:embed appconfig/appconfig.json
var appConfig []byte

// 快照模式:colly拉取一次静态HTML,在快照上提取可见的商品卡片
// 适合服务端渲染了注入面板的页面,虚拟滚动页面请使用rod或chromedp模式
var url = "https://example-market.com/category/electronics?sort=sales"

func main() {
	appcfg, err := config.ParseConfig(appConfig)
	if err != nil {
		log.Fatalf("解析配置失败: %v", err)
	}

	ctx := context.Background()
	esProductClient, err := es.InitTypedEsClient[*model.ProductDoc](appcfg)
	if err != nil {
		log.Fatalf("初始化Elasticsearch客户端失败: %v", err)
	}
	if err := esProductClient.CreateIndexWithMapping(ctx); err != nil {
		log.Fatalf("创建索引失败: %v", err)
	}

	fetcher := fetch.InitCollyFetcher(appcfg)
	html, err := fetcher.Fetch(url)
	if err != nil {
		log.Fatalf("拉取页面失败: %v", err)
	}

	source, err := dom.NewSnapshotSource(html, appcfg)
	if err != nil {
		log.Fatalf("解析HTML快照失败: %v", err)
	}
	defer source.Close()

	embedder, err := embedding.InitEmbedder(ctx, appcfg)
	if err != nil {
		log.Fatalf("初始化Embedder失败: %v", err)
	}

	service := harvest.InitHarvestService[*entity.RowProductData, *model.ProductDoc](
		appcfg, source, esProductClient, embedder,
	)
	if err := service.VerifyConnection(ctx); err != nil {
		log.Fatalf("上传端点校验失败: %v", err)
	}

	//快照没有滚动,2轮迭代足够让驱动器收敛
	//注入等待也无意义,超时压到1秒
	harvestParams := &param.Harvest{
		Url:             url,
		MaxIterations:   2,
		EnrichTimeoutMs: 1000,
		AutoUpload:      true,
	}
	state, err := service.RunSession(ctx, harvestParams)
	if err != nil {
		log.Fatalf("采集会话失败: %v", err)
	}
	fmt.Printf("会话终态: %s, 已上传 %d 条\n", state, service.Store().UploadedCount())
}
