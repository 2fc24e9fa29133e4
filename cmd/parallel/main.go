package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/LouYuanbo1/goodsharvester/internal/domain/entity"
	"github.com/LouYuanbo1/goodsharvester/internal/domain/model"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/embedding"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/persistence/es"
	"github.com/LouYuanbo1/goodsharvester/internal/service/parallel"
	"github.com/LouYuanbo1/goodsharvester/param"
)

//go:embed appconfig/appconfig.json
var appConfig []byte

// 并行采集多个类目列表页,每个URL一个独立会话
var urls = []string{
	"https://example-market.com/category/electronics?sort=sales",
	"https://example-market.com/category/home-garden?sort=sales",
	"https://example-market.com/category/beauty?sort=sales",
}

const browserPoolSize = 3

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

	embedder, err := embedding.InitEmbedder(ctx, appcfg)
	if err != nil {
		log.Fatalf("初始化Embedder失败: %v", err)
	}

	service, err := parallel.InitRodPoolService[*entity.RowProductData, *model.ProductDoc](
		appcfg, browserPoolSize, esProductClient, embedder,
	)
	if err != nil {
		log.Fatalf("初始化浏览器池失败: %v", err)
	}
	defer service.Close()

	operations := make([]*param.Harvest, 0, len(urls))
	for _, u := range urls {
		operations = append(operations, &param.Harvest{
			Url:           u,
			TargetCount:   100,
			MaxIterations: 40,
			AutoUpload:    true,
		})
	}

	if err := service.HarvestAll(ctx, operations); err != nil {
		log.Fatalf("并行采集失败: %v", err)
	}

	count, err := esProductClient.CountDocs(ctx)
	if err != nil {
		log.Fatalf("查询索引文档数量失败: %v", err)
	}
	fmt.Printf("索引中的文档数量: %d\n", count)
}
