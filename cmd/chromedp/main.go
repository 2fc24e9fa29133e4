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
	"github.com/LouYuanbo1/goodsharvester/internal/infra/persistence/es"
	"github.com/LouYuanbo1/goodsharvester/internal/service/harvest"
	"github.com/LouYuanbo1/goodsharvester/param"
)

//go:embed appconfig/appconfig.json
var appConfig []byte

// 要采集的商品列表页,按需修改
var url = "https://example-market.com/category/electronics?sort=sales"

func main() {
	appcfg, err := config.ParseConfig(appConfig)
	if err != nil {
		log.Fatalf("解析配置失败: %v", err)
	}

	fmt.Printf("Chromedp UserDataDir: %s\n", appcfg.Chromedp.UserDataDir)

	ctx := context.Background()
	//运行前确保es服务启动完成
	esProductClient, err := es.InitTypedEsClient[*model.ProductDoc](appcfg)
	if err != nil {
		log.Fatalf("初始化Elasticsearch客户端失败: %v", err)
	}
	if err := esProductClient.CreateIndexWithMapping(ctx); err != nil {
		log.Fatalf("创建索引失败: %v", err)
	}

	//chromedp页面源,生命周期由配置的life_time控制
	source, err := dom.InitChromedpSource(ctx, appcfg)
	if err != nil {
		log.Fatalf("初始化Chromedp页面源失败: %v", err)
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

	harvestParams := &param.Harvest{
		Url:           url,
		TargetCount:   200,
		MaxIterations: 60,
		AutoUpload:    true,
	}
	state, err := service.RunSession(ctx, harvestParams)
	if err != nil {
		log.Fatalf("采集会话失败: %v", err)
	}
	fmt.Printf("会话终态: %s, 已上传 %d 条\n", state, service.Store().UploadedCount())
}
