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

//使用go:embed嵌入appconfig.json文件
//下方注释重要,不能删除
//Github上保存的appconfig.json文件为样例,选择器与账号信息以实际环境为准

//go:embed appconfig/appconfig.json
var appConfig []byte

// 要采集的商品列表页,按需修改
var url = "https://example-market.com/category/electronics?sort=sales"

func main() {
	appcfg, err := config.ParseConfig(appConfig)
	if err != nil {
		log.Fatalf("解析配置失败: %v", err)
	}

	ctx := context.Background()
	//运行前确保es服务启动完成
	esProductClient, err := es.InitTypedEsClient[*model.ProductDoc](appcfg)
	if err != nil {
		log.Fatalf("初始化Elasticsearch客户端失败: %v", err)
	}
	//创建索引并设置映射
	if err := esProductClient.CreateIndexWithMapping(ctx); err != nil {
		log.Fatalf("创建索引失败: %v", err)
	}

	//初始化Rod页面源
	source, err := dom.InitRodSource(appcfg)
	if err != nil {
		log.Fatalf("初始化Rod页面源失败: %v", err)
	}
	defer source.Close()

	//初始化Embedding模型
	embedder, err := embedding.InitEmbedder(ctx, appcfg)
	if err != nil {
		log.Fatalf("初始化Embedder失败: %v", err)
	}

	service := harvest.InitHarvestService[*entity.RowProductData, *model.ProductDoc](
		appcfg, source, esProductClient, embedder,
	)

	//会话开始前校验上传端点
	if err := service.VerifyConnection(ctx); err != nil {
		log.Fatalf("上传端点校验失败: %v", err)
	}

	harvestParams := &param.Harvest{
		Url: url,
		//采满200条即收敛
		TargetCount: 200,
		//最多滚动60轮,防止无限列表耗尽预算
		MaxIterations: 60,
		//会话结束后自动上传工作集
		AutoUpload: true,
	}
	state, err := service.RunSession(ctx, harvestParams)
	if err != nil {
		log.Fatalf("采集会话失败: %v", err)
	}
	fmt.Printf("会话终态: %s, 已上传 %d 条\n", state, service.Store().UploadedCount())

	count, err := esProductClient.CountDocs(ctx)
	if err != nil {
		log.Fatalf("查询索引文档数量失败: %v", err)
	}
	fmt.Printf("索引中的文档数量: %d\n", count)
}
