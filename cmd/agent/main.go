package main

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/LouYuanbo1/goodsharvester/internal/domain/model"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/embedding"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/llm"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/persistence/es"
	"github.com/LouYuanbo1/goodsharvester/internal/service/agent"
	"github.com/LouYuanbo1/goodsharvester/param"

	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed appconfig/appconfig.json
var appConfig []byte

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

	embedder, err := embedding.InitEmbedder(ctx, appcfg)
	if err != nil {
		log.Fatalf("初始化Embedder失败: %v", err)
	}

	chatModel, err := llm.InitLLM(ctx, appcfg)
	if err != nil {
		log.Fatalf("初始化聊天模型失败: %v", err)
	}

	agentParams := &param.Agent{
		IndexName: model.ProductIndexName,
		Prompt: map[param.PromptType]*prompt.DefaultChatTemplate{
			param.PromptSearchMode: prompt.FromMessages(schema.FString,
				schema.SystemMessage("你是一名电商选品助手。根据下面的参考商品记录回答用户问题,"+
					"记录来自真实采集的商品列表,包含价格、销量、佣金率和竞品信息。"+
					"回答时引用具体数字,没有出现在记录里的信息不要编造。\n\n{referenceDocs}"),
				schema.UserMessage("{query}"),
			),
			param.PromptChatMode: prompt.FromMessages(schema.FString,
				schema.SystemMessage("你是一名电商选品助手,用中文简洁回答用户问题。"),
				schema.UserMessage("{query}"),
			),
		},
		DuckDuckGoSearch: param.SearchConfig{
			MaxResults: 5,
			Region:     duckduckgo.RegionCN,
			Timeout:    10 * time.Second,
		},
	}

	agentService, err := agent.InitAgentService(ctx, chatModel, esProductClient, embedder, agentParams)
	if err != nil {
		log.Fatalf("初始化Agent失败: %v", err)
	}

	fmt.Println("商品问答Agent已就绪,输入以\"查询模式\"或\"搜索模式\"开头的问题会检索已采集的商品记录,输入exit退出")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}
		if err := agentService.Stream(ctx, query); err != nil {
			log.Printf("回答失败: %v", err)
		}
	}
}
