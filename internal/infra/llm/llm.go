package llm

import (
	"context"
	"strconv"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	einomodel "github.com/cloudwego/eino/components/model"
)

type LLM interface {
	Model() einomodel.BaseChatModel
}

type ollamaLLM struct {
	model einomodel.BaseChatModel
}

// InitLLM 初始化问答Agent使用的本地聊天模型
func InitLLM(ctx context.Context, cfg *config.Config) (LLM, error) {
	chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: cfg.LLM.Host + ":" + strconv.Itoa(cfg.LLM.Port),
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return nil, err
	}
	return &ollamaLLM{model: chatModel}, nil
}

func (l *ollamaLLM) Model() einomodel.BaseChatModel {
	return l.model
}
