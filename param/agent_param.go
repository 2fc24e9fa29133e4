package param

import (
	"time"

	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino/components/prompt"
)

type PromptType string

const (
	PromptSearchMode PromptType = "searchMode"
	PromptChatMode   PromptType = "chatMode"
)

type SearchConfig struct {
	MaxResults int
	Region     duckduckgo.Region
	Timeout    time.Duration
}

// Agent 商品问答Agent的参数,IndexName为已上传商品记录所在的索引
type Agent struct {
	IndexName        string
	Prompt           map[PromptType]*prompt.DefaultChatTemplate
	DuckDuckGoSearch SearchConfig
}
