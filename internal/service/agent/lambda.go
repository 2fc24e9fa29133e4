package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// IntentDetection 意图检测节点,用于识别用户查询的意图,当用户输入以查询模式或搜索模式开头时,将意图设置为"retriever",
// 用已采集的商品记录做RAG增强,否则走纯聊天模式
func IntentDetection() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state map[string]any) (map[string]any, error) {
		query, ok := state["query"].(string)
		if !ok {
			return nil, errors.New("query not found in state")
		}
		isSearchMode := strings.HasPrefix(query, "查询模式") || strings.HasPrefix(query, "搜索模式")
		if isSearchMode {
			state["isSearchMode"] = true
		} else {
			state["isSearchMode"] = false
		}
		return state, nil
	})
}

// BranchCondition 分支条件,根据意图选择下一个节点
func BranchCondition(ctx context.Context, state map[string]any) (string, error) {
	isSearchMode, ok := state["isSearchMode"].(bool)
	if !ok {
		return "", errors.New("isSearchMode not found in state")
	}
	if isSearchMode {
		return "retriever", nil
	}
	return "chatModePrompt", nil
}

// Retriever 检索节点,把用户查询嵌入后对商品索引的embedding字段做knn检索,
// 命中的商品文档原样拼进参考资料
func Retriever() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state map[string]any) (map[string]any, error) {
		query, ok := state["query"].(string)
		if !ok {
			return nil, errors.New("query not found in state")
		}
		var embeddings [][]float32
		var err error
		err = compose.ProcessState(ctx, func(ctx context.Context, s *State) error {
			embeddings, err = s.Embedder.Embed(ctx, []string{query})
			if err != nil {
				return err
			}
			embedding := embeddings[0]
			K := 5
			numCandidates := 100
			searchResp, err := s.TypedEsClient.Search().Index(s.IndexName).
				Request(&search.Request{
					Knn: []types.KnnSearch{
						{
							Field:         "embedding",
							QueryVector:   embedding,
							K:             &K,
							NumCandidates: &numCandidates,
						},
					},
				}).Do(ctx)
			if err != nil {
				return err
			}
			var Builder strings.Builder
			Builder.WriteString("参考商品记录(JSON格式):\n\n")
			for i, hit := range searchResp.Hits.Hits {
				Builder.WriteString(fmt.Sprintf("商品%d:\n", i+1))
				Builder.WriteString(string(hit.Source_))
				Builder.WriteString("\n\n")
			}
			state["referenceDocs"] = Builder.String()
			return nil
		})
		if err != nil {
			return nil, err
		}

		return state, nil
	})
}
