package es

import (
	"context"

	"github.com/LouYuanbo1/goodsharvester/internal/domain/model"
	"github.com/elastic/go-elasticsearch/v9"
)

// UploadStats 一次批量上传的逐条结果统计
// 注意:上层目前按"整体成功即全部已上传"处理,Failed只记日志(见service/harvest)
type UploadStats struct {
	Indexed int64
	Failed  int64
}

func (s *UploadStats) Total() int64 {
	return s.Indexed + s.Failed
}

type TypedEsClient[D model.Document] interface {
	GetClient() *elasticsearch.TypedClient
	// Ping 读端点:校验连通性与凭证,会话开始前调用
	Ping(ctx context.Context) error
	CreateIndexWithMapping(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	// BulkIndexDocsWithID 一次网络往返上传一个批次,返回逐条统计
	// 整体失败(客户端或传输层错误)时返回error,此时统计不可用
	BulkIndexDocsWithID(ctx context.Context, docs []D) (*UploadStats, error)
	GetDoc(ctx context.Context, id string) (D, error)
	CountDocs(ctx context.Context) (int64, error)
}
