package harvest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/LouYuanbo1/goodsharvester/internal/domain/entity"
	"github.com/LouYuanbo1/goodsharvester/internal/domain/model"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/embedding"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/extract"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/persistence/es"
	"github.com/LouYuanbo1/goodsharvester/param"
)

type HarvestService[C entity.Crawlable[D], D model.Document] interface {
	Source() dom.ItemSource
	TypedEsClient() es.TypedEsClient[D]
	Embedder() embedding.Embedder
	Store() *Store
	VerifyConnection(ctx context.Context) error
	RunSession(ctx context.Context, params *param.Harvest) (State, error)
	UploadBatch(ctx context.Context) (*es.UploadStats, error)
	Stop()
}

// harvestService 一次会话 = 打开列表页 -> 滚动采集 -> 分批上传
// 采集部分是单一控制流,上传的至多一次语义由两级存储保证
type harvestService[C entity.Crawlable[D], D model.Document] struct {
	cfg           *config.Config
	source        dom.ItemSource
	typedEsClient es.TypedEsClient[D]
	embedder      embedding.Embedder
	store         *Store
	driver        *Driver
}

func InitHarvestService[C entity.Crawlable[D], D model.Document](
	cfg *config.Config,
	source dom.ItemSource,
	typedEsClient es.TypedEsClient[D],
	embedder embedding.Embedder,
) HarvestService[C, D] {
	return &harvestService[C, D]{
		cfg:           cfg,
		source:        source,
		typedEsClient: typedEsClient,
		embedder:      embedder,
		store:         NewStore(),
	}
}

func (hs *harvestService[C, D]) Source() dom.ItemSource {
	return hs.source
}

func (hs *harvestService[C, D]) TypedEsClient() es.TypedEsClient[D] {
	return hs.typedEsClient
}

func (hs *harvestService[C, D]) Embedder() embedding.Embedder {
	return hs.embedder
}

func (hs *harvestService[C, D]) Store() *Store {
	return hs.store
}

// VerifyConnection 会话开始前走只读端点校验上传端点可达且凭证有效
func (hs *harvestService[C, D]) VerifyConnection(ctx context.Context) error {
	if err := hs.typedEsClient.Ping(ctx); err != nil {
		return err
	}
	count, err := hs.typedEsClient.CountDocs(ctx)
	if err != nil {
		return fmt.Errorf("读取索引文档数失败: %w", err)
	}
	log.Printf("上传端点校验通过, 索引现有 %d 条文档", count)
	return nil
}

// RunSession 执行一次完整的采集会话
// params里留空(零值)的调优项从配置的Harvest段补齐
func (hs *harvestService[C, D]) RunSession(ctx context.Context, params *param.Harvest) (State, error) {
	if !params.IsValid() {
		return StateStalled, fmt.Errorf("采集参数不合法, url: %s", params.Url)
	}
	hs.fillDefaults(params)

	log.Printf("开始采集会话, url: %s, 目标 %d 条, 预算 %d 轮", params.Url, params.TargetCount, params.MaxIterations)
	if err := hs.source.Navigate(params.Url); err != nil {
		return StateStalled, fmt.Errorf("打开列表页失败: %w", err)
	}

	assembler := extract.NewAssembler(params.MinEnrichmentLen)
	detector := extract.NewChangeDetector()
	coordinator := NewCoordinator(
		hs.source, hs.store, assembler, detector,
		params.RowSize, params.PollInterval(), params.EnrichTimeout(),
	)
	hs.driver = NewDriver(hs.source, coordinator, hs.store, params)

	state, err := hs.driver.Run()
	if err != nil {
		return state, err
	}
	log.Printf("采集会话结束, 终态 %s, 工作集 %d 条", state, hs.store.Size())

	if params.AutoUpload && hs.store.Size() > 0 {
		if _, err := hs.UploadBatch(ctx); err != nil {
			return state, err
		}
	}
	return state, nil
}

// UploadBatch 把当前工作集作为一个批次整体上传
// 整批成功:所有指纹并入已上传集,工作集清空;整批失败:工作集原样保留,留给重试
// 批次内个别文档失败只记日志,指纹照样标记,避免重复上传压过漏传
func (hs *harvestService[C, D]) UploadBatch(ctx context.Context) (*es.UploadStats, error) {
	snapshot := hs.store.Snapshot()
	if len(snapshot) == 0 {
		return &es.UploadStats{}, nil
	}

	docs := make([]D, 0, len(snapshot))
	fingerprints := make([]string, 0, len(snapshot))
	for _, rec := range snapshot {
		docs = append(docs, C(rec).ToDocument())
		fingerprints = append(fingerprints, rec.Fingerprint)
	}

	if hs.embedder != nil {
		hs.embeddingDocs(docs)
	}

	stats, err := hs.typedEsClient.BulkIndexDocsWithID(ctx, docs)
	if err != nil {
		// 工作集原样保留,下一次上传重试
		return nil, fmt.Errorf("批量上传失败, %d 条保留在工作集: %w", len(snapshot), err)
	}
	if stats.Failed > 0 {
		log.Printf("批次内 %d 条文档上传失败(共 %d 条), 指纹仍标记为已上传", stats.Failed, stats.Total())
	}
	hs.store.MarkUploaded(fingerprints)
	hs.store.ClearWorking()
	log.Printf("批次上传完成, 本批 %d 条, 累计已上传 %d 条", stats.Indexed, hs.store.UploadedCount())
	return stats, nil
}

// Stop 请求停止当前会话,在下一个轮询间隔内生效
func (hs *harvestService[C, D]) Stop() {
	if hs.driver != nil {
		hs.driver.Stop()
	}
}

func (hs *harvestService[C, D]) fillDefaults(params *param.Harvest) {
	h := hs.cfg.Harvest
	if params.RowSize <= 0 {
		params.RowSize = h.RowSize
	}
	if params.PollIntervalMs <= 0 {
		params.PollIntervalMs = h.PollIntervalMs
	}
	if params.EnrichTimeoutMs <= 0 {
		params.EnrichTimeoutMs = h.EnrichTimeoutMs
	}
	if params.MinEnrichmentLen <= 0 {
		params.MinEnrichmentLen = h.MinEnrichmentLen
	}
	if params.NoGrowthLimit <= 0 {
		params.NoGrowthLimit = h.NoGrowthLimit
	}
	if params.GrowthBoost <= 0 {
		params.GrowthBoost = h.GrowthBoost
	}
	if params.MinStepRatio <= 0 {
		params.MinStepRatio = h.MinStepRatio
	}
	if params.MaxStepRatio <= 0 {
		params.MaxStepRatio = h.MaxStepRatio
	}
	if params.InitialStepRatio <= 0 {
		params.InitialStepRatio = h.InitialStepRatio
	}
	if params.ScrollPauseMs <= 0 {
		params.ScrollPauseMs = h.ScrollPauseMs
	}
}

func (hs *harvestService[C, D]) embeddingDocs(docs []D) {
	// 从配置中获取批量处理大小
	batchSizeEmbedding := hs.embedder.BatchSize()
	reqCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	embeddingStrings := make([]string, 0, len(docs))
	for _, doc := range docs {
		embeddingStrings = append(embeddingStrings, doc.GetEmbeddingString())
	}
	var embeddingVectors [][]float32
	var err error
	if len(embeddingStrings) < batchSizeEmbedding {
		embeddingVectors, err = hs.embedder.Embed(reqCtx, embeddingStrings)
		if err != nil {
			log.Printf("Embed error: %v", err)
		}
		for i := range embeddingVectors {
			docs[i].SetEmbedding(embeddingVectors[i])
		}
	} else {
		for i := 0; i < len(embeddingStrings); i += batchSizeEmbedding {
			end := i + batchSizeEmbedding
			end = min(end, len(embeddingStrings))
			embeddingVectors, err = hs.embedder.Embed(reqCtx, embeddingStrings[i:end])
			if err != nil {
				log.Printf("Embed error: %v", err)
			}
			for j := range embeddingVectors {
				docs[i+j].SetEmbedding(embeddingVectors[j])
			}
		}
	}
}
