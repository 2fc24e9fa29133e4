package harvest

import (
	"github.com/LouYuanbo1/goodsharvester/internal/domain/entity"
)

// Store 两级去重存储
// 第一级:会话内工作集(指纹->记录),阻止同一内容的重复提取;内容哈希变了视为新候选
// 第二级:已上传指纹集,跨批次只增不减,工作集清空后依然阻止重复上传
// 两级都只在单一控制流中访问,无需加锁
type Store struct {
	working      map[string]*entity.RowProductData
	workingOrder []string
	uploaded     map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		working:  make(map[string]*entity.RowProductData),
		uploaded: make(map[string]struct{}),
	}
}

// Admit 尝试把记录收进工作集
// 已上传的指纹拒收;工作集内同指纹同哈希拒收;同指纹不同哈希按新候选覆盖收下
func (s *Store) Admit(rec *entity.RowProductData) bool {
	if _, ok := s.uploaded[rec.Fingerprint]; ok {
		return false
	}
	if prev, ok := s.working[rec.Fingerprint]; ok {
		if prev.ContentHash == rec.ContentHash {
			return false
		}
		s.working[rec.Fingerprint] = rec
		return true
	}
	s.working[rec.Fingerprint] = rec
	s.workingOrder = append(s.workingOrder, rec.Fingerprint)
	return true
}

// Known 指纹是否已收录且内容未变(或已上传)
// 协调器用它判断整行可否零等待跳过
func (s *Store) Known(fingerprint, contentHash string) bool {
	if _, ok := s.uploaded[fingerprint]; ok {
		return true
	}
	prev, ok := s.working[fingerprint]
	return ok && prev.ContentHash == contentHash
}

func (s *Store) IsUploaded(fingerprint string) bool {
	_, ok := s.uploaded[fingerprint]
	return ok
}

func (s *Store) Size() int {
	return len(s.working)
}

func (s *Store) UploadedCount() int {
	return len(s.uploaded)
}

// Snapshot 按收录顺序返回工作集的副本切片,供上传批次使用
func (s *Store) Snapshot() []*entity.RowProductData {
	out := make([]*entity.RowProductData, 0, len(s.working))
	for _, fp := range s.workingOrder {
		if rec, ok := s.working[fp]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// MarkUploaded 把指纹并入已上传集,只增不减
func (s *Store) MarkUploaded(fingerprints []string) {
	for _, fp := range fingerprints {
		s.uploaded[fp] = struct{}{}
	}
}

// ClearWorking 清空工作集以限制批次间的内存占用
// 绝不触碰已上传指纹集
func (s *Store) ClearWorking() {
	s.working = make(map[string]*entity.RowProductData)
	s.workingOrder = nil
}
