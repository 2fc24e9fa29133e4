package harvest

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/extract"
)

// Coordinator 注入等待协调器
// 第三方脚本按"行"(固定数量的相邻卡片)为单位异步注入数据,延迟无上界,
// 推广位可能永远不会被注入。这里把可见卡片按行分组,所有待定行在同一个
// 轮询节拍里一起检查(串行逐行等会把总等待乘上行数),整个视口共享一个超时。
// 超时仍未就绪的行直接留给下一次滚动后的轮询,不记任何失败
type Coordinator struct {
	source    dom.ItemSource
	store     *Store
	assembler *extract.Assembler
	detector  *extract.ChangeDetector

	rowSize      int
	pollInterval time.Duration
	timeout      time.Duration
}

func NewCoordinator(
	source dom.ItemSource,
	store *Store,
	assembler *extract.Assembler,
	detector *extract.ChangeDetector,
	rowSize int,
	pollInterval, timeout time.Duration,
) *Coordinator {
	if rowSize <= 0 {
		rowSize = 4
	}
	return &Coordinator{
		source:       source,
		store:        store,
		assembler:    assembler,
		detector:     detector,
		rowSize:      rowSize,
		pollInterval: pollInterval,
		timeout:      timeout,
	}
}

// CollectVisible 对当前视口做一轮完整的行批量轮询
// 返回新收进工作集的记录数。running为nil时不检查取消
func (c *Coordinator) CollectVisible(running *atomic.Bool) (int, error) {
	deadline := time.Now().Add(c.timeout)
	added := 0

	views, err := c.source.VisibleItems()
	if err != nil {
		return 0, fmt.Errorf("读取可见元素失败: %w", err)
	}
	rows := partitionRows(views, c.rowSize)

	// 整行已收录(且内容未变)的行必须零等待跳过
	pending := make([]int, 0, len(rows))
	for i, row := range rows {
		if c.rowKnown(row) {
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	for {
		// 同一节拍里把所有待定行一起检查:整个视口的等待上界是一个timeout,与行数无关
		remaining := pending[:0]
		for _, i := range pending {
			if i >= len(rows) {
				continue
			}
			row := rows[i]
			if !c.rowReady(row) {
				remaining = append(remaining, i)
				continue
			}
			added += c.extractRow(row)
		}
		pending = remaining

		if len(pending) == 0 {
			return added, nil
		}
		if time.Now().After(deadline) {
			// 超时的行留给下一轮滚动后重试,只要还可见就有机会
			log.Printf("注入等待超时,%d 行留待下次轮询", len(pending))
			return added, nil
		}

		time.Sleep(c.pollInterval)
		if running != nil && !running.Load() {
			return added, nil
		}

		// 重新快照:注入文本是就地更新的,必须重读
		views, err = c.source.VisibleItems()
		if err != nil {
			return added, fmt.Errorf("读取可见元素失败: %w", err)
		}
		rows = partitionRows(views, c.rowSize)
	}
}

// rowKnown 整行的每个成员都已收录且物理节点内容未变
// 任何一个成员解析不出指纹、或节点被复用换了内容,该行都要重新走轮询
func (c *Coordinator) rowKnown(row []*dom.ItemView) bool {
	for _, v := range row {
		hash := extract.ContentHash(v)
		if c.detector.Observe(v.NodeID, hash) {
			return false
		}
		fp, err := extract.Fingerprint(v.DetailHref)
		if err != nil {
			return false
		}
		if !c.store.Known(fp, hash) {
			return false
		}
	}
	return true
}

// rowReady 行就绪判据
// 只对"有合规标识且尚未收录"的成员要求注入就绪:推广位往往没有合规的详情链接,
// 不能让它们把整行卡死
func (c *Coordinator) rowReady(row []*dom.ItemView) bool {
	for _, v := range row {
		fp, err := extract.Fingerprint(v.DetailHref)
		if err != nil {
			continue
		}
		if c.store.Known(fp, extract.ContentHash(v)) {
			continue
		}
		if !c.assembler.Ready(v) {
			return false
		}
	}
	return true
}

// extractRow 提取整行,返回新收进工作集的记录数
// 标识不可解析的成员静默丢弃;单条记录的字段级失败在装配器内部就地消化
func (c *Coordinator) extractRow(row []*dom.ItemView) int {
	added := 0
	for _, v := range row {
		rec, err := c.assembler.Assemble(v)
		if err != nil {
			// 只有ErrUnresolvable会走到这里,按设计静默丢弃
			continue
		}
		if c.store.Admit(rec) {
			added++
		}
	}
	return added
}

func partitionRows(views []*dom.ItemView, rowSize int) [][]*dom.ItemView {
	var rows [][]*dom.ItemView
	for i := 0; i < len(views); i += rowSize {
		end := min(i+rowSize, len(views))
		rows = append(rows, views[i:end])
	}
	return rows
}
