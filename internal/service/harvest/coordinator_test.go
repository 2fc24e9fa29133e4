package harvest

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator(src *fakeSource, store *Store, pollInterval, timeout time.Duration) *Coordinator {
	return NewCoordinator(src, store, extract.NewAssembler(40), extract.NewChangeDetector(), 4, pollInterval, timeout)
}

func TestCollectVisibleExtractsReadyRows(t *testing.T) {
	src := &fakeSource{itemsFn: func() []*dom.ItemView {
		return []*dom.ItemView{
			readyItem("n0", 100500), readyItem("n1", 100501),
			readyItem("n2", 100502), readyItem("n3", 100503),
		}
	}}
	store := NewStore()
	c := newTestCoordinator(src, store, time.Millisecond, time.Second)

	added, err := c.CollectVisible(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, added)
	assert.Equal(t, 4, store.Size())
	// 全部就绪,一次快照就够
	assert.Equal(t, 1, src.visibleCalls)
}

func TestCollectVisibleWaitsForLateInjection(t *testing.T) {
	// 前两次快照注入未到,第三次到齐
	snapshots := 0
	src := &fakeSource{}
	src.itemsFn = func() []*dom.ItemView {
		snapshots++
		if snapshots < 3 {
			return []*dom.ItemView{pendingItem("n0", 100500), pendingItem("n1", 100501)}
		}
		return []*dom.ItemView{readyItem("n0", 100500), readyItem("n1", 100501)}
	}
	store := NewStore()
	c := newTestCoordinator(src, store, time.Millisecond, time.Second)

	added, err := c.CollectVisible(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, store.Size())
}

func TestCollectVisibleTimeoutLeavesRowForNextPass(t *testing.T) {
	// 两行:第一行就绪,第二行的注入永远不来
	row2Ready := false
	src := &fakeSource{}
	src.itemsFn = func() []*dom.ItemView {
		views := []*dom.ItemView{
			readyItem("n0", 100500), readyItem("n1", 100501),
			readyItem("n2", 100502), readyItem("n3", 100503),
		}
		for i := range 4 {
			nodeID := fmt.Sprintf("n%d", 4+i)
			if row2Ready {
				views = append(views, readyItem(nodeID, 200600+i))
			} else {
				views = append(views, pendingItem(nodeID, 200600+i))
			}
		}
		return views
	}
	store := NewStore()
	c := newTestCoordinator(src, store, 2*time.Millisecond, 30*time.Millisecond)

	// 第一行立即提取,第二行等到超时后留待下次,不算失败
	added, err := c.CollectVisible(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, added)
	assert.Equal(t, 4, store.Size())

	// 注入终于到了:已收录的第一行零等待跳过,第二行补齐
	row2Ready = true
	callsBefore := src.visibleCalls
	added, err = c.CollectVisible(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, added)
	assert.Equal(t, 8, store.Size())
	assert.Equal(t, 1, src.visibleCalls-callsBefore)
}

func TestCollectVisibleKnownRowsZeroLatency(t *testing.T) {
	src := &fakeSource{itemsFn: func() []*dom.ItemView {
		return []*dom.ItemView{readyItem("n0", 100500), readyItem("n1", 100501)}
	}}
	store := NewStore()
	c := newTestCoordinator(src, store, time.Millisecond, 10*time.Second)

	_, err := c.CollectVisible(nil)
	require.NoError(t, err)

	// 超时设得很大,整行已收录时必须不经过任何轮询等待直接返回
	start := time.Now()
	added, err := c.CollectVisible(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 2, src.visibleCalls)
}

func TestCollectVisiblePromotedCardDoesNotBlockRow(t *testing.T) {
	// 推广位没有合规的详情链接且永远不会被注入,不能卡死整行
	src := &fakeSource{itemsFn: func() []*dom.ItemView {
		promoted := &dom.ItemView{NodeID: "n1", DetailHref: "/campaign/super-deals", Title: "推广位"}
		return []*dom.ItemView{
			readyItem("n0", 100500), promoted,
			readyItem("n2", 100502), readyItem("n3", 100503),
		}
	}}
	store := NewStore()
	c := newTestCoordinator(src, store, time.Millisecond, time.Second)

	added, err := c.CollectVisible(nil)
	require.NoError(t, err)
	// 推广位静默丢弃,其余3条照常提取
	assert.Equal(t, 3, added)
	assert.Equal(t, 3, store.Size())
}

func TestCollectVisibleNodeRecycling(t *testing.T) {
	// 虚拟滚动把同一个物理节点n0换绑给新商品
	productID := 100500
	src := &fakeSource{}
	src.itemsFn = func() []*dom.ItemView {
		return []*dom.ItemView{readyItem("n0", productID)}
	}
	store := NewStore()
	c := newTestCoordinator(src, store, time.Millisecond, time.Second)

	added, err := c.CollectVisible(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	productID = 200600
	added, err = c.CollectVisible(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, store.Size())
}

func TestCollectVisibleContentChangeReAdmits(t *testing.T) {
	// 同一个商品价格变了:同指纹不同内容哈希,按新候选覆盖
	price := "US$ 12.99"
	src := &fakeSource{}
	src.itemsFn = func() []*dom.ItemView {
		v := readyItem("n0", 100500)
		v.PriceText = price
		return []*dom.ItemView{v}
	}
	store := NewStore()
	c := newTestCoordinator(src, store, time.Millisecond, time.Second)

	_, err := c.CollectVisible(nil)
	require.NoError(t, err)

	price = "US$ 9.99"
	added, err := c.CollectVisible(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, store.Size())

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	require.NotNil(t, snap[0].Price)
	assert.InDelta(t, 9.99, *snap[0].Price, 1e-9)
}

func TestCollectVisibleAfterUploadYieldsNothing(t *testing.T) {
	src := &fakeSource{itemsFn: func() []*dom.ItemView {
		return []*dom.ItemView{
			readyItem("n0", 100500), readyItem("n1", 100501),
			readyItem("n2", 100502), readyItem("n3", 100503),
		}
	}}
	store := NewStore()
	c := newTestCoordinator(src, store, time.Millisecond, time.Second)

	_, err := c.CollectVisible(nil)
	require.NoError(t, err)
	require.Equal(t, 4, store.Size())

	// 上传成功:指纹并入已上传集,工作集清空
	fps := make([]string, 0, 4)
	for _, rec := range store.Snapshot() {
		fps = append(fps, rec.Fingerprint)
	}
	store.MarkUploaded(fps)
	store.ClearWorking()

	// 同样的元素还渲染在页面上,重扫不产生任何新记录
	added, err := c.CollectVisible(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, store.Size())
	assert.Equal(t, 4, store.UploadedCount())
}

func TestCollectVisibleHonorsCancellation(t *testing.T) {
	src := &fakeSource{itemsFn: func() []*dom.ItemView {
		return []*dom.ItemView{pendingItem("n0", 100500)}
	}}
	store := NewStore()
	c := newTestCoordinator(src, store, 5*time.Millisecond, 10*time.Second)

	var running atomic.Bool
	running.Store(true)
	go func() {
		time.Sleep(30 * time.Millisecond)
		running.Store(false)
	}()

	start := time.Now()
	added, err := c.CollectVisible(&running)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	// 取消在一个轮询间隔内生效,远早于10秒的视口超时
	assert.Less(t, time.Since(start), time.Second)
}
