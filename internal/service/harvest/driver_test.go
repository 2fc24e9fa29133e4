package harvest

import (
	"fmt"
	"testing"

	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/extract"
	"github.com/LouYuanbo1/goodsharvester/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() *param.Harvest {
	return &param.Harvest{
		Url:              "https://example-market.com/list",
		TargetCount:      0,
		MaxIterations:    50,
		RowSize:          4,
		PollIntervalMs:   1,
		EnrichTimeoutMs:  20,
		MinEnrichmentLen: 40,
		NoGrowthLimit:    3,
		GrowthBoost:      8,
		MinStepRatio:     0.4,
		MaxStepRatio:     1.6,
		InitialStepRatio: 0.8,
		ScrollPauseMs:    1,
	}
}

func newTestDriver(src *fakeSource, store *Store, p *param.Harvest) *Driver {
	c := NewCoordinator(src, store, extract.NewAssembler(p.MinEnrichmentLen), extract.NewChangeDetector(),
		p.RowSize, p.PollInterval(), p.EnrichTimeout())
	return NewDriver(src, c, store, p)
}

// 每滚动一步露出4个新商品的无限列表
func endlessListSource() *fakeSource {
	src := &fakeSource{}
	src.itemsFn = func() []*dom.ItemView {
		base := 100000 + src.scrolls*4
		views := make([]*dom.ItemView, 0, 4)
		for i := range 4 {
			views = append(views, readyItem(fmt.Sprintf("n%d", i), base+i))
		}
		return views
	}
	return src
}

func TestDriverConvergesOnTarget(t *testing.T) {
	src := endlessListSource()
	store := NewStore()
	p := testParams()
	p.TargetCount = 12

	d := newTestDriver(src, store, p)
	state, err := d.Run()
	require.NoError(t, err)

	assert.Equal(t, StateConverged, state)
	assert.GreaterOrEqual(t, store.Size(), 12)
	assert.Equal(t, 0, src.jumps)
}

func TestDriverPlateauJumpsExactlyOnceThenConverges(t *testing.T) {
	// 列表到底:滚动不再露出新商品,页面高度也不再增长
	src := &fakeSource{itemsFn: func() []*dom.ItemView {
		return []*dom.ItemView{
			readyItem("n0", 100500), readyItem("n1", 100501),
			readyItem("n2", 100502), readyItem("n3", 100503),
		}
	}}
	store := NewStore()
	d := newTestDriver(src, store, testParams())

	state, err := d.Run()
	require.NoError(t, err)

	assert.Equal(t, StateConverged, state)
	// 连续无增长后恰好一次硬跳到底,之后优雅收敛,绝不报错
	assert.Equal(t, 1, src.jumps)
	assert.Equal(t, 4, store.Size())
}

func TestDriverJumpRevealsTailThenConverges(t *testing.T) {
	// 硬跳后页面高度增长并露出最后一批商品,收完后收敛
	src := &fakeSource{}
	src.itemsFn = func() []*dom.ItemView {
		if src.jumps == 0 {
			return []*dom.ItemView{readyItem("n0", 100500), readyItem("n1", 100501)}
		}
		return []*dom.ItemView{readyItem("n0", 200600), readyItem("n1", 200601)}
	}
	src.docHeight = func() float64 {
		return 5000 + float64(src.jumps)*1000
	}
	store := NewStore()
	d := newTestDriver(src, store, testParams())

	state, err := d.Run()
	require.NoError(t, err)

	assert.Equal(t, StateConverged, state)
	assert.Equal(t, 1, src.jumps)
	assert.Equal(t, 4, store.Size())
}

func TestDriverExhaustsIterationBudget(t *testing.T) {
	src := endlessListSource()
	store := NewStore()
	p := testParams()
	p.TargetCount = 100000
	p.MaxIterations = 5

	d := newTestDriver(src, store, p)
	state, err := d.Run()
	require.NoError(t, err)

	assert.Equal(t, StateExhausted, state)
	assert.Equal(t, 5, src.scrolls)
}

func TestDriverStopYieldsStalled(t *testing.T) {
	src := endlessListSource()
	store := NewStore()
	d := newTestDriver(src, store, testParams())
	src.onScroll = func() { d.Stop() }

	state, err := d.Run()
	require.NoError(t, err)
	assert.Equal(t, StateStalled, state)
}

func TestDriverAdaptiveStepClamped(t *testing.T) {
	p := testParams()
	src := endlessListSource()
	d := newTestDriver(src, NewStore(), p)

	// 持续无增长:步长乘0.8直到下限
	for range 20 {
		d.adaptStep(0)
	}
	assert.InDelta(t, p.MinStepRatio, d.stepMultiplier, 1e-9)

	// 增长迅猛:步长乘1.25直到上限
	for range 20 {
		d.adaptStep(p.GrowthBoost)
	}
	assert.InDelta(t, p.MaxStepRatio, d.stepMultiplier, 1e-9)
}

func TestDriverPublishesOverlayStatus(t *testing.T) {
	src := endlessListSource()
	store := NewStore()
	p := testParams()
	p.TargetCount = 8

	d := newTestDriver(src, store, p)
	_, err := d.Run()
	require.NoError(t, err)

	require.NotNil(t, src.lastStatus)
	assert.Equal(t, string(StateConverged), src.lastStatus.State)
	assert.Equal(t, store.Size(), src.lastStatus.Collected)

	// 状态条文本同时带上采集与上传计数
	assert.Contains(t, src.lastStatus.Text(), "已采集")
	assert.Equal(t, StateConverged, d.State())
}
