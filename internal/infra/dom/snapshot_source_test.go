package dom

import (
	"testing"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotConfig(t *testing.T) *config.Config {
	cfg, err := config.ParseConfig([]byte(`{
		"harvest": {
			"item_selector": ".product-card",
			"link_selector": "a.link",
			"title_selector": ".title",
			"price_selector": ".price",
			"image_selector": "img",
			"shop_selector": ".shop",
			"sales_selector": ".sales",
			"enrichment_selector": ".insight"
		}
	}`))
	require.NoError(t, err)
	return cfg
}

const snapshotHTML = `<html><body>
<div class="product-card">
	<a class="link" href="/item/100500123.html">查看</a>
	<img src="https://img.example.com/a.jpg">
	<div class="title">无线耳机</div>
	<div class="price">US$ 12.99</div>
	<div class="shop">SoundPeak官方店</div>
	<div class="sales">已售1.2万</div>
	<div class="insight">佣金率: 10%</div>
</div>
<div class="product-card">
	<a class="link" href="/item/200600456.html">查看</a>
	<div class="title">手机壳</div>
	<div class="price">US$ 2.99</div>
</div>
</body></html>`

func TestSnapshotSourceVisibleItems(t *testing.T) {
	src, err := NewSnapshotSource(snapshotHTML, snapshotConfig(t))
	require.NoError(t, err)
	defer src.Close()

	views, err := src.VisibleItems()
	require.NoError(t, err)
	require.Len(t, views, 2)

	first := views[0]
	assert.Equal(t, "n0", first.NodeID)
	assert.Equal(t, "/item/100500123.html", first.DetailHref)
	assert.Equal(t, "https://img.example.com/a.jpg", first.ImageURL)
	assert.Equal(t, "无线耳机", first.Title)
	assert.Equal(t, "US$ 12.99", first.PriceText)
	assert.Equal(t, "SoundPeak官方店", first.ShopName)
	assert.Equal(t, "已售1.2万", first.SalesText)
	assert.Equal(t, "佣金率: 10%", first.Enrichment)

	second := views[1]
	assert.Equal(t, "n1", second.NodeID)
	assert.Empty(t, second.ImageURL)
	assert.Empty(t, second.Enrichment)
}

func TestSnapshotSourceScrollIsNoop(t *testing.T) {
	src, err := NewSnapshotSource(snapshotHTML, snapshotConfig(t))
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Navigate("https://example-market.com/list"))
	require.NoError(t, src.ScrollBy(800))
	require.NoError(t, src.JumpToBottom())

	before, err := src.DocumentHeight()
	require.NoError(t, err)
	after, err := src.DocumentHeight()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDecodeItemViews(t *testing.T) {
	views, err := decodeItemViews(`[{"nodeId":"n7","detailHref":"/item/100500.html","title":"测试"}]`)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "n7", views[0].NodeID)
	assert.Equal(t, "测试", views[0].Title)

	_, err = decodeItemViews("不是JSON")
	assert.Error(t, err)
}

func TestStatusText(t *testing.T) {
	s := &Status{State: "Scrolling", Collected: 12, Uploaded: 8}
	assert.Equal(t, "采集状态: Scrolling | 已采集: 12 | 已上传: 8", s.Text())
}
