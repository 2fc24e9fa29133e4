package harvest

import (
	"fmt"

	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
)

// 就绪的注入文本样例,满足长度/竞品价格/佣金三个信号
const readyEnrichment = "品牌: TestBrand\n佣金率: 10%\n竞品最低价: US$ 9.99\n30天销量: 1,234\n总销量: 5,678"

// fakeSource 脚本化的页面源,itemsFn每次VisibleItems调用时求值
type fakeSource struct {
	itemsFn   func() []*dom.ItemView
	docHeight func() float64

	visibleCalls int
	scrolls      int
	jumps        int
	lastStatus   *dom.Status

	onScroll func()
	onJump   func()
}

func (fs *fakeSource) Navigate(url string) error { return nil }

func (fs *fakeSource) VisibleItems() ([]*dom.ItemView, error) {
	fs.visibleCalls++
	return fs.itemsFn(), nil
}

func (fs *fakeSource) ViewportHeight() (float64, error) { return 1000, nil }

func (fs *fakeSource) DocumentHeight() (float64, error) {
	if fs.docHeight != nil {
		return fs.docHeight(), nil
	}
	return 5000, nil
}

func (fs *fakeSource) ScrollBy(px float64) error {
	fs.scrolls++
	if fs.onScroll != nil {
		fs.onScroll()
	}
	return nil
}

func (fs *fakeSource) JumpToBottom() error {
	fs.jumps++
	if fs.onJump != nil {
		fs.onJump()
	}
	return nil
}

func (fs *fakeSource) UpdateOverlay(status *dom.Status) error {
	fs.lastStatus = status
	return nil
}

func (fs *fakeSource) Close() {}

// readyItem 标识合规且注入就绪的卡片
func readyItem(nodeID string, productID int) *dom.ItemView {
	return &dom.ItemView{
		NodeID:     nodeID,
		DetailHref: fmt.Sprintf("/item/%09d.html", productID),
		ImageURL:   fmt.Sprintf("https://img.example.com/%d.jpg", productID),
		Title:      fmt.Sprintf("商品 %d", productID),
		PriceText:  "US$ 12.99",
		Enrichment: readyEnrichment,
	}
}

// pendingItem 标识合规但注入尚未到达的卡片
func pendingItem(nodeID string, productID int) *dom.ItemView {
	v := readyItem(nodeID, productID)
	v.Enrichment = ""
	return v
}
