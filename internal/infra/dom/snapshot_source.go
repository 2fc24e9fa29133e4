package dom

import (
	"fmt"
	"strings"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
	"github.com/PuerkitoBio/goquery"
)

// snapshotSource 静态HTML快照上的页面源,用于离线回放与colly抓取模式
// 没有滚动概念:整个文档视为一个视口,滚动操作都是空操作
type snapshotSource struct {
	doc       *goquery.Document
	selectors selectorSet
	status    *Status
}

func NewSnapshotSource(html string, cfg *config.Config) (ItemSource, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("解析HTML快照失败: %w", err)
	}
	return &snapshotSource{
		doc:       doc,
		selectors: selectorsFromConfig(cfg),
	}, nil
}

func (ss *snapshotSource) Navigate(url string) error {
	// 快照在构造时已经加载完成
	return nil
}

func (ss *snapshotSource) text(sel *goquery.Selection, sub string) string {
	if sub == "" {
		return ""
	}
	return strings.TrimSpace(sel.Find(sub).First().Text())
}

func (ss *snapshotSource) attr(sel *goquery.Selection, sub, name string) string {
	target := sel
	if sub != "" {
		target = sel.Find(sub).First()
	}
	val, _ := target.Attr(name)
	return val
}

func (ss *snapshotSource) VisibleItems() ([]*ItemView, error) {
	var views []*ItemView
	ss.doc.Find(ss.selectors.Item).Each(func(i int, sel *goquery.Selection) {
		views = append(views, &ItemView{
			NodeID:       fmt.Sprintf("n%d", i),
			DetailHref:   ss.attr(sel, ss.selectors.Link, "href"),
			ImageURL:     ss.attr(sel, ss.selectors.Image, "src"),
			Title:        ss.text(sel, ss.selectors.Title),
			PriceText:    ss.text(sel, ss.selectors.Price),
			ShopName:     ss.text(sel, ss.selectors.Shop),
			SalesText:    ss.text(sel, ss.selectors.Sales),
			RatingText:   ss.text(sel, ss.selectors.Rating),
			ReviewText:   ss.text(sel, ss.selectors.Review),
			ShippedFrom:  ss.text(sel, ss.selectors.ShippedFrom),
			CategoryHint: ss.text(sel, ss.selectors.Category),
			Enrichment:   ss.text(sel, ss.selectors.Enrichment),
		})
	})
	return views, nil
}

func (ss *snapshotSource) ViewportHeight() (float64, error) {
	return 1080, nil
}

func (ss *snapshotSource) DocumentHeight() (float64, error) {
	// 高度恒定,驱动器会在一次强制跳底后收敛
	return 1080, nil
}

func (ss *snapshotSource) ScrollBy(px float64) error {
	return nil
}

func (ss *snapshotSource) JumpToBottom() error {
	return nil
}

func (ss *snapshotSource) UpdateOverlay(status *Status) error {
	ss.status = status
	return nil
}

func (ss *snapshotSource) Close() {}
