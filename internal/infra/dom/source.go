package dom

import (
	"encoding/json"
	"fmt"

	"github.com/LouYuanbo1/goodsharvester/internal/config"
)

// ItemView 某一次轮询时单个商品卡片的快照
// NodeID是物理节点在节点池中的位置:虚拟滚动会把同一个物理节点复用给不同的商品,
// 所以NodeID只用于内容变化检测,绝不作为商品标识
type ItemView struct {
	NodeID       string `json:"nodeId"`
	DetailHref   string `json:"detailHref"`
	ImageURL     string `json:"imageUrl"`
	Title        string `json:"title"`
	PriceText    string `json:"priceText"`
	ShopName     string `json:"shopName"`
	SalesText    string `json:"salesText"`
	RatingText   string `json:"ratingText"`
	ReviewText   string `json:"reviewText"`
	ShippedFrom  string `json:"shippedFrom"`
	CategoryHint string `json:"categoryHint"`
	// Enrichment 第三方脚本异步注入的自由文本块,注入前为空串
	Enrichment string `json:"enrichment"`
}

// Status 采集器自己的悬浮状态条内容
type Status struct {
	State     string
	Collected int
	Uploaded  int
}

func (s *Status) Text() string {
	return fmt.Sprintf("采集状态: %s | 已采集: %d | 已上传: %d", s.State, s.Collected, s.Uploaded)
}

// ItemSource 采集核心依赖的唯一页面能力接口
// 只读页面并追加自己的状态条,绝不改写页面自己的节点
type ItemSource interface {
	Navigate(url string) error
	// VisibleItems 当前视口内可见商品卡片的快照,每次调用都重新读取
	VisibleItems() ([]*ItemView, error)
	ViewportHeight() (float64, error)
	DocumentHeight() (float64, error)
	ScrollBy(px float64) error
	JumpToBottom() error
	UpdateOverlay(status *Status) error
	Close()
}

type selectorSet struct {
	Item        string `json:"item"`
	Link        string `json:"link"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Shop        string `json:"shop"`
	Sales       string `json:"sales"`
	Rating      string `json:"rating"`
	Review      string `json:"review"`
	ShippedFrom string `json:"shippedFrom"`
	Category    string `json:"category"`
	Enrichment  string `json:"enrichment"`
}

func selectorsFromConfig(cfg *config.Config) selectorSet {
	h := cfg.Harvest
	return selectorSet{
		Item:        h.ItemSelector,
		Link:        h.LinkSelector,
		Title:       h.TitleSelector,
		Price:       h.PriceSelector,
		Image:       h.ImageSelector,
		Shop:        h.ShopSelector,
		Sales:       h.SalesSelector,
		Rating:      h.RatingSelector,
		Review:      h.ReviewSelector,
		ShippedFrom: h.ShippedFromSelector,
		Category:    h.CategorySelector,
		Enrichment:  h.EnrichmentSelector,
	}
}

// visibleItemsJSBody 生成收集可见卡片快照的JS函数体,rod与chromedp两个适配器共用
// 返回JSON字符串,两边都按[]*ItemView反序列化
func visibleItemsJSBody(sel selectorSet) string {
	selJSON, _ := json.Marshal(sel)
	return fmt.Sprintf(`
	const S = %s;
	const pool = Array.from(document.querySelectorAll(S.item));
	const vh = window.innerHeight;
	const txt = (el, sel) => {
		if (!sel) return '';
		const n = el.querySelector(sel);
		return n ? (n.innerText || n.textContent || '').trim() : '';
	};
	const attr = (el, sel, name) => {
		const n = sel ? el.querySelector(sel) : el;
		return n ? (n.getAttribute(name) || '') : '';
	};
	const out = [];
	pool.forEach((el, idx) => {
		const r = el.getBoundingClientRect();
		if (r.bottom < 0 || r.top > vh) return;
		out.push({
			nodeId: 'n' + idx,
			detailHref: attr(el, S.link, 'href'),
			imageUrl: attr(el, S.image, 'src'),
			title: txt(el, S.title),
			priceText: txt(el, S.price),
			shopName: txt(el, S.shop),
			salesText: txt(el, S.sales),
			ratingText: txt(el, S.rating),
			reviewText: txt(el, S.review),
			shippedFrom: txt(el, S.shippedFrom),
			categoryHint: txt(el, S.category),
			enrichment: txt(el, S.enrichment)
		});
	});
	return JSON.stringify(out);`, string(selJSON))
}

const overlayID = "goodsharvester-overlay"

// overlayJSBody 悬浮状态条的upsert,只追加自己的节点,不动页面原有结构
func overlayJSBody(text string) string {
	textJSON, _ := json.Marshal(text)
	return fmt.Sprintf(`
	let n = document.getElementById('%s');
	if (!n) {
		n = document.createElement('div');
		n.id = '%s';
		n.style.cssText = 'position:fixed;right:12px;bottom:12px;z-index:2147483647;' +
			'background:rgba(0,0,0,.75);color:#fff;padding:6px 10px;border-radius:4px;' +
			'font-size:12px;pointer-events:none;';
		document.body.appendChild(n);
	}
	n.textContent = %s;
	return true;`, overlayID, overlayID, string(textJSON))
}

func decodeItemViews(jsonText string) ([]*ItemView, error) {
	var views []*ItemView
	if err := json.Unmarshal([]byte(jsonText), &views); err != nil {
		return nil, fmt.Errorf("解析可见元素快照失败: %w", err)
	}
	return views, nil
}
