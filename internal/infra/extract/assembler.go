package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/domain/entity"
	"github.com/LouYuanbo1/goodsharvester/internal/infra/dom"
)

// 货币符号表,多字符符号在前,避免US$被当成$
// 页面可能被机翻,所以货币只认符号,绝不看标签文字
var currencySymbols = []struct {
	Symbol string
	Code   string
}{
	{"US$", "USD"},
	{"R$", "BRL"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"￥", "JPY"},
	{"₩", "KRW"},
}

func DetectCurrency(text string) (string, bool) {
	for _, cs := range currencySymbols {
		if strings.Contains(text, cs.Symbol) {
			return cs.Code, true
		}
	}
	return "", false
}

var (
	ratingPattern = regexp.MustCompile(`([0-9](?:\.[0-9]+)?)`)
	reviewPattern = regexp.MustCompile(`([0-9][0-9,\x{00a0} ]*)`)
	// 销量文本: "已售1.2万" / "3,456 sold" / "1.2k sold"
	salesPattern = regexp.MustCompile(`([0-9][0-9,\x{00a0} ]*(?:\.[0-9]+)?)[ \t]*([万wWkK])?`)
)

// Assembler 把一个卡片快照组装成完整记录:约12个原生字段+约28个注入字段
// 货币在会话内只检测一次并缓存;字段之间互相隔离,单个字段解析失败不影响其余字段
type Assembler struct {
	minEnrichmentLen int
	currency         string
	now              func() time.Time
}

func NewAssembler(minEnrichmentLen int) *Assembler {
	return &Assembler{
		minEnrichmentLen: minEnrichmentLen,
		now:              time.Now,
	}
}

// Ready 行就绪判据的入口,注入文本长度阈值由会话参数决定
func (a *Assembler) Ready(view *dom.ItemView) bool {
	return EnrichmentReady(view.Enrichment, a.minEnrichmentLen)
}

// Assemble 组装一条记录
// 标识不可解析时返回ErrUnresolvable,调用方静默丢弃;其余任何字段失败都只是该字段缺失
func (a *Assembler) Assemble(view *dom.ItemView) (*entity.RowProductData, error) {
	fp, err := Fingerprint(view.DetailHref)
	if err != nil {
		return nil, err
	}

	rec := &entity.RowProductData{
		Fingerprint: fp,
		ContentHash: ContentHash(view),
		CollectedAt: a.now(),
	}

	rec.Title = optional(view.Title)
	rec.DetailURL = optional(view.DetailHref)
	rec.ImageURL = optional(view.ImageURL)
	rec.PriceText = optional(view.PriceText)
	rec.ShopName = optional(view.ShopName)
	rec.SalesText = optional(view.SalesText)
	rec.ShippedFrom = optional(view.ShippedFrom)
	rec.CategoryHint = optional(view.CategoryHint)

	if m := moneyPattern.FindStringSubmatch(view.PriceText); m != nil {
		if p, ok := parseLocaleNumber(m[1]); ok {
			rec.Price = &p
		}
	}
	if a.currency == "" {
		if code, ok := DetectCurrency(view.PriceText); ok {
			a.currency = code
		} else if code, ok := DetectCurrency(view.Enrichment); ok {
			a.currency = code
		}
	}
	if a.currency != "" {
		currency := a.currency
		rec.Currency = &currency
	}

	if m := ratingPattern.FindStringSubmatch(view.RatingText); m != nil {
		if r, ok := parseLocaleNumber(m[1]); ok && r <= 5 {
			rec.Rating = &r
		}
	}
	if m := reviewPattern.FindStringSubmatch(view.ReviewText); m != nil {
		if n, ok := parseLocaleNumber(m[1]); ok {
			count := int(n)
			rec.ReviewCount = &count
		}
	}

	ParseEnrichment(view.Enrichment, rec)

	// 注入文本没给总销量时退回卡片上的销量文本
	if rec.SalesVolumeTotal == nil {
		if m := salesPattern.FindStringSubmatch(view.SalesText); m != nil {
			if n, ok := parseLocaleNumber(m[1]); ok {
				switch m[2] {
				case "万", "w", "W":
					n *= 10000
				case "k", "K":
					n *= 1000
				}
				total := int(n)
				rec.SalesVolumeTotal = &total
			}
		}
	}
	return rec, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
