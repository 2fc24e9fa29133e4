package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/LouYuanbo1/goodsharvester/internal/domain/entity"
)

// 第三方脚本注入的文本块是按行组织的标签文本,标签可能是中文或(机翻后的)英文,
// 冒号可能是全角也可能是半角,数字的千分位可能是逗号也可能是空格
// 这里的匹配器全部按行锚定,逐字段独立匹配:一个字段匹配失败只意味着该字段缺失

// 千分位类里不能用\s:它会吞掉换行把下一行的数字接上来
const num = `([0-9][0-9,\x{00a0} \t]*(?:\.[0-9]+)?)`
const pct = num + `[ \t]*[%％]`
const sep = `[ \t]*[:：][ \t]*`

var (
	moneyPattern        = regexp.MustCompile(`(?:US\$|R\$|[$€£¥￥₩])[ \t]*` + num)
	noCompetitorPattern = regexp.MustCompile(`(?i)(?:暂无竞品|无竞品|no\s+competitors?)`)
	commissionToken     = regexp.MustCompile(`(?i)(?:佣金|commission)`)

	reBrand          = regexp.MustCompile(`(?im)^\s*(?:品牌|brand)` + sep + `(.+?)\s*$`)
	reCommission     = regexp.MustCompile(`(?im)^\s*(?:佣金率|基础佣金|commission\s*rate)` + sep + pct)
	reCampaignComm   = regexp.MustCompile(`(?im)^\s*(?:活动佣金|campaign\s*commission)(?:\s*rate)?` + sep + pct)
	reAffiliateComm  = regexp.MustCompile(`(?im)^\s*(?:联盟佣金|affiliate\s*commission)(?:\s*rate)?` + sep + pct)
	reSales7d        = regexp.MustCompile(`(?im)^\s*(?:7天销量|7d\s*sales)` + sep + num)
	reSales30d       = regexp.MustCompile(`(?im)^\s*(?:30天销量|30d\s*sales)` + sep + num)
	reSalesTotal     = regexp.MustCompile(`(?im)^\s*(?:总销量|total\s*sales)` + sep + num)
	reRevenue30d     = regexp.MustCompile(`(?im)^\s*(?:30天销售额|30d\s*revenue)` + sep + moneyPattern.String())
	reViews7d        = regexp.MustCompile(`(?im)^\s*(?:7天浏览|7d\s*views)` + sep + num)
	reViews30d       = regexp.MustCompile(`(?im)^\s*(?:30天浏览|30d\s*views)` + sep + num)
	reConversion     = regexp.MustCompile(`(?im)^\s*(?:转化率|conversion\s*rate)` + sep + pct)
	rePackageDims    = regexp.MustCompile(`(?im)^\s*(?:包装尺寸|package\s*(?:size|dimensions))` + sep + num + `[ \t]*[x×*][ \t]*` + num + `[ \t]*[x×*][ \t]*` + num)
	reWeight         = regexp.MustCompile(`(?im)^\s*(?:重量|weight)` + sep + num + `[ \t]*(kg|g|千克|克)`)
	reCompetitorNum  = regexp.MustCompile(`(?im)^\s*(?:竞品数|competitors?(?:\s*count)?)` + sep + num)
	reCompetitorMin  = regexp.MustCompile(`(?im)^\s*(?:竞品最低价|(?:lowest|min)\s*competitor\s*price)` + sep + moneyPattern.String())
	reCompetitorAvg  = regexp.MustCompile(`(?im)^\s*(?:竞品均价|(?:avg|average)\s*competitor\s*price)` + sep + moneyPattern.String())
	reListedAt       = regexp.MustCompile(`(?im)^\s*(?:上架时间|上架日期|listed(?:\s*at)?|created)` + sep + `([0-9]{4}[-/][0-9]{1,2}[-/][0-9]{1,2})`)
	reSellerCount    = regexp.MustCompile(`(?im)^\s*(?:卖家数|sellers?(?:\s*count)?)` + sep + num)
	reStock          = regexp.MustCompile(`(?im)^\s*(?:库存|stock)` + sep + num)
	reItemRating     = regexp.MustCompile(`(?im)^\s*(?:商品评分|item\s*rating)` + sep + num)
	reShipsIn        = regexp.MustCompile(`(?im)^\s*(?:发货时效|ships?\s*in)` + sep + `([0-9]+)[ \t]*(?:天|days?)`)
	reReturnRate     = regexp.MustCompile(`(?im)^\s*(?:退货率|return\s*rate)` + sep + pct)
	reAdSpendShare   = regexp.MustCompile(`(?im)^\s*(?:广告占比|ad\s*(?:spend\s*)?share)` + sep + pct)
	reMarginEstimate = regexp.MustCompile(`(?im)^\s*(?:预估毛利|(?:estimated\s*)?margin)` + sep + pct)
)

// EnrichmentReady 行就绪的黑盒代理判据:注入文本足够长,
// 且含竞品价格信号(价格或明确的"无竞品"),且含佣金信号
// 没有更强的同步原语可用,第三方改了输出格式这里就会失效
func EnrichmentReady(text string, minLen int) bool {
	if utf8.RuneCountInString(text) < minLen {
		return false
	}
	if !moneyPattern.MatchString(text) && !noCompetitorPattern.MatchString(text) {
		return false
	}
	return commissionToken.MatchString(text)
}

// parseLocaleNumber 宽容数字解析:千分位接受逗号/空格/不间断空格
func parseLocaleNumber(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '\u00a0', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func matchFloat(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	f, ok := parseLocaleNumber(m[1])
	if !ok {
		return nil
	}
	return &f
}

func matchInt(re *regexp.Regexp, text string) *int {
	f := matchFloat(re, text)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

func matchString(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	s := strings.TrimSpace(m[1])
	if s == "" {
		return nil
	}
	return &s
}

// ParseEnrichment 从注入文本块解析全部注入字段,逐字段独立,失败的字段保持nil
func ParseEnrichment(text string, rec *entity.RowProductData) {
	if text == "" {
		return
	}
	rec.Brand = matchString(reBrand, text)
	rec.CommissionRate = matchFloat(reCommission, text)
	rec.CampaignCommissionRate = matchFloat(reCampaignComm, text)
	rec.AffiliateCommissionRate = matchFloat(reAffiliateComm, text)
	rec.SalesVolume7d = matchInt(reSales7d, text)
	rec.SalesVolume30d = matchInt(reSales30d, text)
	rec.SalesVolumeTotal = matchInt(reSalesTotal, text)
	rec.Revenue30d = matchFloat(reRevenue30d, text)
	rec.Views7d = matchInt(reViews7d, text)
	rec.Views30d = matchInt(reViews30d, text)
	rec.ConversionRate = matchFloat(reConversion, text)

	if m := rePackageDims.FindStringSubmatch(text); m != nil {
		if l, ok := parseLocaleNumber(m[1]); ok {
			rec.PackageLengthCm = &l
		}
		if w, ok := parseLocaleNumber(m[2]); ok {
			rec.PackageWidthCm = &w
		}
		if h, ok := parseLocaleNumber(m[3]); ok {
			rec.PackageHeightCm = &h
		}
	}
	if m := reWeight.FindStringSubmatch(text); m != nil {
		if w, ok := parseLocaleNumber(m[1]); ok {
			switch m[2] {
			case "kg", "千克":
				w *= 1000
			}
			rec.PackageWeightG = &w
		}
	}

	rec.CompetitorCount = matchInt(reCompetitorNum, text)
	rec.CompetitorMinPrice = matchFloat(reCompetitorMin, text)
	rec.CompetitorAvgPrice = matchFloat(reCompetitorAvg, text)
	if noCompetitorPattern.MatchString(text) {
		t := true
		rec.NoCompetitors = &t
		if rec.CompetitorCount == nil {
			zero := 0
			rec.CompetitorCount = &zero
		}
	}

	if m := reListedAt.FindStringSubmatch(text); m != nil {
		date := strings.ReplaceAll(m[1], "/", "-")
		rec.ListedAt = &date
	}
	rec.SellerCount = matchInt(reSellerCount, text)
	rec.Stock = matchInt(reStock, text)
	rec.ItemRating = matchFloat(reItemRating, text)
	rec.ShipsInDays = matchInt(reShipsIn, text)
	rec.ReturnRate = matchFloat(reReturnRate, text)
	rec.AdSpendShare = matchFloat(reAdSpendShare, text)
	rec.MarginEstimate = matchFloat(reMarginEstimate, text)
}
