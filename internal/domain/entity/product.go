package entity

import (
	"time"

	"github.com/LouYuanbo1/goodsharvester/internal/domain/model"
)

// RowProductData 一条已校验的商品记录
// 标识为Fingerprint(从详情链接的数字后缀派生),与渲染它的物理节点无关
// 可缺失字段一律用指针表示,nil即缺失,不与空串/0混用
type RowProductData struct {
	Fingerprint string
	ContentHash string
	CollectedAt time.Time

	// 原生字段
	Title        *string
	DetailURL    *string
	ImageURL     *string
	PriceText    *string
	Price        *float64
	Currency     *string
	ShopName     *string
	SalesText    *string
	Rating       *float64
	ReviewCount  *int
	ShippedFrom  *string
	CategoryHint *string

	// 注入字段
	Brand                   *string
	CommissionRate          *float64
	CampaignCommissionRate  *float64
	AffiliateCommissionRate *float64
	SalesVolume7d           *int
	SalesVolume30d          *int
	SalesVolumeTotal        *int
	Revenue30d              *float64
	Views7d                 *int
	Views30d                *int
	ConversionRate          *float64
	PackageLengthCm         *float64
	PackageWidthCm          *float64
	PackageHeightCm         *float64
	PackageWeightG          *float64
	CompetitorCount         *int
	CompetitorMinPrice      *float64
	CompetitorAvgPrice      *float64
	NoCompetitors           *bool
	ListedAt                *string
	SellerCount             *int
	Stock                   *int
	ItemRating              *float64
	ShipsInDays             *int
	ReturnRate              *float64
	AdSpendShare            *float64
	MarginEstimate          *float64
}

// ToDocument 转换为上传文档
// 指针字段原样传递:解析失败的字段保持缺失,绝不折算成0
func (r *RowProductData) ToDocument() *model.ProductDoc {
	return &model.ProductDoc{
		Fingerprint: r.Fingerprint,
		ContentHash: r.ContentHash,
		CollectedAt: r.CollectedAt.UTC().Format(time.RFC3339),

		Title:        r.Title,
		DetailURL:    r.DetailURL,
		ImageURL:     r.ImageURL,
		PriceText:    r.PriceText,
		Price:        r.Price,
		Currency:     r.Currency,
		ShopName:     r.ShopName,
		SalesText:    r.SalesText,
		Rating:       r.Rating,
		ReviewCount:  r.ReviewCount,
		ShippedFrom:  r.ShippedFrom,
		CategoryHint: r.CategoryHint,

		Brand:                   r.Brand,
		CommissionRate:          r.CommissionRate,
		CampaignCommissionRate:  r.CampaignCommissionRate,
		AffiliateCommissionRate: r.AffiliateCommissionRate,
		SalesVolume7d:           r.SalesVolume7d,
		SalesVolume30d:          r.SalesVolume30d,
		SalesVolumeTotal:        r.SalesVolumeTotal,
		Revenue30d:              r.Revenue30d,
		Views7d:                 r.Views7d,
		Views30d:                r.Views30d,
		ConversionRate:          r.ConversionRate,
		PackageLengthCm:         r.PackageLengthCm,
		PackageWidthCm:          r.PackageWidthCm,
		PackageHeightCm:         r.PackageHeightCm,
		PackageWeightG:          r.PackageWeightG,
		CompetitorCount:         r.CompetitorCount,
		CompetitorMinPrice:      r.CompetitorMinPrice,
		CompetitorAvgPrice:      r.CompetitorAvgPrice,
		NoCompetitors:           r.NoCompetitors,
		ListedAt:                r.ListedAt,
		SellerCount:             r.SellerCount,
		Stock:                   r.Stock,
		ItemRating:              r.ItemRating,
		ShipsInDays:             r.ShipsInDays,
		ReturnRate:              r.ReturnRate,
		AdSpendShare:            r.AdSpendShare,
		MarginEstimate:          r.MarginEstimate,
	}
}
