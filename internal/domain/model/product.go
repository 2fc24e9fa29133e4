package model

import (
	"strings"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

const ProductIndexName = "harvested_products"

// ProductDoc 上传到Elasticsearch的商品记录
// 所有可缺失字段都是指针+omitempty:缺失就是缺失,绝不写成0或空串
type ProductDoc struct {
	Fingerprint string `json:"fingerprint"`
	ContentHash string `json:"content_hash"`
	CollectedAt string `json:"collected_at"`

	// 原生字段(直接来自商品卡片标记)
	Title        *string  `json:"title,omitempty"`
	DetailURL    *string  `json:"detail_url,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
	PriceText    *string  `json:"price_text,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Currency     *string  `json:"currency,omitempty"`
	ShopName     *string  `json:"shop_name,omitempty"`
	SalesText    *string  `json:"sales_text,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"review_count,omitempty"`
	ShippedFrom  *string  `json:"shipped_from,omitempty"`
	CategoryHint *string  `json:"category_hint,omitempty"`

	// 注入字段(来自第三方脚本注入的文本块)
	Brand                   *string  `json:"brand,omitempty"`
	CommissionRate          *float64 `json:"commission_rate,omitempty"`
	CampaignCommissionRate  *float64 `json:"campaign_commission_rate,omitempty"`
	AffiliateCommissionRate *float64 `json:"affiliate_commission_rate,omitempty"`
	SalesVolume7d           *int     `json:"sales_volume_7d,omitempty"`
	SalesVolume30d          *int     `json:"sales_volume_30d,omitempty"`
	SalesVolumeTotal        *int     `json:"sales_volume_total,omitempty"`
	Revenue30d              *float64 `json:"revenue_30d,omitempty"`
	Views7d                 *int     `json:"views_7d,omitempty"`
	Views30d                *int     `json:"views_30d,omitempty"`
	ConversionRate          *float64 `json:"conversion_rate,omitempty"`
	PackageLengthCm         *float64 `json:"package_length_cm,omitempty"`
	PackageWidthCm          *float64 `json:"package_width_cm,omitempty"`
	PackageHeightCm         *float64 `json:"package_height_cm,omitempty"`
	PackageWeightG          *float64 `json:"package_weight_g,omitempty"`
	CompetitorCount         *int     `json:"competitor_count,omitempty"`
	CompetitorMinPrice      *float64 `json:"competitor_min_price,omitempty"`
	CompetitorAvgPrice      *float64 `json:"competitor_avg_price,omitempty"`
	NoCompetitors           *bool    `json:"no_competitors,omitempty"`
	ListedAt                *string  `json:"listed_at,omitempty"`
	SellerCount             *int     `json:"seller_count,omitempty"`
	Stock                   *int     `json:"stock,omitempty"`
	ItemRating              *float64 `json:"item_rating,omitempty"`
	ShipsInDays             *int     `json:"ships_in_days,omitempty"`
	ReturnRate              *float64 `json:"return_rate,omitempty"`
	AdSpendShare            *float64 `json:"ad_spend_share,omitempty"`
	MarginEstimate          *float64 `json:"margin_estimate,omitempty"`

	Embedding []float32 `json:"embedding,omitempty"`
}

func (d *ProductDoc) GetID() string {
	return d.Fingerprint
}

func (d *ProductDoc) GetIndex() string {
	return ProductIndexName
}

func (d *ProductDoc) GetEmbeddingString() string {
	parts := make([]string, 0, 4)
	if d.Title != nil {
		parts = append(parts, *d.Title)
	}
	if d.Brand != nil {
		parts = append(parts, *d.Brand)
	}
	if d.ShopName != nil {
		parts = append(parts, *d.ShopName)
	}
	if d.CategoryHint != nil {
		parts = append(parts, *d.CategoryHint)
	}
	return strings.Join(parts, " ")
}

func (d *ProductDoc) SetEmbedding(embedding []float32) {
	d.Embedding = embedding
}

func (d *ProductDoc) GetEmbedding() []float32 {
	return d.Embedding
}

func (d *ProductDoc) GetTypeMapping() *types.TypeMapping {
	dims := 1024
	embedding := types.NewDenseVectorProperty()
	embedding.Dims = &dims

	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"fingerprint":  types.NewKeywordProperty(),
			"content_hash": types.NewKeywordProperty(),
			"collected_at": types.NewDateProperty(),

			"title":         types.NewTextProperty(),
			"detail_url":    types.NewKeywordProperty(),
			"image_url":     types.NewKeywordProperty(),
			"price_text":    types.NewKeywordProperty(),
			"price":         types.NewFloatNumberProperty(),
			"currency":      types.NewKeywordProperty(),
			"shop_name":     types.NewKeywordProperty(),
			"sales_text":    types.NewKeywordProperty(),
			"rating":        types.NewFloatNumberProperty(),
			"review_count":  types.NewIntegerNumberProperty(),
			"shipped_from":  types.NewKeywordProperty(),
			"category_hint": types.NewKeywordProperty(),

			"brand":                     types.NewKeywordProperty(),
			"commission_rate":           types.NewFloatNumberProperty(),
			"campaign_commission_rate":  types.NewFloatNumberProperty(),
			"affiliate_commission_rate": types.NewFloatNumberProperty(),
			"sales_volume_7d":           types.NewIntegerNumberProperty(),
			"sales_volume_30d":          types.NewIntegerNumberProperty(),
			"sales_volume_total":        types.NewIntegerNumberProperty(),
			"revenue_30d":               types.NewFloatNumberProperty(),
			"views_7d":                  types.NewIntegerNumberProperty(),
			"views_30d":                 types.NewIntegerNumberProperty(),
			"conversion_rate":           types.NewFloatNumberProperty(),
			"package_length_cm":         types.NewFloatNumberProperty(),
			"package_width_cm":          types.NewFloatNumberProperty(),
			"package_height_cm":         types.NewFloatNumberProperty(),
			"package_weight_g":          types.NewFloatNumberProperty(),
			"competitor_count":          types.NewIntegerNumberProperty(),
			"competitor_min_price":      types.NewFloatNumberProperty(),
			"competitor_avg_price":      types.NewFloatNumberProperty(),
			"no_competitors":            types.NewBooleanProperty(),
			"listed_at":                 types.NewDateProperty(),
			"seller_count":              types.NewIntegerNumberProperty(),
			"stock":                     types.NewIntegerNumberProperty(),
			"item_rating":               types.NewFloatNumberProperty(),
			"ships_in_days":             types.NewIntegerNumberProperty(),
			"return_rate":               types.NewFloatNumberProperty(),
			"ad_spend_share":            types.NewFloatNumberProperty(),
			"margin_estimate":           types.NewFloatNumberProperty(),

			"embedding": embedding,
		},
	}
}
