package extract

import (
	"testing"

	"github.com/LouYuanbo1/goodsharvester/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullEnrichment = `品牌: SoundPeak
佣金率: 12.5%
活动佣金: 15%
联盟佣金: 8%
7天销量: 321
30天销量: 1,234
总销量: 56,789
30天销售额: US$ 45,678.90
7天浏览: 9,876
30天浏览: 43,210
转化率: 3.2%
包装尺寸: 20 x 15 x 5
重量: 0.35 kg
竞品数: 12
竞品最低价: US$ 9.99
竞品均价: US$ 14.50
上架时间: 2024/05/01
卖家数: 4
库存: 1,500
商品评分: 4.7
发货时效: 3天
退货率: 2.1%
广告占比: 18%
预估毛利: 35%`

func TestEnrichmentReady(t *testing.T) {
	assert.True(t, EnrichmentReady(fullEnrichment, 40))
}

func TestEnrichmentReadyTooShort(t *testing.T) {
	assert.False(t, EnrichmentReady("佣金率: 10% US$ 9.99", 40))
}

func TestEnrichmentReadyMissingCompetitorSignal(t *testing.T) {
	text := "品牌: SoundPeak\n佣金率: 12.5%\n7天销量: 321\n30天销量: 1,234\n转化率: 3.2%\n库存: 1500"
	assert.False(t, EnrichmentReady(text, 40))
}

func TestEnrichmentReadyMissingCommissionSignal(t *testing.T) {
	text := "品牌: SoundPeak\n竞品最低价: US$ 9.99\n7天销量: 321\n30天销量: 1,234\n转化率: 3.2%"
	assert.False(t, EnrichmentReady(text, 40))
}

func TestEnrichmentReadyNoCompetitorVariant(t *testing.T) {
	// 没有任何价格,但明确声明无竞品,同样算就绪
	text := "品牌: SoundPeak\n佣金率: 12.5%\n暂无竞品\n7天销量: 321\n30天销量: 1,234\n转化率: 3.2%"
	assert.True(t, EnrichmentReady(text, 40))
}

func TestParseEnrichmentFullBlock(t *testing.T) {
	rec := &entity.RowProductData{}
	ParseEnrichment(fullEnrichment, rec)

	require.NotNil(t, rec.Brand)
	assert.Equal(t, "SoundPeak", *rec.Brand)
	require.NotNil(t, rec.CommissionRate)
	assert.InDelta(t, 12.5, *rec.CommissionRate, 1e-9)
	require.NotNil(t, rec.CampaignCommissionRate)
	assert.InDelta(t, 15, *rec.CampaignCommissionRate, 1e-9)
	require.NotNil(t, rec.AffiliateCommissionRate)
	assert.InDelta(t, 8, *rec.AffiliateCommissionRate, 1e-9)

	require.NotNil(t, rec.SalesVolume7d)
	assert.Equal(t, 321, *rec.SalesVolume7d)
	require.NotNil(t, rec.SalesVolume30d)
	assert.Equal(t, 1234, *rec.SalesVolume30d)
	require.NotNil(t, rec.SalesVolumeTotal)
	assert.Equal(t, 56789, *rec.SalesVolumeTotal)
	require.NotNil(t, rec.Revenue30d)
	assert.InDelta(t, 45678.90, *rec.Revenue30d, 1e-9)

	require.NotNil(t, rec.Views7d)
	assert.Equal(t, 9876, *rec.Views7d)
	require.NotNil(t, rec.Views30d)
	assert.Equal(t, 43210, *rec.Views30d)
	require.NotNil(t, rec.ConversionRate)
	assert.InDelta(t, 3.2, *rec.ConversionRate, 1e-9)

	require.NotNil(t, rec.PackageLengthCm)
	assert.InDelta(t, 20, *rec.PackageLengthCm, 1e-9)
	require.NotNil(t, rec.PackageWidthCm)
	assert.InDelta(t, 15, *rec.PackageWidthCm, 1e-9)
	require.NotNil(t, rec.PackageHeightCm)
	assert.InDelta(t, 5, *rec.PackageHeightCm, 1e-9)
	require.NotNil(t, rec.PackageWeightG)
	assert.InDelta(t, 350, *rec.PackageWeightG, 1e-9)

	require.NotNil(t, rec.CompetitorCount)
	assert.Equal(t, 12, *rec.CompetitorCount)
	require.NotNil(t, rec.CompetitorMinPrice)
	assert.InDelta(t, 9.99, *rec.CompetitorMinPrice, 1e-9)
	require.NotNil(t, rec.CompetitorAvgPrice)
	assert.InDelta(t, 14.50, *rec.CompetitorAvgPrice, 1e-9)
	assert.Nil(t, rec.NoCompetitors)

	require.NotNil(t, rec.ListedAt)
	assert.Equal(t, "2024-05-01", *rec.ListedAt)
	require.NotNil(t, rec.SellerCount)
	assert.Equal(t, 4, *rec.SellerCount)
	require.NotNil(t, rec.Stock)
	assert.Equal(t, 1500, *rec.Stock)
	require.NotNil(t, rec.ItemRating)
	assert.InDelta(t, 4.7, *rec.ItemRating, 1e-9)
	require.NotNil(t, rec.ShipsInDays)
	assert.Equal(t, 3, *rec.ShipsInDays)
	require.NotNil(t, rec.ReturnRate)
	assert.InDelta(t, 2.1, *rec.ReturnRate, 1e-9)
	require.NotNil(t, rec.AdSpendShare)
	assert.InDelta(t, 18, *rec.AdSpendShare, 1e-9)
	require.NotNil(t, rec.MarginEstimate)
	assert.InDelta(t, 35, *rec.MarginEstimate, 1e-9)
}

func TestParseEnrichmentFieldsIsolated(t *testing.T) {
	// 个别字段缺失或损坏只影响该字段本身
	text := "佣金率: abc%\n30天销量: 1,234\n库存: 执行失败"
	rec := &entity.RowProductData{}
	ParseEnrichment(text, rec)

	assert.Nil(t, rec.CommissionRate)
	assert.Nil(t, rec.Stock)
	require.NotNil(t, rec.SalesVolume30d)
	assert.Equal(t, 1234, *rec.SalesVolume30d)
}

func TestParseEnrichmentFullWidthPunctuation(t *testing.T) {
	text := "佣金率：12.5％\n竞品数：3"
	rec := &entity.RowProductData{}
	ParseEnrichment(text, rec)

	require.NotNil(t, rec.CommissionRate)
	assert.InDelta(t, 12.5, *rec.CommissionRate, 1e-9)
	require.NotNil(t, rec.CompetitorCount)
	assert.Equal(t, 3, *rec.CompetitorCount)
}

func TestParseEnrichmentDoesNotMergeAdjacentLines(t *testing.T) {
	// 千分位允许空格,但绝不能把下一行行首的数字接上来
	text := "总销量: 1,234\n30天销量: 56"
	rec := &entity.RowProductData{}
	ParseEnrichment(text, rec)

	require.NotNil(t, rec.SalesVolumeTotal)
	assert.Equal(t, 1234, *rec.SalesVolumeTotal)
	require.NotNil(t, rec.SalesVolume30d)
	assert.Equal(t, 56, *rec.SalesVolume30d)
}

func TestParseEnrichmentNoCompetitors(t *testing.T) {
	text := "品牌: NovaHome\n佣金率: 10%\n暂无竞品"
	rec := &entity.RowProductData{}
	ParseEnrichment(text, rec)

	require.NotNil(t, rec.NoCompetitors)
	assert.True(t, *rec.NoCompetitors)
	require.NotNil(t, rec.CompetitorCount)
	assert.Equal(t, 0, *rec.CompetitorCount)
	assert.Nil(t, rec.CompetitorMinPrice)
}

func TestParseEnrichmentEnglishLabels(t *testing.T) {
	text := "Brand: NovaHome\nCommission rate: 9.5%\nCompetitors: 7\nMin competitor price: $4.20\nListed at: 2023-11-20"
	rec := &entity.RowProductData{}
	ParseEnrichment(text, rec)

	require.NotNil(t, rec.Brand)
	assert.Equal(t, "NovaHome", *rec.Brand)
	require.NotNil(t, rec.CommissionRate)
	assert.InDelta(t, 9.5, *rec.CommissionRate, 1e-9)
	require.NotNil(t, rec.CompetitorCount)
	assert.Equal(t, 7, *rec.CompetitorCount)
	require.NotNil(t, rec.CompetitorMinPrice)
	assert.InDelta(t, 4.20, *rec.CompetitorMinPrice, 1e-9)
	require.NotNil(t, rec.ListedAt)
	assert.Equal(t, "2023-11-20", *rec.ListedAt)
}
