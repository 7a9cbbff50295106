/*
 * @module service/categorical/analysis_test
 * @description 分类分布统计单元测试
 * @architecture 测试层
 * @documentReference ai_docs/categorical_design.md
 * @stateFlow 构造提交集合 -> 统计分布 -> 断言排序与占比
 * @rules 百分比以选中总次数为分母；计数相同保持分类原始顺序
 * @dependencies testing, github.com/stretchr/testify
 */

package categorical

import (
	"testing"
	"time"

	"mne-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submissionsWithValues(values ...string) []models.Submission {
	subs := make([]models.Submission, 0, len(values))
	for _, v := range values {
		subs = append(subs, models.Submission{Value: v, ReportedAt: time.Now()})
	}
	return subs
}

func TestGetCategoryDistribution(t *testing.T) {
	categories := testCategories()
	subs := submissionsWithValues("funding,staffing", "funding", "logistics,weather")

	distribution := GetCategoryDistribution(subs, categories)
	require.Len(t, distribution, 4)

	// funding出现2次且排首位
	assert.Equal(t, "funding", distribution[0].CategoryID)
	assert.Equal(t, 2, distribution[0].Count)

	// 百分比以选中总次数5为分母
	assert.InDelta(t, 40.0, distribution[0].Percentage, 0.001)

	// 计数相同时保持分类定义顺序
	assert.Equal(t, "staffing", distribution[1].CategoryID)
	assert.Equal(t, "logistics", distribution[2].CategoryID)
	assert.Equal(t, "weather", distribution[3].CategoryID)
}

func TestGetCategoryDistributionEmpty(t *testing.T) {
	distribution := GetCategoryDistribution(nil, testCategories())
	require.Len(t, distribution, 4)
	for _, entry := range distribution {
		assert.Equal(t, 0, entry.Count)
		assert.Equal(t, 0.0, entry.Percentage)
	}
}

func TestGetMostFrequentCategory(t *testing.T) {
	categories := testCategories()

	top := GetMostFrequentCategory(submissionsWithValues("funding,staffing", "funding"), categories)
	require.NotNil(t, top)
	assert.Equal(t, "funding", top.CategoryID)
	assert.Equal(t, 2, top.Count)

	// 无任何选中时返回nil
	assert.Nil(t, GetMostFrequentCategory(nil, categories))
	assert.Nil(t, GetMostFrequentCategory(submissionsWithValues(""), categories))
}

func TestGetCategoryTrend(t *testing.T) {
	categories := testCategories()
	now := time.Now()

	// 历史桶以funding为主，近期桶以weather为主
	subs := []models.Submission{
		{Value: "funding", ReportedAt: now.AddDate(0, 0, -60)},
		{Value: "funding", ReportedAt: now.AddDate(0, 0, -50)},
		{Value: "weather", ReportedAt: now.AddDate(0, 0, -10)},
		{Value: "weather", ReportedAt: now.AddDate(0, 0, -5)},
	}

	result := GetCategoryTrend(subs, categories, 30)
	require.NotNil(t, result.RecentTop)
	require.NotNil(t, result.OlderTop)
	assert.Equal(t, "weather", result.RecentTop.CategoryID)
	assert.Equal(t, "funding", result.OlderTop.CategoryID)
	assert.True(t, result.IsChanging)

	// 单桶为空时不算变化
	recentOnly := subs[2:]
	result = GetCategoryTrend(recentOnly, categories, 30)
	assert.Nil(t, result.OlderTop)
	assert.False(t, result.IsChanging)
}
