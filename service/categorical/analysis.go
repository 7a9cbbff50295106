/*
 * @module service/categorical/analysis
 * @description 分类分布统计，提供分类分布、最高频分类和分类趋势查询
 * @architecture 分层架构 - 统计分析层
 * @documentReference ai_docs/categorical_design.md
 * @stateFlow 提交集合 -> 选中值解析 -> 计数统计 -> 排序输出
 * @rules 百分比以全部选中次数为分母而非提交数；计数相同时保持分类原始顺序
 * @dependencies service/models
 * @refs service/categorical/validator.go, api/controllers/submission_controller.go
 */

package categorical

import (
	"sort"
	"time"

	"mne-service/service/models"
)

// CategoryCount 单个分类的分布统计
type CategoryCount struct {
	CategoryID string  `json:"category_id"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CategoryTrendResult 分类趋势比较结果
type CategoryTrendResult struct {
	RecentTop  *CategoryCount `json:"recent_top"`
	OlderTop   *CategoryCount `json:"older_top"`
	WindowDays int            `json:"window_days"`
	IsChanging bool           `json:"is_changing"`
}

// GetCategoryDistribution 统计各分类在所有提交选中值中的出现次数
//
// 百分比 = 该分类出现次数 / 所有分类选中总次数 × 100。
// 结果按计数降序排列，计数相同时保持分类定义的原始顺序。
func GetCategoryDistribution(submissions []models.Submission, categories []models.Category) []CategoryCount {
	counts := make(map[string]int, len(categories))
	total := 0
	for _, s := range submissions {
		for _, id := range ParseCategoricalValue(s.Value) {
			counts[id]++
			total++
		}
	}

	result := make([]CategoryCount, 0, len(categories))
	for _, c := range categories {
		entry := CategoryCount{CategoryID: c.ID, Label: c.Label, Count: counts[c.ID]}
		if total > 0 {
			entry.Percentage = float64(entry.Count) / float64(total) * 100
		}
		result = append(result, entry)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// GetMostFrequentCategory 获取出现次数最多的分类，全部为0时返回nil
func GetMostFrequentCategory(submissions []models.Submission, categories []models.Category) *CategoryCount {
	distribution := GetCategoryDistribution(submissions, categories)
	if len(distribution) == 0 || distribution[0].Count == 0 {
		return nil
	}
	top := distribution[0]
	return &top
}

// GetCategoryTrend 按时间窗口比较最高频分类的变化
//
// 以 now-windowDays 为界将提交拆分为近期/历史两桶，
// 仅当两桶都有非空最高频分类且二者不同时 IsChanging 为真。
func GetCategoryTrend(submissions []models.Submission, categories []models.Category, windowDays int) CategoryTrendResult {
	if windowDays <= 0 {
		windowDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -windowDays)

	var recent, older []models.Submission
	for _, s := range submissions {
		if s.ReportedAt.Before(cutoff) {
			older = append(older, s)
		} else {
			recent = append(recent, s)
		}
	}

	result := CategoryTrendResult{
		RecentTop:  GetMostFrequentCategory(recent, categories),
		OlderTop:   GetMostFrequentCategory(older, categories),
		WindowDays: windowDays,
	}
	result.IsChanging = result.RecentTop != nil && result.OlderTop != nil &&
		result.RecentTop.CategoryID != result.OlderTop.CategoryID
	return result
}
