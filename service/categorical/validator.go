/*
 * @module service/categorical/validator
 * @description 分类值校验器，负责分类定义校验、选择约束校验和多选值的解析/格式化
 * @architecture 分层架构 - 数据验证层
 * @documentReference ai_docs/categorical_design.md
 * @stateFlow 分类定义校验 -> 选择约束校验 -> 选中值校验 -> 规范化存储形式
 * @rules 分类ID非空且唯一；多选值以逗号连接存储；allowOther时接受字面量"other"
 * @dependencies service/models, service/meta
 * @refs service/submission, service/importer
 */

package categorical

import (
	"strings"

	"mne-service/service/meta"
	"mne-service/service/models"
)

// OtherCategoryID allowOther开启时允许的字面量选项
const OtherCategoryID = "other"

// ValidateCategories 校验分类定义列表，返回规范化（去除首尾空白）后的定义
func ValidateCategories(categories []models.Category) ([]models.Category, error) {
	if len(categories) == 0 {
		return nil, models.NewServiceError(meta.ErrCodeInvalidCategories, "分类定义不能为空")
	}

	normalized := make([]models.Category, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		id := strings.TrimSpace(c.ID)
		label := strings.TrimSpace(c.Label)
		if id == "" || label == "" {
			return nil, models.NewServiceError(meta.ErrCodeInvalidCategories, "分类定义必须包含非空的ID和标签")
		}
		if seen[id] {
			return nil, models.NewServiceErrorf(meta.ErrCodeDuplicateCategoryID, "分类ID重复: %s", id)
		}
		seen[id] = true
		c.ID = id
		c.Label = label
		normalized = append(normalized, c)
	}
	return normalized, nil
}

// ValidateCategoryConfig 校验分类选择约束配置
func ValidateCategoryConfig(config models.CategoryConfig) error {
	if config.MaxSelections < 0 {
		return models.NewServiceError(meta.ErrCodeInvalidCategoryConfig, "max_selections不能为负数")
	}
	if config.MaxSelections > 0 && config.MaxSelections < 1 {
		return models.NewServiceError(meta.ErrCodeInvalidCategoryConfig, "max_selections必须不小于1")
	}
	if config.MaxSelections > 0 && !config.AllowMultiple && config.MaxSelections > 1 {
		return models.NewServiceError(meta.ErrCodeInvalidCategoryConfig, "未开启多选时max_selections不能大于1")
	}
	return nil
}

// ValidateCategoricalValue 校验一个分类提交值，返回选中的分类ID列表
//
// 按逗号拆分并去除空白、丢弃空项。空选择在required时报错，否则返回空列表。
func ValidateCategoricalValue(value string, categories []models.Category, config models.CategoryConfig) ([]string, error) {
	selections := ParseCategoricalValue(value)

	if len(selections) == 0 {
		if config.Required {
			return nil, models.NewServiceError(meta.ErrCodeRequiredCategory, "该指标要求至少选择一个分类")
		}
		return []string{}, nil
	}

	if !config.AllowMultiple && len(selections) > 1 {
		return nil, models.NewServiceError(meta.ErrCodeMultipleNotAllowed, "该指标不允许多选")
	}

	if config.MaxSelections > 0 && len(selections) > config.MaxSelections {
		return nil, models.NewServiceErrorf(meta.ErrCodeMaxSelectionsExceeded, "最多允许选择%d个分类", config.MaxSelections)
	}

	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	for _, id := range selections {
		if known[id] {
			continue
		}
		if config.AllowOther && id == OtherCategoryID {
			continue
		}
		return nil, models.NewServiceErrorf(meta.ErrCodeInvalidCategoryValue, "无效的分类值: %s", id)
	}

	return selections, nil
}

// FormatCategoricalValue 将选中的分类ID列表格式化为逗号连接的存储形式
func FormatCategoricalValue(ids []string) string {
	return strings.Join(ids, ",")
}

// ParseCategoricalValue 解析逗号连接的存储形式，空字符串解析为空列表
func ParseCategoricalValue(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
