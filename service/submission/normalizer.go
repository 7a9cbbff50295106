/*
 * @module service/submission/normalizer
 * @description 提交值规范化器，按指标数据类型校验原始值并产出规范字符串存储形式
 * @architecture 分层架构 - 数据验证层
 * @documentReference ai_docs/submission_design.md
 * @stateFlow 原始值 -> 类型转换 -> 边界校验 -> 规范字符串
 * @rules 非法数据不得静默入库；数值按十进制规范形式存储而非原始字符串
 * @dependencies github.com/spf13/cast, service/categorical, service/models, service/meta
 * @refs service/submission/service.go, service/importer/service.go
 */

package submission

import (
	"math"
	"strconv"
	"strings"

	"mne-service/service/categorical"
	"mne-service/service/meta"
	"mne-service/service/models"

	"github.com/spf13/cast"
)

// NormalizeValue 按指标数据类型校验原始值，返回规范字符串
//
// 数值/百分比存为十进制字符串，布尔存为"true"/"false"，
// 分类存为逗号连接的选中ID。
func NormalizeValue(indicator *models.Indicator, raw interface{}) (string, error) {
	switch indicator.DataType {
	case meta.DataTypeNumber:
		return normalizeNumber(indicator, raw)
	case meta.DataTypePercent:
		return normalizePercent(indicator, raw)
	case meta.DataTypeBoolean:
		return normalizeBoolean(raw)
	case meta.DataTypeText:
		return normalizeText(raw)
	case meta.DataTypeCategorical:
		return normalizeCategorical(indicator, raw)
	}
	return "", models.NewServiceErrorf(meta.ErrCodeInvalidValue, "不支持的指标数据类型: %s", indicator.DataType)
}

func normalizeNumber(indicator *models.Indicator, raw interface{}) (string, error) {
	v, err := toFiniteFloat(raw)
	if err != nil {
		return "", err
	}
	if indicator.MinValue != nil && v < *indicator.MinValue {
		return "", models.NewServiceErrorf(meta.ErrCodeValueTooLow, "数值%v低于指标下限%v", v, *indicator.MinValue)
	}
	if indicator.MaxValue != nil && v > *indicator.MaxValue {
		return "", models.NewServiceErrorf(meta.ErrCodeValueTooHigh, "数值%v高于指标上限%v", v, *indicator.MaxValue)
	}
	return formatFloat(v), nil
}

func normalizePercent(indicator *models.Indicator, raw interface{}) (string, error) {
	v, err := toFiniteFloat(raw)
	if err != nil {
		return "", err
	}
	min, max := indicator.EffectiveBounds()
	if v < *min || v > *max {
		return "", models.NewServiceErrorf(meta.ErrCodeValueOutOfRange, "百分比%v超出范围[%v, %v]", v, *min, *max)
	}
	return formatFloat(v), nil
}

func normalizeBoolean(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case bool:
		return strconv.FormatBool(v), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return "true", nil
		case "false":
			return "false", nil
		}
	}
	return "", models.NewServiceError(meta.ErrCodeInvalidValue, "布尔值仅接受true/false")
}

func normalizeText(raw interface{}) (string, error) {
	if raw == nil {
		return "", models.NewServiceError(meta.ErrCodeInvalidValue, "文本值不能为空")
	}
	return cast.ToString(raw), nil
}

func normalizeCategorical(indicator *models.Indicator, raw interface{}) (string, error) {
	if len(indicator.Categories) == 0 {
		return "", models.NewServiceError(meta.ErrCodeNoCategories, "分类指标未定义任何分类")
	}
	selections, err := categorical.ValidateCategoricalValue(cast.ToString(raw), indicator.Categories, indicator.CategoryConfig)
	if err != nil {
		return "", err
	}
	return categorical.FormatCategoricalValue(selections), nil
}

// toFiniteFloat 宽松转换为有限浮点数
func toFiniteFloat(raw interface{}) (float64, error) {
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, models.NewServiceErrorf(meta.ErrCodeInvalidValue, "无法解析为数值: %v", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, models.NewServiceError(meta.ErrCodeInvalidValue, "数值必须为有限数")
	}
	return v, nil
}

// formatFloat 数值的规范十进制字符串形式
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
