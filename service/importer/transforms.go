/*
 * @module service/importer/transforms
 * @description 模板驱动的列转换，将CSV原始行映射为归一化字段数据
 * @architecture 转换器模式 - 按列配置依次应用转换
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow 表头映射 -> 缺失值默认 -> 列转换(trim/date/number/category/custom) -> 归一化数据
 * @rules 日期无法解析时保留原值交由校验阶段报错；分类标签按大小写变体查表映射
 * @dependencies github.com/spf13/cast, service/models, service/meta, service/utils
 * @refs service/importer/service.go
 */

package importer

import (
	"strings"

	"mne-service/service/meta"
	"mne-service/service/models"
	"mne-service/service/utils"

	"github.com/spf13/cast"
)

// ColumnTransformer 列转换器，持有分类映射表和脚本执行器
type ColumnTransformer struct {
	indicator *models.Indicator
	template  *models.Template
	lookup    map[string]string // 分类标签大小写变体 -> 分类ID
	scripts   *ScriptExecutor
}

// NewColumnTransformer 创建列转换器
func NewColumnTransformer(indicator *models.Indicator, template *models.Template, scripts *ScriptExecutor) *ColumnTransformer {
	t := &ColumnTransformer{
		indicator: indicator,
		template:  template,
		lookup:    make(map[string]string, len(indicator.Categories)*4),
		scripts:   scripts,
	}
	// 分类映射表：精确标签、大写、小写、原始ID
	for _, c := range indicator.Categories {
		t.lookup[c.Label] = c.ID
		t.lookup[strings.ToUpper(c.Label)] = c.ID
		t.lookup[strings.ToLower(c.Label)] = c.ID
		t.lookup[c.ID] = c.ID
	}
	return t
}

// Apply 将一行原始CSV数据按模板映射为归一化字段数据
func (t *ColumnTransformer) Apply(raw models.JSONB) models.JSONB {
	normalized := make(models.JSONB, len(t.template.Columns))
	for _, col := range t.template.Columns {
		source := ""
		if v, ok := raw[col.Header]; ok {
			source = cast.ToString(v)
		}
		if strings.TrimSpace(source) == "" {
			if col.Default != "" {
				normalized[col.Field] = col.Default
			} else {
				normalized[col.Field] = nil
			}
			continue
		}
		normalized[col.Field] = t.transformValue(col, source)
	}
	return normalized
}

// transformValue 应用单列转换
func (t *ColumnTransformer) transformValue(col models.ColumnConfig, source string) interface{} {
	switch col.Transform {
	case meta.TransformTrim:
		return strings.TrimSpace(source)
	case meta.TransformDate:
		return t.transformDate(col, source)
	case meta.TransformNumber:
		return t.transformNumber(col, source)
	case meta.TransformCategory:
		return t.transformCategory(source)
	case meta.TransformCustom:
		return t.transformCustom(col, source)
	}
	return source
}

// transformDate 重解析日期并输出规范ISO形式，解析失败保留原值
func (t *ColumnTransformer) transformDate(col models.ColumnConfig, source string) interface{} {
	format := col.SourceFormat
	if format == "" {
		format = t.template.SourceDateFormat
	}
	parsed, err := utils.ParseDate(source, format)
	if err != nil {
		return source
	}
	return utils.FormatDateISO(parsed)
}

// transformNumber 按配置去除千分位后解析为浮点数，解析失败保留原值
func (t *ColumnTransformer) transformNumber(col models.ColumnConfig, source string) interface{} {
	cleaned := strings.TrimSpace(source)
	if col.StripCommas {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	v, err := cast.ToFloat64E(cleaned)
	if err != nil {
		return source
	}
	return v
}

// transformCategory 多选值逐项经大小写变体映射表转为分类ID，未命中退回小写原值
func (t *ColumnTransformer) transformCategory(source string) interface{} {
	parts := strings.Split(source, ",")
	mapped := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if id, ok := t.lookup[trimmed]; ok {
			mapped = append(mapped, id)
			continue
		}
		if id, ok := t.lookup[strings.ToUpper(trimmed)]; ok {
			mapped = append(mapped, id)
			continue
		}
		if id, ok := t.lookup[strings.ToLower(trimmed)]; ok {
			mapped = append(mapped, id)
			continue
		}
		mapped = append(mapped, strings.ToLower(trimmed))
	}
	return strings.Join(mapped, ",")
}

// transformCustom 通过Yaegi脚本转换，脚本异常时保留原值
func (t *ColumnTransformer) transformCustom(col models.ColumnConfig, source string) interface{} {
	if t.scripts == nil || col.Script == "" {
		return source
	}
	result, err := t.scripts.Execute(col.Script, map[string]interface{}{
		"value":  source,
		"field":  col.Field,
		"header": col.Header,
	})
	if err != nil {
		return source
	}
	return result
}
