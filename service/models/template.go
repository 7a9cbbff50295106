/*
 * @module service/models/template
 * @description 导入/导出模板模型，描述CSV表头、字段与转换规则的映射
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow 模板创建 -> 列配置更新 -> 导入/导出引用
 * @rules 每个指标每种类型建议保留一个默认模板，缺省时自动创建
 * @dependencies gorm.io/gorm, github.com/google/uuid, service/meta
 * @refs service/importer/template_service.go
 */

package models

import (
	"time"

	"mne-service/service/meta"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ColumnConfig 模板单列配置
type ColumnConfig struct {
	Header       string `json:"header"`               // CSV表头
	Field        string `json:"field"`                // 目标字段名
	Transform    string `json:"transform,omitempty"`  // trim, date, number, category, custom
	SourceFormat string `json:"source_format,omitempty"` // date转换的源格式，如 02/01/2006
	StripCommas  bool   `json:"strip_commas,omitempty"`  // number转换是否去除千分位
	Script       string `json:"script,omitempty"`        // custom转换的脚本，需提供Run入口
	Default      string `json:"default,omitempty"`       // 源值缺失时的默认值
	Required     bool   `json:"required,omitempty"`
}

// Template 导入/导出模板模型
type Template struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	IndicatorID string           `json:"indicator_id" gorm:"not null;type:varchar(36);index"`
	Kind        string           `json:"kind" gorm:"not null;size:10;index" example:"IMPORT"` // IMPORT, EXPORT
	Name        string           `json:"name" gorm:"not null;size:255" example:"默认导入模板"`
	Columns     ColumnConfigList `json:"columns" gorm:"type:jsonb"`
	IsDefault   bool             `json:"is_default" gorm:"not null;default:false;index"`
	SourceDateFormat string      `json:"source_date_format,omitempty" gorm:"size:50" example:"2006-01-02"`
	CreatedAt   time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy   string           `json:"created_by" gorm:"not null;default:'system';size:100"`
}

// BeforeCreate GORM钩子，创建前生成UUID并验证模板类型
func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedBy == "" {
		t.CreatedBy = "system"
	}
	if !meta.IsValidTemplateKind(t.Kind) {
		return NewServiceError(meta.ErrCodeInvalidValue, "无效的模板类型: "+t.Kind)
	}
	return nil
}

// ColumnByHeader 按CSV表头查找列配置
func (t *Template) ColumnByHeader(header string) *ColumnConfig {
	for i := range t.Columns {
		if t.Columns[i].Header == header {
			return &t.Columns[i]
		}
	}
	return nil
}
