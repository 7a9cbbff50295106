/*
 * @module service/importer/template_service
 * @description 导入/导出模板服务，负责模板的查询与默认模板自动创建
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow 模板查询 -> 缺省时按指标数据类型生成默认列配置 -> 落库
 * @rules 每个指标每种模板类型仅保留一个默认模板
 * @dependencies gorm.io/gorm, service/models, service/meta
 * @refs service/importer/service.go, api/controllers/import_controller.go
 */

package importer

import (
	"context"
	"errors"
	"fmt"

	"mne-service/service/meta"
	"mne-service/service/models"

	"gorm.io/gorm"
)

// TemplateService 模板服务
type TemplateService struct {
	db *gorm.DB
}

// NewTemplateService 创建模板服务
func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

// GetTemplate 按ID查询模板
func (s *TemplateService) GetTemplate(ctx context.Context, templateID string) (*models.Template, error) {
	var tpl models.Template
	if err := s.db.WithContext(ctx).First(&tpl, "id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewServiceErrorf(meta.ErrCodeNotFound, "模板不存在: %s", templateID)
		}
		return nil, fmt.Errorf("查询模板失败: %w", err)
	}
	return &tpl, nil
}

// GetOrCreateDefault 获取指标的默认模板，不存在时自动创建
func (s *TemplateService) GetOrCreateDefault(ctx context.Context, indicator *models.Indicator, kind string) (*models.Template, error) {
	if !meta.IsValidTemplateKind(kind) {
		return nil, models.NewServiceErrorf(meta.ErrCodeInvalidValue, "无效的模板类型: %s", kind)
	}

	var tpl models.Template
	err := s.db.WithContext(ctx).
		Where("indicator_id = ? AND kind = ? AND is_default = ?", indicator.ID, kind, true).
		First(&tpl).Error
	if err == nil {
		return &tpl, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询默认模板失败: %w", err)
	}

	created := s.buildDefault(indicator, kind)
	if err := s.db.WithContext(ctx).Create(created).Error; err != nil {
		return nil, fmt.Errorf("创建默认模板失败: %w", err)
	}
	return created, nil
}

// CreateTemplate 创建模板，设为默认时取消同指标同类型的旧默认
func (s *TemplateService) CreateTemplate(ctx context.Context, tpl *models.Template) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tpl.IsDefault {
			if err := tx.Model(&models.Template{}).
				Where("indicator_id = ? AND kind = ? AND is_default = ?", tpl.IndicatorID, tpl.Kind, true).
				Update("is_default", false).Error; err != nil {
				return fmt.Errorf("取消旧默认模板失败: %w", err)
			}
		}
		return tx.Create(tpl).Error
	})
}

// buildDefault 按指标数据类型生成默认列配置
func (s *TemplateService) buildDefault(indicator *models.Indicator, kind string) *models.Template {
	valueTransform := meta.TransformTrim
	switch indicator.DataType {
	case meta.DataTypeNumber, meta.DataTypePercent:
		valueTransform = meta.TransformNumber
	case meta.DataTypeCategorical:
		valueTransform = meta.TransformCategory
	}

	name := "默认导入模板"
	if kind == meta.TemplateKindExport {
		name = "默认导出模板"
	}

	return &models.Template{
		IndicatorID: indicator.ID,
		Kind:        kind,
		Name:        name,
		IsDefault:   true,
		Columns: models.ColumnConfigList{
			{Header: "reported_at", Field: "reported_at", Transform: meta.TransformDate, Required: true},
			{Header: "value", Field: "value", Transform: valueTransform, StripCommas: true, Required: true},
			{Header: "disaggregation_key", Field: "disaggregation_key", Transform: meta.TransformTrim},
			{Header: "evidence", Field: "evidence", Transform: meta.TransformTrim},
		},
	}
}
