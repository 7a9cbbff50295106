/*
 * @module service/submission/indicator
 * @description 指标管理，提供指标的创建、查询与配置更新
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/submission_design.md
 * @stateFlow 创建时校验数据类型与分类定义；配置字段可变，ID不可变
 * @rules CATEGORICAL指标必须携带非空且ID唯一的分类定义
 * @dependencies gorm.io/gorm, service/categorical, service/models
 * @refs api/controllers/indicator_controller.go
 */

package submission

import (
	"context"
	"fmt"

	"mne-service/service/categorical"
	"mne-service/service/meta"
	"mne-service/service/models"
)

// CreateIndicator 创建指标，创建前校验分类定义与配置
func (s *Service) CreateIndicator(ctx context.Context, indicator *models.Indicator) (*models.Indicator, error) {
	if !meta.IsValidDataType(indicator.DataType) {
		return nil, models.NewServiceErrorf(meta.ErrCodeInvalidValue, "无效的数据类型: %s", indicator.DataType)
	}
	if indicator.Cadence != "" && !meta.IsValidCadence(indicator.Cadence) {
		return nil, models.NewServiceErrorf(meta.ErrCodeInvalidValue, "无效的报告频率: %s", indicator.Cadence)
	}
	if indicator.IsCategorical() {
		normalized, err := categorical.ValidateCategories(indicator.Categories)
		if err != nil {
			return nil, err
		}
		indicator.Categories = models.CategoryList(normalized)
		if err := categorical.ValidateCategoryConfig(indicator.CategoryConfig); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Create(indicator).Error; err != nil {
		return nil, fmt.Errorf("创建指标失败: %w", err)
	}
	return indicator, nil
}

// ListIndicators 查询指标列表，dataType为空时不过滤
func (s *Service) ListIndicators(ctx context.Context, dataType string, limit, offset int) ([]models.Indicator, int64, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query := s.db.WithContext(ctx).Model(&models.Indicator{})
	if dataType != "" {
		query = query.Where("data_type = ?", dataType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计指标失败: %w", err)
	}

	var indicators []models.Indicator
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&indicators).Error; err != nil {
		return nil, 0, fmt.Errorf("查询指标列表失败: %w", err)
	}
	return indicators, total, nil
}

// UpdateIndicatorConfig 更新指标的可变配置字段，ID与数据类型不可变
func (s *Service) UpdateIndicatorConfig(ctx context.Context, indicatorID string, updates map[string]interface{}) (*models.Indicator, error) {
	indicator, err := s.GetIndicator(ctx, indicatorID)
	if err != nil {
		return nil, err
	}

	// 不可变字段直接丢弃
	delete(updates, "id")
	delete(updates, "data_type")
	delete(updates, "created_at")

	if err := s.db.WithContext(ctx).Model(indicator).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新指标配置失败: %w", err)
	}
	return s.GetIndicator(ctx, indicatorID)
}
