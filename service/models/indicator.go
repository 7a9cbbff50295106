/*
 * @module service/models/indicator
 * @description 指标模型，定义监测评估指标及其分类定义、异常检测配置
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/indicator_model.md
 * @stateFlow 指标创建 -> 配置更新 -> 数据提交
 * @rules 指标ID创建后不可变更，分类指标必须携带非空且ID唯一的分类定义
 * @dependencies gorm.io/gorm, github.com/google/uuid, service/meta
 * @refs service/models/submission.go, service/categorical
 */

package models

import (
	"time"

	"mne-service/service/meta"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category 分类指标的单个分类定义
type Category struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

// CategoryConfig 分类指标的选择约束配置
type CategoryConfig struct {
	AllowMultiple            bool     `json:"allow_multiple,omitempty"`
	MaxSelections            int      `json:"max_selections,omitempty"` // 0表示不限制
	Required                 bool     `json:"required,omitempty"`
	AllowOther               bool     `json:"allow_other,omitempty"`
	DisaggregationDimensions []string `json:"disaggregation_dimensions,omitempty"`
}

// OutlierConfig 离群点检测配置
type OutlierConfig struct {
	Method     string  `json:"method"`      // MAD, IQR
	Threshold  float64 `json:"threshold"`   // MAD修正z分数阈值 / IQR倍数
	WindowSize int     `json:"window_size"` // 滑动窗口大小
	MinPoints  int     `json:"min_points"`  // 窗口内最少有效点数
}

// TrendConfig 趋势突变检测配置
type TrendConfig struct {
	Method     string  `json:"method"` // SLOPE_SHIFT, MEAN_SHIFT
	Threshold  float64 `json:"threshold"`
	WindowSize int     `json:"window_size"`
}

// AnomalyConfig 异常检测配置，Enabled为false时仅做范围检查
type AnomalyConfig struct {
	Enabled bool           `json:"enabled"`
	Outlier *OutlierConfig `json:"outlier,omitempty"`
	Trend   *TrendConfig   `json:"trend,omitempty"`
}

// Indicator 监测评估指标模型
type Indicator struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name           string         `json:"name" gorm:"not null;size:255" example:"受训人数"`
	DataType       string         `json:"data_type" gorm:"not null;size:20;index" example:"NUMBER"` // NUMBER, PERCENT, BOOLEAN, TEXT, CATEGORICAL
	Unit           string         `json:"unit,omitempty" gorm:"size:50" example:"人"`
	MinValue       *float64       `json:"min_value,omitempty"`
	MaxValue       *float64       `json:"max_value,omitempty"`
	Cadence        string         `json:"cadence,omitempty" gorm:"size:20" example:"MONTHLY"` // DAILY, WEEKLY, MONTHLY，空表示不检查缺报
	Categories     CategoryList   `json:"categories,omitempty" gorm:"type:jsonb"`
	CategoryConfig CategoryConfig `json:"category_config" gorm:"type:jsonb"`
	AnomalyConfig  AnomalyConfig  `json:"anomaly_config" gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy      string         `json:"created_by" gorm:"not null;default:'system';size:100" example:"system"`
}

// BeforeCreate GORM钩子，创建前生成UUID并验证数据类型
func (i *Indicator) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.CreatedBy == "" {
		i.CreatedBy = "system"
	}
	if !meta.IsValidDataType(i.DataType) {
		return NewServiceError(meta.ErrCodeInvalidValue, "无效的指标数据类型: "+i.DataType)
	}
	return nil
}

// IsCategorical 判断是否为分类指标
func (i *Indicator) IsCategorical() bool {
	return i.DataType == meta.DataTypeCategorical
}

// EffectiveBounds 获取有效取值范围，百分比指标未设置时默认[0,100]
func (i *Indicator) EffectiveBounds() (*float64, *float64) {
	min, max := i.MinValue, i.MaxValue
	if i.DataType == meta.DataTypePercent {
		if min == nil {
			v := 0.0
			min = &v
		}
		if max == nil {
			v := 100.0
			max = &v
		}
	}
	return min, max
}

// CategoryByID 按ID查找分类定义
func (i *Indicator) CategoryByID(id string) *Category {
	for idx := range i.Categories {
		if i.Categories[idx].ID == id {
			return &i.Categories[idx]
		}
	}
	return nil
}
