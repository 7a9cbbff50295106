/*
 * @module service/models/submission
 * @description 指标提交模型，记录归一化后的观测值及异常检测结果
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/indicator_model.md
 * @stateFlow 提交创建 -> 异常检出(可选) -> 异常状态流转
 * @rules CREATE_ONLY模式下(指标,日期,细分键)三元组唯一；异常字段仅由状态流转操作修改
 * @dependencies gorm.io/gorm, github.com/google/uuid, service/meta
 * @refs service/submission, service/importer
 */

package models

import (
	"time"

	"mne-service/service/meta"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission 指标提交模型
type Submission struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	IndicatorID       string     `json:"indicator_id" gorm:"not null;type:varchar(36);index:idx_submission_unique,unique;index" example:"550e8400-e29b-41d4-a716-446655440000"`
	ReportedAt        time.Time  `json:"reported_at" gorm:"not null;index:idx_submission_unique,unique;index"`
	Value             string     `json:"value" gorm:"not null;type:text" example:"42"` // 归一化后的规范字符串
	DisaggregationKey string     `json:"disaggregation_key" gorm:"not null;default:'';size:255;index:idx_submission_unique,unique" example:"district:kathmandu"`
	Evidence          string     `json:"evidence,omitempty" gorm:"type:text"`
	IsAnomaly         bool       `json:"is_anomaly" gorm:"not null;default:false;index"`
	AnomalyReason     *string    `json:"anomaly_reason,omitempty" gorm:"type:text"`
	AnomalyStatus     *string    `json:"anomaly_status,omitempty" gorm:"size:20"` // DETECTED, ACKNOWLEDGED, RESOLVED, FALSE_POSITIVE
	AnomalyReviewedBy *string    `json:"anomaly_reviewed_by,omitempty" gorm:"size:100"`
	AnomalyReviewedAt *time.Time `json:"anomaly_reviewed_at,omitempty"`
	AnomalyNotes      *string    `json:"anomaly_notes,omitempty" gorm:"type:text"`
	SourceImportJobID *string    `json:"source_import_job_id,omitempty" gorm:"type:varchar(36);index"` // 来源导入任务，回滚时按此删除
	CreatedAt         time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy         string     `json:"created_by" gorm:"not null;default:'system';size:100" example:"system"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Indicator Indicator `json:"indicator,omitempty" gorm:"foreignKey:IndicatorID"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedBy == "" {
		s.CreatedBy = "system"
	}
	return nil
}

// CanTransitionAnomalyStatus 判断异常状态是否可流转，仅异常提交允许
func (s *Submission) CanTransitionAnomalyStatus() bool {
	return s.IsAnomaly
}

// MarkAnomaly 写入检测结果，仅在创建提交时调用
func (s *Submission) MarkAnomaly(reason string) {
	s.IsAnomaly = true
	s.AnomalyReason = &reason
	status := meta.AnomalyStatusDetected
	s.AnomalyStatus = &status
}
