/*
 * @module service/models/import_job
 * @description CSV导入任务与行级暂存模型，支撑解析/校验/提交三阶段流水线
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow PENDING -> VALIDATING -> VALIDATED -> IMPORTING -> COMPLETED，VALIDATING/IMPORTING可转FAILED，非终态可转CANCELLED
 * @rules 行级错误收集不中断批次，任务级错误在创建行之前终止
 * @dependencies gorm.io/gorm, github.com/google/uuid, service/meta
 * @refs service/importer
 */

package models

import (
	"time"

	"mne-service/service/meta"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportJob CSV导入任务模型
type ImportJob struct {
	ID             string     `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	IndicatorID    string     `json:"indicator_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	TemplateID     *string    `json:"template_id,omitempty" gorm:"type:varchar(36)"`
	Status         string     `json:"status" gorm:"not null;size:20;default:'PENDING';index" example:"PENDING"`
	ImportMode     string     `json:"import_mode" gorm:"not null;size:20;default:'CREATE_ONLY'" example:"CREATE_ONLY"` // CREATE_ONLY, UPSERT
	FileName       string     `json:"file_name" gorm:"size:255" example:"submissions_2024.csv"`
	FileSize       int64      `json:"file_size" gorm:"default:0" example:"10240"`
	TotalRows      int        `json:"total_rows" gorm:"default:0"`
	ProcessedRows  int        `json:"processed_rows" gorm:"default:0"`
	SuccessfulRows int        `json:"successful_rows" gorm:"default:0"`
	FailedRows     int        `json:"failed_rows" gorm:"default:0"`
	WarningRows    int        `json:"warning_rows" gorm:"default:0"`
	ErrorMessage   string     `json:"error_message,omitempty" gorm:"type:text"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy      string     `json:"created_by" gorm:"not null;default:'system';size:100" example:"system"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Indicator Indicator      `json:"indicator,omitempty" gorm:"foreignKey:IndicatorID"`
	Rows      []ImportJobRow `json:"rows,omitempty" gorm:"foreignKey:JobID"`
}

// BeforeCreate GORM钩子，创建前生成UUID并验证导入模式
func (j *ImportJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.CreatedBy == "" {
		j.CreatedBy = "system"
	}
	if j.ImportMode == "" {
		j.ImportMode = meta.ImportModeCreateOnly
	}
	if !meta.IsValidImportMode(j.ImportMode) {
		return NewServiceError(meta.ErrCodeInvalidValue, "无效的导入模式: "+j.ImportMode)
	}
	return nil
}

// IsTerminal 判断任务是否处于终态
func (j *ImportJob) IsTerminal() bool {
	switch j.Status {
	case meta.ImportJobStatusCompleted, meta.ImportJobStatusFailed, meta.ImportJobStatusCancelled:
		return true
	}
	return false
}

// CanValidate 判断任务是否可进入校验阶段
func (j *ImportJob) CanValidate() bool {
	return j.Status == meta.ImportJobStatusValidating || j.Status == meta.ImportJobStatusValidated
}

// CanCommit 判断任务是否可进入提交阶段
func (j *ImportJob) CanCommit() bool {
	return j.Status == meta.ImportJobStatusValidated
}

// RowIssue 行级校验问题
type RowIssue struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Severity   string `json:"severity"` // ERROR, WARNING
	Suggestion string `json:"suggestion,omitempty"`
}

// ImportJobRow 导入行级暂存模型
type ImportJobRow struct {
	ID               string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	JobID            string       `json:"job_id" gorm:"not null;type:varchar(36);index"`
	RowNumber        int          `json:"row_number" gorm:"not null"` // 含表头偏移的1基行号
	RawData          JSONB        `json:"raw_data" gorm:"type:jsonb"`
	NormalizedData   JSONB        `json:"normalized_data" gorm:"type:jsonb"`
	ValidationStatus string       `json:"validation_status" gorm:"not null;size:20;default:'PENDING';index"` // PENDING, VALID, WARNING, ERROR, IMPORTED
	Errors           RowIssueList `json:"errors,omitempty" gorm:"type:jsonb"`
	Warnings         RowIssueList `json:"warnings,omitempty" gorm:"type:jsonb"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (r *ImportJobRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// IsCommittable 判断行是否可提交入库
func (r *ImportJobRow) IsCommittable() bool {
	return r.ValidationStatus == meta.RowStatusValid || r.ValidationStatus == meta.RowStatusWarning
}

// ResolveStatus 根据收集到的错误/警告计算行状态
func (r *ImportJobRow) ResolveStatus() string {
	if len(r.Errors) > 0 {
		return meta.RowStatusError
	}
	if len(r.Warnings) > 0 {
		return meta.RowStatusWarning
	}
	return meta.RowStatusValid
}
