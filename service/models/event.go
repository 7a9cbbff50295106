/*
 * @module service/models/event
 * @description 平台事件与缺报告警模型
 * @architecture 事件驱动架构 - 实体模型
 * @documentReference ai_docs/event_design.md
 * @stateFlow 事件产生 -> 落库 -> Kafka发布(尽力而为)
 * @rules 事件只追加不修改；缺报告警按(指标,起止日期)幂等记录
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/event, service/scheduler
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 平台事件类型常量
const (
	EventTypeAnomalyDetected = "anomaly_detected"
	EventTypeImportCompleted = "import_completed"
	EventTypeImportFailed    = "import_failed"
	EventTypeGapDetected     = "reporting_gap_detected"
)

// PlatformEvent 平台事件模型
type PlatformEvent struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EventType  string    `json:"event_type" gorm:"not null;size:50;index"`
	EntityType string    `json:"entity_type" gorm:"not null;size:50"` // submission, import_job, indicator
	EntityID   string    `json:"entity_id" gorm:"not null;type:varchar(36);index"`
	Payload    JSONB     `json:"payload,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (e *PlatformEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// ReportingGapAlert 缺报告警记录，由定时扫描写入
type ReportingGapAlert struct {
	ID                   string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	IndicatorID          string    `json:"indicator_id" gorm:"not null;type:varchar(36);index:idx_gap_alert_unique,unique"`
	GapFrom              time.Time `json:"gap_from" gorm:"not null;index:idx_gap_alert_unique,unique"`
	GapTo                time.Time `json:"gap_to" gorm:"not null;index:idx_gap_alert_unique,unique"`
	DaysMissing          int       `json:"days_missing" gorm:"not null"`
	ExpectedSubmissions  int       `json:"expected_submissions" gorm:"not null"`
	Cadence              string    `json:"cadence" gorm:"not null;size:20"`
	CreatedAt            time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (a *ReportingGapAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
