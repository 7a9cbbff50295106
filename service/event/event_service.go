/*
 * @module service/event/event_service
 * @description 事件管理服务，负责平台事件落库与Kafka发布
 * @architecture 事件驱动架构 - 业务服务层
 * @documentReference ai_docs/event_design.md
 * @stateFlow 事件产生 -> 落库 -> Kafka发布(尽力而为)
 * @rules 事件落库失败返回错误；Kafka发布失败仅记录日志，不影响业务流程
 * @dependencies mne-service/service/models, mne-service/client/connectors, gorm.io/gorm
 * @refs service/submission, service/importer, service/scheduler
 */

package event

import (
	"context"
	"log"
	"time"

	"mne-service/client/connectors"
	"mne-service/service/models"

	"gorm.io/gorm"
)

// EventService 事件管理服务
type EventService struct {
	db    *gorm.DB
	kafka *connectors.KafkaConnector
}

// NewEventService 创建事件服务，kafka为nil时仅落库
func NewEventService(db *gorm.DB, kafka *connectors.KafkaConnector) *EventService {
	if kafka != nil {
		if err := kafka.Connect(); err != nil {
			log.Printf("Kafka连接失败，事件将仅落库: %v", err)
			kafka = nil
		}
	}
	return &EventService{db: db, kafka: kafka}
}

// Emit 记录一条平台事件并尽力发布到Kafka
func (s *EventService) Emit(ctx context.Context, eventType, entityType, entityID string, payload models.JSONB) error {
	evt := &models.PlatformEvent{
		EventType:  eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
	}
	if err := s.db.WithContext(ctx).Create(evt).Error; err != nil {
		return err
	}

	if s.kafka != nil {
		publishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.kafka.Publish(publishCtx, entityID, evt); err != nil {
			log.Printf("事件Kafka发布失败: type=%s entity=%s err=%v", eventType, entityID, err)
		}
	}
	return nil
}

// ListEvents 查询实体相关事件，按时间倒序
func (s *EventService) ListEvents(ctx context.Context, entityID string, limit int) ([]models.PlatformEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.PlatformEvent
	err := s.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
