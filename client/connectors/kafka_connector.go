/*
 * @module KafkaConnector
 * @description Kafka连接器，封装平台事件的生产者，支持消息序列化和连接管理
 * @architecture 适配器模式 - 封装第三方Kafka客户端，提供统一的接口
 * @documentReference ai_docs/event_design.md
 * @stateFlow 连接建立 -> 消息发送 -> 连接断开
 * @rules 发送失败记录日志不阻塞业务流程
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/event/event_service.go
 */
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig Kafka连接配置
type KafkaConfig struct {
	Brokers      []string      `json:"brokers"`
	Topic        string        `json:"topic"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// KafkaConnector Kafka连接器结构体
type KafkaConnector struct {
	config *KafkaConfig
	writer *kafka.Writer
	mutex  sync.RWMutex
}

// NewKafkaConnectorFromEnv 从环境变量创建Kafka连接器，未配置KAFKA_BROKERS时返回nil
func NewKafkaConnectorFromEnv() *KafkaConnector {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil
	}
	topic := os.Getenv("KAFKA_EVENT_TOPIC")
	if topic == "" {
		topic = "mne-platform-events"
	}
	return NewKafkaConnector(&KafkaConfig{
		Brokers:      strings.Split(brokers, ","),
		Topic:        topic,
		WriteTimeout: 10 * time.Second,
	})
}

// NewKafkaConnector 创建新的Kafka连接器
func NewKafkaConnector(config *KafkaConfig) *KafkaConnector {
	return &KafkaConnector{config: config}
}

// Connect 建立Kafka生产者连接
func (kc *KafkaConnector) Connect() error {
	kc.mutex.Lock()
	defer kc.mutex.Unlock()

	if kc.writer != nil {
		return nil
	}
	if len(kc.config.Brokers) == 0 {
		return fmt.Errorf("未配置Kafka broker地址")
	}

	kc.writer = &kafka.Writer{
		Addr:         kafka.TCP(kc.config.Brokers...),
		Topic:        kc.config.Topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: kc.config.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	log.Printf("Kafka连接器初始化完成, brokers=%v, topic=%s", kc.config.Brokers, kc.config.Topic)
	return nil
}

// Publish 发送一条JSON消息，key用于分区路由
func (kc *KafkaConnector) Publish(ctx context.Context, key string, payload interface{}) error {
	kc.mutex.RLock()
	writer := kc.writer
	kc.mutex.RUnlock()

	if writer == nil {
		return fmt.Errorf("Kafka连接器尚未连接")
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

// Close 关闭连接
func (kc *KafkaConnector) Close() error {
	kc.mutex.Lock()
	defer kc.mutex.Unlock()

	if kc.writer == nil {
		return nil
	}
	err := kc.writer.Close()
	kc.writer = nil
	return err
}
