package mq

import (
	"context"
	"fmt"
)

// MQManager 统一的消息队列管理器
type MQManager struct {
	// 生产者功能
	producer *Producer

	// 消费者功能
	consumer *Consumer
}

// NewMQManager 创建统一的消息队列管理器
func NewMQManager(rabbitmqURL string) (*MQManager, error) {
	producer, err := NewProducer(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	consumer, err := NewConsumer(rabbitmqURL)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	return &MQManager{
		producer: producer,
		consumer: consumer,
	}, nil
}

// ========== 生产者方法 ==========

// PublishTask 发布视频处理任务
func (m *MQManager) PublishTask(ctx context.Context, task *VideoTaskMessage) error {
	return m.producer.PublishTask(ctx, task)
}

// PublishCompletion 发布完成通知
func (m *MQManager) PublishCompletion(ctx context.Context, completion *VideoCompletionMessage) error {
	return m.producer.PublishCompletion(ctx, completion)
}

// ========== 消费者方法 ==========

// ConsumeTasks 消费视频处理任务
func (m *MQManager) ConsumeTasks(ctx context.Context, handler TaskHandler) error {
	return m.consumer.ConsumeTasks(ctx, handler)
}

// ConsumeCompletions 消费完成通知
func (m *MQManager) ConsumeCompletions(ctx context.Context, handler CompletionHandler) error {
	return m.consumer.ConsumeCompletions(ctx, handler)
}

// ========== 管理方法 ==========

// HealthCheck 健康检查
func (m *MQManager) HealthCheck() error {
	if m.producer == nil || m.producer.conn == nil || m.producer.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}
	return nil
}

// Close 关闭连接
func (m *MQManager) Close() error {
	var errs []error

	if m.producer != nil {
		if err := m.producer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.consumer != nil {
		if err := m.consumer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing MQ manager: %v", errs)
	}

	return nil
}
