package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

// Producer 任务与完成消息的生产者
// 连接或通道出错、关闭时缓存的句柄会被清空，下一次发布自动重连，
// 避免继续使用死句柄
type Producer struct {
	mu      sync.Mutex
	url     string
	retry   RetryConfig
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewProducer(rabbitmqURL string) (*Producer, error) {
	p := &Producer{
		url:   rabbitmqURL,
		retry: DefaultRetryConfig(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}

	return p, nil
}

// connectLocked 建立连接和通道并声明拓扑，调用方需持有p.mu
func (p *Producer) connectLocked() error {
	conn, err := dialWithBackoff(p.url, p.retry)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to setup topology: %w", err)
	}

	p.conn = conn
	p.channel = ch

	// 连接或通道关闭时清空缓存句柄，下次发布重连
	connClose := conn.NotifyClose(make(chan *amqp091.Error, 1))
	chanClose := ch.NotifyClose(make(chan *amqp091.Error, 1))
	go func() {
		select {
		case err := <-connClose:
			if err != nil {
				hlog.Errorf("RabbitMQ connection closed: %v", err)
			}
		case err := <-chanClose:
			if err != nil {
				hlog.Errorf("RabbitMQ channel closed: %v", err)
			}
		}
		p.mu.Lock()
		if p.conn == conn {
			p.conn = nil
			p.channel = nil
		}
		p.mu.Unlock()
	}()

	return nil
}

// ensureChannelLocked 返回可用通道，必要时重连
func (p *Producer) ensureChannelLocked() (*amqp091.Channel, error) {
	if p.channel != nil && p.conn != nil && !p.conn.IsClosed() {
		return p.channel, nil
	}
	p.conn = nil
	p.channel = nil
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p.channel, nil
}

func (p *Producer) publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.ensureChannelLocked()
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		VideoProcessingExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// PublishTask 发布视频处理任务，路由键为video.task.<类型>
func (p *Producer) PublishTask(ctx context.Context, task *VideoTaskMessage) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal video task: %w", err)
	}

	routingKey := TaskRoutingKeyPrefix + task.TaskType.String()
	if err := p.publish(ctx, routingKey, body); err != nil {
		return fmt.Errorf("failed to publish video task: %w", err)
	}

	hlog.CtxInfof(ctx, "Published video task: video=%d type=%s", task.VideoID, task.TaskType)
	return nil
}

// PublishCompletion 发布完成通知，路由键为video.completion.<令牌>.<类型>
func (p *Producer) PublishCompletion(ctx context.Context, completion *VideoCompletionMessage) error {
	body, err := json.Marshal(completion)
	if err != nil {
		return fmt.Errorf("failed to marshal completion: %w", err)
	}

	routingKey := CompletionRoutingKeyPrefix + DirectoryToken(completion.FilePath) + "." + completion.TaskType.String()
	if err := p.publish(ctx, routingKey, body); err != nil {
		return fmt.Errorf("failed to publish completion: %w", err)
	}

	hlog.CtxInfof(ctx, "Published completion: token=%s type=%s", DirectoryToken(completion.FilePath), completion.TaskType)
	return nil
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
