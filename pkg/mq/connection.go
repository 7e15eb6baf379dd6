package mq

import (
	"fmt"
	"math"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

// RetryConfig 连接重试配置
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig 默认重试配置
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 5,
		BaseDelay:  time.Second,
		MaxDelay:   time.Minute,
	}
}

func (rc RetryConfig) delay(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * rc.BaseDelay
	if d > rc.MaxDelay {
		d = rc.MaxDelay
	}
	return d
}

// dialWithBackoff 带指数退避的连接，超过重试上限后返回错误由调用方决定是否致命
func dialWithBackoff(url string, rc RetryConfig) (*amqp091.Connection, error) {
	var conn *amqp091.Connection
	var err error

	for i := 0; i < rc.MaxRetries; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			return conn, nil
		}
		if i < rc.MaxRetries-1 {
			d := rc.delay(i)
			hlog.Warnf("Failed to connect to RabbitMQ, retrying in %v (attempt %d/%d): %v",
				d, i+1, rc.MaxRetries, err)
			time.Sleep(d)
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", rc.MaxRetries, err)
}

// setupTopology 声明交换机、队列和绑定
// tasks队列按video.task.*接收派发，completions队列按video.completion.#接收完成通知
func setupTopology(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		VideoProcessingExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare video processing exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		VideoTaskQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare task queue: %w", err)
	}

	_, err = ch.QueueDeclare(
		VideoCompletionQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare completion queue: %w", err)
	}

	err = ch.QueueBind(
		VideoTaskQueue,
		TaskRoutingKeyPattern,
		VideoProcessingExchange,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind task queue: %w", err)
	}

	err = ch.QueueBind(
		VideoCompletionQueue,
		CompletionRoutingKeyBind,
		VideoProcessingExchange,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind completion queue: %w", err)
	}

	return nil
}
