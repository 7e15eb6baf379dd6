package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

// Consumer 任务与完成消息的消费者
type Consumer struct {
	url     string
	retry   RetryConfig
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	c := &Consumer{
		url:   rabbitmqURL,
		retry: DefaultRetryConfig(),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Consumer) connect() error {
	conn, err := dialWithBackoff(c.url, c.retry)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	// 设置QoS，限制未确认消息数量
	err = ch.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to setup topology: %w", err)
	}

	c.conn = conn
	c.channel = ch
	return nil
}

// reconnect 消费通道断开后的重连，超过重试上限则放弃
func (c *Consumer) reconnect() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = nil
	c.channel = nil
	return c.connect()
}

// ConsumeTasks 消费视频处理任务队列
// 解析失败的消息直接丢弃（毒消息策略）；处理失败的消息重新入队
func (c *Consumer) ConsumeTasks(ctx context.Context, handler TaskHandler) error {
	return c.consumeLoop(ctx, VideoTaskQueue, "task_consumer", func(ctx context.Context, d amqp091.Delivery) {
		var task VideoTaskMessage
		if err := json.Unmarshal(d.Body, &task); err != nil {
			hlog.Errorf("Failed to unmarshal video task: %v", err)
			d.Nack(false, false) // 拒绝消息，不重新入队
			return
		}

		if err := handler.HandleTask(ctx, &task); err != nil {
			hlog.Errorf("Failed to handle video task: %v", err)
			d.Nack(false, true) // 拒绝消息，重新入队
			return
		}

		d.Ack(false)
	})
}

// ConsumeCompletions 消费完成通知队列
// 单条消息的处理错误只记录日志并确认，不能让坏消息卡住消费循环
func (c *Consumer) ConsumeCompletions(ctx context.Context, handler CompletionHandler) error {
	return c.consumeLoop(ctx, VideoCompletionQueue, "completion_consumer", func(ctx context.Context, d amqp091.Delivery) {
		var completion VideoCompletionMessage
		if err := json.Unmarshal(d.Body, &completion); err != nil {
			hlog.Errorf("Failed to unmarshal completion: %v", err)
			d.Nack(false, false)
			return
		}

		if err := handler.HandleCompletion(ctx, &completion); err != nil {
			hlog.Errorf("Failed to handle completion: %v", err)
		}

		d.Ack(false)
	})
}

// consumeLoop 启动消费协程，通道被动关闭时尝试重连后继续消费
func (c *Consumer) consumeLoop(ctx context.Context, queue, name string, handle func(context.Context, amqp091.Delivery)) error {
	msgs, err := c.channel.Consume(
		queue,
		name,
		false, // auto-ack (手动确认)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				hlog.Infof("Consumer on %s stopped", queue)
				return
			case d, ok := <-msgs:
				if !ok {
					hlog.Warnf("Consumer channel on %s closed, reconnecting", queue)
					if err := c.reconnect(); err != nil {
						hlog.Errorf("Failed to reconnect consumer on %s: %v", queue, err)
						return
					}
					msgs, err = c.channel.Consume(queue, name, false, false, false, false, nil)
					if err != nil {
						hlog.Errorf("Failed to re-register consumer on %s: %v", queue, err)
						return
					}
					continue
				}

				handle(ctx, d)
			}
		}
	}()

	return nil
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
