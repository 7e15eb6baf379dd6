package mq

import "context"

// TaskHandler 视频处理任务处理器接口
type TaskHandler interface {
	HandleTask(ctx context.Context, task *VideoTaskMessage) error
}

// CompletionHandler 完成通知处理器接口
type CompletionHandler interface {
	HandleCompletion(ctx context.Context, completion *VideoCompletionMessage) error
}

// MessageProducer 消息生产者接口
type MessageProducer interface {
	PublishTask(ctx context.Context, task *VideoTaskMessage) error
	PublishCompletion(ctx context.Context, completion *VideoCompletionMessage) error
}

// 确保Producer实现MessageProducer接口
var _ MessageProducer = (*Producer)(nil)

// 确保MQManager实现MessageProducer接口
var _ MessageProducer = (*MQManager)(nil)
