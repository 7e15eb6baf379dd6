package main

import (
	"context"
	"time"

	"VidStream.com/cmd/worker/processor"
	"VidStream.com/pkg/mq"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// TaskWorker 消费处理任务，执行ffmpeg并发回完成通知
type TaskWorker struct {
	processor *processor.VideoProcessor
	producer  mq.MessageProducer

	taskTimeout time.Duration
	maxRetries  int
	retryDelay  time.Duration
}

func NewTaskWorker(videoProcessor *processor.VideoProcessor, producer mq.MessageProducer, taskTimeout time.Duration) *TaskWorker {
	return &TaskWorker{
		processor:   videoProcessor,
		producer:    producer,
		taskTimeout: taskTimeout,
		maxRetries:  3,
		retryDelay:  2 * time.Second,
	}
}

// HandleTask 实现mq.TaskHandler
// 带上限重试，最终失败时发回failed状态的完成通知而不是让消息无限重投
func (w *TaskWorker) HandleTask(ctx context.Context, task *mq.VideoTaskMessage) error {
	taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < w.maxRetries; attempt++ {
		if taskCtx.Err() != nil {
			lastErr = taskCtx.Err()
			break
		}
		if attempt > 0 {
			// 线性退避
			time.Sleep(time.Duration(attempt) * w.retryDelay)
		}

		hlog.Infof("Processing attempt %d for task %s, file %s", attempt+1, task.TaskType, task.FilePath)
		if err := w.processor.Process(taskCtx, task); err != nil {
			lastErr = err
			hlog.Warnf("Attempt %d failed: %v", attempt+1, err)
			continue
		}

		return w.notifyCompletion(ctx, task, "")
	}

	hlog.Errorf("Task %s for file %s failed permanently: %v", task.TaskType, task.FilePath, lastErr)
	return w.notifyCompletion(ctx, task, lastErr.Error())
}

// notifyCompletion 发回完成通知，errMsg非空表示任务最终失败
func (w *TaskWorker) notifyCompletion(ctx context.Context, task *mq.VideoTaskMessage, errMsg string) error {
	status := mq.CompletionStatusCompleted
	if errMsg != "" {
		status = mq.CompletionStatusFailed
	}
	completion := &mq.VideoCompletionMessage{
		TaskType:   task.TaskType,
		FilePath:   task.FilePath,
		OutputPath: task.OutputPath,
		Status:     status,
		Error:      errMsg,
	}
	if err := w.producer.PublishCompletion(ctx, completion); err != nil {
		// 投递失败则让任务消息重投，完成通知不能丢
		return err
	}
	return nil
}
