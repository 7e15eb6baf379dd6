package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VidStream.com/cmd/worker/processor"
	"VidStream.com/config"
	"VidStream.com/pkg/mq"
	"VidStream.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/sirupsen/logrus"
)

func main() {
	config.Init()

	taskTimeout := 10 * time.Minute
	if config.ConfigInfo.Worker.TaskTimeout != "" {
		parsed, err := time.ParseDuration(config.ConfigInfo.Worker.TaskTimeout)
		if err != nil {
			logrus.Errorf("Failed to parse task_timeout '%s': %v, using default: 10m",
				config.ConfigInfo.Worker.TaskTimeout, err)
		} else {
			taskTimeout = parsed
		}
	}

	manager, err := mq.NewMQManager(utils.GetRabbitMqUrl())
	if err != nil {
		logrus.Errorf("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}
	defer manager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	videoProcessor := processor.NewVideoProcessor(config.ConfigInfo.Worker.VideoDir)
	worker := NewTaskWorker(videoProcessor, manager, taskTimeout)

	if err := manager.ConsumeTasks(ctx, worker); err != nil {
		logrus.Errorf("Failed to start task consumer: %v", err)
		panic(err)
	}
	hlog.Info("Worker started, consuming video processing tasks")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	hlog.Info("Worker shutting down gracefully...")
	cancel()
}
