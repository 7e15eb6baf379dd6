package main

import (
	"context"
	"fmt"

	"VidStream.com/cmd/live/dal"
	"VidStream.com/cmd/live/dal/db"
	"VidStream.com/cmd/live/handlers"
	"VidStream.com/cmd/live/infras/redis"
	"VidStream.com/cmd/live/service"
	"VidStream.com/config"
	"VidStream.com/pkg/cache"
	"VidStream.com/pkg/errno"
	"VidStream.com/pkg/eventbus"
	"VidStream.com/pkg/mq"
	"VidStream.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/cors"
)

func Init() {
	config.Init()
	dal.Init()
	redis.Load()
}

func main() {
	Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 事件总线和各业务服务显式装配，不走包级全局
	buses := eventbus.NewRegistry()
	store := db.NewStore()

	producer, err := mq.NewProducer(utils.GetRabbitMqUrl())
	if err != nil {
		hlog.Errorf("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}
	defer producer.Close()

	consumer, err := mq.NewConsumer(utils.GetRabbitMqUrl())
	if err != nil {
		hlog.Errorf("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}
	defer consumer.Close()

	reconciler := service.NewReconciler(store, buses)
	reconciler.Start(ctx)
	if err := consumer.ConsumeCompletions(ctx, reconciler); err != nil {
		hlog.Errorf("Failed to start completion consumer: %v", err)
		panic(err)
	}

	cacheManager := cache.NewCommentCacheManager(redis.GetCommentClient())

	commentService := service.NewCommentService(store, store, store, buses, cacheManager)
	videoService := service.NewVideoService(store, store, producer, reconciler, buses)
	voteService := service.NewVoteService(store, commentService, videoService, buses, cacheManager)
	streamer := service.NewCommentStreamer(store, commentService, buses)

	aggregatorHub := service.NewCommentAggregatorHub(commentService, cacheManager, buses)
	aggregatorHub.Run(ctx)

	handlers.Init(commentService, voteService, videoService, streamer, buses)

	addr := config.ConfigInfo.Server.Addr
	if addr == "" {
		addr = "0.0.0.0:8888"
	}
	r := server.New(
		server.WithHostPorts(addr),
		server.WithHandleMethodNotAllowed(true),
	)
	r.NoHijackConnPool = true

	// 配置 CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8870", "http://localhost:8888"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// 错误处理
	r.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			hlog.SystemLogger().CtxErrorf(ctx, "[Recovery] err=%v\nstack=%s", err, stack)
			c.JSON(consts.StatusInternalServerError, map[string]interface{}{
				"code":    errno.ServiceErrCode,
				"message": fmt.Sprintf("[Recovery] err=%v\nstack=%s", err, stack),
			})
		})))

	r.Use(handlers.SessionMiddleware())

	register(r)

	r.Spin()
}
