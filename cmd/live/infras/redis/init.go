package redis

import (
	"context"

	"VidStream.com/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"
)

var redisDBCommentInfo *redis.Client

func Load() {
	redisDBCommentInfo = redis.NewClient(&redis.Options{
		Addr:     config.ConfigInfo.Redis.Addr,
		Password: config.ConfigInfo.Redis.Password,
		DB:       0,
	})

	if _, err := redisDBCommentInfo.Ping(context.Background()).Result(); err != nil {
		hlog.Info("redisDBCommentInfo", err)
	}
}

// GetCommentClient 获取评论缓存使用的redis客户端
func GetCommentClient() *redis.Client {
	return redisDBCommentInfo
}
