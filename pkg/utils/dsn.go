package utils

import (
	"os"
	"strings"

	"VidStream.com/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func GetMysqlDsn() string {
	//生成数据库的dsn
	hlog.Info(config.ConfigInfo.Mysql.Username, ",", config.ConfigInfo.Mysql.Addr)
	dsn := strings.Join([]string{config.ConfigInfo.Mysql.Username, ":",
		config.ConfigInfo.Mysql.Password, "@tcp(", config.ConfigInfo.Mysql.Addr, ")/",
		config.ConfigInfo.Mysql.Database, "?charset=" + config.ConfigInfo.Mysql.Charset + "&parseTime=true"}, "")

	return dsn
}

func GetRabbitMqUrl() string {
	// 从环境变量或配置文件获取RabbitMQ连接URL
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}
	return strings.Join([]string{"amqp://", config.ConfigInfo.RabbitMq.Username, ":",
		config.ConfigInfo.RabbitMq.Password, "@", config.ConfigInfo.RabbitMq.Addr, "/"}, "")
}
