package constants

const (
	// 时间格式
	DataFormate = "2006-01-02 15:04:05"

	// 服务名称
	LiveServiceName   = "Live"
	WorkerServiceName = "Worker"

	// 评论约束
	MaxCommentLength = 500
	MinCommentLength = 1

	// 事件总线每个订阅者的缓冲区大小
	EventBusBufferSize = 64

	// 上传文件名
	OriginalVideoName = "original.mp4"
)
