package eventbus

import (
	"VidStream.com/cmd/model"
	"VidStream.com/pkg/constants"
)

// Registry 进程内全部事件通道的集合
// 在进程启动时显式构造，通过依赖注入传递给需要的组件，进程退出时随之销毁
type Registry struct {
	CommentAdded   *Bus[*model.CommentWithReplies]
	CommentUpdated *Bus[*model.CommentWithReplies]
	VideoUpdated   *Bus[*model.VideoView]
	VideoProcessed *Bus[*model.Video]
}

// NewRegistry 创建事件通道集合
func NewRegistry() *Registry {
	return &Registry{
		CommentAdded:   NewBus[*model.CommentWithReplies](constants.EventBusBufferSize),
		CommentUpdated: NewBus[*model.CommentWithReplies](constants.EventBusBufferSize),
		VideoUpdated:   NewBus[*model.VideoView](constants.EventBusBufferSize),
		VideoProcessed: NewBus[*model.Video](constants.EventBusBufferSize),
	}
}
