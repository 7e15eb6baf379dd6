package handlers

import (
	"context"

	"VidStream.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
)

// UploadVideo 登记新视频并派发处理任务
func UploadVideo(ctx context.Context, c *app.RequestContext) {
	var param UploadVideoParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	video, err := videoService.UploadVideo(ctx, param.Title, param.Description)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, video)
}

// GetVideo 查询带派生计数的视频视图
func GetVideo(ctx context.Context, c *app.RequestContext) {
	var param GetVideoParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	view, err := videoService.LoadVideoView(ctx, param.VideoId, GetSessionId(c))
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, view)
}
