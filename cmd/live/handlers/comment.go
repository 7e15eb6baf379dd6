package handlers

import (
	"context"

	"VidStream.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
)

// CreateComment 创建评论或回复
func CreateComment(ctx context.Context, c *app.RequestContext) {
	var param CreateCommentParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	fragment, err := commentService.CreateComment(ctx, param.VideoId, param.ParentId, param.Content, GetSessionId(c))
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, fragment)
}

// ListComments 查询视频的聚合评论树
func ListComments(ctx context.Context, c *app.RequestContext) {
	var param ListCommentParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	tree, err := commentService.ListCommentTree(ctx, param.VideoId, GetSessionId(c))
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	total, err := commentService.CountComments(ctx, param.VideoId)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, map[string]interface{}{
		"total":    total,
		"comments": tree,
	})
}
