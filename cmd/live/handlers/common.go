package handlers

import (
	"VidStream.com/cmd/live/service"
	"VidStream.com/pkg/errno"
	"VidStream.com/pkg/eventbus"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Response struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// SendResponse pack response
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	Err := errno.ConvertErr(err)
	c.JSON(consts.StatusOK, Response{
		Code:    Err.ErrCode,
		Message: Err.ErrMsg,
		Data:    data,
	})
}

// 处理器依赖的业务服务，进程启动时注入
var (
	commentService *service.CommentService
	voteService    *service.VoteService
	videoService   *service.VideoService
	commentStream  *service.CommentStreamer
	buses          *eventbus.Registry
)

// Init 注入业务服务
func Init(comments *service.CommentService, votes *service.VoteService,
	videos *service.VideoService, streamer *service.CommentStreamer, registry *eventbus.Registry) {
	commentService = comments
	voteService = votes
	videoService = videos
	commentStream = streamer
	buses = registry
}

type CreateCommentParam struct {
	VideoId  int64  `form:"video_id" json:"video_id"`
	ParentId int64  `form:"parent_id" json:"parent_id"`
	Content  string `form:"content" json:"content"`
}

type ListCommentParam struct {
	VideoId int64 `form:"video_id" json:"video_id" query:"video_id"`
}

type CastVoteParam struct {
	SubjectType string `form:"subject_type" json:"subject_type"`
	SubjectId   int64  `form:"subject_id" json:"subject_id"`
	VoteType    string `form:"vote_type" json:"vote_type"`
}

type UploadVideoParam struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
}

type GetVideoParam struct {
	VideoId int64 `form:"video_id" json:"video_id" query:"video_id"`
}
