package handlers

import (
	"context"

	"VidStream.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
)

// CastVote 投票，响应携带最新派生计数
func CastVote(ctx context.Context, c *app.RequestContext) {
	var param CastVoteParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	tally, err := voteService.CastVote(ctx, param.SubjectType, param.SubjectId, GetSessionId(c), param.VoteType)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success, tally)
}
