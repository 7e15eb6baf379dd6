package service

import (
	"context"

	"VidStream.com/cmd/model"
)

// 业务层只依赖这些窄接口，生产环境由db.Store实现，测试用内存实现

// CommentStore 评论数据访问
type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, commentId int64) (*model.Comment, error)
	CountComments(ctx context.Context, videoId int64) (int64, error)
	ListTopLevelComments(ctx context.Context, videoId int64) ([]*model.Comment, error)
	ListTopLevelCommentsAfter(ctx context.Context, videoId int64, createdAt string) ([]*model.Comment, error)
	ListReplies(ctx context.Context, parentId int64) ([]*model.Comment, error)
}

// VoteStore 投票数据访问
type VoteStore interface {
	UpsertVote(ctx context.Context, subjectType string, subjectId int64, sessionId, voteType string) error
	ListVotes(ctx context.Context, subjectType string, subjectId int64) ([]*model.Vote, error)
}

// VideoStore 视频及处理任务数据访问
type VideoStore interface {
	CreateVideoWithTasks(ctx context.Context, video *model.Video, tasks []*model.VideoTask) error
	FindVideo(ctx context.Context, videoId int64) (*model.Video, error)
	FindVideoByPathToken(ctx context.Context, token string) (*model.Video, error)
	MarkVideoProcessed(ctx context.Context, videoId int64) error
	UpdateTaskStatus(ctx context.Context, videoId int64, taskType, status string) error
}
