package db

import (
	"context"

	"VidStream.com/cmd/model"
)

// Store 将包级DAL函数收拢为可注入的依赖，业务层只面向接口
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	return CreateComment(ctx, comment)
}

func (s *Store) GetComment(ctx context.Context, commentId int64) (*model.Comment, error) {
	return GetComment(ctx, commentId)
}

func (s *Store) CountComments(ctx context.Context, videoId int64) (int64, error) {
	return CountComments(ctx, videoId)
}

func (s *Store) ListTopLevelComments(ctx context.Context, videoId int64) ([]*model.Comment, error) {
	return ListTopLevelComments(ctx, videoId)
}

func (s *Store) ListTopLevelCommentsAfter(ctx context.Context, videoId int64, createdAt string) ([]*model.Comment, error) {
	return ListTopLevelCommentsAfter(ctx, videoId, createdAt)
}

func (s *Store) ListReplies(ctx context.Context, parentId int64) ([]*model.Comment, error) {
	return ListReplies(ctx, parentId)
}

func (s *Store) UpsertVote(ctx context.Context, subjectType string, subjectId int64, sessionId, voteType string) error {
	return UpsertVote(ctx, subjectType, subjectId, sessionId, voteType)
}

func (s *Store) ListVotes(ctx context.Context, subjectType string, subjectId int64) ([]*model.Vote, error) {
	return ListVotes(ctx, subjectType, subjectId)
}

func (s *Store) CreateVideoWithTasks(ctx context.Context, video *model.Video, tasks []*model.VideoTask) error {
	return CreateVideoWithTasks(ctx, video, tasks)
}

func (s *Store) FindVideo(ctx context.Context, videoId int64) (*model.Video, error) {
	return FindVideo(ctx, videoId)
}

func (s *Store) FindVideoByPathToken(ctx context.Context, token string) (*model.Video, error) {
	return FindVideoByPathToken(ctx, token)
}

func (s *Store) MarkVideoProcessed(ctx context.Context, videoId int64) error {
	return MarkVideoProcessed(ctx, videoId)
}

func (s *Store) UpdateTaskStatus(ctx context.Context, videoId int64, taskType, status string) error {
	return UpdateTaskStatus(ctx, videoId, taskType, status)
}
