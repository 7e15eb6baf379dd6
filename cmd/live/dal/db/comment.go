package db

import (
	"context"

	"VidStream.com/cmd/model"
	"github.com/pkg/errors"
)

// CreateComment 创建评论
func CreateComment(ctx context.Context, comment *model.Comment) error {
	if err := DB.WithContext(ctx).Create(comment).Error; err != nil {
		return errors.Wrapf(err, "CreateComment failed,err:%v", err)
	}
	return nil
}

// GetComment 根据ID查询单条评论
func GetComment(ctx context.Context, commentId int64) (*model.Comment, error) {
	var comment model.Comment
	err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("comment_id=?", commentId).First(&comment).Error
	if err != nil {
		return nil, errors.Wrapf(err, "GetComment failed,err:%v", err)
	}
	return &comment, nil
}

// ListTopLevelComments 查询视频下的顶层评论，按创建时间升序
func ListTopLevelComments(ctx context.Context, videoId int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("video_id=? And parent_id=0", videoId).
		Order("created_at asc, comment_id asc").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrapf(err, "ListTopLevelComments failed,err:%v", err)
	}
	return comments, nil
}

// ListTopLevelCommentsAfter 查询某一时间点之后的顶层评论，用于断线重连后的补发
func ListTopLevelCommentsAfter(ctx context.Context, videoId int64, createdAt string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("video_id=? And parent_id=0 And created_at>?", videoId, createdAt).
		Order("created_at asc, comment_id asc").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrapf(err, "ListTopLevelCommentsAfter failed,err:%v", err)
	}
	return comments, nil
}

// ListReplies 查询某条评论下的全部回复，按创建时间升序
func ListReplies(ctx context.Context, parentId int64) ([]*model.Comment, error) {
	var replies []*model.Comment
	err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("parent_id=?", parentId).
		Order("created_at asc, comment_id asc").
		Find(&replies).Error
	if err != nil {
		return nil, errors.Wrapf(err, "ListReplies failed,err:%v", err)
	}
	return replies, nil
}

// CountComments 统计视频下的评论总数
func CountComments(ctx context.Context, videoId int64) (int64, error) {
	var count int64
	err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("video_id=?", videoId).Count(&count).Error
	if err != nil {
		return 0, errors.Wrapf(err, "CountComments failed,err:%v", err)
	}
	return count, nil
}
