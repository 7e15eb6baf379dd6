package db

import (
	"context"
	"time"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/constants"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CreateVideoWithTasks 在一个事务内创建视频行和它的处理任务行
func CreateVideoWithTasks(ctx context.Context, video *model.Video, tasks []*model.VideoTask) error {
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(video).Error; err != nil {
			return err
		}
		for _, task := range tasks {
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "CreateVideoWithTasks failed,err:%v", err)
	}
	return nil
}

// FindVideo 根据ID查询视频
func FindVideo(ctx context.Context, videoId int64) (*model.Video, error) {
	var video model.Video
	err := DB.WithContext(ctx).Model(&model.Video{}).
		Where("video_id=?", videoId).First(&video).Error
	if err != nil {
		return nil, errors.Wrapf(err, "FindVideo failed,err:%v", err)
	}
	return &video, nil
}

// FindVideoByPathToken 根据存储目录标识模糊匹配视频行，未命中时返回nil
func FindVideoByPathToken(ctx context.Context, token string) (*model.Video, error) {
	var video model.Video
	err := DB.WithContext(ctx).Model(&model.Video{}).
		Where("video_url like ?", "%"+token+"%").First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "FindVideoByPathToken failed,err:%v", err)
	}
	return &video, nil
}

// MarkVideoProcessed 标记视频处理完成
func MarkVideoProcessed(ctx context.Context, videoId int64) error {
	now := time.Now().Format(constants.DataFormate)
	err := DB.WithContext(ctx).Model(&model.Video{}).
		Where("video_id=?", videoId).
		Updates(map[string]interface{}{
			"processed":  true,
			"status":     model.VideoStatusCompleted,
			"updated_at": now,
		}).Error
	if err != nil {
		return errors.Wrapf(err, "MarkVideoProcessed failed,err:%v", err)
	}
	return nil
}

// UpdateTaskStatus 更新某一视频某类任务的状态
func UpdateTaskStatus(ctx context.Context, videoId int64, taskType, status string) error {
	now := time.Now().Format(constants.DataFormate)
	err := DB.WithContext(ctx).Model(&model.VideoTask{}).
		Where("video_id=? And task_type=?", videoId, taskType).
		Updates(map[string]interface{}{"status": status, "updated_at": now}).Error
	if err != nil {
		return errors.Wrapf(err, "UpdateTaskStatus failed,err:%v", err)
	}
	return nil
}
