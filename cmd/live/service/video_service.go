package service

import (
	"context"
	"path"
	"strings"
	"time"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/constants"
	"VidStream.com/pkg/errno"
	"VidStream.com/pkg/eventbus"
	"VidStream.com/pkg/mq"
	"VidStream.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// VideoService 视频上传登记与处理任务分发
type VideoService struct {
	store      VideoStore
	votes      VoteStore
	producer   mq.MessageProducer
	reconciler *Reconciler
	buses      *eventbus.Registry
}

func NewVideoService(store VideoStore, votes VoteStore, producer mq.MessageProducer,
	reconciler *Reconciler, buses *eventbus.Registry) *VideoService {
	return &VideoService{store: store, votes: votes, producer: producer, reconciler: reconciler, buses: buses}
}

// UploadVideo 登记视频行和任务行，注册待完成任务集，再逐一投递处理任务
// 目录标识用uuid生成，在视频行可见之前就能标识它的处理产物
func (service *VideoService) UploadVideo(ctx context.Context, title, description string) (*model.Video, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errno.RequestErr.WithMessage("Video title cannot be empty")
	}

	token := uuid.New().String()
	filePath := path.Join("videos", token, constants.OriginalVideoName)
	now := time.Now().Format(constants.DataFormate)

	video := &model.Video{
		VideoId:     utils.GenerateVideoID(),
		Title:       title,
		Description: description,
		VideoUrl:    filePath,
		Status:      model.VideoStatusPending,
		Processed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	taskTypes := mq.AllTaskTypes()
	tasks := make([]*model.VideoTask, 0, len(taskTypes))
	for _, taskType := range taskTypes {
		tasks = append(tasks, &model.VideoTask{
			VideoTaskId: utils.GenerateTaskID(),
			VideoId:     video.VideoId,
			TaskType:    string(taskType),
			Status:      model.TaskStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := service.store.CreateVideoWithTasks(ctx, video, tasks); err != nil {
		return nil, errors.WithMessage(err, "Failed to create video")
	}

	// 任务投递前登记待完成集，保证完成消息先到也有处可记
	service.reconciler.RegisterTasks(token, taskTypes)

	for _, taskType := range taskTypes {
		msg := &mq.VideoTaskMessage{
			VideoID:    video.VideoId,
			TaskType:   taskType,
			FilePath:   filePath,
			OutputPath: path.Join("videos", token),
			Config:     mq.DefaultTaskConfig(),
		}
		if err := service.producer.PublishTask(ctx, msg); err != nil {
			hlog.Errorf("Failed to publish %s task for video %d: %v", taskType, video.VideoId, err)
			return nil, errors.WithMessage(err, "Failed to dispatch processing task")
		}
	}

	hlog.Infof("Video %d registered, %d processing tasks dispatched (token %s)", video.VideoId, len(taskTypes), token)
	return video, nil
}

// LoadVideoView 装配带派生计数的视频视图
func (service *VideoService) LoadVideoView(ctx context.Context, videoId int64, sessionId string) (*model.VideoView, error) {
	video, err := service.store.FindVideo(ctx, videoId)
	if err != nil {
		return nil, errno.RecordNotFoundErr.WithMessage("Video not found")
	}

	votes, err := service.votes.ListVotes(ctx, model.SubjectTypeVideo, videoId)
	if err != nil {
		return nil, errors.WithMessage(err, "Failed to load votes")
	}
	likes, dislikes, myVote := ComputeTally(votes, sessionId)

	return &model.VideoView{
		Video:         *video,
		LikesCount:    likes,
		DislikesCount: dislikes,
		MyVote:        myVote,
	}, nil
}
