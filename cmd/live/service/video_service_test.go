package service

import (
	"context"
	"testing"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/errno"
	"VidStream.com/pkg/eventbus"
	"VidStream.com/pkg/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUploadVideoDispatchesTasks 测试上传登记视频行、任务行并投递全部子任务
func TestUploadVideoDispatchesTasks(t *testing.T) {
	store := newMemStore()
	buses := eventbus.NewRegistry()
	producer := &recordingProducer{}
	reconciler := NewReconciler(store, buses)
	videos := NewVideoService(store, store, producer, reconciler, buses)
	ctx := context.Background()

	video, err := videos.UploadVideo(ctx, "my video", "desc")
	require.NoError(t, err)
	assert.Equal(t, model.VideoStatusPending, video.Status)
	assert.False(t, video.Processed)

	// 三类子任务各投递一条，文件路径都指向同一个目录令牌
	require.Len(t, producer.tasks, 3)
	token := mq.DirectoryToken(video.VideoUrl)
	types := map[mq.TaskType]bool{}
	for _, task := range producer.tasks {
		types[task.TaskType] = true
		assert.Equal(t, video.VideoId, task.VideoID)
		assert.Equal(t, token, mq.DirectoryToken(task.FilePath))
	}
	assert.Len(t, types, 3)

	// 待完成集在投递前登记
	assert.Equal(t, 3, reconciler.OutstandingCount(token))

	// 任务行落库
	for _, taskType := range mq.AllTaskTypes() {
		assert.Equal(t, model.TaskStatusPending, store.taskStatus(video.VideoId, string(taskType)))
	}
}

// TestUploadVideoRequiresTitle 测试空标题被拒绝
func TestUploadVideoRequiresTitle(t *testing.T) {
	store := newMemStore()
	buses := eventbus.NewRegistry()
	videos := NewVideoService(store, store, &recordingProducer{}, NewReconciler(store, buses), buses)

	_, err := videos.UploadVideo(context.Background(), "   ", "")
	require.Error(t, err)
	assert.Equal(t, int64(errno.RequestErrCode), errno.ConvertErr(err).ErrCode)
}

// TestUploadThenReconcile 上传派发的任务全部完成后视频翻转为processed
func TestUploadThenReconcile(t *testing.T) {
	store := newMemStore()
	buses := eventbus.NewRegistry()
	producer := &recordingProducer{}
	reconciler := NewReconciler(store, buses)
	videos := NewVideoService(store, store, producer, reconciler, buses)
	ctx := context.Background()

	video, err := videos.UploadVideo(ctx, "my video", "")
	require.NoError(t, err)

	for _, task := range producer.tasks {
		msg := &mq.VideoCompletionMessage{
			TaskType:   task.TaskType,
			FilePath:   task.FilePath,
			OutputPath: task.OutputPath,
			Status:     mq.CompletionStatusCompleted,
		}
		require.NoError(t, reconciler.HandleCompletion(ctx, msg))
	}

	final, _ := store.FindVideo(ctx, video.VideoId)
	assert.True(t, final.Processed)
	assert.Equal(t, model.VideoStatusCompleted, final.Status)
}

// TestLoadVideoView 测试视频视图带派生计数
func TestLoadVideoView(t *testing.T) {
	store := newMemStore()
	buses := eventbus.NewRegistry()
	videos := NewVideoService(store, store, &recordingProducer{}, NewReconciler(store, buses), buses)
	ctx := context.Background()
	store.addVideo(42, "tok-42")

	require.NoError(t, store.UpsertVote(ctx, model.SubjectTypeVideo, 42, "a", model.VoteTypeLike))
	require.NoError(t, store.UpsertVote(ctx, model.SubjectTypeVideo, 42, "b", model.VoteTypeDislike))

	view, err := videos.LoadVideoView(ctx, 42, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.LikesCount)
	assert.Equal(t, int64(1), view.DislikesCount)
	assert.Equal(t, model.VoteTypeLike, view.MyVote)
}
