package service

import (
	"context"
	"strings"
	"testing"

	"VidStream.com/pkg/errno"
	"VidStream.com/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentFixture() (*memStore, *eventbus.Registry, *CommentService, *testClock) {
	store := newMemStore()
	buses := eventbus.NewRegistry()
	comments := NewCommentService(store, store, store, buses, nil)
	return store, buses, comments, newTestClock()
}

// TestCreateCommentValidation 测试内容校验
func TestCreateCommentValidation(t *testing.T) {
	store, _, comments, _ := newCommentFixture()
	store.addVideo(42, "tok-42")
	ctx := context.Background()

	_, err := comments.CreateComment(ctx, 42, 0, "   ", "")
	require.Error(t, err)
	assert.Equal(t, int64(errno.RequestErrCode), errno.ConvertErr(err).ErrCode)

	_, err = comments.CreateComment(ctx, 42, 0, strings.Repeat("字", 501), "")
	require.Error(t, err)
	assert.Equal(t, int64(errno.RequestErrCode), errno.ConvertErr(err).ErrCode)

	_, err = comments.CreateComment(ctx, 42, 0, strings.Repeat("字", 500), "")
	assert.NoError(t, err)
}

// TestCreateCommentUnknownVideo 测试视频不存在时拒绝
func TestCreateCommentUnknownVideo(t *testing.T) {
	_, _, comments, _ := newCommentFixture()

	_, err := comments.CreateComment(context.Background(), 42, 0, "hello", "")
	require.Error(t, err)
	assert.Equal(t, int64(errno.RecordNotFoundCode), errno.ConvertErr(err).ErrCode)
}

// TestCreateReplyInvariants 测试回复的父评论约束
func TestCreateReplyInvariants(t *testing.T) {
	store, _, comments, clock := newCommentFixture()
	store.addVideo(42, "tok-42")
	store.addVideo(43, "tok-43")
	parent := store.addComment(clock, 42, 0, "parent")
	foreign := store.addComment(clock, 43, 0, "foreign parent")
	ctx := context.Background()

	// 父评论不存在
	_, err := comments.CreateComment(ctx, 42, 999999, "reply", "")
	require.Error(t, err)
	assert.Equal(t, int64(errno.RecordNotFoundCode), errno.ConvertErr(err).ErrCode)

	// 父评论属于别的视频
	_, err = comments.CreateComment(ctx, 42, foreign.CommentId, "reply", "")
	require.Error(t, err)
	assert.Equal(t, int64(errno.RequestErrCode), errno.ConvertErr(err).ErrCode)

	// 回复不能嵌套
	reply, err := comments.CreateComment(ctx, 42, parent.CommentId, "reply", "")
	require.NoError(t, err)
	_, err = comments.CreateComment(ctx, 42, reply.CommentId, "nested", "")
	require.Error(t, err)
	assert.Equal(t, int64(errno.RequestErrCode), errno.ConvertErr(err).ErrCode)
}

// TestCreateCommentEmitsEvents 测试新评论上CommentAdded，回复同时刷新父评论
func TestCreateCommentEmitsEvents(t *testing.T) {
	store, buses, comments, _ := newCommentFixture()
	store.addVideo(42, "tok-42")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	added := buses.CommentAdded.Subscribe(ctx)
	updated := buses.CommentUpdated.Subscribe(ctx)

	parent, err := comments.CreateComment(ctx, 42, 0, "parent", "")
	require.NoError(t, err)
	envelope := <-added
	assert.Equal(t, parent.CommentId, envelope.Data.CommentId)

	reply, err := comments.CreateComment(ctx, 42, parent.CommentId, "reply", "")
	require.NoError(t, err)

	envelope = <-added
	assert.Equal(t, reply.CommentId, envelope.Data.CommentId)

	// 父评论的聚合视图带上了新回复
	parentEnvelope := <-updated
	assert.Equal(t, parent.CommentId, parentEnvelope.Data.CommentId)
	require.Len(t, parentEnvelope.Data.Replies, 1)
	assert.Equal(t, reply.CommentId, parentEnvelope.Data.Replies[0].CommentId)
}

// TestListCommentTree 测试评论树装配：顶级倒序，回复挂在父评论下
func TestListCommentTree(t *testing.T) {
	store, _, comments, clock := newCommentFixture()
	store.addVideo(42, "tok-42")
	first := store.addComment(clock, 42, 0, "first")
	second := store.addComment(clock, 42, 0, "second")
	store.addComment(clock, 42, first.CommentId, "reply to first")

	tree, err := comments.ListCommentTree(context.Background(), 42, "")
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, second.CommentId, tree[0].CommentId)
	assert.Equal(t, first.CommentId, tree[1].CommentId)
	require.Len(t, tree[1].Replies, 1)
	assert.Equal(t, "reply to first", tree[1].Replies[0].Content)
}

// TestCountComments 测试评论总数统计包含回复
func TestCountComments(t *testing.T) {
	store, _, comments, clock := newCommentFixture()
	store.addVideo(42, "tok-42")
	store.addVideo(43, "tok-43")
	ctx := context.Background()

	parent := store.addComment(clock, 42, 0, "top")
	store.addComment(clock, 42, parent.CommentId, "reply")
	store.addComment(clock, 43, 0, "other video")

	count, err := comments.CountComments(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
