package service

import (
	"context"
	"testing"
	"time"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamFixture() (*memStore, *eventbus.Registry, *CommentService, *CommentStreamer, *testClock) {
	store := newMemStore()
	buses := eventbus.NewRegistry()
	comments := NewCommentService(store, store, store, buses, nil)
	streamer := NewCommentStreamer(store, comments, buses)
	return store, buses, comments, streamer, newTestClock()
}

func collectFrames(t *testing.T, ch <-chan *CommentFrame, n int) []*CommentFrame {
	t.Helper()
	frames := make([]*CommentFrame, 0, n)
	for len(frames) < n {
		select {
		case frame, ok := <-ch:
			require.True(t, ok, "stream closed before delivering %d frames", n)
			require.NoError(t, frame.Err)
			frames = append(frames, frame)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for frame %d of %d", len(frames)+1, n)
		}
	}
	return frames
}

func assertNoFrame(t *testing.T, ch <-chan *CommentFrame) {
	t.Helper()
	select {
	case frame := <-ch:
		t.Fatalf("unexpected frame: %+v", frame)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestStreamCatchUpFromScratch 测试无游标订阅补发全部历史，游标严格递增
func TestStreamCatchUpFromScratch(t *testing.T) {
	store, _, _, streamer, clock := newStreamFixture()
	store.addVideo(42, "tok-42")
	c1 := store.addComment(clock, 42, 0, "one")
	c2 := store.addComment(clock, 42, 0, "two")
	c3 := store.addComment(clock, 42, 0, "three")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := collectFrames(t, streamer.Stream(ctx, 42, 0), 3)
	assert.Equal(t, []int64{c1.CommentId, c2.CommentId, c3.CommentId},
		[]int64{frames[0].ID, frames[1].ID, frames[2].ID})
	for i := 1; i < len(frames); i++ {
		assert.Greater(t, frames[i].ID, frames[i-1].ID, "cursors must be strictly increasing")
	}
}

// TestStreamResumeFromCursor 测试从游标续传只补发之后的评论
func TestStreamResumeFromCursor(t *testing.T) {
	store, _, _, streamer, clock := newStreamFixture()
	store.addVideo(42, "tok-42")
	store.addComment(clock, 42, 0, "one")
	c2 := store.addComment(clock, 42, 0, "two")
	c3 := store.addComment(clock, 42, 0, "three")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := streamer.Stream(ctx, 42, c2.CommentId)
	frames := collectFrames(t, out, 1)
	assert.Equal(t, c3.CommentId, frames[0].ID)
	assertNoFrame(t, out)
}

// TestStreamUnknownCursorReplaysAll 测试游标对应的评论已不存在时补发全部历史
func TestStreamUnknownCursorReplaysAll(t *testing.T) {
	store, _, _, streamer, clock := newStreamFixture()
	store.addVideo(42, "tok-42")
	store.addComment(clock, 42, 0, "one")
	store.addComment(clock, 42, 0, "two")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := collectFrames(t, streamer.Stream(ctx, 42, 999999999), 2)
	assert.Len(t, frames, 2)
}

// TestStreamNoDuplicateAcrossOverlap 测试补发和实时重叠窗口内同一评论只投递一次
func TestStreamNoDuplicateAcrossOverlap(t *testing.T) {
	store, buses, comments, streamer, clock := newStreamFixture()
	store.addVideo(42, "tok-42")
	store.addComment(clock, 42, 0, "one")
	c2 := store.addComment(clock, 42, 0, "two")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := streamer.Stream(ctx, 42, 0)

	// 订阅已建立，补发查询也会覆盖c2：在实时通道上重放同一条评论
	dup, err := comments.BuildCommentWithReplies(ctx, c2, "")
	require.NoError(t, err)
	buses.CommentAdded.Emit(c2.CommentId, dup)

	frames := collectFrames(t, out, 2)
	seen := map[int64]int{}
	for _, frame := range frames {
		seen[frame.ID]++
	}
	assert.Equal(t, 1, seen[c2.CommentId], "overlap between catch-up and live must not duplicate")
	assertNoFrame(t, out)
}

// TestStreamEndToEnd 端到端：补发3条历史，实时收到新评论，再收到挂在它下面的回复
func TestStreamEndToEnd(t *testing.T) {
	store, _, comments, streamer, clock := newStreamFixture()
	store.addVideo(42, "tok-42")
	store.addComment(clock, 42, 0, "one")
	store.addComment(clock, 42, 0, "two")
	store.addComment(clock, 42, 0, "three")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := streamer.Stream(ctx, 42, 0)
	frames := collectFrames(t, out, 3)

	// 新顶级评论实时到达，游标比补发的都新
	hello, err := comments.CreateComment(ctx, 42, 0, "hello", "")
	require.NoError(t, err)
	liveFrames := collectFrames(t, out, 1)
	assert.Equal(t, hello.CommentId, liveFrames[0].ID)
	assert.Greater(t, liveFrames[0].ID, frames[2].ID)
	assert.Equal(t, "hello", liveFrames[0].Data.Content)

	// 回复实时到达，父指向hello
	reply, err := comments.CreateComment(ctx, 42, hello.CommentId, "hi back", "")
	require.NoError(t, err)
	replyFrames := collectFrames(t, out, 1)
	assert.Equal(t, reply.CommentId, replyFrames[0].ID)
	assert.Equal(t, hello.CommentId, replyFrames[0].Data.ParentId)
}

// TestStreamScopeFiltering 测试其他视频的事件不进入本订阅
func TestStreamScopeFiltering(t *testing.T) {
	store, _, comments, streamer, clock := newStreamFixture()
	store.addVideo(42, "tok-42")
	store.addVideo(43, "tok-43")
	store.addComment(clock, 43, 0, "other video")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := streamer.Stream(ctx, 42, 0)

	_, err := comments.CreateComment(ctx, 43, 0, "still other video", "")
	require.NoError(t, err)
	assertNoFrame(t, out)

	mine, err := comments.CreateComment(ctx, 42, 0, "mine", "")
	require.NoError(t, err)
	frames := collectFrames(t, out, 1)
	assert.Equal(t, mine.CommentId, frames[0].ID)
}

// TestStreamDropsReplyWithForeignParent 测试父评论不属于订阅视频的回复被拦下
func TestStreamDropsReplyWithForeignParent(t *testing.T) {
	store, buses, _, streamer, clock := newStreamFixture()
	store.addVideo(42, "tok-42")
	store.addVideo(43, "tok-43")
	foreignParent := store.addComment(clock, 43, 0, "foreign parent")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := streamer.Stream(ctx, 42, 0)

	// 构造一个声称属于视频42但父评论在视频43的回复
	bogus := &model.CommentWithReplies{
		CommentView: model.CommentView{
			Comment: model.Comment{
				CommentId: 987654321,
				VideoId:   42,
				ParentId:  foreignParent.CommentId,
				Content:   "confused reply",
				CreatedAt: clock.timestamp(),
			},
		},
	}
	buses.CommentAdded.Emit(bogus.CommentId, bogus)
	assertNoFrame(t, out)
}

// TestStreamCancellationClosesStream 测试取消订阅后流关闭
func TestStreamCancellationClosesStream(t *testing.T) {
	store, _, _, streamer, _ := newStreamFixture()
	store.addVideo(42, "tok-42")

	ctx, cancel := context.WithCancel(context.Background())
	out := streamer.Stream(ctx, 42, 0)
	cancel()

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after cancellation")
	}
}
