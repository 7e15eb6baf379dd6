package service

import (
	"context"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/eventbus"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// CommentFrame 订阅流投递给单个订阅者的一帧
// Err非空表示该订阅者的流因本地错误终止，其他订阅者不受影响
type CommentFrame struct {
	ID   int64                     `json:"id"`
	Data *model.CommentWithReplies `json:"data,omitempty"`
	Err  error                     `json:"-"`
}

// CommentStreamer 断点续传的评论订阅流
// 先补发游标之后的历史，再转入实时转发，两段之间靠水位线去重
type CommentStreamer struct {
	store    CommentStore
	comments *CommentService
	buses    *eventbus.Registry
}

func NewCommentStreamer(store CommentStore, comments *CommentService, buses *eventbus.Registry) *CommentStreamer {
	return &CommentStreamer{store: store, comments: comments, buses: buses}
}

// watermark 已投递位置的水位线，(创建时间,ID)双键避免同一时刻多条时漏发或重发
type watermark struct {
	createdAt string
	id        int64
}

func (w *watermark) covers(createdAt string, id int64) bool {
	if w.createdAt == "" && w.id == 0 {
		return false
	}
	if createdAt != w.createdAt {
		return createdAt < w.createdAt
	}
	return id <= w.id
}

func (w *watermark) advance(createdAt string, id int64) {
	w.createdAt = createdAt
	w.id = id
}

// Stream 订阅某一视频的评论流
// lastEventId为客户端已见的最新评论ID，为0表示从头补发全部历史
func (s *CommentStreamer) Stream(ctx context.Context, videoId, lastEventId int64) <-chan *CommentFrame {
	out := make(chan *CommentFrame)

	// 实时订阅必须先于补发查询建立，否则两者之间创建的评论会漏掉
	live := s.buses.CommentAdded.Subscribe(ctx)

	go func() {
		defer close(out)

		var wm watermark

		// 游标换算：客户端给的是最后见到的评论ID，换算成它的创建时间
		// 该评论已不存在或未给游标时，补发覆盖全部历史
		cursorCreatedAt := ""
		if lastEventId != 0 {
			if cursorEntity, err := s.store.GetComment(ctx, lastEventId); err == nil {
				cursorCreatedAt = cursorEntity.CreatedAt
				wm.advance(cursorEntity.CreatedAt, cursorEntity.CommentId)
			} else {
				hlog.Warnf("Cursor comment %d not found, replaying full history: %v", lastEventId, err)
			}
		}

		var catchUp []*model.Comment
		var err error
		if cursorCreatedAt == "" {
			catchUp, err = s.store.ListTopLevelComments(ctx, videoId)
		} else {
			catchUp, err = s.store.ListTopLevelCommentsAfter(ctx, videoId, cursorCreatedAt)
		}
		if err != nil {
			// 本订阅者的流以一帧错误收尾，不影响总线上的其他订阅者
			emitFrame(ctx, out, &CommentFrame{Err: err})
			return
		}

		for _, comment := range catchUp {
			if wm.covers(comment.CreatedAt, comment.CommentId) {
				continue
			}
			fragment, err := s.comments.BuildCommentWithReplies(ctx, comment, "")
			if err != nil {
				emitFrame(ctx, out, &CommentFrame{Err: err})
				return
			}
			if !emitFrame(ctx, out, &CommentFrame{ID: comment.CommentId, Data: fragment}) {
				return
			}
			wm.advance(comment.CreatedAt, comment.CommentId)
		}

		// 转入实时转发
		for {
			select {
			case <-ctx.Done():
				return
			case envelope, ok := <-live:
				if !ok {
					return
				}
				fragment := envelope.Data
				if fragment == nil || fragment.VideoId != videoId {
					continue
				}
				// 补发和实时重叠窗口内的重复靠水位线丢弃
				if wm.covers(fragment.CreatedAt, fragment.CommentId) {
					continue
				}
				if fragment.IsReply() {
					// 回复在投递前复核父评论仍属于订阅的视频
					parent, err := s.store.GetComment(ctx, fragment.ParentId)
					if err != nil || parent.VideoId != videoId {
						hlog.Warnf("Dropping reply %d: parent %d not in video %d", fragment.CommentId, fragment.ParentId, videoId)
						continue
					}
				}
				if !emitFrame(ctx, out, &CommentFrame{ID: fragment.CommentId, Data: fragment}) {
					return
				}
				wm.advance(fragment.CreatedAt, fragment.CommentId)
			}
		}
	}()

	return out
}

func emitFrame(ctx context.Context, out chan<- *CommentFrame, frame *CommentFrame) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- frame:
		return true
	}
}
