package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/cache"
	"VidStream.com/pkg/constants"
	"VidStream.com/pkg/errno"
	"VidStream.com/pkg/eventbus"
	"VidStream.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// CommentService 评论写入与视图装配，cache可为nil（测试环境）
type CommentService struct {
	store  CommentStore
	votes  VoteStore
	videos VideoStore
	buses  *eventbus.Registry
	cache  *cache.CommentCacheManager
}

func NewCommentService(store CommentStore, votes VoteStore, videos VideoStore, buses *eventbus.Registry,
	cacheManager *cache.CommentCacheManager) *CommentService {
	return &CommentService{store: store, votes: votes, videos: videos, buses: buses, cache: cacheManager}
}

// validateCommentContent 校验评论内容
func (service *CommentService) validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errno.RequestErr.WithMessage("Comment content cannot be empty")
	}

	contentLength := utf8.RuneCountInString(content)
	if contentLength < constants.MinCommentLength {
		return errno.RequestErr.WithMessage("Comment too short")
	}
	if contentLength > constants.MaxCommentLength {
		return errno.RequestErr.WithMessage("Comment too long, maximum 500 characters allowed")
	}

	return nil
}

// CreateComment 创建评论或回复，成功后通过事件总线推送给在线订阅者
func (service *CommentService) CreateComment(ctx context.Context, videoId, parentId int64, content, sessionId string) (*model.CommentWithReplies, error) {
	if err := service.validateCommentContent(content); err != nil {
		return nil, err
	}

	if _, err := service.videos.FindVideo(ctx, videoId); err != nil {
		return nil, errno.RecordNotFoundErr.WithMessage("Video not found")
	}

	if parentId != 0 {
		// 回复只允许挂在同一视频的顶级评论下
		parent, err := service.store.GetComment(ctx, parentId)
		if err != nil {
			return nil, errno.RecordNotFoundErr.WithMessage("Parent comment not found")
		}
		if parent.VideoId != videoId {
			return nil, errno.RequestErr.WithMessage("Parent comment belongs to a different video")
		}
		if parent.IsReply() {
			return nil, errno.RequestErr.WithMessage("Replies cannot be nested")
		}
	}

	now := time.Now().Format(constants.DataFormate)
	comment := &model.Comment{
		CommentId: utils.GenerateCommentID(),
		VideoId:   videoId,
		ParentId:  parentId,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := service.store.CreateComment(ctx, comment); err != nil {
		return nil, errors.WithMessage(err, "Failed to create comment")
	}

	if service.cache != nil {
		if err := service.cache.IncrementVideoCommentCount(ctx, videoId, 1); err != nil {
			hlog.Warnf("Failed to bump comment count for video %d: %v", videoId, err)
		}
	}

	fragment, err := service.BuildCommentWithReplies(ctx, comment, sessionId)
	if err != nil {
		return nil, err
	}

	// 新评论和回复都走CommentAdded通道，订阅端自行挂树
	service.buses.CommentAdded.Emit(comment.CommentId, fragment)

	if parentId != 0 {
		// 回复同时刷新父评论的聚合视图
		if parentFragment, err := service.LoadCommentWithReplies(ctx, parentId, sessionId); err == nil {
			service.buses.CommentUpdated.Emit(comment.CommentId, parentFragment)
		}
	}

	return fragment, nil
}

// LoadCommentWithReplies 按ID装配顶级评论及其回复
func (service *CommentService) LoadCommentWithReplies(ctx context.Context, commentId int64, sessionId string) (*model.CommentWithReplies, error) {
	comment, err := service.store.GetComment(ctx, commentId)
	if err != nil {
		return nil, errors.WithMessage(err, "Failed to load comment")
	}
	return service.BuildCommentWithReplies(ctx, comment, sessionId)
}

// BuildCommentWithReplies 为评论补齐派生计数和回复列表
func (service *CommentService) BuildCommentWithReplies(ctx context.Context, comment *model.Comment, sessionId string) (*model.CommentWithReplies, error) {
	view, err := service.buildView(ctx, comment, sessionId)
	if err != nil {
		return nil, err
	}

	fragment := &model.CommentWithReplies{CommentView: *view, Replies: []*model.CommentView{}}

	if !comment.IsReply() {
		replies, err := service.store.ListReplies(ctx, comment.CommentId)
		if err != nil {
			return nil, errors.WithMessage(err, "Failed to load replies")
		}
		for _, reply := range replies {
			replyView, err := service.buildView(ctx, reply, sessionId)
			if err != nil {
				return nil, err
			}
			fragment.Replies = append(fragment.Replies, replyView)
		}
	}

	return fragment, nil
}

// ListCommentTree 装配视频下的完整评论树，顶级评论按创建时间倒序
func (service *CommentService) ListCommentTree(ctx context.Context, videoId int64, sessionId string) ([]*model.CommentWithReplies, error) {
	topLevel, err := service.store.ListTopLevelComments(ctx, videoId)
	if err != nil {
		return nil, errors.WithMessage(err, "Failed to list comments")
	}

	tree := make([]*model.CommentWithReplies, 0, len(topLevel))
	for i := len(topLevel) - 1; i >= 0; i-- {
		fragment, err := service.BuildCommentWithReplies(ctx, topLevel[i], sessionId)
		if err != nil {
			return nil, err
		}
		tree = append(tree, fragment)
	}
	return tree, nil
}

// CountComments 视频下的评论总数（含回复），优先读计数缓存
func (service *CommentService) CountComments(ctx context.Context, videoId int64) (int64, error) {
	if service.cache != nil {
		if count, err := service.cache.GetVideoCommentCount(ctx, videoId); err == nil && count >= 0 {
			return count, nil
		}
	}

	count, err := service.store.CountComments(ctx, videoId)
	if err != nil {
		return 0, errors.WithMessage(err, "Failed to count comments")
	}
	if service.cache != nil {
		if err := service.cache.SetVideoCommentCount(ctx, videoId, count); err != nil {
			hlog.Warnf("Failed to cache comment count for video %d: %v", videoId, err)
		}
	}
	return count, nil
}

func (service *CommentService) buildView(ctx context.Context, comment *model.Comment, sessionId string) (*model.CommentView, error) {
	if sessionId == "" && service.cache != nil {
		// 无会话时不需要MyVote，计数缓存命中就能省掉整表扫描
		likes, dislikes, err := service.cache.GetCommentVoteCounts(ctx, comment.CommentId)
		if err == nil && likes >= 0 && dislikes >= 0 {
			return &model.CommentView{Comment: *comment, LikesCount: likes, DislikesCount: dislikes}, nil
		}
	}

	votes, err := service.votes.ListVotes(ctx, model.SubjectTypeComment, comment.CommentId)
	if err != nil {
		return nil, errors.WithMessage(err, "Failed to load votes")
	}
	likes, dislikes, myVote := ComputeTally(votes, sessionId)
	return &model.CommentView{
		Comment:       *comment,
		LikesCount:    likes,
		DislikesCount: dislikes,
		MyVote:        myVote,
	}, nil
}
