package service

import (
	"context"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/cache"
	"VidStream.com/pkg/errno"
	"VidStream.com/pkg/eventbus"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// VoteService 投票写入与计数派生，cache可为nil（测试环境）
type VoteService struct {
	votes    VoteStore
	comments *CommentService
	videos   *VideoService
	buses    *eventbus.Registry
	cache    *cache.CommentCacheManager
}

func NewVoteService(votes VoteStore, comments *CommentService, videos *VideoService, buses *eventbus.Registry,
	cacheManager *cache.CommentCacheManager) *VoteService {
	return &VoteService{votes: votes, comments: comments, videos: videos, buses: buses, cache: cacheManager}
}

// Tally 一次投票后的派生计数
type Tally struct {
	LikesCount    int64  `json:"likes_count"`
	DislikesCount int64  `json:"dislikes_count"`
	MyVote        string `json:"my_vote,omitempty"`
}

// ComputeTally 扫描投票行派生计数，计数不落库
func ComputeTally(votes []*model.Vote, sessionId string) (likes, dislikes int64, myVote string) {
	for _, vote := range votes {
		switch vote.VoteType {
		case model.VoteTypeLike:
			likes++
		case model.VoteTypeDislike:
			dislikes++
		}
		if sessionId != "" && vote.SessionId == sessionId {
			myVote = vote.VoteType
		}
	}
	return likes, dislikes, myVote
}

// CastVote 投票：同一(主体,会话)重复投票改票，不产生第二行
// 写入后重新扫描派生计数并把更新后的主体推上事件总线
func (service *VoteService) CastVote(ctx context.Context, subjectType string, subjectId int64, sessionId, voteType string) (*Tally, error) {
	if sessionId == "" {
		// 无会话的调用在事务开始前被拒绝
		return nil, errno.AuthorizationFailedErr.WithMessage("Voting requires a session")
	}
	if !model.IsValidVoteType(voteType) {
		return nil, errno.RequestErr.WithMessage("Invalid vote type")
	}
	if !model.IsValidSubjectType(subjectType) {
		return nil, errno.RequestErr.WithMessage("Invalid vote subject")
	}

	if err := service.votes.UpsertVote(ctx, subjectType, subjectId, sessionId, voteType); err != nil {
		return nil, errors.WithMessage(err, "Failed to cast vote")
	}

	votes, err := service.votes.ListVotes(ctx, subjectType, subjectId)
	if err != nil {
		return nil, errors.WithMessage(err, "Failed to load votes")
	}
	likes, dislikes, myVote := ComputeTally(votes, sessionId)

	if subjectType == model.SubjectTypeComment && service.cache != nil {
		// 最新计数顺手写进计数缓存，无会话的装配路径直接读它
		if err := service.cache.SetCommentVoteCounts(ctx, subjectId, likes, dislikes); err != nil {
			hlog.Warnf("Failed to cache vote counts for comment %d: %v", subjectId, err)
		}
	}

	service.emitUpdated(ctx, subjectType, subjectId)

	return &Tally{LikesCount: likes, DislikesCount: dislikes, MyVote: myVote}, nil
}

// emitUpdated 把更新后的主体状态推给在线订阅者，失败只记录不回传
func (service *VoteService) emitUpdated(ctx context.Context, subjectType string, subjectId int64) {
	switch subjectType {
	case model.SubjectTypeComment:
		fragment, err := service.comments.LoadCommentWithReplies(ctx, subjectId, "")
		if err != nil {
			hlog.Warnf("Failed to load comment %d for live update: %v", subjectId, err)
			return
		}
		service.buses.CommentUpdated.Emit(subjectId, fragment)
	case model.SubjectTypeVideo:
		view, err := service.videos.LoadVideoView(ctx, subjectId, "")
		if err != nil {
			hlog.Warnf("Failed to load video %d for live update: %v", subjectId, err)
			return
		}
		service.buses.VideoUpdated.Emit(subjectId, view)
	}
}
