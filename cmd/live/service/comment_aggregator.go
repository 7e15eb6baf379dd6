package service

import (
	"context"
	"sort"
	"sync"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/cache"
	"VidStream.com/pkg/eventbus"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// CommentAggregator 把收到的评论片段合并成一致的去重评论树
// 顶级评论整体覆盖，回复追加到已知的父评论下；父评论未到时回复被丢弃
type CommentAggregator struct {
	byId map[int64]*model.CommentWithReplies
	// 播种快照里已有的回复ID，首次合并同ID片段时跳过一次
	// 落库先于事件发出，播种树里因此会先一步带上触发片段
	seeded map[int64]struct{}
}

func NewCommentAggregator() *CommentAggregator {
	return &CommentAggregator{
		byId:   make(map[int64]*model.CommentWithReplies),
		seeded: make(map[int64]struct{}),
	}
}

// Merge 合并一个片段，返回是否被采纳
func (a *CommentAggregator) Merge(fragment *model.CommentWithReplies) bool {
	if fragment == nil {
		return false
	}

	if !fragment.IsReply() {
		// 顶级评论整体覆盖旧条目
		a.byId[fragment.CommentId] = fragment
		return true
	}

	parent, ok := a.byId[fragment.ParentId]
	if !ok {
		// 孤儿回复：父评论尚未到达，丢弃
		return false
	}
	if _, ok := a.seeded[fragment.CommentId]; ok {
		// 播种快照已含这条回复，跳过这一次的追加
		delete(a.seeded, fragment.CommentId)
		return true
	}
	// 播种窗口之外不按ID去重，重复投递会产生重复回复
	parent.Replies = append(parent.Replies, &fragment.CommentView)
	return true
}

// Seed 用完整评论树初始化聚合状态
func (a *CommentAggregator) Seed(tree []*model.CommentWithReplies) {
	for _, fragment := range tree {
		a.byId[fragment.CommentId] = fragment
		for _, reply := range fragment.Replies {
			a.seeded[reply.CommentId] = struct{}{}
		}
	}
}

// View 重新导出当前可见评论集，按创建时间倒序
func (a *CommentAggregator) View() []*model.CommentWithReplies {
	view := make([]*model.CommentWithReplies, 0, len(a.byId))
	for _, fragment := range a.byId {
		view = append(view, fragment)
	}
	sort.Slice(view, func(i, j int) bool {
		if view[i].CreatedAt != view[j].CreatedAt {
			return view[i].CreatedAt > view[j].CreatedAt
		}
		return view[i].CommentId > view[j].CommentId
	})
	return view
}

// Len 当前聚合的顶级评论数
func (a *CommentAggregator) Len() int {
	return len(a.byId)
}

// CommentAggregatorHub 按视频维护聚合器，消费总线事件并把最新视图回写查询缓存
type CommentAggregatorHub struct {
	comments *CommentService
	cache    *cache.CommentCacheManager
	buses    *eventbus.Registry

	mu     sync.Mutex
	videos map[int64]*CommentAggregator
}

func NewCommentAggregatorHub(comments *CommentService, cacheManager *cache.CommentCacheManager,
	buses *eventbus.Registry) *CommentAggregatorHub {
	return &CommentAggregatorHub{
		comments: comments,
		cache:    cacheManager,
		buses:    buses,
		videos:   make(map[int64]*CommentAggregator),
	}
}

// Run 消费CommentAdded和CommentUpdated直到ctx取消
func (hub *CommentAggregatorHub) Run(ctx context.Context) {
	added := hub.buses.CommentAdded.Subscribe(ctx)
	updated := hub.buses.CommentUpdated.Subscribe(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case envelope, ok := <-added:
				if !ok {
					return
				}
				hub.apply(ctx, envelope.Data)
			case envelope, ok := <-updated:
				if !ok {
					return
				}
				hub.apply(ctx, envelope.Data)
			}
		}
	}()
}

func (hub *CommentAggregatorHub) apply(ctx context.Context, fragment *model.CommentWithReplies) {
	if fragment == nil {
		return
	}

	aggregator := hub.aggregatorFor(ctx, fragment.VideoId)

	hub.mu.Lock()
	aggregator.Merge(fragment)
	view := aggregator.View()
	hub.mu.Unlock()

	// 回写查询缓存，读路径和订阅端看到同一份形状
	if hub.cache != nil {
		if err := hub.cache.CacheCommentTree(ctx, fragment.VideoId, view); err != nil {
			hlog.Warnf("Failed to write back comment tree for video %d: %v", fragment.VideoId, err)
		}
	}
}

// aggregatorFor 首次见到某视频时播种完整评论树，缓存命中省掉数据库装配
func (hub *CommentAggregatorHub) aggregatorFor(ctx context.Context, videoId int64) *CommentAggregator {
	hub.mu.Lock()
	aggregator, ok := hub.videos[videoId]
	hub.mu.Unlock()
	if ok {
		return aggregator
	}

	aggregator = NewCommentAggregator()
	var tree []*model.CommentWithReplies
	if hub.cache != nil {
		if cached, err := hub.cache.GetCachedCommentTree(ctx, videoId); err == nil {
			tree = cached
		} else {
			hlog.Warnf("Failed to read cached comment tree for video %d: %v", videoId, err)
		}
	}
	if tree == nil {
		loaded, err := hub.comments.ListCommentTree(ctx, videoId, "")
		if err != nil {
			hlog.Warnf("Failed to seed aggregator for video %d: %v", videoId, err)
		}
		tree = loaded
	}
	aggregator.Seed(tree)

	hub.mu.Lock()
	if existing, ok := hub.videos[videoId]; ok {
		aggregator = existing
	} else {
		hub.videos[videoId] = aggregator
	}
	hub.mu.Unlock()
	return aggregator
}
