package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"VidStream.com/cmd/model"
	"github.com/redis/go-redis/v9"
)

// CommentCacheManager 评论缓存管理器
type CommentCacheManager struct {
	client *redis.Client
	// 缓存过期时间配置
	treeExpire    time.Duration // 聚合评论树缓存时间
	counterExpire time.Duration // 计数器缓存时间
}

// NewCommentCacheManager 创建评论缓存管理器
func NewCommentCacheManager(client *redis.Client) *CommentCacheManager {
	return &CommentCacheManager{
		client:        client,
		treeExpire:    10 * time.Minute, // 聚合评论树缓存10分钟
		counterExpire: 1 * time.Hour,    // 计数器缓存1小时
	}
}

// 缓存键名常量
const (
	// 视频聚合评论树缓存键
	VideoCommentTreeKey = "video:comment_tree:%d"
	// 视频评论总数缓存键
	VideoCommentCountKey = "video:comment_count:%d"
	// 评论点赞数缓存键
	CommentLikeCountKey = "comment:like_count:%d"
	// 评论点踩数缓存键
	CommentDislikeCountKey = "comment:dislike_count:%d"
)

// CacheCommentTree 缓存视频的聚合评论树
func (ccm *CommentCacheManager) CacheCommentTree(ctx context.Context, videoID int64,
	comments []*model.CommentWithReplies) error {

	key := fmt.Sprintf(VideoCommentTreeKey, videoID)

	data, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("failed to marshal comment tree: %w", err)
	}

	return ccm.client.Set(ctx, key, data, ccm.treeExpire).Err()
}

// GetCachedCommentTree 获取缓存的聚合评论树
func (ccm *CommentCacheManager) GetCachedCommentTree(ctx context.Context, videoID int64) ([]*model.CommentWithReplies, error) {
	key := fmt.Sprintf(VideoCommentTreeKey, videoID)

	data, err := ccm.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 缓存未命中
		}
		return nil, fmt.Errorf("failed to get cached comment tree: %w", err)
	}

	var comments []*model.CommentWithReplies
	if err := json.Unmarshal([]byte(data), &comments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comment tree: %w", err)
	}

	return comments, nil
}

// IncrementVideoCommentCount 增加视频评论总数
func (ccm *CommentCacheManager) IncrementVideoCommentCount(ctx context.Context, videoID int64, delta int64) error {
	key := fmt.Sprintf(VideoCommentCountKey, videoID)

	// 使用Redis的INCRBY命令原子性地增加计数
	_, err := ccm.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return fmt.Errorf("failed to increment video comment count: %w", err)
	}

	// 设置过期时间
	ccm.client.Expire(ctx, key, ccm.counterExpire)
	return nil
}

// GetVideoCommentCount 获取视频评论总数
func (ccm *CommentCacheManager) GetVideoCommentCount(ctx context.Context, videoID int64) (int64, error) {
	key := fmt.Sprintf(VideoCommentCountKey, videoID)

	count, err := ccm.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return -1, nil // 缓存未命中
		}
		return 0, fmt.Errorf("failed to get video comment count: %w", err)
	}

	return count, nil
}

// SetVideoCommentCount 设置视频评论总数
func (ccm *CommentCacheManager) SetVideoCommentCount(ctx context.Context, videoID int64, count int64) error {
	key := fmt.Sprintf(VideoCommentCountKey, videoID)
	return ccm.client.Set(ctx, key, count, ccm.counterExpire).Err()
}

// SetCommentVoteCounts 设置评论的点赞和点踩数
func (ccm *CommentCacheManager) SetCommentVoteCounts(ctx context.Context, commentID, likes, dislikes int64) error {
	pipe := ccm.client.Pipeline()
	pipe.Set(ctx, fmt.Sprintf(CommentLikeCountKey, commentID), likes, ccm.counterExpire)
	pipe.Set(ctx, fmt.Sprintf(CommentDislikeCountKey, commentID), dislikes, ccm.counterExpire)
	_, err := pipe.Exec(ctx)
	return err
}

// GetCommentVoteCounts 获取评论的点赞和点踩数，缓存未命中返回-1
func (ccm *CommentCacheManager) GetCommentVoteCounts(ctx context.Context, commentID int64) (int64, int64, error) {
	pipe := ccm.client.Pipeline()
	likeCmd := pipe.Get(ctx, fmt.Sprintf(CommentLikeCountKey, commentID))
	dislikeCmd := pipe.Get(ctx, fmt.Sprintf(CommentDislikeCountKey, commentID))

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("failed to get comment vote counts: %w", err)
	}

	likes, err := likeCmd.Int64()
	if err != nil {
		if err != redis.Nil {
			return 0, 0, fmt.Errorf("failed to get comment like count: %w", err)
		}
		likes = -1 // 缓存未命中
	}

	dislikes, err := dislikeCmd.Int64()
	if err != nil {
		if err != redis.Nil {
			return 0, 0, fmt.Errorf("failed to get comment dislike count: %w", err)
		}
		dislikes = -1 // 缓存未命中
	}

	return likes, dislikes, nil
}
