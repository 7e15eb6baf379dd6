package service

import (
	"context"
	"sync"
	"time"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/eventbus"
	"VidStream.com/pkg/mq"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// Reconciler 把异步到达的子任务完成通知对账到视频行上
// 以目录令牌为键维护内存中的待完成任务集：上传时登记，最后一个任务完成时
// 整体翻转视频为processed并清掉状态
type Reconciler struct {
	store VideoStore
	buses *eventbus.Registry

	mu          sync.Mutex
	outstanding map[string]map[mq.TaskType]struct{}
	pending     map[string]time.Time // 已全部完成但视频行尚不可见，记录进入时刻
	lastSeen    map[string]time.Time // 各令牌最近一次登记或收到通知的时刻

	retryInterval  time.Duration
	pendingTimeout time.Duration
	// 超过这一时限没有任何通知的待完成集按永久失败清掉，失败视频不常驻内存
	staleTimeout time.Duration
}

func NewReconciler(store VideoStore, buses *eventbus.Registry) *Reconciler {
	return &Reconciler{
		store:          store,
		buses:          buses,
		outstanding:    make(map[string]map[mq.TaskType]struct{}),
		pending:        make(map[string]time.Time),
		lastSeen:       make(map[string]time.Time),
		retryInterval:  5 * time.Second,
		pendingTimeout: 5 * time.Minute,
		staleTimeout:   30 * time.Minute,
	}
}

// RegisterTasks 登记某一目录令牌的待完成任务集，必须在任务投递之前调用
func (r *Reconciler) RegisterTasks(token string, taskTypes []mq.TaskType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := make(map[mq.TaskType]struct{}, len(taskTypes))
	for _, taskType := range taskTypes {
		set[taskType] = struct{}{}
	}
	r.outstanding[token] = set
	r.lastSeen[token] = time.Now()
	hlog.Infof("Registered %d outstanding tasks for token %s", len(set), token)
}

// HandleCompletion 消费一条完成通知，实现mq.CompletionHandler
func (r *Reconciler) HandleCompletion(ctx context.Context, msg *mq.VideoCompletionMessage) error {
	token := mq.DirectoryToken(msg.FilePath)
	if token == "" || token == "." {
		return errors.Errorf("completion message carries no directory token: %q", msg.FilePath)
	}

	if msg.Status != mq.CompletionStatusCompleted {
		hlog.Errorf("Task %s for token %s failed: %s", msg.TaskType, token, msg.Error)
		r.touch(token)
		r.markTaskStatus(ctx, token, string(msg.TaskType), false)
		return nil
	}

	r.mu.Lock()
	set, ok := r.outstanding[token]
	if !ok {
		r.mu.Unlock()
		// 已整体完成，或是本进程从未登记过的令牌（进程重启后属正常情况）
		hlog.Warnf("Completion for unknown token %s (task %s), ignoring", token, msg.TaskType)
		return nil
	}
	delete(set, msg.TaskType)
	remaining := len(set)
	if remaining == 0 {
		delete(r.outstanding, token)
		delete(r.lastSeen, token)
	} else {
		r.lastSeen[token] = time.Now()
	}
	r.mu.Unlock()

	r.markTaskStatus(ctx, token, string(msg.TaskType), true)
	hlog.Infof("Task %s completed for token %s, %d remaining", msg.TaskType, token, remaining)

	if remaining > 0 {
		return nil
	}
	return r.finalize(ctx, token)
}

// finalize 待完成集清空后按令牌找到视频行并翻转processed，行不可见时挂起重试
func (r *Reconciler) finalize(ctx context.Context, token string) error {
	video, err := r.store.FindVideoByPathToken(ctx, token)
	if err != nil {
		// 查询失败同样挂起，由重试循环兜底
		hlog.Errorf("Failed to look up video for token %s: %v", token, err)
		r.park(token)
		return nil
	}
	if video == nil {
		// 完成通知先于视频行可见到达，挂起等行出现
		hlog.Warnf("All tasks done for token %s but video row not yet visible, deferring", token)
		r.park(token)
		return nil
	}

	if err := r.store.MarkVideoProcessed(ctx, video.VideoId); err != nil {
		return errors.WithMessage(err, "Failed to mark video processed")
	}

	r.mu.Lock()
	delete(r.pending, token)
	r.mu.Unlock()

	processed, err := r.store.FindVideo(ctx, video.VideoId)
	if err != nil {
		processed = video
	}
	r.buses.VideoProcessed.Emit(video.VideoId, processed)
	hlog.Infof("Video %d fully processed (token %s)", video.VideoId, token)
	return nil
}

func (r *Reconciler) park(token string) {
	r.mu.Lock()
	if _, ok := r.pending[token]; !ok {
		r.pending[token] = time.Now()
	}
	r.mu.Unlock()
}

// touch 刷新令牌的活跃时刻，仍在登记的令牌不会被过期清理
func (r *Reconciler) touch(token string) {
	r.mu.Lock()
	if _, ok := r.outstanding[token]; ok {
		r.lastSeen[token] = time.Now()
	}
	r.mu.Unlock()
}

// Start 启动挂起令牌的重试循环，超出期限的记为永久丢失
func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.retryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.retryPending(ctx)
			}
		}
	}()
}

func (r *Reconciler) retryPending(ctx context.Context) {
	r.mu.Lock()
	for token, seen := range r.lastSeen {
		if time.Since(seen) > r.staleTimeout {
			hlog.Errorf("Giving up on token %s: no completion activity within %s, dropping %d outstanding tasks",
				token, r.staleTimeout, len(r.outstanding[token]))
			delete(r.outstanding, token)
			delete(r.lastSeen, token)
		}
	}
	tokens := make([]string, 0, len(r.pending))
	for token, since := range r.pending {
		if time.Since(since) > r.pendingTimeout {
			hlog.Errorf("Giving up on token %s: video row never appeared within %s, completion lost", token, r.pendingTimeout)
			delete(r.pending, token)
			continue
		}
		tokens = append(tokens, token)
	}
	r.mu.Unlock()

	for _, token := range tokens {
		if err := r.finalize(ctx, token); err != nil {
			hlog.Errorf("Retry finalize for token %s failed: %v", token, err)
		}
	}
}

// markTaskStatus 按令牌回写任务行状态，行不可见时跳过
func (r *Reconciler) markTaskStatus(ctx context.Context, token, taskType string, completed bool) {
	video, err := r.store.FindVideoByPathToken(ctx, token)
	if err != nil || video == nil {
		return
	}
	status := model.TaskStatusCompleted
	if !completed {
		status = model.TaskStatusFailed
	}
	if err := r.store.UpdateTaskStatus(ctx, video.VideoId, taskType, status); err != nil {
		hlog.Warnf("Failed to update task %s status for video %d: %v", taskType, video.VideoId, err)
	}
}

// OutstandingCount 某一令牌尚未完成的任务数，已完成或未登记返回0
func (r *Reconciler) OutstandingCount(token string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outstanding[token])
}
