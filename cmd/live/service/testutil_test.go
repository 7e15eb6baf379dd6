package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/constants"
	"VidStream.com/pkg/mq"
	"VidStream.com/pkg/utils"
)

// memStore 内存实现的数据访问层，测试不依赖数据库
type memStore struct {
	mu       sync.Mutex
	comments map[int64]*model.Comment
	votes    []*model.Vote
	videos   map[int64]*model.Video
	tasks    []*model.VideoTask
}

func newMemStore() *memStore {
	return &memStore{
		comments: make(map[int64]*model.Comment),
		videos:   make(map[int64]*model.Video),
	}
}

// testClock 每次取时间前进一秒，保证创建时间彼此可比
type testClock struct {
	mu   sync.Mutex
	next time.Time
}

func newTestClock() *testClock {
	return &testClock{next: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *testClock) timestamp() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.next.Format(constants.DataFormate)
	c.next = c.next.Add(time.Second)
	return ts
}

func (s *memStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.CommentId] = comment
	return nil
}

func (s *memStore) GetComment(ctx context.Context, commentId int64) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[commentId]
	if !ok {
		return nil, fmt.Errorf("comment %d not found", commentId)
	}
	return comment, nil
}

func (s *memStore) CountComments(ctx context.Context, videoId int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.selectComments(func(c *model.Comment) bool {
		return c.VideoId == videoId
	}))), nil
}

func (s *memStore) ListTopLevelComments(ctx context.Context, videoId int64) ([]*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectComments(func(c *model.Comment) bool {
		return c.VideoId == videoId && c.ParentId == 0
	}), nil
}

func (s *memStore) ListTopLevelCommentsAfter(ctx context.Context, videoId int64, createdAt string) ([]*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectComments(func(c *model.Comment) bool {
		return c.VideoId == videoId && c.ParentId == 0 && c.CreatedAt > createdAt
	}), nil
}

func (s *memStore) ListReplies(ctx context.Context, parentId int64) ([]*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectComments(func(c *model.Comment) bool {
		return c.ParentId == parentId
	}), nil
}

// selectComments 按(创建时间,ID)升序筛选，调用方需持有s.mu
func (s *memStore) selectComments(match func(*model.Comment) bool) []*model.Comment {
	var out []*model.Comment
	for _, c := range s.comments {
		if match(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].CommentId < out[j].CommentId
	})
	return out
}

func (s *memStore) UpsertVote(ctx context.Context, subjectType string, subjectId int64, sessionId, voteType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.votes {
		if v.SubjectType == subjectType && v.SubjectId == subjectId && v.SessionId == sessionId {
			v.VoteType = voteType
			return nil
		}
	}
	s.votes = append(s.votes, &model.Vote{
		VoteId:      utils.GenerateVoteID(),
		SubjectType: subjectType,
		SubjectId:   subjectId,
		SessionId:   sessionId,
		VoteType:    voteType,
	})
	return nil
}

func (s *memStore) ListVotes(ctx context.Context, subjectType string, subjectId int64) ([]*model.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Vote
	for _, v := range s.votes {
		if v.SubjectType == subjectType && v.SubjectId == subjectId {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *memStore) CreateVideoWithTasks(ctx context.Context, video *model.Video, tasks []*model.VideoTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.VideoId] = video
	s.tasks = append(s.tasks, tasks...)
	return nil
}

func (s *memStore) FindVideo(ctx context.Context, videoId int64) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoId]
	if !ok {
		return nil, fmt.Errorf("video %d not found", videoId)
	}
	return video, nil
}

func (s *memStore) FindVideoByPathToken(ctx context.Context, token string) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.videos {
		if strings.Contains(v.VideoUrl, token) {
			return v, nil
		}
	}
	return nil, nil
}

func (s *memStore) MarkVideoProcessed(ctx context.Context, videoId int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoId]
	if !ok {
		return fmt.Errorf("video %d not found", videoId)
	}
	video.Processed = true
	video.Status = model.VideoStatusCompleted
	return nil
}

func (s *memStore) UpdateTaskStatus(ctx context.Context, videoId int64, taskType, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.VideoId == videoId && task.TaskType == taskType {
			task.Status = status
		}
	}
	return nil
}

func (s *memStore) taskStatus(videoId int64, taskType string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.VideoId == videoId && task.TaskType == taskType {
			return task.Status
		}
	}
	return ""
}

func (s *memStore) addVideo(videoId int64, token string) *model.Video {
	video := &model.Video{
		VideoId:  videoId,
		Title:    fmt.Sprintf("video %d", videoId),
		VideoUrl: "videos/" + token + "/" + constants.OriginalVideoName,
		Status:   model.VideoStatusPending,
	}
	s.mu.Lock()
	s.videos[videoId] = video
	s.mu.Unlock()
	return video
}

func (s *memStore) addComment(clock *testClock, videoId, parentId int64, content string) *model.Comment {
	comment := &model.Comment{
		CommentId: utils.GenerateCommentID(),
		VideoId:   videoId,
		ParentId:  parentId,
		Content:   content,
		CreatedAt: clock.timestamp(),
	}
	s.mu.Lock()
	s.comments[comment.CommentId] = comment
	s.mu.Unlock()
	return comment
}

// recordingProducer 把发布的消息留在内存里供断言
type recordingProducer struct {
	mu          sync.Mutex
	tasks       []*mq.VideoTaskMessage
	completions []*mq.VideoCompletionMessage
}

func (p *recordingProducer) PublishTask(ctx context.Context, task *mq.VideoTaskMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return nil
}

func (p *recordingProducer) PublishCompletion(ctx context.Context, completion *mq.VideoCompletionMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completions = append(p.completions, completion)
	return nil
}
