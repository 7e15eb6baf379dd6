package mq

import "path"

// TaskType 视频处理子任务类型
type TaskType string

const (
	TaskTypePoster  TaskType = "poster"
	TaskTypeWebVTT  TaskType = "webvtt"
	TaskTypeTrailer TaskType = "trailer"
)

func (t TaskType) String() string {
	return string(t)
}

// AllTaskTypes 一个视频上传后派发的全部子任务
func AllTaskTypes() []TaskType {
	return []TaskType{TaskTypePoster, TaskTypeWebVTT, TaskTypeTrailer}
}

// WebVTTConfig 缩略图雪碧图生成配置
type WebVTTConfig struct {
	Interval   float64 `json:"interval"`
	NumColumns int     `json:"num_columns"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// TrailerConfig 预告片生成配置
type TrailerConfig struct {
	ClipDuration   float64 `json:"clip_duration"`
	ClipCount      int     `json:"clip_count"`
	TargetDuration float64 `json:"target_duration"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

// TaskConfig 子任务的可选配置，按任务类型取用
type TaskConfig struct {
	WebVTT  *WebVTTConfig  `json:"webvtt,omitempty"`
	Trailer *TrailerConfig `json:"trailer,omitempty"`
}

// DefaultTaskConfig 默认的子任务生成参数
func DefaultTaskConfig() *TaskConfig {
	return &TaskConfig{
		WebVTT: &WebVTTConfig{
			Interval:   10,
			NumColumns: 5,
			Width:      160,
			Height:     90,
		},
		Trailer: &TrailerConfig{
			ClipDuration:   2,
			ClipCount:      5,
			TargetDuration: 10,
			Width:          640,
			Height:         360,
		},
	}
}

// VideoTaskMessage 派发到工作进程的视频处理任务
type VideoTaskMessage struct {
	VideoID    int64       `json:"video_id"`
	TaskType   TaskType    `json:"task_type"`
	FilePath   string      `json:"file_path"`
	OutputPath string      `json:"output_path"`
	Config     *TaskConfig `json:"config,omitempty"`
}

// VideoCompletionMessage 工作进程发回的子任务完成通知
type VideoCompletionMessage struct {
	TaskType   TaskType `json:"task_type"`
	FilePath   string   `json:"file_path"`
	OutputPath string   `json:"output_path"`
	Status     string   `json:"status"`
	Error      string   `json:"error,omitempty"`
}

// DirectoryToken 从文件路径提取视频的目录令牌
// 上传时每个视频独占一个目录，令牌即目录名；视频行未必已创建，
// 所以完成消息只能靠令牌对账，不能靠外键
func DirectoryToken(filePath string) string {
	return path.Base(path.Dir(filePath))
}

// 常量定义
const (
	// 交换机名称
	VideoProcessingExchange = "video_processing"

	// 队列名称
	VideoTaskQueue       = "video_tasks"
	VideoCompletionQueue = "video_completions"

	// 路由键
	TaskRoutingKeyPrefix       = "video.task."
	TaskRoutingKeyPattern      = "video.task.*"
	CompletionRoutingKeyPrefix = "video.completion."
	CompletionRoutingKeyBind   = "video.completion.#"

	// 完成状态
	CompletionStatusCompleted = "completed"
	CompletionStatusFailed    = "failed"
)
