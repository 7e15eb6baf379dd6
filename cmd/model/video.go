package model

const (
	VideoStatusPending    = "pending"
	VideoStatusProcessing = "processing"
	VideoStatusCompleted  = "completed"

	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// Video 视频数据表模型
// VideoUrl中包含上传时生成的目录令牌，完成消息靠它反查视频行
type Video struct {
	VideoId     int64  `json:"video_id" gorm:"column:video_id;primaryKey"`
	Title       string `json:"title" gorm:"column:title"`
	Description string `json:"description" gorm:"column:description"`
	VideoUrl    string `json:"video_url" gorm:"column:video_url;index"`
	CoverUrl    string `json:"cover_url" gorm:"column:cover_url"`
	Status      string `json:"status" gorm:"column:status"`
	Processed   bool   `json:"processed" gorm:"column:processed"`
	CreatedAt   string `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   string `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt   string `json:"deleted_at" gorm:"column:deleted_at"`
}

func (Video) TableName() string {
	return "videos"
}

// VideoTask 视频处理子任务数据表模型
type VideoTask struct {
	VideoTaskId int64  `json:"video_task_id" gorm:"column:video_task_id;primaryKey"`
	VideoId     int64  `json:"video_id" gorm:"column:video_id;index"`
	TaskType    string `json:"task_type" gorm:"column:task_type"`
	Status      string `json:"status" gorm:"column:status"`
	CreatedAt   string `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   string `json:"updated_at" gorm:"column:updated_at"`
}

func (VideoTask) TableName() string {
	return "video_tasks"
}

// VideoView 带派生计数的视频视图
type VideoView struct {
	Video
	LikesCount    int64  `json:"likes_count"`
	DislikesCount int64  `json:"dislikes_count"`
	MyVote        string `json:"my_vote,omitempty"`
}
