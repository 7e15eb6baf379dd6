package model

// Comment 评论数据表模型
// ParentId为0表示顶级评论；回复只允许挂在顶级评论下（单层嵌套）
type Comment struct {
	CommentId int64  `json:"comment_id" gorm:"column:comment_id;primaryKey"`
	VideoId   int64  `json:"video_id" gorm:"column:video_id;index"`
	ParentId  int64  `json:"parent_id" gorm:"column:parent_id;index"`
	Content   string `json:"content" gorm:"column:content"`
	CreatedAt string `json:"created_at" gorm:"column:created_at"`
	UpdatedAt string `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt string `json:"deleted_at" gorm:"column:deleted_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsReply 是否为回复
func (c *Comment) IsReply() bool {
	return c.ParentId != 0
}

// CommentView 带派生计数的评论视图，点赞数由votes表扫描得出，不落库
type CommentView struct {
	Comment
	LikesCount    int64  `json:"likes_count"`
	DislikesCount int64  `json:"dislikes_count"`
	MyVote        string `json:"my_vote,omitempty"`
}

// CommentWithReplies 顶级评论及其按时间排列的回复列表
// 这是订阅流投递和查询缓存的基本单元
type CommentWithReplies struct {
	CommentView
	Replies []*CommentView `json:"replies"`
}
