package model

const (
	VoteTypeLike    = "like"
	VoteTypeDislike = "dislike"

	SubjectTypeComment = "comment"
	SubjectTypeVideo   = "video"
)

// Vote 投票数据表模型
// (subject_type, subject_id, session_id)唯一：同一会话重复投票只改vote_type
type Vote struct {
	VoteId      int64  `json:"vote_id" gorm:"column:vote_id;primaryKey"`
	SubjectType string `json:"subject_type" gorm:"column:subject_type;size:16;uniqueIndex:uk_subject_session"`
	SubjectId   int64  `json:"subject_id" gorm:"column:subject_id;uniqueIndex:uk_subject_session"`
	SessionId   string `json:"session_id" gorm:"column:session_id;size:64;uniqueIndex:uk_subject_session"`
	VoteType    string `json:"vote_type" gorm:"column:vote_type"`
	CreatedAt   string `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   string `json:"updated_at" gorm:"column:updated_at"`
}

func (Vote) TableName() string {
	return "votes"
}

// IsValidVoteType 校验投票类型
func IsValidVoteType(t string) bool {
	return t == VoteTypeLike || t == VoteTypeDislike
}

// IsValidSubjectType 校验投票对象类型
func IsValidSubjectType(t string) bool {
	return t == SubjectTypeComment || t == SubjectTypeVideo
}
