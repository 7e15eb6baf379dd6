package db

import (
	"context"
	"time"

	"VidStream.com/cmd/model"
	"VidStream.com/pkg/constants"
	"VidStream.com/pkg/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UpsertVote 在一个事务内写入投票：同一(主体,会话)已存在则改票，否则插入新行
func UpsertVote(ctx context.Context, subjectType string, subjectId int64, sessionId, voteType string) error {
	now := time.Now().Format(constants.DataFormate)
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Vote
		err := tx.Model(&model.Vote{}).
			Where("subject_type=? And subject_id=? And session_id=?", subjectType, subjectId, sessionId).
			First(&existing).Error
		if err == nil {
			// 改票只更新vote_type，不产生第二行
			return tx.Model(&model.Vote{}).
				Where("vote_id=?", existing.VoteId).
				Updates(map[string]interface{}{"vote_type": voteType, "updated_at": now}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		vote := &model.Vote{
			VoteId:      utils.GenerateVoteID(),
			SubjectType: subjectType,
			SubjectId:   subjectId,
			SessionId:   sessionId,
			VoteType:    voteType,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(vote).Error
	})
	if err != nil {
		return errors.Wrapf(err, "UpsertVote failed,err:%v", err)
	}
	return nil
}

// ListVotes 查询某一主体的全部投票行
func ListVotes(ctx context.Context, subjectType string, subjectId int64) ([]*model.Vote, error) {
	var votes []*model.Vote
	err := DB.WithContext(ctx).Model(&model.Vote{}).
		Where("subject_type=? And subject_id=?", subjectType, subjectId).
		Find(&votes).Error
	if err != nil {
		return nil, errors.Wrapf(err, "ListVotes failed,err:%v", err)
	}
	return votes, nil
}
