package repository

import (
	"context"
	"interview_marker_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// ListAnswers 按源顺序返回全部答案
func (r *AnswerRepository) ListAnswers(ctx context.Context) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.WithContext(ctx).Order("answer_index ASC").Find(&answers).Error
	return answers, err
}

// ReplaceAll 以源文件为准：按 answer_index 插入或更新，并删除源文件中已不存在的答案
func (r *AnswerRepository) ReplaceAll(ctx context.Context, answers []model.Answer) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(answers) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "answer_index"}},
				DoUpdates: clause.AssignmentColumns([]string{"text", "machine_feedback", "updated_at", "deleted_at"}),
			}).CreateInBatches(answers, 200).Error
			if err != nil {
				return err
			}
		}

		// 导入的 answer_index 为 0..n-1
		return tx.Unscoped().Where("answer_index >= ?", len(answers)).Delete(&model.Answer{}).Error
	})
}
