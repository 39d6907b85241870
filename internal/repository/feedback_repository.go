package repository

import (
	"context"
	"fmt"
	"interview_marker_backend/internal/model"

	"gorm.io/gorm"
)

// FeedbackRepository 反馈表，行 ID 即记录位置
type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: db}
}

// ListRecords 按写入顺序返回全部记录
func (r *FeedbackRepository) ListRecords(ctx context.Context) ([]model.FeedbackRecord, error) {
	var records []model.FeedbackRecord
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&records).Error
	return records, err
}

func (r *FeedbackRepository) AppendRecord(ctx context.Context, record *model.FeedbackRecord) error {
	record.ID = 0
	return r.DB.WithContext(ctx).Create(record).Error
}

// OverwriteRecord 原位覆盖，保留行位置
func (r *FeedbackRepository) OverwriteRecord(ctx context.Context, position uint, record *model.FeedbackRecord) error {
	result := r.DB.WithContext(ctx).Model(&model.FeedbackRecord{}).Where("id = ?", position).Updates(map[string]interface{}{
		"timestamp":         record.Timestamp,
		"answer_index":      record.AnswerIndex,
		"reviewer_name":     record.ReviewerName,
		"answer_text":       record.AnswerText,
		"machine_feedback":  record.MachineFeedback,
		"reviewer_feedback": record.ReviewerFeedback,
		"score":             record.Score,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("feedback record %d: %w", position, gorm.ErrRecordNotFound)
	}
	record.ID = position
	return nil
}
