package model

import (
	"strconv"
	"time"
)

// 评分范围与草稿默认值
const (
	MinScore     = 0
	MaxScore     = 10
	DefaultScore = 5
)

// FeedbackSheetHeader 反馈表的列顺序，读写两端必须一致
var FeedbackSheetHeader = []string{
	"Timestamp",
	"AnswerIndex",
	"ConsultantName",
	"AnswerText",
	"GPTFeedback",
	"ManualFeedback",
	"Score",
}

// FeedbackRecord 评审人对某个答案的反馈。ID 即存储中的行位置，
// (AnswerIndex, ReviewerName) 为逻辑主键
// swagger:model FeedbackRecord
type FeedbackRecord struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp        time.Time `gorm:"not null" json:"timestamp"`
	AnswerIndex      int       `gorm:"index:idx_feedback_key;not null;comment:答案序号(从1开始)" json:"answerIndex"`
	ReviewerName     string    `gorm:"index:idx_feedback_key;size:100;not null" json:"reviewerName"`
	AnswerText       string    `gorm:"type:text" json:"answerText"`
	MachineFeedback  string    `gorm:"type:text" json:"machineFeedback"`
	ReviewerFeedback string    `gorm:"type:text" json:"reviewerFeedback"`
	Score            int       `gorm:"not null" json:"score"`
}

func (FeedbackRecord) TableName() string {
	return "feedback_records"
}

// Key 反馈记录的逻辑主键
type FeedbackKey struct {
	AnswerIndex  int
	ReviewerName string
}

func (r *FeedbackRecord) Key() FeedbackKey {
	return FeedbackKey{AnswerIndex: r.AnswerIndex, ReviewerName: r.ReviewerName}
}

// Row 按 FeedbackSheetHeader 的列顺序输出
func (r *FeedbackRecord) Row(timeFormat string) []string {
	return []string{
		r.Timestamp.Format(timeFormat),
		strconv.Itoa(r.AnswerIndex),
		r.ReviewerName,
		r.AnswerText,
		r.MachineFeedback,
		r.ReviewerFeedback,
		strconv.Itoa(r.Score),
	}
}

// ValidScore 分数必须是 [0,10] 内的整数
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
