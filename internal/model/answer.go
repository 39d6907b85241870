package model

// Answer 待评审的学生答案，按 AnswerIndex 升序即为源顺序。
// 反馈表按答案在该顺序中的位置记录，AnswerIndex 可以不连续
// swagger:model Answer
type Answer struct {
	BaseModel
	AnswerIndex     int    `gorm:"uniqueIndex;not null;comment:源顺序(从0开始)" json:"index"`
	Text            string `gorm:"type:text;comment:学生答案" json:"text"`
	MachineFeedback string `gorm:"type:text;comment:机器生成的反馈" json:"machineFeedback,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}

