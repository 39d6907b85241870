package model

import "time"

type ReviewPhase string

const (
	PhaseUnauthenticated ReviewPhase = "unauthenticated"
	PhaseReviewerUnset   ReviewPhase = "reviewer_unset"
	PhaseReviewing       ReviewPhase = "reviewing"
	PhaseDone            ReviewPhase = "done"
	PhaseLocked          ReviewPhase = "locked"
)

// Draft 输入框中尚未提交的评分与评语
type Draft struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

func DefaultDraft() Draft {
	return Draft{Score: DefaultScore}
}

// ReviewSessionState 一个评审会话在多次交互之间需要保留的全部状态。
//
// 重置规则：
//   - 光标移动（Next/Previous/Continue）后 Draft 恢复默认值，DraftDirty、Submitted 清零；
//   - SetReviewer 重新计算 AnswerCount、Queue，并把光标放到第一个位置；
//   - PasswordAttempts 只增不减，达到上限后进入 PhaseLocked。
type ReviewSessionState struct {
	ID               string      `json:"id"`
	Phase            ReviewPhase `json:"phase"`
	PasswordAttempts int         `json:"passwordAttempts"`
	Authenticated    bool        `json:"authenticated"`
	ReviewerName     string      `json:"reviewerName"`
	AnswerCount      int         `json:"answerCount"`
	Cursor           int         `json:"cursor"`
	Queue            []int       `json:"queue,omitempty"`
	QueuePos         int         `json:"queuePos"`
	Draft            Draft       `json:"draft"`
	DraftDirty       bool        `json:"draftDirty"`
	Submitted        bool        `json:"submitted"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

func NewReviewSessionState(id string, now time.Time) *ReviewSessionState {
	return &ReviewSessionState{
		ID:        id,
		Phase:     PhaseUnauthenticated,
		Draft:     DefaultDraft(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
