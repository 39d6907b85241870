package service

import (
	"context"
	"interview_marker_backend/internal/config"
	"interview_marker_backend/internal/model"
	"interview_marker_backend/internal/util"
	"strings"
	"time"
)

// AnswerSource 只读答案来源，按源顺序返回
type AnswerSource interface {
	ListAnswers(ctx context.Context) ([]model.Answer, error)
}

// FeedbackStore 反馈表。只支持全量读取，按键匹配由调用方完成
type FeedbackStore interface {
	ListRecords(ctx context.Context) ([]model.FeedbackRecord, error)
	AppendRecord(ctx context.Context, record *model.FeedbackRecord) error
	OverwriteRecord(ctx context.Context, position uint, record *model.FeedbackRecord) error
}

// SecretProvider 校验共享访问密码
type SecretProvider interface {
	CheckPassword(password string) bool
}

type ReviewOptions struct {
	Navigation  string
	Policy      string
	MaxAttempts int
}

func ReviewOptionsFromConfig(cfg *config.Config) ReviewOptions {
	return ReviewOptions{
		Navigation:  cfg.Review.Navigation,
		Policy:      cfg.Review.Policy,
		MaxAttempts: cfg.Auth.MaxAttempts,
	}
}

// ReviewView LoadCurrent 的返回值，前端据此渲染
type ReviewView struct {
	Phase        model.ReviewPhase     `json:"phase"`
	ReviewerName string                `json:"reviewerName,omitempty"`
	Position     int                   `json:"position"`
	Total        int                   `json:"total"`
	Remaining    int                   `json:"remaining"`
	Answer       *model.Answer         `json:"answer,omitempty"`
	Draft        model.Draft           `json:"draft"`
	Existing     *model.FeedbackRecord `json:"existing,omitempty"`
	Submitted    bool                  `json:"submitted"`
	CanNext      bool                  `json:"canNext"`
	CanPrevious  bool                  `json:"canPrevious"`
	CanContinue  bool                  `json:"canContinue"`
	AttemptsLeft int                   `json:"attemptsLeft"`
}

// ReviewSession 评审会话状态机。所有可变状态都在 State 中，
// 每次交互构造一个 ReviewSession 执行一个操作后由调用方持久化 State。
type ReviewSession struct {
	State *model.ReviewSessionState

	answers AnswerSource
	store   FeedbackStore
	secrets SecretProvider
	opts    ReviewOptions
	now     func() time.Time

	cachedAnswers []model.Answer
	overwrote     bool
}

func NewReviewSession(state *model.ReviewSessionState, answers AnswerSource, store FeedbackStore, secrets SecretProvider, opts ReviewOptions) *ReviewSession {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	return &ReviewSession{
		State:   state,
		answers: answers,
		store:   store,
		secrets: secrets,
		opts:    opts,
		now:     time.Now,
	}
}

func (s *ReviewSession) queueMode() bool {
	return s.opts.Navigation == config.NavigationQueue
}

func (s *ReviewSession) appendOnly() bool {
	return s.opts.Policy == config.PolicyAppend
}

func (s *ReviewSession) AttemptsLeft() int {
	left := s.opts.MaxAttempts - s.State.PasswordAttempts
	if left < 0 {
		return 0
	}
	return left
}

// Authenticate 校验共享密码，错误次数达到上限后本会话永久锁定
func (s *ReviewSession) Authenticate(password string) error {
	st := s.State
	if st.Phase == model.PhaseLocked || st.PasswordAttempts >= s.opts.MaxAttempts {
		st.Phase = model.PhaseLocked
		return util.ErrTooManyAttempts
	}
	if st.Authenticated {
		return nil
	}

	if s.secrets.CheckPassword(password) {
		st.Authenticated = true
		st.Phase = model.PhaseReviewerUnset
		return nil
	}

	st.PasswordAttempts++
	if st.PasswordAttempts >= s.opts.MaxAttempts {
		st.Phase = model.PhaseLocked
		return util.ErrTooManyAttempts
	}
	return util.ErrWrongPassword
}

func (s *ReviewSession) requireAuth() error {
	if s.State.Phase == model.PhaseLocked {
		return util.ErrTooManyAttempts
	}
	if !s.State.Authenticated {
		return util.ErrNotAuthenticated
	}
	return nil
}

func (s *ReviewSession) requireReviewer() error {
	if err := s.requireAuth(); err != nil {
		return err
	}
	if s.State.ReviewerName == "" {
		return util.ErrReviewerUnset
	}
	return nil
}

func (s *ReviewSession) loadAnswers(ctx context.Context) ([]model.Answer, error) {
	if s.cachedAnswers != nil {
		return s.cachedAnswers, nil
	}
	answers, err := s.answers.ListAnswers(ctx)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	s.cachedAnswers = answers
	return answers, nil
}

// feedbackIndex 每个键对应最新（位置最靠后）的一条记录
func feedbackIndex(records []model.FeedbackRecord, reviewer string) map[int]*model.FeedbackRecord {
	index := make(map[int]*model.FeedbackRecord)
	for i := range records {
		r := &records[i]
		if r.ReviewerName != reviewer {
			continue
		}
		if prev, ok := index[r.AnswerIndex]; !ok || r.ID >= prev.ID {
			index[r.AnswerIndex] = r
		}
	}
	return index
}

// answerNumber 反馈表中的 AnswerIndex：答案在源顺序中的位置（从1开始），与 answer_index 的取值无关
func answerNumber(position int) int {
	return position + 1
}

func (s *ReviewSession) latestRecord(ctx context.Context, number int) (*model.FeedbackRecord, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	return feedbackIndex(records, s.State.ReviewerName)[number], nil
}

// SetReviewer 设置评审人并重建反馈索引；队列模式下计算未评审队列
func (s *ReviewSession) SetReviewer(ctx context.Context, name string) error {
	if err := s.requireAuth(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return util.ErrReviewerRequired
	}

	answers, err := s.loadAnswers(ctx)
	if err != nil {
		return err
	}
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return err
	}
	index := feedbackIndex(records, name)

	st := s.State
	st.ReviewerName = name
	st.AnswerCount = len(answers)
	st.Cursor = 0
	st.Queue = nil
	st.QueuePos = 0
	s.resetDraft()

	if s.queueMode() {
		queue := make([]int, 0, len(answers))
		for i := range answers {
			if _, reviewed := index[answerNumber(i)]; !reviewed {
				queue = append(queue, i)
			}
		}
		st.Queue = queue
		if len(queue) == 0 {
			st.Phase = model.PhaseDone
			return nil
		}
		st.Cursor = queue[0]
	} else if st.AnswerCount == 0 {
		st.Phase = model.PhaseDone
		return nil
	}

	st.Phase = model.PhaseReviewing
	if !s.appendOnly() {
		if existing := index[answerNumber(st.Cursor)]; existing != nil {
			s.prefill(existing)
		}
	}
	return nil
}

func (s *ReviewSession) resetDraft() {
	s.State.Draft = model.DefaultDraft()
	s.State.DraftDirty = false
	s.State.Submitted = false
}

func (s *ReviewSession) prefill(r *model.FeedbackRecord) {
	score := r.Score
	if score < model.MinScore {
		score = model.MinScore
	} else if score > model.MaxScore {
		score = model.MaxScore
	}
	s.State.Draft = model.Draft{Score: score, Feedback: r.ReviewerFeedback}
}

func (s *ReviewSession) currentAnswer(ctx context.Context) (*model.Answer, error) {
	answers, err := s.loadAnswers(ctx)
	if err != nil {
		return nil, err
	}
	st := s.State
	if st.Cursor < 0 {
		st.Cursor = 0
	}
	if st.Cursor >= len(answers) || st.Cursor >= st.AnswerCount {
		st.Phase = model.PhaseDone
		return nil, nil
	}
	return &answers[st.Cursor], nil
}

// LoadCurrent 返回当前答案；upsert 策略下用已有记录预填草稿（用户已编辑过则保留）。不写存储。
func (s *ReviewSession) LoadCurrent(ctx context.Context) (*ReviewView, error) {
	st := s.State
	if st.Phase != model.PhaseReviewing && st.Phase != model.PhaseDone {
		return s.View(), nil
	}
	if err := s.requireReviewer(); err != nil {
		return nil, err
	}

	view := s.View()
	if st.Phase == model.PhaseDone {
		return view, nil
	}

	answer, err := s.currentAnswer(ctx)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return s.View(), nil
	}

	existing, err := s.latestRecord(ctx, answerNumber(st.Cursor))
	if err != nil {
		return nil, err
	}
	if existing != nil && !s.appendOnly() && !st.DraftDirty {
		s.prefill(existing)
	}

	view = s.View()
	view.Answer = answer
	view.Existing = existing
	return view, nil
}

// UpdateDraft 记录输入框的修改
func (s *ReviewSession) UpdateDraft(draft model.Draft) error {
	if err := s.requireReviewer(); err != nil {
		return err
	}
	if s.State.Phase != model.PhaseReviewing {
		return util.ErrReviewDone
	}
	if !model.ValidScore(draft.Score) {
		return util.ErrInvalidScore
	}
	s.State.Draft = draft
	s.State.DraftDirty = true
	return nil
}

// Submit 保存当前答案的反馈。upsert 覆盖该键最新的一行，否则追加；append 总是追加。
func (s *ReviewSession) Submit(ctx context.Context, draft model.Draft) (*model.FeedbackRecord, error) {
	if err := s.requireReviewer(); err != nil {
		return nil, err
	}
	st := s.State
	if st.Phase != model.PhaseReviewing {
		return nil, util.ErrReviewDone
	}
	if !model.ValidScore(draft.Score) {
		return nil, util.ErrInvalidScore
	}

	answer, err := s.currentAnswer(ctx)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, util.ErrReviewDone
	}

	record := &model.FeedbackRecord{
		Timestamp:        s.now(),
		AnswerIndex:      answerNumber(st.Cursor),
		ReviewerName:     st.ReviewerName,
		AnswerText:       answer.Text,
		MachineFeedback:  answer.MachineFeedback,
		ReviewerFeedback: draft.Feedback,
		Score:            draft.Score,
	}

	if s.appendOnly() {
		if err := s.store.AppendRecord(ctx, record); err != nil {
			return nil, err
		}
		st.Submitted = true
	} else {
		existing, err := s.latestRecord(ctx, record.AnswerIndex)
		if err != nil {
			return nil, err
		}
		s.overwrote = existing != nil
		if existing != nil {
			err = s.store.OverwriteRecord(ctx, existing.ID, record)
		} else {
			err = s.store.AppendRecord(ctx, record)
		}
		if err != nil {
			return nil, err
		}
	}

	st.Draft = draft
	st.DraftDirty = false
	return record, nil
}

// Next 前进一个位置；append 策略下已提交时被阻止，需要 Continue
func (s *ReviewSession) Next(ctx context.Context) error {
	if err := s.requireReviewer(); err != nil {
		return err
	}
	if s.State.Phase == model.PhaseDone {
		return nil
	}
	if s.appendOnly() && s.State.Submitted && s.hasNext() {
		return util.ErrSubmissionPending
	}
	return s.advance(ctx)
}

// Continue append 策略的第二步：确认已提交并前进
func (s *ReviewSession) Continue(ctx context.Context) error {
	if err := s.requireReviewer(); err != nil {
		return err
	}
	if !s.appendOnly() {
		return util.ErrContinueDisabled
	}
	if s.State.Phase == model.PhaseDone {
		return nil
	}
	if !s.State.Submitted {
		return util.ErrNothingSubmitted
	}
	return s.advance(ctx)
}

func (s *ReviewSession) hasNext() bool {
	st := s.State
	if s.queueMode() {
		return st.QueuePos+1 < len(st.Queue)
	}
	return st.Cursor+1 < st.AnswerCount
}

func (s *ReviewSession) hasPrevious() bool {
	if s.queueMode() {
		return s.State.QueuePos > 0
	}
	return s.State.Cursor > 0
}

func (s *ReviewSession) advance(ctx context.Context) error {
	st := s.State
	if !s.hasNext() {
		if s.queueMode() {
			st.QueuePos = len(st.Queue)
		} else {
			st.Cursor = st.AnswerCount
		}
		st.Phase = model.PhaseDone
		s.resetDraft()
		return nil
	}

	if s.queueMode() {
		st.QueuePos++
		st.Cursor = st.Queue[st.QueuePos]
	} else {
		st.Cursor++
	}
	return s.moved(ctx)
}

// Previous 后退一个位置，位于第一个时不做任何事。不写存储。
func (s *ReviewSession) Previous(ctx context.Context) error {
	if err := s.requireReviewer(); err != nil {
		return err
	}
	st := s.State
	if st.Phase == model.PhaseDone || !s.hasPrevious() {
		return nil
	}

	if s.queueMode() {
		st.QueuePos--
		st.Cursor = st.Queue[st.QueuePos]
	} else {
		st.Cursor--
	}
	return s.moved(ctx)
}

func (s *ReviewSession) moved(ctx context.Context) error {
	s.resetDraft()
	if s.appendOnly() {
		return nil
	}
	existing, err := s.latestRecord(ctx, answerNumber(s.State.Cursor))
	if err != nil {
		return err
	}
	if existing != nil {
		s.prefill(existing)
	}
	return nil
}

// View 当前状态的快照，不访问外部存储
func (s *ReviewSession) View() *ReviewView {
	st := s.State
	view := &ReviewView{
		Phase:        st.Phase,
		ReviewerName: st.ReviewerName,
		Draft:        st.Draft,
		Submitted:    st.Submitted,
		AttemptsLeft: s.AttemptsLeft(),
	}
	if st.ReviewerName == "" {
		return view
	}

	if s.queueMode() {
		view.Total = len(st.Queue)
		view.Position = st.QueuePos + 1
	} else {
		view.Total = st.AnswerCount
		view.Position = st.Cursor + 1
	}

	if st.Phase == model.PhaseDone {
		view.Position = view.Total
		return view
	}

	view.Remaining = view.Total - view.Position
	view.CanPrevious = s.hasPrevious()
	view.CanNext = !(s.appendOnly() && st.Submitted && s.hasNext())
	view.CanContinue = s.appendOnly() && st.Submitted
	return view
}
