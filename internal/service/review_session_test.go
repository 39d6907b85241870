package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"interview_marker_backend/internal/config"
	"interview_marker_backend/internal/model"
	"interview_marker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "let-me-in"

type memoryAnswers struct {
	answers []model.Answer
	err     error
}

func (m *memoryAnswers) ListAnswers(ctx context.Context) ([]model.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.answers, nil
}

type memoryStore struct {
	records []model.FeedbackRecord
	nextID  uint
	listErr error
	appends int
}

func (m *memoryStore) ListRecords(ctx context.Context) ([]model.FeedbackRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.FeedbackRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memoryStore) AppendRecord(ctx context.Context, record *model.FeedbackRecord) error {
	m.nextID++
	record.ID = m.nextID
	m.records = append(m.records, *record)
	m.appends++
	return nil
}

func (m *memoryStore) OverwriteRecord(ctx context.Context, position uint, record *model.FeedbackRecord) error {
	for i := range m.records {
		if m.records[i].ID == position {
			record.ID = position
			m.records[i] = *record
			return nil
		}
	}
	return fmt.Errorf("no record at position %d", position)
}

func (m *memoryStore) seed(answerIndex int, reviewer string, score int, feedback string) {
	m.nextID++
	m.records = append(m.records, model.FeedbackRecord{
		ID:               m.nextID,
		AnswerIndex:      answerIndex,
		ReviewerName:     reviewer,
		ReviewerFeedback: feedback,
		Score:            score,
	})
}

func (m *memoryStore) forKey(answerIndex int, reviewer string) []model.FeedbackRecord {
	var out []model.FeedbackRecord
	for _, r := range m.records {
		if r.AnswerIndex == answerIndex && r.ReviewerName == reviewer {
			out = append(out, r)
		}
	}
	return out
}

type staticSecret string

func (s staticSecret) CheckPassword(password string) bool {
	return password == string(s)
}

func makeAnswers(n int) []model.Answer {
	answers := make([]model.Answer, n)
	for i := range answers {
		answers[i] = model.Answer{
			AnswerIndex:     i,
			Text:            fmt.Sprintf("answer %d", i),
			MachineFeedback: fmt.Sprintf("gpt says %d", i),
		}
	}
	return answers
}

func newTestSession(t *testing.T, navigation, policy string, answers int, store *memoryStore) *ReviewSession {
	t.Helper()
	if store == nil {
		store = &memoryStore{}
	}
	state := model.NewReviewSessionState("test-session", time.Now())
	s := NewReviewSession(state, &memoryAnswers{answers: makeAnswers(answers)}, store, staticSecret(testPassword), ReviewOptions{
		Navigation:  navigation,
		Policy:      policy,
		MaxAttempts: 3,
	})
	s.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return s
}

func startReviewing(t *testing.T, s *ReviewSession, reviewer string) {
	t.Helper()
	require.NoError(t, s.Authenticate(testPassword))
	require.NoError(t, s.SetReviewer(context.Background(), reviewer))
}

func TestReviewSession_Authenticate(t *testing.T) {
	t.Run("correct password", func(t *testing.T) {
		s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 1, nil)
		require.NoError(t, s.Authenticate(testPassword))
		assert.True(t, s.State.Authenticated)
		assert.Equal(t, model.PhaseReviewerUnset, s.State.Phase)

		// 已认证后再次调用不改变状态
		require.NoError(t, s.Authenticate("whatever"))
		assert.Equal(t, 0, s.State.PasswordAttempts)
	})

	t.Run("budget exhausted locks the session", func(t *testing.T) {
		s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 1, nil)

		assert.ErrorIs(t, s.Authenticate("nope"), util.ErrWrongPassword)
		assert.Equal(t, 2, s.AttemptsLeft())
		assert.ErrorIs(t, s.Authenticate("nope"), util.ErrWrongPassword)
		assert.Equal(t, 1, s.AttemptsLeft())
		assert.ErrorIs(t, s.Authenticate("nope"), util.ErrTooManyAttempts)
		assert.Equal(t, model.PhaseLocked, s.State.Phase)

		assert.ErrorIs(t, s.Authenticate(testPassword), util.ErrTooManyAttempts)
		assert.False(t, s.State.Authenticated)
		assert.ErrorIs(t, s.SetReviewer(context.Background(), "X"), util.ErrTooManyAttempts)
	})

	t.Run("operations require authentication", func(t *testing.T) {
		s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 1, nil)
		ctx := context.Background()

		assert.ErrorIs(t, s.SetReviewer(ctx, "X"), util.ErrNotAuthenticated)
		_, err := s.Submit(ctx, model.Draft{Score: 5})
		assert.ErrorIs(t, err, util.ErrNotAuthenticated)
		assert.ErrorIs(t, s.Next(ctx), util.ErrNotAuthenticated)
		assert.ErrorIs(t, s.Previous(ctx), util.ErrNotAuthenticated)
	})
}

func TestReviewSession_SetReviewer(t *testing.T) {
	ctx := context.Background()

	t.Run("empty name is rejected", func(t *testing.T) {
		s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 2, nil)
		require.NoError(t, s.Authenticate(testPassword))

		assert.ErrorIs(t, s.SetReviewer(ctx, ""), util.ErrReviewerRequired)
		assert.ErrorIs(t, s.SetReviewer(ctx, "   "), util.ErrReviewerRequired)
		assert.Equal(t, model.PhaseReviewerUnset, s.State.Phase)

		_, err := s.Submit(ctx, model.Draft{Score: 5})
		assert.ErrorIs(t, err, util.ErrReviewerUnset)
	})

	t.Run("queue skips answers already reviewed", func(t *testing.T) {
		store := &memoryStore{}
		store.seed(1, "X", 8, "done")
		store.seed(2, "Y", 3, "other reviewer")
		s := newTestSession(t, config.NavigationQueue, config.PolicyUpsert, 3, store)
		startReviewing(t, s, "X")

		assert.Equal(t, []int{1, 2}, s.State.Queue)
		assert.Equal(t, 1, s.State.Cursor)
		assert.Equal(t, model.DefaultDraft(), s.State.Draft)
	})

	t.Run("queue exhausted goes straight to done", func(t *testing.T) {
		store := &memoryStore{}
		store.seed(1, "X", 8, "a")
		store.seed(2, "X", 9, "b")
		s := newTestSession(t, config.NavigationQueue, config.PolicyUpsert, 2, store)
		startReviewing(t, s, "X")

		assert.Equal(t, model.PhaseDone, s.State.Phase)
		require.NoError(t, s.Next(ctx))
		require.NoError(t, s.Previous(ctx))
		assert.Equal(t, model.PhaseDone, s.State.Phase)
		assert.Equal(t, 0, store.appends)
	})

	t.Run("no answers at all", func(t *testing.T) {
		s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 0, nil)
		startReviewing(t, s, "X")
		assert.Equal(t, model.PhaseDone, s.State.Phase)
	})

	t.Run("linear mode prefills the first answer", func(t *testing.T) {
		store := &memoryStore{}
		store.seed(1, "X", 2, "weak")
		s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 2, store)
		startReviewing(t, s, "X")

		assert.Equal(t, model.Draft{Score: 2, Feedback: "weak"}, s.State.Draft)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		boom := errors.New("sheet unavailable")
		s := newTestSession(t, config.NavigationQueue, config.PolicyUpsert, 2, &memoryStore{listErr: boom})
		require.NoError(t, s.Authenticate(testPassword))

		assert.ErrorIs(t, s.SetReviewer(ctx, "X"), boom)
		assert.Equal(t, model.PhaseReviewerUnset, s.State.Phase)
	})
}

func TestReviewSession_SubmitScoreRange(t *testing.T) {
	tests := []struct {
		score int
		ok    bool
	}{
		{-1, false},
		{0, true},
		{5, true},
		{10, true},
		{11, false},
		{100, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %d", tt.score), func(t *testing.T) {
			store := &memoryStore{}
			s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 1, store)
			startReviewing(t, s, "X")

			_, err := s.Submit(context.Background(), model.Draft{Score: tt.score, Feedback: "x"})
			if tt.ok {
				require.NoError(t, err)
				require.Len(t, store.records, 1)
				assert.Equal(t, tt.score, store.records[0].Score)
			} else {
				assert.ErrorIs(t, err, util.ErrInvalidScore)
				assert.Empty(t, store.records)
				assert.ErrorIs(t, s.UpdateDraft(model.Draft{Score: tt.score}), util.ErrInvalidScore)
			}
		})
	}
}

func TestReviewSession_UpsertIdempotence(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 2, store)
	startReviewing(t, s, "X")

	_, err := s.Submit(ctx, model.Draft{Score: 3, Feedback: "first"})
	require.NoError(t, err)
	rec, err := s.Submit(ctx, model.Draft{Score: 9, Feedback: "second"})
	require.NoError(t, err)

	stored := store.forKey(1, "X")
	require.Len(t, stored, 1)
	assert.Equal(t, 9, stored[0].Score)
	assert.Equal(t, "second", stored[0].ReviewerFeedback)
	assert.Equal(t, stored[0].ID, rec.ID)
	assert.Equal(t, "answer 0", stored[0].AnswerText)
	assert.Equal(t, "gpt says 0", stored[0].MachineFeedback)
}

func TestReviewSession_UpsertOverwritesLatestDuplicate(t *testing.T) {
	store := &memoryStore{}
	store.seed(1, "X", 1, "old")
	store.seed(1, "X", 2, "newer")
	s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 1, store)
	startReviewing(t, s, "X")

	assert.Equal(t, model.Draft{Score: 2, Feedback: "newer"}, s.State.Draft)

	_, err := s.Submit(context.Background(), model.Draft{Score: 6, Feedback: "fixed"})
	require.NoError(t, err)

	require.Len(t, store.records, 2)
	assert.Equal(t, "old", store.records[0].ReviewerFeedback)
	assert.Equal(t, "fixed", store.records[1].ReviewerFeedback)
	assert.Equal(t, uint(2), store.records[1].ID)
}

func TestReviewSession_AppendOnly(t *testing.T) {
	ctx := context.Background()

	t.Run("every submit appends and latest wins", func(t *testing.T) {
		store := &memoryStore{}
		s := newTestSession(t, config.NavigationLinear, config.PolicyAppend, 2, store)
		startReviewing(t, s, "X")

		_, err := s.Submit(ctx, model.Draft{Score: 4, Feedback: "one"})
		require.NoError(t, err)
		_, err = s.Submit(ctx, model.Draft{Score: 7, Feedback: "two"})
		require.NoError(t, err)

		assert.Len(t, store.forKey(1, "X"), 2)

		view, err := s.LoadCurrent(ctx)
		require.NoError(t, err)
		require.NotNil(t, view.Existing)
		assert.Equal(t, "two", view.Existing.ReviewerFeedback)
	})

	t.Run("next is blocked after submit until continue", func(t *testing.T) {
		s := newTestSession(t, config.NavigationLinear, config.PolicyAppend, 3, nil)
		startReviewing(t, s, "X")

		_, err := s.Submit(ctx, model.Draft{Score: 6, Feedback: "ok"})
		require.NoError(t, err)
		assert.True(t, s.State.Submitted)
		assert.False(t, s.View().CanNext)
		assert.True(t, s.View().CanContinue)

		assert.ErrorIs(t, s.Next(ctx), util.ErrSubmissionPending)
		assert.Equal(t, 0, s.State.Cursor)
		assert.True(t, s.State.Submitted)

		require.NoError(t, s.Continue(ctx))
		assert.Equal(t, 1, s.State.Cursor)
		assert.False(t, s.State.Submitted)
		assert.Equal(t, model.DefaultDraft(), s.State.Draft)

		assert.ErrorIs(t, s.Continue(ctx), util.ErrNothingSubmitted)

		// 未提交时可以直接跳过
		require.NoError(t, s.Next(ctx))
		assert.Equal(t, 2, s.State.Cursor)
	})

	t.Run("submit on the last answer does not block finishing", func(t *testing.T) {
		s := newTestSession(t, config.NavigationLinear, config.PolicyAppend, 1, nil)
		startReviewing(t, s, "X")

		_, err := s.Submit(ctx, model.Draft{Score: 6})
		require.NoError(t, err)
		require.NoError(t, s.Next(ctx))
		assert.Equal(t, model.PhaseDone, s.State.Phase)
	})

	t.Run("continue is an append-only step", func(t *testing.T) {
		s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 2, nil)
		startReviewing(t, s, "X")
		assert.ErrorIs(t, s.Continue(ctx), util.ErrContinueDisabled)
	})
}

func TestReviewSession_LinearBounds(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 2, nil)
	startReviewing(t, s, "X")

	require.NoError(t, s.Previous(ctx))
	assert.Equal(t, 0, s.State.Cursor)
	assert.Equal(t, model.PhaseReviewing, s.State.Phase)

	require.NoError(t, s.Next(ctx))
	assert.Equal(t, 1, s.State.Cursor)
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, model.PhaseDone, s.State.Phase)

	require.NoError(t, s.Next(ctx))
	assert.Equal(t, model.PhaseDone, s.State.Phase)

	view, err := s.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Nil(t, view.Answer)
	assert.Equal(t, model.PhaseDone, view.Phase)

	_, err = s.Submit(ctx, model.Draft{Score: 5})
	assert.ErrorIs(t, err, util.ErrReviewDone)
}

func TestReviewSession_QueueNavigation(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	store.seed(2, "X", 5, "")
	s := newTestSession(t, config.NavigationQueue, config.PolicyAppend, 4, store)
	startReviewing(t, s, "X")

	assert.Equal(t, []int{0, 2, 3}, s.State.Queue)

	require.NoError(t, s.Previous(ctx))
	assert.Equal(t, 0, s.State.Cursor)

	require.NoError(t, s.UpdateDraft(model.Draft{Score: 9, Feedback: "typing"}))
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, 2, s.State.Cursor)
	assert.Equal(t, model.DefaultDraft(), s.State.Draft)

	require.NoError(t, s.UpdateDraft(model.Draft{Score: 1, Feedback: "more"}))
	require.NoError(t, s.Previous(ctx))
	assert.Equal(t, 0, s.State.Cursor)
	assert.Equal(t, model.DefaultDraft(), s.State.Draft)

	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, 3, s.State.Cursor)
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, model.PhaseDone, s.State.Phase)
}

func TestReviewSession_UpsertScenario(t *testing.T) {
	for _, navigation := range []string{config.NavigationLinear, config.NavigationQueue} {
		t.Run(navigation, func(t *testing.T) {
			ctx := context.Background()
			store := &memoryStore{}
			s := newTestSession(t, navigation, config.PolicyUpsert, 2, store)
			startReviewing(t, s, "X")

			view, err := s.LoadCurrent(ctx)
			require.NoError(t, err)
			require.NotNil(t, view.Answer)
			assert.Equal(t, "answer 0", view.Answer.Text)
			assert.Equal(t, model.DefaultDraft(), view.Draft)
			assert.Nil(t, view.Existing)

			_, err = s.Submit(ctx, model.Draft{Score: 7, Feedback: "ok"})
			require.NoError(t, err)
			require.Len(t, store.records, 1)
			assert.Equal(t, model.FeedbackKey{AnswerIndex: 1, ReviewerName: "X"}, store.records[0].Key())
			assert.Equal(t, 7, store.records[0].Score)

			require.NoError(t, s.Next(ctx))
			view, err = s.LoadCurrent(ctx)
			require.NoError(t, err)
			assert.Equal(t, "answer 1", view.Answer.Text)
			assert.Equal(t, model.DefaultDraft(), view.Draft)

			require.NoError(t, s.Previous(ctx))
			view, err = s.LoadCurrent(ctx)
			require.NoError(t, err)
			assert.Equal(t, "answer 0", view.Answer.Text)
			assert.Equal(t, model.Draft{Score: 7, Feedback: "ok"}, view.Draft)
			assert.Len(t, store.records, 1)
		})
	}
}

func TestReviewSession_LoadCurrentKeepsEditedDraft(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	store.seed(1, "X", 3, "stored")
	s := newTestSession(t, config.NavigationLinear, config.PolicyUpsert, 1, store)
	startReviewing(t, s, "X")

	require.NoError(t, s.UpdateDraft(model.Draft{Score: 8, Feedback: "editing"}))

	view, err := s.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Draft{Score: 8, Feedback: "editing"}, view.Draft)
	assert.Equal(t, "stored", view.Existing.ReviewerFeedback)
	assert.Len(t, store.records, 1)
}

func TestReviewSession_ReenterReviewer(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	s := newTestSession(t, config.NavigationQueue, config.PolicyUpsert, 1, store)
	startReviewing(t, s, "X")

	_, err := s.Submit(ctx, model.Draft{Score: 5})
	require.NoError(t, err)
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, model.PhaseDone, s.State.Phase)

	// 另一位评审人重新进入时重新计算队列
	require.NoError(t, s.SetReviewer(ctx, "Y"))
	assert.Equal(t, model.PhaseReviewing, s.State.Phase)
	assert.Equal(t, []int{0}, s.State.Queue)
}

func TestReviewSession_SparseAnswerIndex(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	answers := []model.Answer{
		{AnswerIndex: 1, Text: "first"},
		{AnswerIndex: 2, Text: "second"},
	}
	newSession := func() *ReviewSession {
		state := model.NewReviewSessionState("sparse", time.Now())
		return NewReviewSession(state, &memoryAnswers{answers: answers}, store, staticSecret(testPassword), ReviewOptions{
			Navigation:  config.NavigationQueue,
			Policy:      config.PolicyUpsert,
			MaxAttempts: 3,
		})
	}

	s := newSession()
	startReviewing(t, s, "X")

	record, err := s.Submit(ctx, model.Draft{Score: 7, Feedback: "ok"})
	require.NoError(t, err)
	assert.Equal(t, 1, record.AnswerIndex)
	assert.Equal(t, "first", record.AnswerText)

	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Previous(ctx))
	assert.Equal(t, model.Draft{Score: 7, Feedback: "ok"}, s.State.Draft)

	view, err := s.LoadCurrent(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.Existing)
	assert.Equal(t, "ok", view.Existing.ReviewerFeedback)

	// 重新进入时只剩第二个答案
	again := newSession()
	startReviewing(t, again, "X")
	assert.Equal(t, []int{1}, again.State.Queue)
	assert.Equal(t, 1, again.State.Cursor)
}
