package service

import (
	"context"
	"errors"
	"hash/fnv"
	"interview_marker_backend/internal/model"
	"interview_marker_backend/internal/util"
	"interview_marker_backend/pkg/logger"
	"interview_marker_backend/pkg/monitoring"
	"interview_marker_backend/pkg/tracing"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SessionStore 每个评审会话的键值存储
type SessionStore interface {
	Get(ctx context.Context, id string) (*model.ReviewSessionState, error)
	Save(ctx context.Context, state *model.ReviewSessionState) error
}

const sessionLockStripes = 64

// ReviewService 每次交互：读取会话状态 -> 执行一个操作 -> 写回状态。
// 同一会话的交互串行执行。
type ReviewService struct {
	sessions SessionStore
	answers  AnswerSource
	store    FeedbackStore
	auth     *AuthService
	opts     ReviewOptions

	locks [sessionLockStripes]sync.Mutex
}

func NewReviewService(sessions SessionStore, answers AnswerSource, store FeedbackStore, auth *AuthService, opts ReviewOptions) *ReviewService {
	return &ReviewService{
		sessions: sessions,
		answers:  answers,
		store:    store,
		auth:     auth,
		opts:     opts,
	}
}

func (s *ReviewService) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%sessionLockStripes]
}

// CreateSession 新建未认证的会话并签发令牌
func (s *ReviewService) CreateSession(ctx context.Context) (string, *ReviewView, error) {
	state := model.NewReviewSessionState(uuid.New().String(), time.Now())
	if err := s.sessions.Save(ctx, state); err != nil {
		return "", nil, err
	}

	token, err := s.auth.IssueToken(state.ID)
	if err != nil {
		return "", nil, err
	}

	logger.ForSession(state.ID).Info("review session created")
	return token, s.newSession(state).View(), nil
}

func (s *ReviewService) newSession(state *model.ReviewSessionState) *ReviewSession {
	return NewReviewSession(state, s.answers, s.store, s.auth, s.opts)
}

// isReviewError 业务错误，状态变化仍需保存；其余错误（存储故障等）视为本次交互失败
func isReviewError(err error) bool {
	for _, target := range []error{
		util.ErrWrongPassword,
		util.ErrTooManyAttempts,
		util.ErrNotAuthenticated,
		util.ErrReviewerRequired,
		util.ErrReviewerUnset,
		util.ErrInvalidScore,
		util.ErrReviewDone,
		util.ErrSubmissionPending,
		util.ErrNothingSubmitted,
		util.ErrContinueDisabled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// run 在会话锁内执行 fn 并保存状态。业务错误时状态同样保存（如密码尝试次数），
// 外部存储失败时丢弃本次修改。
func (s *ReviewService) run(ctx context.Context, sessionID, op string, fn func(ctx context.Context, rs *ReviewSession) error) (*ReviewView, error) {
	ctx, span := tracing.StartSpan(ctx, "review."+op, attribute.String("review.session", sessionID))
	defer span.End()

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rs := s.newSession(state)
	before := state.Phase
	opErr := fn(ctx, rs)
	if opErr != nil && !isReviewError(opErr) {
		span.RecordError(opErr)
		logger.ForSession(sessionID).Error("review operation failed",
			zap.String("op", op),
			zap.Error(opErr))
		return nil, opErr
	}

	state.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, state); err != nil {
		logger.ForSession(sessionID).Error("failed to save review session", zap.Error(err))
		return nil, err
	}

	if before != model.PhaseDone && state.Phase == model.PhaseDone {
		monitoring.SessionsCompleted.Inc()
		logger.ForSession(sessionID).Info("review session done",
			zap.String("reviewer", state.ReviewerName))
	}

	if opErr != nil {
		span.RecordError(opErr)
		return rs.View(), opErr
	}
	return rs.View(), nil
}

func (s *ReviewService) State(ctx context.Context, sessionID string) (*ReviewView, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.newSession(state).View(), nil
}

// IsAuthenticated 导出等只读接口的访问控制
func (s *ReviewService) IsAuthenticated(ctx context.Context, sessionID string) (bool, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return state.Authenticated && state.Phase != model.PhaseLocked, nil
}

func (s *ReviewService) Authenticate(ctx context.Context, sessionID, password string) (*ReviewView, error) {
	return s.run(ctx, sessionID, "authenticate", func(ctx context.Context, rs *ReviewSession) error {
		err := rs.Authenticate(password)
		switch {
		case errors.Is(err, util.ErrWrongPassword):
			monitoring.PasswordFailures.WithLabelValues("false").Inc()
			logger.ForSession(sessionID).Warn("incorrect password",
				zap.Int("attemptsLeft", rs.AttemptsLeft()))
		case errors.Is(err, util.ErrTooManyAttempts):
			monitoring.PasswordFailures.WithLabelValues("true").Inc()
			logger.ForSession(sessionID).Warn("session locked after too many password attempts")
		}
		return err
	})
}

func (s *ReviewService) SetReviewer(ctx context.Context, sessionID, name string) (*ReviewView, error) {
	return s.run(ctx, sessionID, "set_reviewer", func(ctx context.Context, rs *ReviewSession) error {
		if err := rs.SetReviewer(ctx, name); err != nil {
			return err
		}
		logger.ForSession(sessionID).Info("reviewer set",
			zap.String("reviewer", rs.State.ReviewerName),
			zap.Int("answers", rs.State.AnswerCount),
			zap.Int("unreviewed", len(rs.State.Queue)))
		return nil
	})
}

func (s *ReviewService) LoadCurrent(ctx context.Context, sessionID string) (*ReviewView, error) {
	var view *ReviewView
	_, err := s.run(ctx, sessionID, "load_current", func(ctx context.Context, rs *ReviewSession) error {
		v, err := rs.LoadCurrent(ctx)
		view = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *ReviewService) UpdateDraft(ctx context.Context, sessionID string, draft model.Draft) (*ReviewView, error) {
	return s.run(ctx, sessionID, "update_draft", func(ctx context.Context, rs *ReviewSession) error {
		return rs.UpdateDraft(draft)
	})
}

func (s *ReviewService) Submit(ctx context.Context, sessionID string, draft model.Draft) (*model.FeedbackRecord, *ReviewView, error) {
	var record *model.FeedbackRecord
	view, err := s.run(ctx, sessionID, "submit", func(ctx context.Context, rs *ReviewSession) error {
		r, err := rs.Submit(ctx, draft)
		if err != nil {
			return err
		}
		record = r

		outcome := "appended"
		if rs.overwrote {
			outcome = "overwritten"
		}
		monitoring.FeedbackSubmissions.WithLabelValues(s.opts.Policy, outcome).Inc()
		logger.ForSession(sessionID).Info("feedback saved",
			zap.String("reviewer", r.ReviewerName),
			zap.Int("answerIndex", r.AnswerIndex),
			zap.Int("score", r.Score),
			zap.String("outcome", outcome),
			zap.Uint("position", r.ID))
		return nil
	})
	return record, view, err
}

func (s *ReviewService) Next(ctx context.Context, sessionID string) (*ReviewView, error) {
	return s.navigate(ctx, sessionID, "next", func(ctx context.Context, rs *ReviewSession) error {
		return rs.Next(ctx)
	})
}

func (s *ReviewService) Previous(ctx context.Context, sessionID string) (*ReviewView, error) {
	return s.navigate(ctx, sessionID, "previous", func(ctx context.Context, rs *ReviewSession) error {
		return rs.Previous(ctx)
	})
}

func (s *ReviewService) Continue(ctx context.Context, sessionID string) (*ReviewView, error) {
	return s.navigate(ctx, sessionID, "continue", func(ctx context.Context, rs *ReviewSession) error {
		return rs.Continue(ctx)
	})
}

func (s *ReviewService) navigate(ctx context.Context, sessionID, direction string, fn func(ctx context.Context, rs *ReviewSession) error) (*ReviewView, error) {
	return s.run(ctx, sessionID, direction, func(ctx context.Context, rs *ReviewSession) error {
		if err := fn(ctx, rs); err != nil {
			return err
		}
		monitoring.NavigationMoves.WithLabelValues(direction).Inc()
		return nil
	})
}
