package controller

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"interview_marker_backend/internal/config"
	"interview_marker_backend/internal/middleware"
	"interview_marker_backend/internal/model"
	"interview_marker_backend/internal/service"
	"interview_marker_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionMap struct {
	mu   sync.Mutex
	data map[string]model.ReviewSessionState
}

func (m *sessionMap) Get(ctx context.Context, id string) (*model.ReviewSessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.data[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	state.Queue = append([]int(nil), state.Queue...)
	return &state, nil
}

func (m *sessionMap) Save(ctx context.Context, state *model.ReviewSessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[state.ID] = *state
	return nil
}

type answerList []model.Answer

func (a answerList) ListAnswers(ctx context.Context) ([]model.Answer, error) {
	return a, nil
}

type recordList struct {
	mu      sync.Mutex
	records []model.FeedbackRecord
}

func (r *recordList) ListRecords(ctx context.Context) ([]model.FeedbackRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.FeedbackRecord(nil), r.records...), nil
}

func (r *recordList) AppendRecord(ctx context.Context, record *model.FeedbackRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = uint(len(r.records) + 1)
	r.records = append(r.records, *record)
	return nil
}

func (r *recordList) OverwriteRecord(ctx context.Context, position uint, record *model.FeedbackRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = position
	r.records[position-1] = *record
	return nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	store  *recordList
	token  string
}

func newTestServer(t *testing.T, policy string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", ExpireTime: time.Hour},
		Auth:   config.AuthConfig{Password: "letmein", MaxAttempts: 3},
		Review: config.ReviewConfig{Navigation: config.NavigationLinear, Policy: policy},
	}

	answers := answerList{
		{AnswerIndex: 0, Text: "first", MachineFeedback: "m1"},
		{AnswerIndex: 1, Text: "second", MachineFeedback: "m2"},
	}
	store := &recordList{}
	reviews := service.NewReviewService(&sessionMap{data: map[string]model.ReviewSessionState{}}, answers, store, service.NewAuthService(cfg), service.ReviewOptionsFromConfig(cfg))
	rc := NewReviewController(reviews)
	ec := NewExportController(service.NewExportService(store, nil))

	router := gin.New()
	router.POST("/api/sessions", rc.CreateSession)
	session := router.Group("/api/session", middleware.SessionMiddleware(cfg))
	session.GET("", rc.GetSession)
	session.POST("/password", rc.Authenticate)
	session.PUT("/reviewer", rc.SetReviewer)
	session.GET("/current", rc.Current)
	session.PUT("/draft", rc.UpdateDraft)
	session.POST("/submit", rc.Submit)
	session.POST("/next", rc.Next)
	session.POST("/previous", rc.Previous)
	session.POST("/continue", rc.Continue)
	router.GET("/api/feedback/export", middleware.SessionMiddleware(cfg), middleware.RequireAuthenticated(reviews), ec.Download)

	srv := &testServer{router: router, store: store}

	w := srv.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	require.NotEmpty(t, created.Token)
	srv.token = created.Token
	return srv
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) service.ReviewView {
	t.Helper()
	var view service.ReviewView
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &view))
	return view
}

func score(n int) *int {
	return &n
}

func TestReviewController_RequiresToken(t *testing.T) {
	srv := newTestServer(t, config.PolicyUpsert)
	srv.token = ""

	w := srv.do(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReviewController_PasswordLockout(t *testing.T) {
	srv := newTestServer(t, config.PolicyUpsert)

	w := srv.do(t, http.MethodPost, "/api/session/password", PasswordRequest{Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var data struct {
		AttemptsLeft int `json:"attemptsLeft"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, 2, data.AttemptsLeft)

	srv.do(t, http.MethodPost, "/api/session/password", PasswordRequest{Password: "nope"})
	w = srv.do(t, http.MethodPost, "/api/session/password", PasswordRequest{Password: "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPost, "/api/session/password", PasswordRequest{Password: "letmein"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodGet, "/api/feedback/export", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReviewController_NotAuthenticated(t *testing.T) {
	srv := newTestServer(t, config.PolicyUpsert)

	w := srv.do(t, http.MethodPut, "/api/session/reviewer", ReviewerRequest{Name: "X"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReviewController_UpsertFlow(t *testing.T) {
	srv := newTestServer(t, config.PolicyUpsert)

	w := srv.do(t, http.MethodPost, "/api/session/password", PasswordRequest{Password: "letmein"})
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPut, "/api/session/reviewer", ReviewerRequest{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPut, "/api/session/reviewer", ReviewerRequest{Name: "X"})
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/api/session/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView(t, w)
	require.NotNil(t, view.Answer)
	assert.Equal(t, "first", view.Answer.Text)
	assert.Equal(t, model.DefaultDraft(), view.Draft)

	w = srv.do(t, http.MethodPost, "/api/session/submit", DraftRequest{Score: score(11)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/session/submit", DraftRequest{Feedback: "no score"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/session/submit", DraftRequest{Score: score(0), Feedback: "weak"})
	require.Equal(t, http.StatusOK, w.Code)
	w = srv.do(t, http.MethodPost, "/api/session/submit", DraftRequest{Score: score(4), Feedback: "weak but ok"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, srv.store.records, 1)
	assert.Equal(t, 4, srv.store.records[0].Score)

	w = srv.do(t, http.MethodPost, "/api/session/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeView(t, w).Position)

	w = srv.do(t, http.MethodPost, "/api/session/continue", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/api/session/previous", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.Draft{Score: 4, Feedback: "weak but ok"}, decodeView(t, w).Draft)

	w = srv.do(t, http.MethodGet, "/api/feedback/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "feedback-")
	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.FeedbackSheetHeader, rows[0])
	assert.Equal(t, "1", rows[1][1])
	assert.Equal(t, "4", rows[1][6])
}

func TestReviewController_AppendOnlyNeedsContinue(t *testing.T) {
	srv := newTestServer(t, config.PolicyAppend)

	srv.do(t, http.MethodPost, "/api/session/password", PasswordRequest{Password: "letmein"})
	srv.do(t, http.MethodPut, "/api/session/reviewer", ReviewerRequest{Name: "X"})

	w := srv.do(t, http.MethodPost, "/api/session/continue", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/api/session/submit", DraftRequest{Score: score(7), Feedback: "good"})
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPost, "/api/session/next", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	view := decodeView(t, w)
	assert.True(t, view.CanContinue)
	assert.False(t, view.CanNext)

	w = srv.do(t, http.MethodPost, "/api/session/continue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeView(t, w)
	assert.Equal(t, 2, view.Position)
	assert.Equal(t, model.DefaultDraft(), view.Draft)
	assert.False(t, view.Submitted)
}
