package controller

import (
	"errors"
	"interview_marker_backend/internal/model"
	"interview_marker_backend/internal/service"
	"interview_marker_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	service *service.ReviewService
}

func NewReviewController(s *service.ReviewService) *ReviewController {
	return &ReviewController{service: s}
}

type PasswordRequest struct {
	Password string `json:"password"`
}

type ReviewerRequest struct {
	Name string `json:"name"`
}

// DraftRequest Score 用指针区分"未填写"与 0 分
type DraftRequest struct {
	Score    *int   `json:"score" binding:"required"`
	Feedback string `json:"feedback"`
}

func (r *DraftRequest) draft() model.Draft {
	return model.Draft{Score: *r.Score, Feedback: r.Feedback}
}

// respondError 把业务错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error, view *service.ReviewView) {
	switch {
	case errors.Is(err, util.ErrWrongPassword):
		attemptsLeft := 0
		if view != nil {
			attemptsLeft = view.AttemptsLeft
		}
		util.ErrorWithData(ctx, http.StatusUnauthorized, err.Error(), gin.H{"attemptsLeft": attemptsLeft})
	case errors.Is(err, util.ErrTooManyAttempts):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrNotAuthenticated), errors.Is(err, util.ErrSessionNotFound):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrReviewerRequired),
		errors.Is(err, util.ErrReviewerUnset),
		errors.Is(err, util.ErrInvalidScore):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrSubmissionPending),
		errors.Is(err, util.ErrNothingSubmitted),
		errors.Is(err, util.ErrContinueDisabled),
		errors.Is(err, util.ErrReviewDone):
		util.ErrorWithData(ctx, http.StatusConflict, err.Error(), view)
	default:
		util.LogInternalError(ctx, err)
	}
}

// CreateSession godoc
// @Summary 创建评审会话
// @Description 返回会话令牌，后续请求放在 Authorization: Bearer 中
// @Tags 评审
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/sessions [post]
func (c *ReviewController) CreateSession(ctx *gin.Context) {
	token, view, err := c.service.CreateSession(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"token": token, "session": view})
}

// GetSession godoc
// @Summary 获取会话状态
// @Tags 评审
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Router /api/session [get]
func (c *ReviewController) GetSession(ctx *gin.Context) {
	view, err := c.service.State(ctx.Request.Context(), util.GetSessionIDFromContext(ctx))
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, view)
}

// Authenticate godoc
// @Summary 校验访问密码
// @Description 连续错误 3 次后会话锁定，需要新建会话
// @Tags 评审
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body PasswordRequest true "访问密码"
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Router /api/session/password [post]
func (c *ReviewController) Authenticate(ctx *gin.Context) {
	var req PasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.service.Authenticate(ctx.Request.Context(), util.GetSessionIDFromContext(ctx), req.Password)
	if err != nil {
		respondError(ctx, err, view)
		return
	}
	util.Success(ctx, view)
}

// SetReviewer godoc
// @Summary 设置评审人姓名
// @Tags 评审
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ReviewerRequest true "评审人"
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Router /api/session/reviewer [put]
func (c *ReviewController) SetReviewer(ctx *gin.Context) {
	var req ReviewerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.service.SetReviewer(ctx.Request.Context(), util.GetSessionIDFromContext(ctx), req.Name)
	if err != nil {
		respondError(ctx, err, view)
		return
	}
	util.Success(ctx, view)
}

// Current godoc
// @Summary 当前答案
// @Description 返回当前答案、机器反馈、草稿与已有反馈
// @Tags 评审
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Router /api/session/current [get]
func (c *ReviewController) Current(ctx *gin.Context) {
	view, err := c.service.LoadCurrent(ctx.Request.Context(), util.GetSessionIDFromContext(ctx))
	if err != nil {
		respondError(ctx, err, view)
		return
	}
	util.Success(ctx, view)
}

// UpdateDraft godoc
// @Summary 保存输入中的草稿
// @Tags 评审
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body DraftRequest true "评分(0-10)与评语"
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Router /api/session/draft [put]
func (c *ReviewController) UpdateDraft(ctx *gin.Context) {
	var req DraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.service.UpdateDraft(ctx.Request.Context(), util.GetSessionIDFromContext(ctx), req.draft())
	if err != nil {
		respondError(ctx, err, view)
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary 提交反馈
// @Description upsert 策略覆盖已有记录，append 策略追加新行
// @Tags 评审
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body DraftRequest true "评分(0-10)与评语"
// @Success 200 {object} util.Response
// @Router /api/session/submit [post]
func (c *ReviewController) Submit(ctx *gin.Context) {
	var req DraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, view, err := c.service.Submit(ctx.Request.Context(), util.GetSessionIDFromContext(ctx), req.draft())
	if err != nil {
		respondError(ctx, err, view)
		return
	}
	util.Success(ctx, gin.H{"record": record, "session": view})
}

// Next godoc
// @Summary 下一个答案
// @Tags 评审
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Router /api/session/next [post]
func (c *ReviewController) Next(ctx *gin.Context) {
	view, err := c.service.Next(ctx.Request.Context(), util.GetSessionIDFromContext(ctx))
	if err != nil {
		respondError(ctx, err, view)
		return
	}
	util.Success(ctx, view)
}

// Previous godoc
// @Summary 上一个答案
// @Tags 评审
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Router /api/session/previous [post]
func (c *ReviewController) Previous(ctx *gin.Context) {
	view, err := c.service.Previous(ctx.Request.Context(), util.GetSessionIDFromContext(ctx))
	if err != nil {
		respondError(ctx, err, view)
		return
	}
	util.Success(ctx, view)
}

// Continue godoc
// @Summary 提交后继续（仅 append 策略）
// @Tags 评审
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ReviewView}
// @Router /api/session/continue [post]
func (c *ReviewController) Continue(ctx *gin.Context) {
	view, err := c.service.Continue(ctx.Request.Context(), util.GetSessionIDFromContext(ctx))
	if err != nil {
		respondError(ctx, err, view)
		return
	}
	util.Success(ctx, view)
}
