package controller

import (
	"interview_marker_backend/internal/service"
	"interview_marker_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	service *service.ExportService
}

func NewExportController(s *service.ExportService) *ExportController {
	return &ExportController{service: s}
}

// Download godoc
// @Summary 下载反馈表 CSV
// @Tags 导出
// @Produce text/csv
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Router /api/feedback/export [get]
func (c *ExportController) Download(ctx *gin.Context) {
	ctx.Header("Content-Type", util.MimeCSV+"; charset=utf-8")
	ctx.Header("Content-Disposition", "attachment; filename="+c.service.Filename())
	ctx.Status(http.StatusOK)

	if _, err := c.service.WriteCSV(ctx.Request.Context(), ctx.Writer); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
}

// Upload godoc
// @Summary 导出反馈表到存储
// @Tags 导出
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/feedback/export [post]
func (c *ExportController) Upload(ctx *gin.Context) {
	url, count, err := c.service.Upload(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url, "records": count})
}
