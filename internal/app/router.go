package app

import (
	"interview_marker_backend/docs"
	"interview_marker_backend/internal/config"
	"interview_marker_backend/internal/middleware"
	"interview_marker_backend/internal/service"
	"interview_marker_backend/pkg/monitoring"
	"interview_marker_backend/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 会话锁定只针对单个会话，新建会话与密码校验共用一个按IP的限流器
	gate := security.RateLimiter(cfg.RateLimit.PasswordPerMinute, time.Minute)

	// 1. 公共路由
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/sessions", gate, c.review.CreateSession)
	}

	// 2. 会话路由，持有会话令牌即可访问，认证状态由会话自身判断
	session := router.Group("/api/session")
	session.Use(security.NoStore(), middleware.SessionMiddleware(cfg))
	{
		session.GET("", c.review.GetSession)
		session.POST("/password", gate, c.review.Authenticate)
		session.PUT("/reviewer", c.review.SetReviewer)
		session.GET("/current", c.review.Current)
		session.PUT("/draft", c.review.UpdateDraft)
		session.POST("/submit", c.review.Submit)
		session.POST("/next", c.review.Next)
		session.POST("/previous", c.review.Previous)
		session.POST("/continue", c.review.Continue)
	}

	// 3. 导出需要已通过密码校验的会话
	feedback := router.Group("/api/feedback")
	feedback.Use(security.NoStore(), middleware.SessionMiddleware(cfg), middleware.RequireAuthenticated(a.services.review))
	{
		feedback.GET("/export", c.export.Download)
		feedback.POST("/export", c.export.Upload)
	}

	// 4. 本地存储（含 minio/oss 不可用时的回退）的导出文件同样需要已认证会话
	if _, ok := a.services.storage.Provider.(*service.LocalStorageProvider); ok {
		registerUploadRoutes(router, cfg, a.services.review)
	}
}

// registerUploadRoutes 浏览器下载可用 ?token= 传递会话令牌
func registerUploadRoutes(router *gin.Engine, cfg *config.Config, checker middleware.SessionChecker) {
	uploads := router.Group("/uploads")
	uploads.Use(security.NoStore(), middleware.SessionMiddleware(cfg), middleware.RequireAuthenticated(checker))
	uploads.Static("/", cfg.Storage.LocalPath)
}
