package middleware

import (
	"context"
	"errors"
	"interview_marker_backend/internal/config"
	"interview_marker_backend/internal/util"
	"interview_marker_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionMiddleware 解析会话令牌，把会话ID放入上下文
func SessionMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("invalid session token", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextSessionID, claims.SessionID)
		c.Next()
	}
}

// SessionChecker 判断会话是否已通过密码校验
type SessionChecker interface {
	IsAuthenticated(ctx context.Context, sessionID string) (bool, error)
}

// RequireAuthenticated 必须在 SessionMiddleware 之后使用
func RequireAuthenticated(checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := checker.IsAuthenticated(c.Request.Context(), util.GetSessionIDFromContext(c))
		if err != nil {
			if errors.Is(err, util.ErrSessionNotFound) {
				util.Unauthorized(c)
			} else {
				util.LogInternalError(c, err)
			}
			c.Abort()
			return
		}
		if !ok {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
