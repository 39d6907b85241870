package service

import (
	"crypto/subtle"
	"interview_marker_backend/internal/config"
	"interview_marker_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 共享密码校验与会话令牌签发
type AuthService struct {
	Cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{Cfg: cfg}
}

// CheckPassword 配置了 bcrypt 哈希时按哈希比较，否则按明文常量时间比较
func (s *AuthService) CheckPassword(password string) bool {
	if s.Cfg.Auth.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.Cfg.Auth.PasswordHash), []byte(password)) == nil
	}
	if s.Cfg.Auth.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.Cfg.Auth.Password), []byte(password)) == 1
}

func (s *AuthService) IssueToken(sessionID string) (string, error) {
	return util.GenerateJWT(sessionID, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}
