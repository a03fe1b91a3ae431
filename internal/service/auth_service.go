package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/pkg/jwt"
)

var ErrBadCredentials = errors.New("用户名或密码错误")

// AuthService 操作员登录。凭证来自配置（密码为 bcrypt 哈希），
// 本系统没有多用户账户体系。
type AuthService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// Login 校验操作员凭证并签发访问令牌
func (s *AuthService) Login(username, password string) (string, error) {
	if username != s.cfg.Auth.Username {
		return "", ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.Auth.PasswordHash), []byte(password)); err != nil {
		return "", ErrBadCredentials
	}

	token, err := jwt.GenerateToken(username, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return "", err
	}
	return token, nil
}
