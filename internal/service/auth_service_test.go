package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/pkg/jwt"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewAuthService(&config.Config{
		Auth: config.AuthConfig{
			Username:     "admin",
			PasswordHash: string(hash),
		},
		JWT: config.JWTConfig{
			Secret:      "test-secret",
			ExpireHours: 24,
		},
	})
}

func TestAuthService_Login(t *testing.T) {
	svc := setupAuthService(t)

	token, err := svc.Login("admin", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwt.ParseToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Login("nobody", "admin123")
	assert.ErrorIs(t, err, ErrBadCredentials)
}
