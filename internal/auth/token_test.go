package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnease_backend/internal/common"
	"learnease_backend/internal/config"
	"learnease_backend/internal/student"
)

func newTokenService(secret string) *JWTService {
	cfg := &config.Config{
		JWTSecretKey:          secret,
		JWTAccessTokenExpiry:  time.Hour,
		JWTRefreshTokenExpiry: 24 * time.Hour,
	}
	return NewJWTService(cfg, zap.NewNop()).(*JWTService)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTokenService("test-secret")
	rec := &student.Student{Email: "ada@example.com"}
	rec.ID = uuid.New()

	token, expiresAt, err := svc.GenerateAccessToken(rec)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, claims.AccountID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, common.RoleStudent, claims.Role)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	rec := &student.Student{Email: "ada@example.com"}
	rec.ID = uuid.New()

	token, _, err := newTokenService("secret-a").GenerateAccessToken(rec)
	require.NoError(t, err)

	_, err = newTokenService("secret-b").ValidateToken(token)
	require.Error(t, err)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := newTokenService("test-secret")
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
