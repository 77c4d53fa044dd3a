package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository/memory"
	"github.com/elokman/health-api/pkg/auth"
	apperrors "github.com/elokman/health-api/pkg/errors"
	"github.com/elokman/health-api/pkg/security"
)

func newTestService() (*Service, *auth.TokenIssuer) {
	issuer := auth.NewTokenIssuer("test-secret-0123456789", time.Hour)
	return NewService(memory.NewUserRepository(), security.NewBcryptHasher(4), issuer), issuer
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newTestService()

	user, err := svc.Register(ctx, &model.RegisterRequest{
		Username: "ayse",
		Email:    "ayse@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	token, got, err := svc.Login(ctx, "ayse@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ayse", claims.Username)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	req := &model.RegisterRequest{Username: "ayse", Email: "ayse@example.com", Password: "supersecret"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, &model.RegisterRequest{Username: "other", Email: "ayse@example.com", Password: "supersecret"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode())
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Register(ctx, &model.RegisterRequest{Username: "ayse", Email: "ayse@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, _, unknown := svc.Login(ctx, "nobody@example.com", "supersecret")
	_, _, wrong := svc.Login(ctx, "ayse@example.com", "wrongpassword")

	for _, err := range []error{unknown, wrong} {
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode())
		assert.Equal(t, "invalid credentials", appErr.Message)
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	}
}
