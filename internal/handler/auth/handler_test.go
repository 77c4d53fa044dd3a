package auth

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/elokman/health-api/internal/handler/handlertest"
	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository/memory"
	"github.com/elokman/health-api/internal/service/auth"
	"github.com/elokman/health-api/pkg/security"
)

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	svc := auth.NewService(memory.NewUserRepository(), security.NewBcryptHasher(bcrypt.MinCost), handlertest.Issuer)
	return handlertest.Public(NewHandler(svc).RegisterRoutes)
}

func register(t *testing.T, r *gin.Engine) model.RegisterResponse {
	t.Helper()
	resp := handlertest.MakeRequest(r, http.MethodPost, "/api/auth/register", map[string]string{
		"username":    "ayse_y",
		"email":       "  Ayse@Example.com ",
		"password":    "s3cret-pass",
		"fullName":    "Ayşe Yılmaz",
		"phoneNumber": "05321234567",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var out model.RegisterResponse
	resp.Decode(t, &out)
	return out
}

func TestRegister(t *testing.T) {
	r := setup(t)
	out := register(t, r)

	assert.Equal(t, "user registered successfully, please log in", out.Message)
	assert.NotZero(t, out.User.ID)
	assert.Equal(t, "ayse@example.com", out.User.Email)
	require.NotNil(t, out.User.CreatedAt)

	resp := handlertest.MakeRequest(r, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "other", "email": "AYSE@example.com", "password": "another-pass",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.JSONEq(t, `{"errors":[{"message":"username or email already registered"}]}`, resp.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	r := setup(t)

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"short username", map[string]string{"username": "ay", "email": "a@b.co", "password": "password1"}, "username"},
		{"bad email", map[string]string{"username": "ayse", "email": "nope", "password": "password1"}, "email"},
		{"short password", map[string]string{"username": "ayse", "email": "a@b.co", "password": "short"}, "password"},
		{"bad phone", map[string]string{"username": "ayse", "email": "a@b.co", "password": "password1", "phoneNumber": "12345"}, "phoneNumber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handlertest.MakeRequest(r, http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Contains(t, resp.Body.String(), `"field":"`+tt.field+`"`)
		})
	}
}

func TestLogin(t *testing.T) {
	r := setup(t)
	registered := register(t, r)

	resp := handlertest.MakeRequest(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "AYSE@example.com", "password": "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var out model.LoginResponse
	resp.Decode(t, &out)
	assert.Equal(t, "login successful", out.Message)
	assert.Equal(t, registered.User.ID, out.User.ID)
	assert.NotContains(t, resp.Body.String(), "password")

	claims, err := handlertest.Issuer.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	r := setup(t)
	register(t, r)

	wrongPassword := handlertest.MakeRequest(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ayse@example.com", "password": "wrong-pass",
	}, "")
	unknownEmail := handlertest.MakeRequest(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@example.com", "password": "s3cret-pass",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.JSONEq(t, `{"errors":[{"message":"invalid credentials"}]}`, wrongPassword.Body.String())
}
