// Package handlertest drives handlers through a gin engine the way the
// router mounts them.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/elokman/health-api/internal/middleware"
	"github.com/elokman/health-api/pkg/auth"
	"github.com/elokman/health-api/pkg/validator"
)

const Secret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.RegisterWithGin(); err != nil {
		panic(err)
	}
}

// Issuer signs tokens accepted by Engine.
var Issuer = auth.NewTokenIssuer(Secret, time.Hour)

// Engine returns an engine whose /api group is protected by Authenticate.
// register mounts the handler under test.
func Engine(register func(api *gin.RouterGroup)) *gin.Engine {
	r := newEngine()
	register(r.Group("/api", middleware.Authenticate(Issuer)))
	return r
}

// Public is Engine without authentication.
func Public(register func(api *gin.RouterGroup)) *gin.Engine {
	r := newEngine()
	register(r.Group("/api"))
	return r
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(zerolog.Nop()),
		middleware.Recovery(false),
		middleware.ErrorHandler(false),
	)
	return r
}

// Token issues a bearer token for userID.
func Token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := Issuer.Issue(userID, "tester")
	require.NoError(t, err)
	return token
}

// Response is a recorded response.
type Response struct {
	*httptest.ResponseRecorder
}

// Decode unmarshals the body into v.
func (r Response) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), v), r.Body.String())
}

// MakeRequest sends body as JSON; a string or []byte body is sent raw.
func MakeRequest(h http.Handler, method, path string, body interface{}, token string) Response {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewBuffer(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return Send(h, req)
}

// Send serves req and records the response.
func Send(h http.Handler, req *http.Request) Response {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return Response{w}
}
