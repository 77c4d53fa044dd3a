package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/elokman/health-api/internal/handler/appointment"
	authhandler "github.com/elokman/health-api/internal/handler/auth"
	chathandler "github.com/elokman/health-api/internal/handler/chat"
	"github.com/elokman/health-api/internal/handler/health"
	"github.com/elokman/health-api/internal/handler/healthhistory"
	"github.com/elokman/health-api/internal/handler/medication"
	reporthandler "github.com/elokman/health-api/internal/handler/report"
	userhandler "github.com/elokman/health-api/internal/handler/user"
	"github.com/elokman/health-api/internal/repository/memory"
	authsvc "github.com/elokman/health-api/internal/service/auth"
	"github.com/elokman/health-api/internal/service/chat"
	reportsvc "github.com/elokman/health-api/internal/service/report"
	usersvc "github.com/elokman/health-api/internal/service/user"
	"github.com/elokman/health-api/internal/storage"
	"github.com/elokman/health-api/pkg/auth"
	"github.com/elokman/health-api/pkg/metrics"
	"github.com/elokman/health-api/pkg/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var issuer = auth.NewTokenIssuer("router-test-secret", time.Hour)

func setup(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	repos := memory.NewRepositories()
	m := metrics.New("elokman_test")
	chatSvc := chat.NewService(chat.NewAssembler(repos), nil, chat.Options{}, m)

	r, err := NewRouter(Config{
		CORSOrigins: []string{"http://localhost:3000"},
		BodyLimit:   1 << 10,
		UploadsDir:  dir,
		ChatRate:    0.001,
		ChatBurst:   1,
	}, zerolog.Nop(), issuer, m, Handlers{
		Auth:          authhandler.NewHandler(authsvc.NewService(repos.Users, security.NewBcryptHasher(bcrypt.MinCost), issuer)),
		Health:        health.NewHandler(repos.Pinger),
		User:          userhandler.NewHandler(usersvc.NewService(repos)),
		Medication:    medication.NewHandler(repos.Medications),
		Appointment:   appointment.NewHandler(repos.Appointments),
		HealthHistory: healthhistory.NewHandler(repos.HealthHistory),
		Report:        reporthandler.NewHandler(repos.Reports, reportsvc.NewService(repos.Reports, files, nil, m), 5<<20),
		Chat:          chathandler.NewHandler(chatSvc, true),
	})
	require.NoError(t, err)
	return r.Setup(), dir
}

func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoot(t *testing.T) {
	r, _ := setup(t)
	w := do(r, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RunningMessage, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	r, _ := setup(t)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/health/live", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/auth/login", `{}`, "").Code)

	for _, path := range []string{
		"/api/users/profile",
		"/api/medications",
		"/api/appointments",
		"/api/health-history",
		"/api/reports",
		"/api/ai/debug/profile",
	} {
		w := do(r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	token, err := issuer.Issue(1, "tester")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/medications", "", token).Code)
}

func TestRegisterThenLogin(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/auth/register", `{"username":"elif","email":"elif@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(r, http.MethodPost, "/api/auth/login", `{"email":"elif@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"token":"`)
}

func TestBodyLimit(t *testing.T) {
	r, _ := setup(t)
	body := `{"username":"` + strings.Repeat("a", 2<<10) + `"}`
	w := do(r, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestChatIsRateLimited(t *testing.T) {
	r, _ := setup(t)
	token, err := issuer.Issue(1, "tester")
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/api/ai/chat", `{"userMessage":"merhaba"}`, token)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, "/api/ai/chat", `{"userMessage":"merhaba"}`, token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	other, err := issuer.Issue(2, "other")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/ai/chat", `{"userMessage":"merhaba"}`, other).Code)
}

func TestUploadsAreServed(t *testing.T) {
	r, dir := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1700000000000-scan.png"), []byte("png"), 0o644))

	w := do(r, http.MethodGet, "/uploads/1700000000000-scan.png", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := setup(t)
	do(r, http.MethodGet, "/api/health/live", "", "")

	w := do(r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "elokman_test_http_requests_total")
}

func TestValidatedRoutes(t *testing.T) {
	r, _ := setup(t)
	token, err := issuer.Issue(1, "tester")
	require.NoError(t, err)
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	tests := []struct {
		name  string
		path  string
		body  string
		token string
		want  int
	}{
		{"register with phone", "/api/auth/register", `{"username":"deniz","email":"deniz@example.com","password":"password123","phoneNumber":"05321234567"}`, "", http.StatusCreated},
		{"register with bad phone", "/api/auth/register", `{"username":"deniz2","email":"deniz2@example.com","password":"password123","phoneNumber":"123"}`, "", http.StatusBadRequest},
		{"medication", "/api/medications", `{"name":"Aspirin","dose":"100mg","schedules":[{"period":"morning","time":"08:00"}]}`, token, http.StatusCreated},
		{"appointment", "/api/appointments", `{"hospital":"Şehir Hastanesi","department":"Dahiliye","appointment_date":"` + tomorrow + `","appointment_time":"09:30"}`, token, http.StatusCreated},
		{"appointment in the past", "/api/appointments", `{"hospital":"Şehir Hastanesi","department":"Dahiliye","appointment_date":"2000-01-01","appointment_time":"09:30"}`, token, http.StatusBadRequest},
		{"health history", "/api/health-history", `{"visit_date":"2024-03-01","hospital_name":"Şehir Hastanesi","visit_type":"Kontrol"}`, token, http.StatusCreated},
		{"profile", "/api/users/profile", `{"birthDate":"1990-05-01"}`, token, http.StatusOK},
		{"chat", "/api/ai/chat", `{"userMessage":"ilaçlarım neler?"}`, token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPost
			if tt.path == "/api/users/profile" {
				method = http.MethodPut
			}
			w := do(r, method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
