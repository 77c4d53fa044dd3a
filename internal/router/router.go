package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/elokman/health-api/internal/handler/chat"
	"github.com/elokman/health-api/internal/handler/prometheus"
	"github.com/elokman/health-api/internal/middleware"
	"github.com/elokman/health-api/pkg/auth"
	"github.com/elokman/health-api/pkg/metrics"
	"github.com/elokman/health-api/pkg/validator"
)

// RunningMessage is served at the root path.
const RunningMessage = "E-Lokman API is running"

// reportsPath reads multipart bodies under its own, larger limit.
const reportsPath = "/api/reports"

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	Production  bool
	CORSOrigins []string
	// BodyLimit caps JSON bodies.
	BodyLimit  int64
	UploadsDir string
	ChatRate   rate.Limit
	ChatBurst  int
}

// Handlers groups the route handlers mounted under /api.
type Handlers struct {
	Auth          Handler
	Health        Handler
	User          Handler
	Medication    Handler
	Appointment   Handler
	HealthHistory Handler
	Report        Handler
	Chat          *chat.Handler
}

type Router struct {
	engine  *gin.Engine
	config  Config
	issuer  *auth.TokenIssuer
	metrics *metrics.Metrics
	h       Handlers
}

// NewRouter installs the request validation rules on gin's binding engine
// and builds the middleware chain.
func NewRouter(config Config, logger zerolog.Logger, issuer *auth.TokenIssuer, m *metrics.Metrics, h Handlers) (*Router, error) {
	if err := validator.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}
	if config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(config.Production),
		middleware.ErrorHandler(config.Production),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig(config.Production)),
		middleware.CORS(config.CORSOrigins),
		middleware.Metrics(m),
		middleware.BodyLimit(config.BodyLimit, reportsPath),
	)

	return &Router{
		engine:  engine,
		config:  config,
		issuer:  issuer,
		metrics: m,
		h:       h,
	}, nil
}

func (r *Router) Setup() *gin.Engine {
	r.engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, RunningMessage)
	})
	if r.config.UploadsDir != "" {
		r.engine.Static("/uploads", r.config.UploadsDir)
	}
	prometheus.New(r.metrics).RegisterRoutes(r.engine)

	api := r.engine.Group("/api")
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.Authenticate(r.issuer))
	r.setupProtectedRoutes(protected)

	return r.engine
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	r.h.Health.RegisterRoutes(rg)
	r.h.Auth.RegisterRoutes(rg)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.h.User.RegisterRoutes(rg)
	r.h.Medication.RegisterRoutes(rg)
	r.h.Appointment.RegisterRoutes(rg)
	r.h.HealthHistory.RegisterRoutes(rg)
	r.h.Report.RegisterRoutes(rg)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  r.config.ChatRate,
		Burst: r.config.ChatBurst,
	})
	r.h.Chat.RegisterRoutes(rg, limiter.RateLimit())
}

// Engine returns the configured engine; Setup must have run.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
