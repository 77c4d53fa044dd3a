package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elokman/health-api/internal/handler"
	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/service/auth"
	"github.com/elokman/health-api/pkg/validator"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	req.Username = validator.Escape(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = validator.EscapePtr(req.FullName)
	req.PhoneNumber = validator.EscapePtr(req.PhoneNumber)

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	created := user.CreatedAt
	c.JSON(http.StatusCreated, model.RegisterResponse{
		Message: "user registered successfully, please log in",
		User: model.PublicUser{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			FullName:    user.FullName,
			PhoneNumber: user.PhoneNumber,
			CreatedAt:   &created,
		},
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	token, user, err := h.svc.Login(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Message: "login successful",
		Token:   token,
		User: model.PublicUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
		},
	})
}
