package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/elokman/health-api/internal/handler"
	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/service/chat"
	"github.com/elokman/health-api/pkg/validator"
)

type Handler struct {
	svc *chat.Service
	// debug exposes the assembled context; off in production.
	debug bool
}

func NewHandler(svc *chat.Service, debug bool) *Handler {
	return &Handler{svc: svc, debug: debug}
}

// RegisterRoutes mounts the chat routes; limit guards the model call.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, limit gin.HandlerFunc) {
	ai := r.Group("/ai")
	{
		ai.POST("/chat", limit, h.Chat)
		if h.debug {
			ai.GET("/debug/profile", h.DebugProfile)
		}
	}
}

func (h *Handler) Chat(c *gin.Context) {
	userID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verrs := validator.Translate(err)
		c.JSON(http.StatusBadRequest, model.ChatError{Error: verrs.Error()})
		return
	}

	resp, err := h.svc.Chat(c.Request.Context(), userID, &req)
	if err != nil {
		var chatErr *chat.Error
		if errors.As(err, &chatErr) {
			log.Ctx(c.Request.Context()).Warn().Err(err).Int("status", chatErr.StatusCode()).Msg("chat request failed")
			c.JSON(chatErr.StatusCode(), model.ChatError{Error: chatErr.Message, BlockReason: chatErr.BlockReason})
			return
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DebugProfile(c *gin.Context) {
	userID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Debug(c.Request.Context(), userID))
}
