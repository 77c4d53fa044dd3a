package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elokman/health-api/internal/handler"
	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/service/user"
	"github.com/elokman/health-api/pkg/patch"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
		users.GET("/health-summary", h.GetHealthSummary)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}

	u, err := h.svc.Profile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req model.UpdateProfileRequest
	fields, err := handler.BindPatch(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	set, err := handler.Assignments(patch.NewBuilder(fields).
		Set("fullName", "full_name", handler.Text(req.FullName)).
		Set("phoneNumber", "phone_number", handler.Text(req.PhoneNumber)).
		Set("birthDate", "birth_date", handler.Date(req.BirthDate)).
		Set("gender", "gender", handler.Text(req.Gender)))
	if err != nil {
		c.Error(err)
		return
	}

	u, err := h.svc.UpdateProfile(c.Request.Context(), userID, set)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, model.ProfileResponse{Message: "profile updated successfully", User: u})
}

func (h *Handler) GetHealthSummary(c *gin.Context) {
	userID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}

	summary, err := h.svc.HealthSummary(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
