package healthhistory

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elokman/health-api/internal/handler"
	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
	"github.com/elokman/health-api/pkg/validator"
)

type Handler struct {
	repo repository.HealthHistoryRepository
}

func NewHandler(repo repository.HealthHistoryRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	history := r.Group("/health-history")
	{
		history.GET("", h.ListEntries)
		history.POST("", h.CreateEntry)
		history.GET("/:id", h.GetEntry)
		history.PUT("/:id", h.UpdateEntry)
		history.DELETE("/:id", h.DeleteEntry)
	}
}

func (h *Handler) ListEntries(c *gin.Context) {
	ownerID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	page, err := handler.BindPage(c)
	if err != nil {
		c.Error(err)
		return
	}

	entries, total, err := h.repo.List(c.Request.Context(), ownerID, page)
	if err != nil {
		c.Error(err)
		return
	}
	httputil.RespondWithPagination(c, entries, page, total)
}

func (h *Handler) GetEntry(c *gin.Context) {
	ownerID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	entry, err := h.repo.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) CreateEntry(c *gin.Context) {
	ownerID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req model.CreateHealthHistoryRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	entry := &model.HealthHistoryEntry{
		Owned:        model.Owned{UserID: ownerID},
		VisitDate:    handler.MustDate(req.VisitDate),
		HospitalName: validator.Escape(req.HospitalName),
		VisitType:    validator.Escape(req.VisitType),
		Department:   validator.EscapePtr(req.Department),
		DoctorName:   validator.EscapePtr(req.DoctorName),
		Notes:        validator.EscapePtr(req.Notes),
	}
	if err := h.repo.Create(c.Request.Context(), entry); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) UpdateEntry(c *gin.Context) {
	ownerID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var req model.UpdateHealthHistoryRequest
	fields, err := handler.BindPatch(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	set, err := handler.Assignments(patch.NewBuilder(fields).
		Required("visit_date", "visit_date", handler.Date(req.VisitDate)).
		Required("hospital_name", "hospital_name", handler.Text(req.HospitalName)).
		Required("visit_type", "visit_type", handler.Text(req.VisitType)).
		Set("department", "department", handler.Text(req.Department)).
		Set("doctor_name", "doctor_name", handler.Text(req.DoctorName)).
		Set("notes", "notes", handler.Text(req.Notes)))
	if err != nil {
		c.Error(err)
		return
	}

	entry, err := h.repo.Update(c.Request.Context(), ownerID, id, set)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	ownerID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), ownerID, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
