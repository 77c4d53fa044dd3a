package medication

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
	repo repository.MedicationRepository
}

func NewHandler(repo repository.MedicationRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	medications := r.Group("/medications")
	{
		medications.GET("", h.ListMedications)
		medications.POST("", h.CreateMedication)
		medications.GET("/:id", h.GetMedication)
		medications.PUT("/:id", h.UpdateMedication)
		medications.DELETE("/:id", h.DeleteMedication)
	}
}

func (h *Handler) ListMedications(c *gin.Context) {
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

	meds, total, err := h.repo.List(c.Request.Context(), ownerID, page)
	if err != nil {
		c.Error(err)
		return
	}
	httputil.RespondWithPagination(c, meds, page, total)
}

func (h *Handler) GetMedication(c *gin.Context) {
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

	med, err := h.repo.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, med)
}

func (h *Handler) CreateMedication(c *gin.Context) {
	ownerID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req model.CreateMedicationRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	med := &model.Medication{
		Owned:     model.Owned{UserID: ownerID},
		Name:      validator.Escape(req.Name),
		Dose:      validator.Escape(req.Dose),
		Schedules: req.Schedules,
	}
	if err := h.repo.Create(c.Request.Context(), med); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, med)
}

func (h *Handler) UpdateMedication(c *gin.Context) {
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
	var req model.UpdateMedicationRequest
	fields, err := handler.BindPatch(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	set, err := handler.Assignments(patch.NewBuilder(fields).
		Required("name", "name", handler.Text(req.Name)).
		Required("dose", "dose", handler.Text(req.Dose)).
		Set("schedules", "schedules", func() interface{} { return req.Schedules }))
	if err != nil {
		c.Error(err)
		return
	}

	med, err := h.repo.Update(c.Request.Context(), ownerID, id, set)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, med)
}

func (h *Handler) DeleteMedication(c *gin.Context) {
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
