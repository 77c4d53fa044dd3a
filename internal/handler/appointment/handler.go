package appointment

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
	repo repository.AppointmentRepository
}

func NewHandler(repo repository.AppointmentRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
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

	appts, total, err := h.repo.List(c.Request.Context(), ownerID, page)
	if err != nil {
		c.Error(err)
		return
	}
	httputil.RespondWithPagination(c, appts, page, total)
}

func (h *Handler) GetAppointment(c *gin.Context) {
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

	appt, err := h.repo.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	ownerID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req model.CreateAppointmentRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	status := req.Status
	if status == "" {
		status = model.AppointmentConfirmed
	}
	appt := &model.Appointment{
		Owned:           model.Owned{UserID: ownerID},
		Hospital:        validator.Escape(req.Hospital),
		Department:      validator.Escape(req.Department),
		Doctor:          validator.EscapePtr(req.Doctor),
		AppointmentDate: handler.MustDate(req.AppointmentDate),
		AppointmentTime: handler.Clock(req.AppointmentTime),
		Status:          status,
	}
	if err := h.repo.Create(c.Request.Context(), appt); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
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
	var req model.UpdateAppointmentRequest
	fields, err := handler.BindPatch(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	set, err := handler.Assignments(patch.NewBuilder(fields).
		Required("hospital", "hospital", handler.Text(req.Hospital)).
		Required("department", "department", handler.Text(req.Department)).
		Set("doctor", "doctor", handler.Text(req.Doctor)).
		Required("appointment_date", "appointment_date", handler.Date(req.AppointmentDate)).
		Required("appointment_time", "appointment_time", func() interface{} { return handler.Clock(*req.AppointmentTime) }).
		Required("status", "status", patch.Value(req.Status)))
	if err != nil {
		c.Error(err)
		return
	}

	appt, err := h.repo.Update(c.Request.Context(), ownerID, id, set)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
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
