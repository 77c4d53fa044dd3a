package report

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/elokman/health-api/internal/handler"
	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository"
	reportsvc "github.com/elokman/health-api/internal/service/report"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
	"github.com/elokman/health-api/pkg/validator"
)

// FileField is the multipart field carrying the report file.
const FileField = "reportFile"

const (
	formOverhead = 1 << 20
	memoryLimit  = 8 << 20
)

var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

var transliterate = strings.NewReplacer(
	"ç", "c", "Ç", "C",
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
	"ö", "o", "Ö", "O",
	"ş", "s", "Ş", "S",
	"ü", "u", "Ü", "U",
	`"`, "", "\r", "", "\n", "",
)

type Handler struct {
	repo    repository.ReportRepository
	service *reportsvc.Service
	maxSize int64
}

func NewHandler(repo repository.ReportRepository, service *reportsvc.Service, maxSize int64) *Handler {
	return &Handler{repo: repo, service: service, maxSize: maxSize}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("", h.ListReports)
		reports.POST("", h.CreateReport)
		reports.GET("/:id", h.GetReport)
		reports.GET("/:id/download", h.DownloadReport)
		reports.PUT("/:id", h.UpdateReport)
		reports.DELETE("/:id", h.DeleteReport)
	}
}

func (h *Handler) ListReports(c *gin.Context) {
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

	reports, total, err := h.repo.List(c.Request.Context(), ownerID, page)
	if err != nil {
		c.Error(err)
		return
	}
	httputil.RespondWithPagination(c, reports, page, total)
}

func (h *Handler) GetReport(c *gin.Context) {
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

	rep, err := h.repo.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// CreateReport accepts multipart form fields plus an optional file. The
// file and the fields are validated before anything is written.
func (h *Handler) CreateReport(c *gin.Context) {
	ownerID, err := handler.OwnerID(c)
	if err != nil {
		c.Error(err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+formOverhead)
	header, err := h.acceptFile(c)
	if form := c.Request.MultipartForm; form != nil {
		defer form.RemoveAll()
	}
	if err != nil {
		c.Error(err)
		return
	}

	var req model.CreateReportRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		c.Error(validator.Translate(err))
		return
	}

	status := model.ReportStatusUnspecified
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status = validator.Escape(*req.Status)
	}
	rep := &model.Report{
		Owned:      model.Owned{UserID: ownerID},
		Type:       validator.Escape(req.Type),
		DoctorName: validator.EscapePtr(req.DoctorName),
		ReportDate: handler.MustDate(req.ReportDate),
		Status:     status,
	}

	var upload *reportsvc.Upload
	if header != nil {
		f, err := header.Open()
		if err != nil {
			c.Error(fmt.Errorf("failed to open uploaded file: %w", err))
			return
		}
		defer f.Close()
		upload = &reportsvc.Upload{Name: header.Filename, Reader: f}
	}

	if err := h.service.Create(c.Request.Context(), rep, upload); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, rep)
}

// acceptFile returns the single uploaded file, or nil when none was sent.
func (h *Handler) acceptFile(c *gin.Context) (*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, h.tooLarge()
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, validator.Errors{{Message: "request must be multipart/form-data"}}
		}
		return nil, validator.Errors{{Message: "failed to read upload"}}
	}

	files := c.Request.MultipartForm.File[FileField]
	switch len(files) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, validator.Field(FileField, "only one file may be uploaded")
	}

	header := files[0]
	if header.Size > h.maxSize {
		return nil, h.tooLarge()
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	want, ok := allowedTypes[ext]
	mime := strings.ToLower(strings.TrimSpace(strings.SplitN(header.Header.Get("Content-Type"), ";", 2)[0]))
	if !ok || (mime != want && !(mime == "image/jpg" && want == "image/jpeg")) {
		return nil, validator.Field(FileField, "unsupported file type, only JPEG, PNG or PDF allowed")
	}
	return header, nil
}

func (h *Handler) tooLarge() error {
	return validator.Field(FileField, fmt.Sprintf("file too large, max %dMB", h.maxSize>>20))
}

func (h *Handler) DownloadReport(c *gin.Context) {
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

	rep, path, err := h.service.File(c.Request.Context(), ownerID, id)
	if err != nil {
		c.Error(err)
		return
	}

	contentType, ok := allowedTypes[strings.ToLower(filepath.Ext(*rep.FileName))]
	if !ok {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, transliterate.Replace(*rep.FileName)))
	c.File(path)
}

func (h *Handler) UpdateReport(c *gin.Context) {
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
	var req model.UpdateReportRequest
	fields, err := handler.BindPatch(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	set, err := handler.Assignments(patch.NewBuilder(fields).
		Required("type", "type", handler.Text(req.Type)).
		Set("doctor_name", "doctor_name", handler.Text(req.DoctorName)).
		Required("report_date", "report_date", handler.Date(req.ReportDate)).
		Required("status", "status", handler.Text(req.Status)))
	if err != nil {
		c.Error(err)
		return
	}

	rep, err := h.repo.Update(c.Request.Context(), ownerID, id, set)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) DeleteReport(c *gin.Context) {
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

	if err := h.service.Delete(c.Request.Context(), ownerID, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
