package model

import (
	"time"
)

const ReportStatusUnspecified = "Belirtilmemiş"

type Report struct {
	Owned
	Type       string    `json:"type" db:"type"`
	DoctorName *string   `json:"doctor_name" db:"doctor_name"`
	ReportDate time.Time `json:"report_date" db:"report_date"`
	Status     string    `json:"status" db:"status"`
	FileName   *string   `json:"file_name" db:"file_name"`
	FilePath   *string   `json:"file_path" db:"file_path"`
}

// HasFile reports whether both file columns are set.
func (r *Report) HasFile() bool {
	return r.FileName != nil && *r.FileName != "" && r.FilePath != nil && *r.FilePath != ""
}

// CreateReportRequest is bound from multipart form fields.
type CreateReportRequest struct {
	Type       string  `form:"type" json:"type" binding:"required,notblank,max=100"`
	DoctorName *string `form:"doctor_name" json:"doctor_name" binding:"omitempty,max=100"`
	ReportDate string  `form:"report_date" json:"report_date" binding:"required,isodate"`
	Status     *string `form:"status" json:"status" binding:"omitempty,max=50"`
}

type UpdateReportRequest struct {
	Type       *string `json:"type" binding:"omitempty,notblank,max=100"`
	DoctorName *string `json:"doctor_name" binding:"omitempty,max=100"`
	ReportDate *string `json:"report_date" binding:"omitempty,isodate"`
	Status     *string `json:"status" binding:"omitempty,max=50"`
}

// ReportFile is an accepted upload ready to be stored.
type ReportFile struct {
	OriginalName string
	ContentType  string
	Size         int64
}
