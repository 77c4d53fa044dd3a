package model

import (
	"time"
)

type HealthHistoryEntry struct {
	Owned
	VisitDate    time.Time `json:"visit_date" db:"visit_date"`
	HospitalName string    `json:"hospital_name" db:"hospital_name"`
	VisitType    string    `json:"visit_type" db:"visit_type"`
	Department   *string   `json:"department" db:"department"`
	DoctorName   *string   `json:"doctor_name" db:"doctor_name"`
	Notes        *string   `json:"notes" db:"notes"`
}

type CreateHealthHistoryRequest struct {
	VisitDate    string  `json:"visit_date" binding:"required,isodate"`
	HospitalName string  `json:"hospital_name" binding:"required,notblank,max=150"`
	VisitType    string  `json:"visit_type" binding:"required,notblank,max=100"`
	Department   *string `json:"department" binding:"omitempty,max=100"`
	DoctorName   *string `json:"doctor_name" binding:"omitempty,max=100"`
	Notes        *string `json:"notes" binding:"omitempty,max=2000"`
}

type UpdateHealthHistoryRequest struct {
	VisitDate    *string `json:"visit_date" binding:"omitempty,isodate"`
	HospitalName *string `json:"hospital_name" binding:"omitempty,notblank,max=150"`
	VisitType    *string `json:"visit_type" binding:"omitempty,notblank,max=100"`
	Department   *string `json:"department" binding:"omitempty,max=100"`
	DoctorName   *string `json:"doctor_name" binding:"omitempty,max=100"`
	Notes        *string `json:"notes" binding:"omitempty,max=2000"`
}
