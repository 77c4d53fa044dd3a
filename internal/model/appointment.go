package model

import (
	"time"
)

const (
	AppointmentConfirmed = "confirmed"
	AppointmentPending   = "pending"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

type Appointment struct {
	Owned
	Hospital        string    `json:"hospital" db:"hospital"`
	Department      string    `json:"department" db:"department"`
	Doctor          *string   `json:"doctor" db:"doctor"`
	AppointmentDate time.Time `json:"appointment_date" db:"appointment_date"`
	AppointmentTime string    `json:"appointment_time" db:"appointment_time"`
	Status          string    `json:"status" db:"status"`
}

// completed is only reachable through an update.
type CreateAppointmentRequest struct {
	Hospital        string  `json:"hospital" binding:"required,notblank,max=150"`
	Department      string  `json:"department" binding:"required,notblank,max=100"`
	Doctor          *string `json:"doctor" binding:"omitempty,max=100"`
	AppointmentDate string  `json:"appointment_date" binding:"required,isodate,notpast"`
	AppointmentTime string  `json:"appointment_time" binding:"required,clock"`
	Status          string  `json:"status" binding:"omitempty,oneof=confirmed pending cancelled"`
}

type UpdateAppointmentRequest struct {
	Hospital        *string `json:"hospital" binding:"omitempty,notblank,max=150"`
	Department      *string `json:"department" binding:"omitempty,notblank,max=100"`
	Doctor          *string `json:"doctor" binding:"omitempty,max=100"`
	AppointmentDate *string `json:"appointment_date" binding:"omitempty,isodate,notpast"`
	AppointmentTime *string `json:"appointment_time" binding:"omitempty,clock"`
	Status          *string `json:"status" binding:"omitempty,oneof=confirmed pending cancelled completed"`
}
