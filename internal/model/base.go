package model

import (
	"time"
)

// Owned contains the fields shared by every per-user record
type Owned struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Resource names used in errors and events.
const (
	ResourceUser          = "user"
	ResourceMedication    = "medication"
	ResourceAppointment   = "appointment"
	ResourceHealthHistory = "health history entry"
	ResourceReport        = "report"
)
