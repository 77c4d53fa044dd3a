package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const (
	PeriodMorning = "morning"
	PeriodNoon    = "noon"
	PeriodEvening = "evening"
	PeriodNight   = "night"
)

// Schedule is one intake time of a medication.
type Schedule struct {
	Period string `json:"period" binding:"required,oneof=morning noon evening night"`
	Time   string `json:"time" binding:"required,hhmm"`
}

// Schedules is stored as a JSONB array.
type Schedules []Schedule

func (s Schedules) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Schedules) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported schedules type %T", src)
	}
	return json.Unmarshal(data, s)
}

type Medication struct {
	Owned
	Name      string    `json:"name" db:"name"`
	Dose      string    `json:"dose" db:"dose"`
	Schedules Schedules `json:"schedules" db:"schedules"`
}

type CreateMedicationRequest struct {
	Name      string    `json:"name" binding:"required,notblank,min=2,max=100"`
	Dose      string    `json:"dose" binding:"required,notblank,max=100"`
	Schedules Schedules `json:"schedules" binding:"omitempty,max=12,dive"`
}

type UpdateMedicationRequest struct {
	Name      *string   `json:"name" binding:"omitempty,notblank,min=2,max=100"`
	Dose      *string   `json:"dose" binding:"omitempty,notblank,max=100"`
	Schedules Schedules `json:"schedules" binding:"omitempty,max=12,dive"`
}
