package model

import (
	"time"
)

// User represents a registered account
type User struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     *string    `json:"full_name" db:"full_name"`
	PhoneNumber  *string    `json:"phone_number" db:"phone_number"`
	BirthDate    *time.Time `json:"birth_date" db:"birth_date"`
	Gender       *string    `json:"gender" db:"gender"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// DisplayName is the full name, or the username when none is set.
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}

type RegisterRequest struct {
	Username    string  `json:"username" binding:"required,min=4,max=50"`
	Email       string  `json:"email" binding:"required,email,max=255"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	FullName    *string `json:"fullName" binding:"omitempty,min=3,max=100"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,trmobile"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PublicUser is the user shape returned by the auth endpoints.
type PublicUser struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    *string    `json:"fullName"`
	PhoneNumber *string    `json:"phoneNumber,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type RegisterResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

type LoginResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

// UpdateProfileRequest fields are presence-tested; see patch.Decode.
type UpdateProfileRequest struct {
	FullName    *string `json:"fullName" binding:"omitempty,min=2,max=100"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,trmobile"`
	BirthDate   *string `json:"birthDate" binding:"omitempty,isodate,notfuture"`
	Gender      *string `json:"gender" binding:"omitempty,max=20"`
}

type ProfileResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// HealthSummary is the aggregated view of a user's records.
type HealthSummary struct {
	User          SummaryUser           `json:"user"`
	Medications   []*Medication         `json:"medications"`
	Appointments  []*Appointment        `json:"appointments"`
	Reports       []*Report             `json:"reports"`
	HealthHistory []*HealthHistoryEntry `json:"healthHistory"`
}

type SummaryUser struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phoneNumber"`
	MemberSince time.Time `json:"memberSince"`
}
