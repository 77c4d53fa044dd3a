package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository"
)

const (
	userColumns          = `id, username, email, password_hash, full_name, phone_number, birth_date, gender, created_at, updated_at`
	medicationColumns    = `id, user_id, name, dose, schedules, created_at, updated_at`
	appointmentColumns   = `id, user_id, hospital, department, doctor, appointment_date, appointment_time::text AS appointment_time, status, created_at, updated_at`
	healthHistoryColumns = `id, user_id, visit_date, hospital_name, visit_type, department, doctor_name, notes, created_at, updated_at`
	reportColumns        = `id, user_id, type, doctor_name, report_date, status, file_name, file_path, created_at, updated_at`
)

type userRepository struct {
	db *sqlx.DB
}

type medicationRepository struct {
	ownedTable
}

type appointmentRepository struct {
	ownedTable
}

type healthHistoryRepository struct {
	ownedTable
}

type reportRepository struct {
	ownedTable
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewMedicationRepository(db *sqlx.DB) repository.MedicationRepository {
	return &medicationRepository{ownedTable{
		db:       db,
		table:    "medications",
		columns:  medicationColumns,
		orderBy:  "created_at DESC, id DESC",
		resource: model.ResourceMedication,
	}}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{ownedTable{
		db:       db,
		table:    "appointments",
		columns:  appointmentColumns,
		orderBy:  "appointment_date ASC, appointment_time ASC, id ASC",
		resource: model.ResourceAppointment,
	}}
}

func NewHealthHistoryRepository(db *sqlx.DB) repository.HealthHistoryRepository {
	return &healthHistoryRepository{ownedTable{
		db:       db,
		table:    "health_history",
		columns:  healthHistoryColumns,
		orderBy:  "visit_date DESC, id DESC",
		resource: model.ResourceHealthHistory,
	}}
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{ownedTable{
		db:       db,
		table:    "reports",
		columns:  reportColumns,
		orderBy:  "report_date DESC, id DESC",
		resource: model.ResourceReport,
	}}
}

// NewRepositories wires every postgres repository onto one pool.
func NewRepositories(db *sqlx.DB) *repository.Repositories {
	return &repository.Repositories{
		Users:         NewUserRepository(db),
		Medications:   NewMedicationRepository(db),
		Appointments:  NewAppointmentRepository(db),
		HealthHistory: NewHealthHistoryRepository(db),
		Reports:       NewReportRepository(db),
		Pinger:        db,
	}
}
