package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (id, hospital_id, patient_id, doctor_id, start_time, end_time, reason, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.HospitalID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE id = $1 AND deleted_at IS NULL`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, reason = $3, status = $4, notes = $5, updated_at = $6
		WHERE id = $7
	`
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE appointments SET deleted_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE deleted_at IS NULL`
	args := []interface{}{}

	if filters.HospitalID != uuid.Nil {
		args = append(args, filters.HospitalID)
		query += fmt.Sprintf(" AND hospital_id = $%d", len(args))
	}
	if filters.PatientID != uuid.Nil {
		args = append(args, filters.PatientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filters.DoctorID != uuid.Nil {
		args = append(args, filters.DoctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !filters.StartDate.IsZero() {
		args = append(args, filters.StartDate)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if !filters.EndDate.IsZero() {
		args = append(args, filters.EndDate)
		query += fmt.Sprintf(" AND start_time <= $%d", len(args))
	}

	query += " ORDER BY start_time DESC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	return appointments, err
}

func (r *appointmentRepository) CheckConflicts(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			  AND status IN ('scheduled', 'confirmed')
			  AND deleted_at IS NULL
			  AND start_time < $3
			  AND end_time > $2
	`
	args := []interface{}{doctorID, start, end}
	if excludeID != nil {
		args = append(args, *excludeID)
		query += fmt.Sprintf(" AND id != $%d", len(args))
	}
	query += ")"

	var conflict bool
	if err := r.db.GetContext(ctx, &conflict, query, args...); err != nil {
		return false, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return conflict, nil
}

func (r *appointmentRepository) GetDoctorSchedule(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.TimeSlot, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT start_time, end_time, patient_id, reason
		FROM appointments
		WHERE doctor_id = $1
		  AND status IN ('scheduled', 'confirmed')
		  AND deleted_at IS NULL
		  AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`
	var slots []*model.TimeSlot
	err := r.db.SelectContext(ctx, &slots, query, doctorID, dayStart, dayEnd)
	return slots, err
}
