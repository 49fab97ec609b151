package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
)

type hospitalRepository struct {
	db *sqlx.DB
}

func NewHospitalRepository(db *sqlx.DB) repository.HospitalRepository {
	return &hospitalRepository{db: db}
}

func (r *hospitalRepository) Create(ctx context.Context, hospital *model.Hospital) error {
	query := `
		INSERT INTO hospitals (id, name, subdomain, admin_email, phone, address, website, description, plan, branches, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	hospital.CreatedAt = time.Now()
	hospital.UpdatedAt = time.Now()
	hospital.Subdomain = strings.ToLower(hospital.Subdomain)

	_, err := r.db.ExecContext(ctx, query,
		hospital.ID,
		hospital.Name,
		hospital.Subdomain,
		hospital.AdminEmail,
		hospital.Phone,
		hospital.Address,
		hospital.Website,
		hospital.Description,
		hospital.Plan,
		hospital.Branches,
		hospital.IsActive,
		hospital.CreatedAt,
		hospital.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hospital: %w", err)
	}
	return nil
}

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	query := `SELECT * FROM hospitals WHERE id = $1 AND deleted_at IS NULL`
	var hospital model.Hospital
	if err := r.db.GetContext(ctx, &hospital, query, id); err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) GetBySubdomain(ctx context.Context, subdomain string) (*model.Hospital, error) {
	// Subdomains are stored lowercase; lookups are exact.
	query := `SELECT * FROM hospitals WHERE subdomain = $1 AND deleted_at IS NULL`
	var hospital model.Hospital
	if err := r.db.GetContext(ctx, &hospital, query, strings.ToLower(subdomain)); err != nil {
		return nil, fmt.Errorf("failed to get hospital by subdomain: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) Update(ctx context.Context, hospital *model.Hospital) error {
	query := `
		UPDATE hospitals
		SET name = $1, subdomain = $2, phone = $3, address = $4, website = $5,
		    description = $6, plan = $7, branches = $8, is_active = $9, updated_at = $10
		WHERE id = $11
	`
	hospital.UpdatedAt = time.Now()
	hospital.Subdomain = strings.ToLower(hospital.Subdomain)

	_, err := r.db.ExecContext(ctx, query,
		hospital.Name,
		hospital.Subdomain,
		hospital.Phone,
		hospital.Address,
		hospital.Website,
		hospital.Description,
		hospital.Plan,
		hospital.Branches,
		hospital.IsActive,
		hospital.UpdatedAt,
		hospital.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
	}
	return nil
}

func (r *hospitalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE hospitals SET deleted_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (r *hospitalRepository) List(ctx context.Context) ([]*model.Hospital, error) {
	query := `SELECT * FROM hospitals WHERE deleted_at IS NULL ORDER BY created_at DESC`
	var hospitals []*model.Hospital
	err := r.db.SelectContext(ctx, &hospitals, query)
	return hospitals, err
}

func (r *hospitalRepository) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, hospital_id, plan, start_date, end_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.HospitalID,
		sub.Plan,
		sub.StartDate,
		sub.EndDate,
		sub.IsActive,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *hospitalRepository) GetSubscription(ctx context.Context, hospitalID uuid.UUID) (*model.Subscription, error) {
	query := `SELECT * FROM subscriptions WHERE hospital_id = $1 ORDER BY start_date DESC LIMIT 1`
	var sub model.Subscription
	if err := r.db.GetContext(ctx, &sub, query, hospitalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("subscription not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

func (r *hospitalRepository) UpdateSubscription(ctx context.Context, sub *model.Subscription) error {
	query := `UPDATE subscriptions SET plan = $1, end_date = $2, is_active = $3, updated_at = $4 WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query, sub.Plan, sub.EndDate, sub.IsActive, time.Now(), sub.ID)
	return err
}

func (r *hospitalRepository) GetDashboardStats(ctx context.Context, hospitalID uuid.UUID) (*model.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE hospital_id = $1 AND deleted_at IS NULL) AS total_patients,
			(SELECT COUNT(*) FROM appointments WHERE hospital_id = $1 AND deleted_at IS NULL) AS total_appointments,
			(SELECT COUNT(*) FROM bills WHERE hospital_id = $1 AND status = 'issued') AS open_bills,
			(SELECT COUNT(*) FROM chat_rooms WHERE hospital_id = $1 AND is_active = TRUE) AS active_chats
	`
	var stats model.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, hospitalID); err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return &stats, nil
}
