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

type referralRepository struct {
	db *sqlx.DB
}

func NewReferralRepository(db *sqlx.DB) repository.ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) Create(ctx context.Context, referral *model.Referral) error {
	query := `
		INSERT INTO referrals (id, patient_id, from_hospital_id, to_hospital_id, referred_by, reason, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	referral.CreatedAt = time.Now()
	referral.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		referral.ID,
		referral.PatientID,
		referral.FromHospitalID,
		referral.ToHospitalID,
		referral.ReferredBy,
		referral.Reason,
		referral.Status,
		referral.Notes,
		referral.CreatedAt,
		referral.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *referralRepository) Get(ctx context.Context, id uuid.UUID) (*model.Referral, error) {
	query := `SELECT * FROM referrals WHERE id = $1 AND deleted_at IS NULL`
	var referral model.Referral
	if err := r.db.GetContext(ctx, &referral, query, id); err != nil {
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return &referral, nil
}

func (r *referralRepository) Update(ctx context.Context, referral *model.Referral) error {
	query := `UPDATE referrals SET status = $1, notes = $2, updated_at = $3 WHERE id = $4`
	referral.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query, referral.Status, referral.Notes, referral.UpdatedAt, referral.ID)
	if err != nil {
		return fmt.Errorf("failed to update referral: %w", err)
	}
	return nil
}

func (r *referralRepository) List(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error) {
	query := `SELECT * FROM referrals WHERE deleted_at IS NULL`
	args := []interface{}{}

	if filters.HospitalID != uuid.Nil {
		args = append(args, filters.HospitalID)
		switch filters.Direction {
		case "in":
			query += fmt.Sprintf(" AND to_hospital_id = $%d", len(args))
		case "out":
			query += fmt.Sprintf(" AND from_hospital_id = $%d", len(args))
		default:
			query += fmt.Sprintf(" AND (from_hospital_id = $%d OR to_hospital_id = $%d)", len(args), len(args))
		}
	}
	if filters.PatientID != uuid.Nil {
		args = append(args, filters.PatientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	var referrals []*model.Referral
	err := r.db.SelectContext(ctx, &referrals, query, args...)
	return referrals, err
}
