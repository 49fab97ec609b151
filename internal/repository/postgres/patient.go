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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, hospital_id, mrn, first_name, last_name, date_of_birth, gender, blood_group,
			phone, email, address, emergency_contact_name, emergency_contact_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.HospitalID,
		patient.MRN,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.BloodGroup,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.EmergencyContactName,
		patient.EmergencyContactNumber,
		patient.Status,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1 AND deleted_at IS NULL`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByMRN(ctx context.Context, hospitalID uuid.UUID, mrn string) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE hospital_id = $1 AND mrn = $2 AND deleted_at IS NULL`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, hospitalID, mrn); err != nil {
		return nil, fmt.Errorf("failed to get patient by mrn: %w", err)
	}
	return &patient, nil
}

// Update never touches the mrn column. MRN assignment goes through SetMRN
// exclusively.
func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, date_of_birth = $3, gender = $4, blood_group = $5,
		    phone = $6, email = $7, address = $8, emergency_contact_name = $9,
		    emergency_contact_number = $10, status = $11, updated_at = $12
		WHERE id = $13
	`
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.BloodGroup,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.EmergencyContactName,
		patient.EmergencyContactNumber,
		patient.Status,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE patients SET deleted_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE hospital_id = $1 AND deleted_at IS NULL`
	args := []interface{}{filters.HospitalID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.SearchTerm != "" {
		args = append(args, "%"+filters.SearchTerm+"%")
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR mrn ILIKE $%d)", len(args), len(args), len(args))
	}

	query += " ORDER BY created_at DESC"
	if filters.PageSize > 0 {
		args = append(args, filters.PageSize)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if filters.Page > 1 {
			args = append(args, (filters.Page-1)*filters.PageSize)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, args...)
	return patients, err
}

func (r *patientRepository) MRNExists(ctx context.Context, mrn string) (bool, error) {
	// MRNs are unique across all tenants, not per hospital.
	query := `SELECT EXISTS(SELECT 1 FROM patients WHERE mrn = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, mrn); err != nil {
		return false, fmt.Errorf("failed to check mrn: %w", err)
	}
	return exists, nil
}

func (r *patientRepository) SetMRN(ctx context.Context, id uuid.UUID, mrn string) (bool, error) {
	// The mrn IS NULL guard makes assignment one-shot even under
	// concurrent callers.
	query := `UPDATE patients SET mrn = $1, updated_at = $2 WHERE id = $3 AND mrn IS NULL`
	res, err := r.db.ExecContext(ctx, query, mrn, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to set mrn: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
