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

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, hospital_id, patient_id, name, email, phone, password_hash, role, status,
			email_verified, totp_secret, totp_enabled, login_attempts, last_login_attempt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.HospitalID,
		user.PatientID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.EmailVerified,
		user.TOTPSecret,
		user.TOTPEnabled,
		user.LoginAttempts,
		user.LastLoginAttempt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT * FROM users WHERE id = $1 AND deleted_at IS NULL`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM users WHERE email = $1 AND deleted_at IS NULL`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, hospitalID uuid.UUID, phone string) (*model.User, error) {
	query := `SELECT * FROM users WHERE hospital_id = $1 AND phone = $2 AND deleted_at IS NULL`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, hospitalID, phone); err != nil {
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $1, phone = $2, password_hash = $3, role = $4, status = $5, email_verified = $6,
		    totp_secret = $7, totp_enabled = $8, login_attempts = $9, last_login_attempt = $10,
		    last_login_at = $11, updated_at = $12
		WHERE id = $13
	`
	user.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.EmailVerified,
		user.TOTPSecret,
		user.TOTPEnabled,
		user.LoginAttempts,
		user.LastLoginAttempt,
		user.LastLoginAt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET deleted_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (r *userRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	query := `SELECT * FROM users WHERE hospital_id = $1 AND deleted_at IS NULL`
	args := []interface{}{filters.HospitalID}

	if filters.Role != "" {
		args = append(args, filters.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.SearchTerm != "" {
		args = append(args, "%"+filters.SearchTerm+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY created_at DESC"

	var users []*model.User
	err := r.db.SelectContext(ctx, &users, query, args...)
	return users, err
}

func (r *userRepository) UpdateEmailVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	query := `UPDATE users SET email_verified = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, verified, time.Now(), userID)
	return err
}
