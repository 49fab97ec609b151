package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleSuperAdmin UserRole = "superadmin"
	RoleAdmin      UserRole = "admin"
	RoleDoctor     UserRole = "doctor"
	RoleNurse      UserRole = "nurse"
	RolePatient    UserRole = "patient"
)

type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusActive   UserStatus = "active"
	UserStatusLocked   UserStatus = "locked"
	UserStatusDisabled UserStatus = "disabled"
)

// User covers staff accounts and portal accounts; portal users carry
// RolePatient and link back to a patient row.
type User struct {
	Base
	HospitalID       uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	PatientID        *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Name             string     `db:"name" json:"name"`
	Email            string     `db:"email" json:"email"`
	Phone            string     `db:"phone" json:"phone"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	Role             UserRole   `db:"role" json:"role"`
	Status           UserStatus `db:"status" json:"status"`
	EmailVerified    bool       `db:"email_verified" json:"email_verified"`
	TOTPSecret       string     `db:"totp_secret" json:"-"`
	TOTPEnabled      bool       `db:"totp_enabled" json:"totp_enabled"`
	LoginAttempts    int        `db:"login_attempts" json:"-"`
	LastLoginAttempt time.Time  `db:"last_login_attempt" json:"-"`
	LastLoginAt      *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

type UserFilters struct {
	HospitalID uuid.UUID
	Role       UserRole
	Status     UserStatus
	SearchTerm string
}

type CreateUserRequest struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     UserRole `json:"role" binding:"required,oneof=admin doctor nurse"`
}

type UpdateUserRequest struct {
	Name   *string     `json:"name"`
	Phone  *string     `json:"phone"`
	Role   *UserRole   `json:"role" binding:"omitempty,oneof=admin doctor nurse"`
	Status *UserStatus `json:"status" binding:"omitempty,oneof=pending active locked disabled"`
}
