package model

import (
	"time"

	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
	PatientStatusDeceased PatientStatus = "deceased"
)

// Patient is scoped to a hospital. MRN is assigned once, shortly after
// registration, and is never rewritten afterwards; until assignment it
// stays NULL.
type Patient struct {
	Base
	HospitalID             uuid.UUID     `db:"hospital_id" json:"hospital_id"`
	MRN                    *string       `db:"mrn" json:"mrn,omitempty"`
	FirstName              string        `db:"first_name" json:"first_name"`
	LastName               string        `db:"last_name" json:"last_name"`
	DateOfBirth            time.Time     `db:"date_of_birth" json:"date_of_birth"`
	Gender                 string        `db:"gender" json:"gender"`
	BloodGroup             string        `db:"blood_group" json:"blood_group"`
	Phone                  string        `db:"phone" json:"phone"`
	Email                  string        `db:"email" json:"email"`
	Address                string        `db:"address" json:"address"`
	EmergencyContactName   string        `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactNumber string        `db:"emergency_contact_number" json:"emergency_contact_number"`
	Status                 PatientStatus `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	FirstName              string    `json:"first_name" binding:"required"`
	LastName               string    `json:"last_name" binding:"required"`
	DateOfBirth            time.Time `json:"date_of_birth" binding:"required"`
	Gender                 string    `json:"gender" binding:"required,oneof=M F O"`
	BloodGroup             string    `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- O+ O- AB+ AB-"`
	Phone                  string    `json:"phone"`
	Email                  string    `json:"email" binding:"omitempty,email"`
	Address                string    `json:"address"`
	EmergencyContactName   string    `json:"emergency_contact_name"`
	EmergencyContactNumber string    `json:"emergency_contact_number"`
}

type UpdatePatientRequest struct {
	FirstName              *string        `json:"first_name"`
	LastName               *string        `json:"last_name"`
	DateOfBirth            *time.Time     `json:"date_of_birth"`
	Gender                 *string        `json:"gender" binding:"omitempty,oneof=M F O"`
	BloodGroup             *string        `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- O+ O- AB+ AB-"`
	Phone                  *string        `json:"phone"`
	Email                  *string        `json:"email" binding:"omitempty,email"`
	Address                *string        `json:"address"`
	EmergencyContactName   *string        `json:"emergency_contact_name"`
	EmergencyContactNumber *string        `json:"emergency_contact_number"`
	Status                 *PatientStatus `json:"status" binding:"omitempty,oneof=active inactive deceased"`
}

type PatientFilters struct {
	HospitalID uuid.UUID
	Status     PatientStatus
	SearchTerm string
	Pagination
}
