package model

import (
	"github.com/google/uuid"
)

type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusAccepted  ReferralStatus = "accepted"
	ReferralStatusCompleted ReferralStatus = "completed"
	ReferralStatusDeclined  ReferralStatus = "declined"
)

type Referral struct {
	Base
	PatientID      uuid.UUID      `db:"patient_id" json:"patient_id"`
	FromHospitalID uuid.UUID      `db:"from_hospital_id" json:"from_hospital_id"`
	ToHospitalID   uuid.UUID      `db:"to_hospital_id" json:"to_hospital_id"`
	ReferredBy     uuid.UUID      `db:"referred_by" json:"referred_by"`
	Reason         string         `db:"reason" json:"reason"`
	Status         ReferralStatus `db:"status" json:"status"`
	Notes          string         `db:"notes" json:"notes"`
}

type CreateReferralRequest struct {
	PatientID    uuid.UUID `json:"patient_id" binding:"required"`
	ToHospitalID uuid.UUID `json:"to_hospital_id" binding:"required"`
	Reason       string    `json:"reason" binding:"required"`
	Notes        string    `json:"notes"`
}

type UpdateReferralRequest struct {
	Status *ReferralStatus `json:"status" binding:"omitempty,oneof=pending accepted completed declined"`
	Notes  *string         `json:"notes"`
}

type ReferralFilters struct {
	HospitalID uuid.UUID
	PatientID  uuid.UUID
	Status     ReferralStatus
	Direction  string // "in" or "out", relative to HospitalID
}
