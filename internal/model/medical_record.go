package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MedicalRecord struct {
	Base
	HospitalID        uuid.UUID      `db:"hospital_id" json:"hospital_id"`
	PatientID         uuid.UUID      `db:"patient_id" json:"patient_id"`
	Diagnosis         string         `db:"diagnosis" json:"diagnosis"`
	Treatment         string         `db:"treatment" json:"treatment"`
	Prescription      string         `db:"prescription" json:"prescription"`
	Notes             string         `db:"notes" json:"notes"`
	Allergies         pq.StringArray `db:"allergies" json:"allergies"`
	ChronicConditions pq.StringArray `db:"chronic_conditions" json:"chronic_conditions"`
	RecordedBy        uuid.UUID      `db:"recorded_by" json:"recorded_by"`
}

type CreateMedicalRecordRequest struct {
	Diagnosis         string   `json:"diagnosis" binding:"required"`
	Treatment         string   `json:"treatment" binding:"required"`
	Prescription      string   `json:"prescription"`
	Notes             string   `json:"notes"`
	Allergies         []string `json:"allergies"`
	ChronicConditions []string `json:"chronic_conditions"`
}

type RecordFilters struct {
	StartDate time.Time
	EndDate   time.Time
}
