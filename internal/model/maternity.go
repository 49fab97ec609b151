package model

import (
	"time"

	"github.com/google/uuid"
)

type AntenatalStatus string

const (
	AntenatalStatusOngoing   AntenatalStatus = "ongoing"
	AntenatalStatusDelivered AntenatalStatus = "delivered"
	AntenatalStatusClosed    AntenatalStatus = "closed"
)

// AntenatalRecord tracks one pregnancy for a patient.
type AntenatalRecord struct {
	Base
	HospitalID uuid.UUID       `db:"hospital_id" json:"hospital_id"`
	PatientID  uuid.UUID       `db:"patient_id" json:"patient_id"`
	Gravida    int             `db:"gravida" json:"gravida"`
	Para       int             `db:"para" json:"para"`
	LMP        time.Time       `db:"lmp" json:"lmp"`
	EDD        time.Time       `db:"edd" json:"edd"`
	RiskLevel  string          `db:"risk_level" json:"risk_level"`
	Status     AntenatalStatus `db:"status" json:"status"`
	Notes      string          `db:"notes" json:"notes"`

	Visits []*AntenatalVisit `db:"-" json:"visits,omitempty"`
}

type AntenatalVisit struct {
	ID              uuid.UUID `db:"id" json:"id"`
	RecordID        uuid.UUID `db:"record_id" json:"record_id"`
	VisitDate       time.Time `db:"visit_date" json:"visit_date"`
	GestationalWeek int       `db:"gestational_week" json:"gestational_week"`
	BloodPressure   string    `db:"blood_pressure" json:"blood_pressure"`
	WeightKg        float64   `db:"weight_kg" json:"weight_kg"`
	FundalHeightCm  float64   `db:"fundal_height_cm" json:"fundal_height_cm"`
	FetalHeartRate  int       `db:"fetal_heart_rate" json:"fetal_heart_rate"`
	Notes           string    `db:"notes" json:"notes"`
	RecordedBy      uuid.UUID `db:"recorded_by" json:"recorded_by"`
}

// NeonatalRecord captures birth details, linked to the mother's patient
// record and optionally to the newborn's own patient record once one is
// registered.
type NeonatalRecord struct {
	Base
	HospitalID      uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	MotherPatientID uuid.UUID  `db:"mother_patient_id" json:"mother_patient_id"`
	InfantPatientID *uuid.UUID `db:"infant_patient_id" json:"infant_patient_id,omitempty"`
	BirthDate       time.Time  `db:"birth_date" json:"birth_date"`
	Sex             string     `db:"sex" json:"sex"`
	BirthWeightG    int        `db:"birth_weight_g" json:"birth_weight_g"`
	Apgar1Min       int        `db:"apgar_1min" json:"apgar_1min"`
	Apgar5Min       int        `db:"apgar_5min" json:"apgar_5min"`
	DeliveryMode    string     `db:"delivery_mode" json:"delivery_mode"`
	Notes           string     `db:"notes" json:"notes"`
}

type CreateAntenatalRecordRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Gravida   int       `json:"gravida" binding:"required,min=1"`
	Para      int       `json:"para" binding:"min=0"`
	LMP       time.Time `json:"lmp" binding:"required"`
	RiskLevel string    `json:"risk_level" binding:"omitempty,oneof=low medium high"`
	Notes     string    `json:"notes"`
}

type CreateAntenatalVisitRequest struct {
	VisitDate      time.Time `json:"visit_date" binding:"required"`
	BloodPressure  string    `json:"blood_pressure"`
	WeightKg       float64   `json:"weight_kg"`
	FundalHeightCm float64   `json:"fundal_height_cm"`
	FetalHeartRate int       `json:"fetal_heart_rate"`
	Notes          string    `json:"notes"`
}

type CreateNeonatalRecordRequest struct {
	MotherPatientID uuid.UUID  `json:"mother_patient_id" binding:"required"`
	InfantPatientID *uuid.UUID `json:"infant_patient_id"`
	BirthDate       time.Time  `json:"birth_date" binding:"required"`
	Sex             string     `json:"sex" binding:"required,oneof=M F"`
	BirthWeightG    int        `json:"birth_weight_g" binding:"required,min=1"`
	Apgar1Min       int        `json:"apgar_1min" binding:"min=0,max=10"`
	Apgar5Min       int        `json:"apgar_5min" binding:"min=0,max=10"`
	DeliveryMode    string     `json:"delivery_mode" binding:"required,oneof=vaginal caesarean assisted"`
	Notes           string     `json:"notes"`
}
