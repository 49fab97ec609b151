package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	Base
	HospitalID uuid.UUID         `db:"hospital_id" json:"hospital_id"`
	PatientID  uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID   uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	StartTime  time.Time         `db:"start_time" json:"start_time"`
	EndTime    time.Time         `db:"end_time" json:"end_time"`
	Reason     string            `db:"reason" json:"reason"`
	Status     AppointmentStatus `db:"status" json:"status"`
	Notes      string            `db:"notes" json:"notes"`
}

type CreateAppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
	Notes     string    `json:"notes"`
}

type UpdateAppointmentRequest struct {
	StartTime *time.Time         `json:"start_time"`
	EndTime   *time.Time         `json:"end_time"`
	Reason    *string            `json:"reason"`
	Status    *AppointmentStatus `json:"status" binding:"omitempty,oneof=scheduled confirmed completed cancelled"`
	Notes     *string            `json:"notes"`
}

type AppointmentFilters struct {
	HospitalID uuid.UUID
	PatientID  uuid.UUID
	DoctorID   uuid.UUID
	Status     AppointmentStatus
	StartDate  time.Time
	EndDate    time.Time
}

// TimeSlot is one entry in a doctor's day schedule.
type TimeSlot struct {
	Start     time.Time `db:"start_time" json:"start"`
	End       time.Time `db:"end_time" json:"end"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Reason    string    `db:"reason" json:"reason"`
}
