package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	HospitalID uuid.UUID       `json:"hospital_id" db:"hospital_id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	Changes    json.RawMessage `json:"changes" db:"changes"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	IPAddress  string          `json:"ip_address" db:"ip_address"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	AuditActionCreate   = "create"
	AuditActionRead     = "read"
	AuditActionUpdate   = "update"
	AuditActionDelete   = "delete"
	AuditActionLogin    = "login"
	AuditActionLogout   = "logout"
	AuditActionActivate = "activate"

	AuditEntityUser          = "user"
	AuditEntityHospital      = "hospital"
	AuditEntityPatient       = "patient"
	AuditEntityMedicalRecord = "medical_record"
	AuditEntityAppointment   = "appointment"
	AuditEntityBill          = "bill"
	AuditEntityPlugin        = "plugin"
	AuditEntityReferral      = "referral"
)
