package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	FHIREntityPatient       = "patient"
	FHIREntityMedicalRecord = "medical_record"
)

// FHIRLink records the FHIR server identity of a synced local resource.
type FHIRLink struct {
	ID         uuid.UUID `db:"id" json:"id"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID `db:"entity_id" json:"entity_id"`
	FHIRID     string    `db:"fhir_id" json:"fhir_id"`
	LastSynced time.Time `db:"last_synced" json:"last_synced"`
}
