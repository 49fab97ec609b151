package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Plugin describes a compiled-in route module as exposed by the API.
type Plugin struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Enabled     bool   `json:"enabled"`
}

// HospitalPlugin is the per-tenant activation state for one plugin.
// Rows are scoped to the hospital-plugin pair; toggling one tenant never
// touches another.
type HospitalPlugin struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	HospitalID  uuid.UUID       `db:"hospital_id" json:"hospital_id"`
	PluginName  string          `db:"plugin_name" json:"plugin_name"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	Settings    json.RawMessage `db:"settings" json:"settings,omitempty"`
	ActivatedAt *time.Time      `db:"activated_at" json:"activated_at,omitempty"`
	ActivatedBy *uuid.UUID      `db:"activated_by" json:"activated_by,omitempty"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type ActivatePluginRequest struct {
	Settings json.RawMessage `json:"settings"`
}

type UpdatePluginSettingsRequest struct {
	Settings json.RawMessage `json:"settings" binding:"required"`
}
