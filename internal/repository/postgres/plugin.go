package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
)

type pluginRepository struct {
	db *sqlx.DB
}

func NewPluginRepository(db *sqlx.DB) repository.PluginRepository {
	return &pluginRepository{db: db}
}

func (r *pluginRepository) GetActivation(ctx context.Context, hospitalID uuid.UUID, pluginName string) (*model.HospitalPlugin, error) {
	query := `SELECT * FROM hospital_plugins WHERE hospital_id = $1 AND plugin_name = $2`
	var activation model.HospitalPlugin
	if err := r.db.GetContext(ctx, &activation, query, hospitalID, pluginName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plugin activation: %w", err)
	}
	return &activation, nil
}

func (r *pluginRepository) ListActivations(ctx context.Context, hospitalID uuid.UUID) ([]*model.HospitalPlugin, error) {
	query := `SELECT * FROM hospital_plugins WHERE hospital_id = $1 ORDER BY plugin_name`
	var activations []*model.HospitalPlugin
	err := r.db.SelectContext(ctx, &activations, query, hospitalID)
	return activations, err
}

// UpsertActivation writes the activation state for one hospital-plugin
// pair. The unique (hospital_id, plugin_name) constraint scopes state to
// the pair.
func (r *pluginRepository) UpsertActivation(ctx context.Context, activation *model.HospitalPlugin) error {
	query := `
		INSERT INTO hospital_plugins (id, hospital_id, plugin_name, is_active, settings, activated_at, activated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (hospital_id, plugin_name)
		DO UPDATE SET is_active = EXCLUDED.is_active,
		              settings = EXCLUDED.settings,
		              activated_at = EXCLUDED.activated_at,
		              activated_by = EXCLUDED.activated_by,
		              updated_at = EXCLUDED.updated_at
	`
	activation.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		activation.ID,
		activation.HospitalID,
		activation.PluginName,
		activation.IsActive,
		activation.Settings,
		activation.ActivatedAt,
		activation.ActivatedBy,
		activation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert plugin activation: %w", err)
	}
	return nil
}
