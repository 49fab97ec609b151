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

type fhirLinkRepository struct {
	db *sqlx.DB
}

func NewFHIRLinkRepository(db *sqlx.DB) repository.FHIRLinkRepository {
	return &fhirLinkRepository{db: db}
}

func (r *fhirLinkRepository) Upsert(ctx context.Context, link *model.FHIRLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.LastSynced = time.Now()

	query := `
		INSERT INTO fhir_links (id, entity_type, entity_id, fhir_id, last_synced)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (entity_type, entity_id)
		DO UPDATE SET fhir_id = EXCLUDED.fhir_id, last_synced = EXCLUDED.last_synced
	`
	_, err := r.db.ExecContext(ctx, query, link.ID, link.EntityType, link.EntityID, link.FHIRID, link.LastSynced)
	if err != nil {
		return fmt.Errorf("failed to upsert fhir link: %w", err)
	}
	return nil
}

func (r *fhirLinkRepository) Get(ctx context.Context, entityType string, entityID uuid.UUID) (*model.FHIRLink, error) {
	query := `SELECT * FROM fhir_links WHERE entity_type = $1 AND entity_id = $2`
	var link model.FHIRLink
	if err := r.db.GetContext(ctx, &link, query, entityType, entityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fhir link: %w", err)
	}
	return &link, nil
}
