package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

type LogOptions struct {
	Changes   interface{}
	Metadata  interface{}
	IPAddress string
}

// Log records an audit entry. Audit failures are logged but never fail
// the operation being audited.
func (s *Service) Log(ctx context.Context, userID, hospitalID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions) {
	var changes, metadata json.RawMessage
	var ipAddress string

	if opts != nil {
		if opts.Changes != nil {
			if b, err := json.Marshal(opts.Changes); err == nil {
				changes = b
			}
		}
		if opts.Metadata != nil {
			if b, err := json.Marshal(opts.Metadata); err == nil {
				metadata = b
			}
		}
		ipAddress = opts.IPAddress
	}

	entry := &model.AuditLog{
		ID:         uuid.New(),
		UserID:     userID,
		HospitalID: hospitalID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		Metadata:   metadata,
		IPAddress:  ipAddress,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID.String()).
			Msg("failed to write audit log")
	}
}

func (s *Service) List(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*model.AuditLog, error) {
	return s.repo.List(ctx, hospitalID, limit, offset)
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, before)
}
