package plugin

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/plugin"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/pkg/errors"
)

type PluginService interface {
	ListPlugins(ctx context.Context, hospitalID uuid.UUID) ([]*model.Plugin, error)
	Activate(ctx context.Context, hospitalID, actorID uuid.UUID, name string, req *model.ActivatePluginRequest) (*model.HospitalPlugin, error)
	Deactivate(ctx context.Context, hospitalID, actorID uuid.UUID, name string) error
	UpdateSettings(ctx context.Context, hospitalID, actorID uuid.UUID, name string, req *model.UpdatePluginSettingsRequest) (*model.HospitalPlugin, error)
	IsActive(ctx context.Context, hospitalID uuid.UUID, name string) (bool, error)
}

type Service struct {
	registry *plugin.Registry
	repo     repository.PluginRepository
	auditor  *audit.Service
}

func NewService(registry *plugin.Registry, repo repository.PluginRepository, auditor *audit.Service) *Service {
	return &Service{
		registry: registry,
		repo:     repo,
		auditor:  auditor,
	}
}

// ListPlugins merges the compiled module catalogue with the hospital's
// activation state. Enabled reflects this hospital, not the deployment.
func (s *Service) ListPlugins(ctx context.Context, hospitalID uuid.UUID) ([]*model.Plugin, error) {
	activations, err := s.repo.ListActivations(ctx, hospitalID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	active := make(map[string]bool, len(activations))
	for _, a := range activations {
		active[a.PluginName] = a.IsActive
	}

	var out []*model.Plugin
	for _, m := range s.registry.EnabledModules() {
		out = append(out, &model.Plugin{
			Name:        m.Name,
			Description: m.Description,
			Version:     m.Version,
			Enabled:     active[m.Name],
		})
	}
	return out, nil
}

func (s *Service) Activate(ctx context.Context, hospitalID, actorID uuid.UUID, name string, req *model.ActivatePluginRequest) (*model.HospitalPlugin, error) {
	if !s.registry.Enabled(name) {
		return nil, errors.NotFound("plugin", nil)
	}

	now := time.Now()
	activation := &model.HospitalPlugin{
		ID:          uuid.New(),
		HospitalID:  hospitalID,
		PluginName:  name,
		IsActive:    true,
		ActivatedAt: &now,
		ActivatedBy: &actorID,
		UpdatedAt:   now,
	}
	if req != nil {
		activation.Settings = req.Settings
	}

	if err := s.repo.UpsertActivation(ctx, activation); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionActivate, model.AuditEntityPlugin, activation.ID, &audit.LogOptions{
		Metadata: map[string]string{"plugin": name},
	})
	return activation, nil
}

func (s *Service) Deactivate(ctx context.Context, hospitalID, actorID uuid.UUID, name string) error {
	if !s.registry.Enabled(name) {
		return errors.NotFound("plugin", nil)
	}

	existing, err := s.repo.GetActivation(ctx, hospitalID, name)
	if err != nil {
		return errors.Internal(err)
	}
	if existing == nil || !existing.IsActive {
		return nil
	}

	existing.IsActive = false
	existing.UpdatedAt = time.Now()
	if err := s.repo.UpsertActivation(ctx, existing); err != nil {
		return errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityPlugin, existing.ID, &audit.LogOptions{
		Metadata: map[string]string{"plugin": name, "event": "deactivated"},
	})
	return nil
}

func (s *Service) UpdateSettings(ctx context.Context, hospitalID, actorID uuid.UUID, name string, req *model.UpdatePluginSettingsRequest) (*model.HospitalPlugin, error) {
	existing, err := s.repo.GetActivation(ctx, hospitalID, name)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if existing == nil || !existing.IsActive {
		return nil, errors.NotFound("plugin activation", nil)
	}

	existing.Settings = req.Settings
	existing.UpdatedAt = time.Now()
	if err := s.repo.UpsertActivation(ctx, existing); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityPlugin, existing.ID, &audit.LogOptions{
		Metadata: map[string]string{"plugin": name, "event": "settings"},
	})
	return existing, nil
}

// IsActive backs the route gate. A missing activation row means the
// plugin was never switched on for the hospital.
func (s *Service) IsActive(ctx context.Context, hospitalID uuid.UUID, name string) (bool, error) {
	if !s.registry.Enabled(name) {
		return false, nil
	}
	activation, err := s.repo.GetActivation(ctx, hospitalID, name)
	if err != nil {
		return false, err
	}
	return activation != nil && activation.IsActive, nil
}
