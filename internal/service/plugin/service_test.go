package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/plugin"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
)

type fakePluginRepo struct {
	activations map[string]*model.HospitalPlugin
}

func newFakePluginRepo() *fakePluginRepo {
	return &fakePluginRepo{activations: make(map[string]*model.HospitalPlugin)}
}

func key(hospitalID uuid.UUID, name string) string {
	return hospitalID.String() + "/" + name
}

func (r *fakePluginRepo) GetActivation(_ context.Context, hospitalID uuid.UUID, name string) (*model.HospitalPlugin, error) {
	a, ok := r.activations[key(hospitalID, name)]
	if !ok {
		return nil, nil
	}
	clone := *a
	return &clone, nil
}

func (r *fakePluginRepo) ListActivations(_ context.Context, hospitalID uuid.UUID) ([]*model.HospitalPlugin, error) {
	var out []*model.HospitalPlugin
	for _, a := range r.activations {
		if a.HospitalID == hospitalID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakePluginRepo) UpsertActivation(_ context.Context, a *model.HospitalPlugin) error {
	clone := *a
	r.activations[key(a.HospitalID, a.PluginName)] = &clone
	return nil
}

type fakeAuditRepo struct {
	repository.AuditRepository
}

func (r *fakeAuditRepo) Create(_ context.Context, _ *model.AuditLog) error { return nil }

func testRegistry(names ...string) *plugin.Registry {
	registry := plugin.NewRegistry()
	for _, name := range names {
		registry.Register(plugin.Module{
			Name:    name,
			Version: "1.0.0",
			Mount:   func(*gin.RouterGroup) {},
		})
	}
	return registry
}

func newService(names ...string) (*Service, *fakePluginRepo) {
	repo := newFakePluginRepo()
	return NewService(testRegistry(names...), repo, audit.NewService(&fakeAuditRepo{})), repo
}

func TestActivationIsPerHospital(t *testing.T) {
	svc, _ := newService("billing")
	hospitalA := uuid.New()
	hospitalB := uuid.New()
	actor := uuid.New()

	_, err := svc.Activate(context.Background(), hospitalA, actor, "billing", nil)
	require.NoError(t, err)

	activeA, err := svc.IsActive(context.Background(), hospitalA, "billing")
	require.NoError(t, err)
	assert.True(t, activeA)

	activeB, err := svc.IsActive(context.Background(), hospitalB, "billing")
	require.NoError(t, err)
	assert.False(t, activeB)
}

func TestActivateUnknownPluginRejected(t *testing.T) {
	svc, _ := newService("billing")
	_, err := svc.Activate(context.Background(), uuid.New(), uuid.New(), "telepathy", nil)
	require.Error(t, err)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	svc, _ := newService("chat")
	hospitalID := uuid.New()
	actor := uuid.New()

	require.NoError(t, svc.Deactivate(context.Background(), hospitalID, actor, "chat"))

	_, err := svc.Activate(context.Background(), hospitalID, actor, "chat", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), hospitalID, actor, "chat"))
	require.NoError(t, svc.Deactivate(context.Background(), hospitalID, actor, "chat"))

	active, err := svc.IsActive(context.Background(), hospitalID, "chat")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestUpdateSettingsRequiresActiveActivation(t *testing.T) {
	svc, _ := newService("billing")
	hospitalID := uuid.New()
	actor := uuid.New()

	_, err := svc.UpdateSettings(context.Background(), hospitalID, actor, "billing", &model.UpdatePluginSettingsRequest{
		Settings: []byte(`{"currency":"NGN"}`),
	})
	require.Error(t, err)

	_, err = svc.Activate(context.Background(), hospitalID, actor, "billing", nil)
	require.NoError(t, err)

	updated, err := svc.UpdateSettings(context.Background(), hospitalID, actor, "billing", &model.UpdatePluginSettingsRequest{
		Settings: []byte(`{"currency":"NGN"}`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"NGN"}`, string(updated.Settings))
}

func TestListPluginsReflectsHospitalState(t *testing.T) {
	svc, _ := newService("appointments", "billing")
	hospitalID := uuid.New()

	_, err := svc.Activate(context.Background(), hospitalID, uuid.New(), "billing", nil)
	require.NoError(t, err)

	plugins, err := svc.ListPlugins(context.Background(), hospitalID)
	require.NoError(t, err)
	require.Len(t, plugins, 2)

	byName := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		byName[p.Name] = p.Enabled
	}
	assert.False(t, byName["appointments"])
	assert.True(t, byName["billing"])
}

func TestDeploymentDisabledPluginNeverActive(t *testing.T) {
	registry := testRegistry("billing")
	path := filepath.Join(t.TempDir(), "plugins.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"plugins":[{"name":"billing","enabled":false}]}`), 0o600))
	_, err := registry.LoadManifest(path)
	require.NoError(t, err)

	repo := newFakePluginRepo()
	svc := NewService(registry, repo, audit.NewService(&fakeAuditRepo{}))

	hospitalID := uuid.New()
	repo.activations[key(hospitalID, "billing")] = &model.HospitalPlugin{
		HospitalID: hospitalID,
		PluginName: "billing",
		IsActive:   true,
	}

	active, err := svc.IsActive(context.Background(), hospitalID, "billing")
	require.NoError(t, err)
	assert.False(t, active)
}
