package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopMount(_ *gin.RouterGroup) {}

func testRegistry() *Registry {
	r := NewRegistry()
	r.Register(Module{Name: "appointments", Version: "1.0.0", Mount: noopMount})
	r.Register(Module{Name: "billing", Version: "1.0.0", Mount: noopMount})
	r.Register(Module{Name: "maternity", Version: "1.0.0", Mount: noopMount})
	return r
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(Module{Name: "billing", Mount: noopMount})
	assert.Panics(t, func() {
		r.Register(Module{Name: "billing", Mount: noopMount})
	})
}

func TestRegisterWithoutMountPanics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.Register(Module{Name: "billing"})
	})
}

func TestAllEnabledByDefault(t *testing.T) {
	r := testRegistry()
	for _, m := range r.All() {
		assert.True(t, r.Enabled(m.Name), m.Name)
	}
}

func TestAllSortedByName(t *testing.T) {
	r := testRegistry()
	names := make([]string, 0, 3)
	for _, m := range r.All() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"appointments", "billing", "maternity"}, names)
}

func TestLoadManifestMissingFileKeepsDefaults(t *testing.T) {
	r := testRegistry()
	unknown, err := r.LoadManifest(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.True(t, r.Enabled("billing"))
}

func TestLoadManifestAppliesSwitches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.json")
	manifest := `{"plugins":[
		{"name":"billing","enabled":false},
		{"name":"appointments","enabled":true},
		{"name":"telemetry","enabled":true}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	r := testRegistry()
	unknown, err := r.LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"telemetry"}, unknown)
	assert.True(t, r.Enabled("appointments"))
	assert.False(t, r.Enabled("billing"))
	// Omitted from the manifest means off.
	assert.False(t, r.Enabled("maternity"))
}

func TestLoadManifestInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	r := testRegistry()
	_, err := r.LoadManifest(path)
	assert.Error(t, err)
}

func TestEnabledModules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.json")
	manifest := `{"plugins":[{"name":"billing","enabled":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	r := testRegistry()
	_, err := r.LoadManifest(path)
	require.NoError(t, err)

	enabled := r.EnabledModules()
	require.Len(t, enabled, 1)
	assert.Equal(t, "billing", enabled[0].Name)
}
