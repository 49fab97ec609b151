package plugin

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest is the deployment-level plugin switchboard. When no manifest
// file exists every compiled module runs with its defaults.
type Manifest struct {
	Plugins []ManifestEntry `json:"plugins"`
}

type ManifestEntry struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// LoadManifest reads and applies the manifest at path. A missing file
// is not an error: the registry keeps every module enabled. It returns
// the manifest names that matched no compiled module.
func (r *Registry) LoadManifest(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("plugin: invalid manifest %s: %w", path, err)
	}

	return r.applyManifest(&m), nil
}
