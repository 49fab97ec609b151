// Package plugin tracks the optional feature modules compiled into the
// server and which of them the deployment has switched on.
package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// Module is a feature module that mounts its own routes. Modules are
// compiled in; the manifest and per-hospital activations only control
// whether their routes respond.
type Module struct {
	Name        string
	Description string
	Version     string
	Mount       func(rg *gin.RouterGroup)
}

type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
	enabled map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
		enabled: make(map[string]bool),
	}
}

// Register adds a module to the registry. Registering the same name
// twice is a wiring bug and panics at startup.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.Name == "" {
		panic("plugin: module name is required")
	}
	if m.Mount == nil {
		panic(fmt.Sprintf("plugin: module %q has no mount function", m.Name))
	}
	if _, ok := r.modules[m.Name]; ok {
		panic(fmt.Sprintf("plugin: module %q registered twice", m.Name))
	}
	r.modules[m.Name] = m
	r.enabled[m.Name] = true
}

// Get returns a registered module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// Has reports whether name is a registered module.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Enabled reports whether the module is switched on for this
// deployment. Unknown names are disabled.
func (r *Registry) Enabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[name]
}

// All returns the registered modules sorted by name.
func (r *Registry) All() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EnabledModules returns the enabled modules sorted by name.
func (r *Registry) EnabledModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Module, 0, len(r.modules))
	for name, m := range r.modules {
		if r.enabled[name] {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// applyManifest overwrites the enabled set from a manifest. Modules the
// manifest does not mention stay disabled; manifest entries that match
// no compiled module are reported back so the caller can log them.
func (r *Registry) applyManifest(m *Manifest) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var unknown []string
	for name := range r.enabled {
		r.enabled[name] = false
	}
	for _, e := range m.Plugins {
		if _, ok := r.modules[e.Name]; !ok {
			unknown = append(unknown, e.Name)
			continue
		}
		r.enabled[e.Name] = e.Enabled
	}
	sort.Strings(unknown)
	return unknown
}
