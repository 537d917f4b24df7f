package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ModelRegistry tracks the voice-conversion models available on disk and
// which one is active. Voice-preserving mode is gated on Active().
type ModelRegistry struct {
	dir string

	mu     sync.RWMutex
	models []string
	active string
}

// NewModelRegistry scans dir for voice models (.onnx files). A missing or
// empty directory is not an error: the registry simply reports no active
// model.
func NewModelRegistry(dir string) (*ModelRegistry, error) {
	r := &ModelRegistry{dir: dir}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rescans the model directory.
func (r *ModelRegistry) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models = r.models[:0]
	if r.dir == "" {
		r.active = ""
		return nil
	}

	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		r.active = ""
		return nil
	}
	if err != nil {
		return fmt.Errorf("scan voice models: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".onnx") {
			continue
		}
		r.models = append(r.models, strings.TrimSuffix(e.Name(), ".onnx"))
	}
	sort.Strings(r.models)

	// Keep the active selection only while its model still exists.
	if r.active != "" && !containsModel(r.models, r.active) {
		r.active = ""
	}
	return nil
}

// Models lists the available voice models.
func (r *ModelRegistry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.models))
	copy(out, r.models)
	return out
}

// SetActive selects a voice model by name. An empty name deactivates.
func (r *ModelRegistry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		r.active = ""
		return nil
	}
	if !containsModel(r.models, name) {
		return fmt.Errorf("unknown voice model %q", name)
	}
	r.active = name
	return nil
}

// ActiveModel returns the active model name, empty when none.
func (r *ModelRegistry) ActiveModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Active reports whether a voice-conversion model is selected.
func (r *ModelRegistry) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active != ""
}

// ModelPath returns the on-disk path of a model.
func (r *ModelRegistry) ModelPath(name string) string {
	return filepath.Join(r.dir, name+".onnx")
}

func containsModel(models []string, name string) bool {
	for _, m := range models {
		if m == name {
			return true
		}
	}
	return false
}
