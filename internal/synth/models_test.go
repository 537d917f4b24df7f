package synth

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModel(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("model"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
}

func TestModelRegistryScan(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "alice.onnx")
	writeModel(t, dir, "bob.onnx")
	writeModel(t, dir, "notes.txt")

	r, err := NewModelRegistry(dir)
	if err != nil {
		t.Fatalf("NewModelRegistry: %v", err)
	}
	models := r.Models()
	if len(models) != 2 || models[0] != "alice" || models[1] != "bob" {
		t.Fatalf("models: %v", models)
	}
	if r.Active() {
		t.Fatalf("no model should be active after scan")
	}
}

func TestModelRegistryActivation(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "alice.onnx")

	r, err := NewModelRegistry(dir)
	if err != nil {
		t.Fatalf("NewModelRegistry: %v", err)
	}
	if err := r.SetActive("carol"); err == nil {
		t.Fatalf("unknown model must be rejected")
	}
	if err := r.SetActive("alice"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if !r.Active() || r.ActiveModel() != "alice" {
		t.Fatalf("active: %v %q", r.Active(), r.ActiveModel())
	}
	if err := r.SetActive(""); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if r.Active() {
		t.Fatalf("deactivation failed")
	}
}

func TestModelRegistryReloadDropsRemovedActive(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "alice.onnx")

	r, err := NewModelRegistry(dir)
	if err != nil {
		t.Fatalf("NewModelRegistry: %v", err)
	}
	if err := r.SetActive("alice"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "alice.onnx")); err != nil {
		t.Fatalf("remove model: %v", err)
	}
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if r.Active() {
		t.Fatalf("active selection must drop when the model disappears")
	}
}

func TestModelRegistryMissingDir(t *testing.T) {
	r, err := NewModelRegistry(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing directory must not be an error: %v", err)
	}
	if r.Active() || len(r.Models()) != 0 {
		t.Fatalf("empty registry expected")
	}
}
