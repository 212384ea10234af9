package diarize

import "testing"

func TestNewPyannoteDefaults(t *testing.T) {
	p := NewPyannote(PyannoteConfig{})
	if p.cfg.BaseURL != "http://localhost:8179" {
		t.Errorf("unexpected default base URL: %q", p.cfg.BaseURL)
	}
	if p.Name() != "pyannote" {
		t.Errorf("unexpected engine name: %q", p.Name())
	}
}

func TestPyannoteLoadUnloadLifecycle(t *testing.T) {
	p := NewPyannote(PyannoteConfig{})

	if p.Loaded() {
		t.Fatal("new engine must not report loaded")
	}
	if err := p.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !p.Loaded() {
		t.Fatal("expected loaded after Load")
	}

	p.Unload()
	if p.Loaded() {
		t.Fatal("expected unloaded after Unload")
	}
}
