package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesAndFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
model = "claude-haiku-4-5"
max_tokens = 256
cache_size = 8
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "claude-haiku-4-5" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxTokens != 256 || cfg.CacheSize != 8 || cfg.LogLevel != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	// Unset fields keep defaults.
	if cfg.Endpoint != Default().Endpoint {
		t.Errorf("Endpoint = %q, want default", cfg.Endpoint)
	}
	if cfg.LocateRadius != Default().LocateRadius {
		t.Errorf("LocateRadius = %d, want default", cfg.LocateRadius)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("model = [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed TOML")
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GHOSTWRITER_TEST_KEY", "sk-test")
	cfg := Default()
	cfg.APIKeyEnv = "GHOSTWRITER_TEST_KEY"
	if got := cfg.APIKey(); got != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", got)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`model = "first"`), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	got := make(chan Config, 1)
	w.OnChange(func(cfg Config) { got <- cfg })

	if err := os.WriteFile(path, []byte(`model = "second"`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-got:
		if cfg.Model != "second" {
			t.Errorf("reloaded Model = %q, want second", cfg.Model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
