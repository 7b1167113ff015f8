package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManagerDefaults(t *testing.T) {
	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg, err := m.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Search.DefaultPageSize != 20 {
		t.Errorf("expected default page size 20, got %d", cfg.Search.DefaultPageSize)
	}
	if cfg.Search.MaxPageSize != 100 {
		t.Errorf("expected max page size 100, got %d", cfg.Search.MaxPageSize)
	}
	if cfg.Metrics.Namespace != "minespec" {
		t.Errorf("expected metrics namespace minespec, got %s", cfg.Metrics.Namespace)
	}
	if cfg.ErrorTracking.Enabled {
		t.Error("error tracking should be disabled by default")
	}
}

func TestManagerEnvOverride(t *testing.T) {
	os.Setenv("MINESPEC_SERVER_ADDR", ":9090")
	defer os.Unsetenv("MINESPEC_SERVER_ADDR")

	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := m.GetString("server.addr"); got != ":9090" {
		t.Errorf("expected env override :9090, got %s", got)
	}
}

func TestManagerConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  addr: \":7070\"\nsearch:\n  max_page_size: 50\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	m := NewManagerWithOptions(WithConfigFile(path))
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg, err := m.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("expected addr from file :7070, got %s", cfg.Server.Addr)
	}
	if cfg.Search.MaxPageSize != 50 {
		t.Errorf("expected max page size 50, got %d", cfg.Search.MaxPageSize)
	}
	// Values absent from the file keep their defaults
	if cfg.Search.DefaultPageSize != 20 {
		t.Errorf("expected default page size 20, got %d", cfg.Search.DefaultPageSize)
	}
}

func TestManagerSetAndGet(t *testing.T) {
	m := NewManager()
	m.Set("export.max_records", 500)

	if got := m.GetInt("export.max_records"); got != 500 {
		t.Errorf("expected 500, got %d", got)
	}
	if m.GetBool("metrics.enabled") != true {
		t.Error("expected metrics enabled by default")
	}
}
