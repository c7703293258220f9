package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Pool.Workers <= 0 || !cfg.Pool.WaitForPendingTasks {
		t.Errorf("unexpected pool defaults: %+v", cfg.Pool)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
pool:
  name: images
  workers: 3
  wait_for_pending_tasks: false
log:
  level: debug
  format: json
metrics:
  enabled: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Pool.Name != "images" || cfg.Pool.Workers != 3 || cfg.Pool.WaitForPendingTasks {
		t.Errorf("Pool = %+v", cfg.Pool)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != JSONFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Metrics.Enabled || cfg.Metrics.Addr != ":2112" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero workers", "pool:\n  workers: 0\n", "pool.workers"},
		{"negative workers", "pool:\n  workers: -1\n", "pool.workers"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"no metrics addr", "metrics:\n  enabled: true\n  addr: \"\"\n", "metrics.addr"},
		{"bad yaml", "pool: [", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestNewLogger(t *testing.T) {
	logger := Log{Level: "warn", Format: JSONFormat}.NewLogger()
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %v, want warn", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want JSON", logger.Formatter)
	}

	logger = Log{Level: "info", Format: TextFormat}.NewLogger()
	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("formatter = %T, want text", logger.Formatter)
	}
}
