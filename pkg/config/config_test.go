package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.PlanOptions().Validate(); err != nil {
		t.Errorf("Expected default options to validate, got %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.Addr())
	}
}

func TestLoadFile_OverlaysOnlyGivenKeys(t *testing.T) {
	path := writeFile(t, "config.toml", `
[server]
port = 9090

[storage]
driver = "sqlite"
dsn = "supplyplan.db"

[planning]
horizon = 14
granularity = "week"
fallback_policy = "skip"
skus = ["A", "B"]
`)

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "supplyplan.db" {
		t.Errorf("Expected sqlite storage, got %+v", cfg.Storage)
	}

	opts := cfg.PlanOptions()
	if opts.Horizon != 14 {
		t.Errorf("Expected horizon 14, got %d", opts.Horizon)
	}
	if opts.Granularity != entities.Weekly {
		t.Errorf("Expected weekly granularity, got %s", opts.Granularity)
	}
	if opts.FallbackPolicy != dto.FallbackSkip {
		t.Errorf("Expected skip policy, got %s", opts.FallbackPolicy)
	}
	if len(opts.SKUs) != 2 {
		t.Errorf("Expected 2 SKUs, got %v", opts.SKUs)
	}
	if opts.ServiceLevel != dto.DefaultPlanOptions().ServiceLevel {
		t.Errorf("Expected default service level to survive, got %v", opts.ServiceLevel)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := writeFile(t, "config.toml", "[planning]\ngranularity = \"month\"\n")
	if err := DefaultConfig().LoadFile(path); err == nil {
		t.Error("Expected error for invalid granularity")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SUPPLYPLAN_HORIZON", "21")
	t.Setenv("SUPPLYPLAN_SERVICE_LEVEL", "0.99")
	t.Setenv("SUPPLYPLAN_GRANULARITY", "weekly")
	t.Setenv("SUPPLYPLAN_PORT", "7000")
	t.Setenv("SUPPLYPLAN_WORKERS", "not-a-number")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"horizon", cfg.Planning.Horizon, 21},
		{"service level", cfg.Planning.ServiceLevel, 0.99},
		{"granularity", cfg.Planning.Granularity, entities.Weekly},
		{"port", cfg.Server.Port, 7000},
		{"workers", cfg.Planning.Workers, dto.DefaultPlanOptions().Workers},
		{"redis enabled", cfg.Redis.Enabled, true},
		{"redis host", cfg.Redis.Host, "cache"},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("Expected %s %v, got %v", tt.name, tt.expected, tt.got)
		}
	}
}

func TestApplyEnv_InvalidGranularity(t *testing.T) {
	t.Setenv("SUPPLYPLAN_GRANULARITY", "month")
	if err := DefaultConfig().ApplyEnv(); err == nil {
		t.Error("Expected error for invalid granularity")
	}
}

func TestLoad(t *testing.T) {
	t.Run("explicit missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("Expected error for missing explicit config")
		}
	})

	t.Run("explicit file then env", func(t *testing.T) {
		path := writeFile(t, "supplyplan.toml", "[planning]\nhorizon = 10\n")
		t.Setenv("SUPPLYPLAN_HORIZON", "12")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Planning.Horizon != 12 {
			t.Errorf("Expected environment to win with 12, got %d", cfg.Planning.Horizon)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "SUPPLYPLAN_DB_DRIVER=postgres\n")
	t.Setenv("SUPPLYPLAN_DB_DRIVER", "")
	os.Unsetenv("SUPPLYPLAN_DB_DRIVER")

	LoadDotEnv(path)
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Errorf("Expected driver from .env, got %q", cfg.Storage.Driver)
	}
}
