package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
	"github.com/eugenenazirov/uld-packer/internal/packing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "SOLVER_TIME_LIMIT", "SOLVER_NODE_LIMIT", "MAX_BOXES", "ULD_CONTAINERS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if cfg.SolverTimeLimit != defaultSolverTimeLimit || cfg.SolverNodeLimit != defaultSolverNodeLimit {
		t.Fatalf("unexpected solver limits: %s, %d", cfg.SolverTimeLimit, cfg.SolverNodeLimit)
	}
	if cfg.WriteTimeout <= cfg.SolverTimeLimit {
		t.Fatalf("write timeout %s must leave room for the solver", cfg.WriteTimeout)
	}
	if len(cfg.Containers) != 0 {
		t.Fatalf("expected no extra containers, got %v", cfg.Containers)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SOLVER_TIME_LIMIT", "3s")
	t.Setenv("MAX_BOXES", "12")
	t.Setenv("ULD_CONTAINERS", "test=10x20x30")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.SolverTimeLimit != 3*time.Second || cfg.MaxBoxes != 12 {
		t.Fatalf("unexpected solver settings: %s, %d", cfg.SolverTimeLimit, cfg.MaxBoxes)
	}
	if got := cfg.Containers["TEST"]; got != (geometry.Container{Length: 10, Width: 20, Height: 30}) {
		t.Fatalf("unexpected container preset: %v", got)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("SOLVER_NODE_LIMIT", "5")
	t.Setenv("LOG_LEVEL", "warn")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
port: "7100"
enable_request_logging: false
log_level: debug
solver:
  time_limit: 2s
  node_limit: 900
  formulation: orientation-pairs
containers:
  demo: {length: 100, width: 100, height: 100}
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	port := "7200"
	cfg, err := Load(&CLIOverrides{ConfigFile: path, Port: &port})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7200" {
		t.Fatalf("expected CLI port to win, got %s", cfg.Port)
	}
	if cfg.SolverNodeLimit != 900 {
		t.Fatalf("expected YAML node limit to beat env, got %d", cfg.SolverNodeLimit)
	}
	if cfg.EnableRequestLogging {
		t.Fatal("expected request logging disabled by YAML")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected YAML log level to beat env, got %s", cfg.LogLevel)
	}
	if cfg.Formulation != packing.FormulationOrientationPairs {
		t.Fatalf("unexpected formulation %s", cfg.Formulation)
	}
	if _, ok := cfg.Containers["DEMO"]; !ok {
		t.Fatalf("expected DEMO preset, got %v", cfg.Containers)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("MAX_BOXES=7\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv never overrides variables that are already set.
	if err := os.Unsetenv("MAX_BOXES"); err != nil {
		t.Fatalf("unset: %v", err)
	}

	cfg, err := Load(&CLIOverrides{EnvFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MaxBoxes != 7 {
		t.Fatalf("expected MAX_BOXES from env file, got %d", cfg.MaxBoxes)
	}
}

func TestLoadRejectsBadYAMLDuration(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("solver:\n  time_limit: soon\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
		t.Fatal("expected an error for an invalid duration")
	}
}

func TestParseContainers(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := ParseContainers("a=1x2x3; B = 4,5,6 ;")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got["A"].Height != 3 || got["B"].Length != 4 {
			t.Fatalf("unexpected containers: %v", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, raw := range []string{" ; ", "a", "=1x2x3", "a=1x2", "a=1xbx3", "a=0x1x1"} {
			if _, err := ParseContainers(raw); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		}
	})
}
