package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
	"github.com/eugenenazirov/uld-packer/internal/packing"
)

const (
	defaultPort            = "8080"
	defaultRateLimitRPS    = 5.0
	defaultRateLimitBurst  = 10
	defaultSolverTimeLimit = 10 * time.Second
	defaultSolverNodeLimit = 50000
	defaultMaxBoxes        = 40
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	LogLevel             string
	RateLimitRPS         float64
	RateLimitBurst       int

	SolverTimeLimit time.Duration
	SolverNodeLimit int
	MaxBoxes        int
	Formulation     packing.Kind

	// Containers are presets added to, or replacing, the built-in ULDs.
	Containers map[string]geometry.Container
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string                        `yaml:"port"`
	ShutdownGracePeriod  string                        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string                        `yaml:"read_header_timeout"`
	WriteTimeout         string                        `yaml:"write_timeout"`
	IdleTimeout          string                        `yaml:"idle_timeout"`
	EnableRequestLogging *bool                         `yaml:"enable_request_logging"`
	LogLevel             string                        `yaml:"log_level"`
	RateLimit            yamlRateLimit                 `yaml:"rate_limit"`
	Solver               yamlSolver                    `yaml:"solver"`
	Containers           map[string]geometry.Container `yaml:"containers"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

type yamlSolver struct {
	TimeLimit   string `yaml:"time_limit"`
	NodeLimit   *int   `yaml:"node_limit"`
	MaxBoxes    *int   `yaml:"max_boxes"`
	Formulation string `yaml:"formulation"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile      string
	EnvFile         string
	Port            *string
	LogLevel        *string
	RateLimitRPS    *float64
	RateLimitBurst  *int
	SolverTimeLimit *time.Duration
	SolverNodeLimit *int
	MaxBoxes        *int
	Containers      *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.EnvFile != "" {
		if err := godotenv.Load(overrides.EnvFile); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	// YAML overrides the environment
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         defaultSolverTimeLimit + 15*time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		LogLevel:             "info",
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		SolverTimeLimit:      defaultSolverTimeLimit,
		SolverNodeLimit:      defaultSolverNodeLimit,
		MaxBoxes:             defaultMaxBoxes,
		Formulation:          packing.FormulationPairwise,
		Containers:           map[string]geometry.Container{},
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	durations := []struct {
		raw string
		dst *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
		{yamlCfg.Solver.TimeLimit, &cfg.SolverTimeLimit},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", d.raw, err)
		}
		*d.dst = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	if yamlCfg.Solver.NodeLimit != nil {
		cfg.SolverNodeLimit = *yamlCfg.Solver.NodeLimit
	}
	if yamlCfg.Solver.MaxBoxes != nil {
		cfg.MaxBoxes = *yamlCfg.Solver.MaxBoxes
	}
	if yamlCfg.Solver.Formulation != "" {
		kind, err := packing.ParseKind(yamlCfg.Solver.Formulation)
		if err != nil {
			return err
		}
		cfg.Formulation = kind
	}
	for name, c := range yamlCfg.Containers {
		cfg.Containers[strings.ToUpper(name)] = c
	}
	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if limit := strings.TrimSpace(os.Getenv("SOLVER_TIME_LIMIT")); limit != "" {
		if value, err := time.ParseDuration(limit); err == nil && value >= 0 {
			cfg.SolverTimeLimit = value
		}
	}

	if nodes := strings.TrimSpace(os.Getenv("SOLVER_NODE_LIMIT")); nodes != "" {
		if value, err := strconv.Atoi(nodes); err == nil && value >= 0 {
			cfg.SolverNodeLimit = value
		}
	}

	if boxes := strings.TrimSpace(os.Getenv("MAX_BOXES")); boxes != "" {
		if value, err := strconv.Atoi(boxes); err == nil && value >= 0 {
			cfg.MaxBoxes = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ULD_CONTAINERS")); raw != "" {
		containers, err := ParseContainers(raw)
		if err != nil {
			return fmt.Errorf("parse ULD_CONTAINERS: %w", err)
		}
		for name, c := range containers {
			cfg.Containers[name] = c
		}
	}
	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.SolverTimeLimit != nil && *overrides.SolverTimeLimit > 0 {
		cfg.SolverTimeLimit = *overrides.SolverTimeLimit
	}

	if overrides.SolverNodeLimit != nil && *overrides.SolverNodeLimit > 0 {
		cfg.SolverNodeLimit = *overrides.SolverNodeLimit
	}

	if overrides.MaxBoxes != nil && *overrides.MaxBoxes > 0 {
		cfg.MaxBoxes = *overrides.MaxBoxes
	}

	if overrides.Containers != nil && *overrides.Containers != "" {
		containers, err := ParseContainers(*overrides.Containers)
		if err != nil {
			return fmt.Errorf("parse containers: %w", err)
		}
		for name, c := range containers {
			cfg.Containers[name] = c
		}
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.SolverTimeLimit < 0 {
		return fmt.Errorf("solver time limit must be >= 0")
	}
	if cfg.SolverNodeLimit < 0 {
		return fmt.Errorf("solver node limit must be >= 0")
	}
	if cfg.MaxBoxes < 0 {
		return fmt.Errorf("max boxes must be >= 0")
	}
	for name, c := range cfg.Containers {
		if err := geometry.ValidateContainer(c); err != nil {
			return fmt.Errorf("container %s: %w", name, err)
		}
	}
	return nil
}

// ParseContainers parses "NAME=LxWxH" entries separated by semicolons,
// e.g. "PMC=317.5x243.8x162.5;TEST=100x100x100".
func ParseContainers(raw string) (map[string]geometry.Container, error) {
	out := make(map[string]geometry.Container)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, dims, ok := strings.Cut(entry, "=")
		name = strings.ToUpper(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid container entry %q", entry)
		}
		c, err := ParseDimensions(dims)
		if err != nil {
			return nil, fmt.Errorf("container %s: %w", name, err)
		}
		out[name] = c
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no containers provided")
	}
	return out, nil
}

// ParseDimensions parses "LxWxH" or "L,W,H" into a container.
func ParseDimensions(raw string) (geometry.Container, error) {
	parts := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == 'x' || r == ',' || r == '*'
	})
	if len(parts) != 3 {
		return geometry.Container{}, fmt.Errorf("expected three dimensions, got %q", raw)
	}
	var dims [3]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geometry.Container{}, fmt.Errorf("invalid number %q", part)
		}
		dims[i] = value
	}
	c := geometry.Container{Length: dims[0], Width: dims[1], Height: dims[2]}
	if err := geometry.ValidateContainer(c); err != nil {
		return geometry.Container{}, err
	}
	return c, nil
}
