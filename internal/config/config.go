package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simpleidserver/envprovision/internal/vars"
)

const (
	defaultEnvironmentFile = "/etc/environment"
	defaultSetxExecutable  = "setx"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	// EnvironmentFile is the system-wide environment file appended to on Linux.
	EnvironmentFile string
	// SetxExecutable is the setx binary invoked for machine-scope persistence on Windows.
	SetxExecutable string
	// ProcessOnly skips the persistence phase on every platform.
	ProcessOnly bool
	// DryRun logs the plan without mutating the environment or any store.
	DryRun bool
	// PersistRate paces persistence operations per second; 0 disables pacing.
	PersistRate float64
	// VariableOverrides are merged over the embedded variable set, in order.
	VariableOverrides []vars.Entry
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	EnvironmentFile string         `yaml:"environment_file"`
	SetxExecutable  string         `yaml:"setx_executable"`
	ProcessOnly     *bool          `yaml:"process_only"`
	DryRun          *bool          `yaml:"dry_run"`
	PersistRate     float64        `yaml:"persist_rate"`
	Variables       []yamlVariable `yaml:"variables"`
}

// yamlVariable is one name/value override in the configuration file.
type yamlVariable struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile      string
	EnvironmentFile *string
	SetxExecutable  *string
	ProcessOnly     *bool
	DryRun          *bool
	PersistRate     *float64
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment variables first, so the YAML file overrides them
	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		EnvironmentFile: defaultEnvironmentFile,
		SetxExecutable:  defaultSetxExecutable,
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
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.EnvironmentFile != "" {
		cfg.EnvironmentFile = yamlCfg.EnvironmentFile
	}

	if yamlCfg.SetxExecutable != "" {
		cfg.SetxExecutable = yamlCfg.SetxExecutable
	}

	if yamlCfg.ProcessOnly != nil {
		cfg.ProcessOnly = *yamlCfg.ProcessOnly
	}

	if yamlCfg.DryRun != nil {
		cfg.DryRun = *yamlCfg.DryRun
	}

	if yamlCfg.PersistRate > 0 {
		cfg.PersistRate = yamlCfg.PersistRate
	}

	for _, v := range yamlCfg.Variables {
		if v.Name == "" {
			continue
		}
		cfg.VariableOverrides = append(cfg.VariableOverrides, vars.Entry{Name: v.Name, Value: v.Value})
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if path := strings.TrimSpace(os.Getenv("ENV_PROVISIONER_FILE")); path != "" {
		cfg.EnvironmentFile = path
	}

	if raw := strings.TrimSpace(os.Getenv("ENV_PROVISIONER_PROCESS_ONLY")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.ProcessOnly = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ENV_PROVISIONER_DRY_RUN")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.DryRun = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.EnvironmentFile != nil && *overrides.EnvironmentFile != "" {
		cfg.EnvironmentFile = *overrides.EnvironmentFile
	}

	if overrides.SetxExecutable != nil && *overrides.SetxExecutable != "" {
		cfg.SetxExecutable = *overrides.SetxExecutable
	}

	if overrides.ProcessOnly != nil {
		cfg.ProcessOnly = *overrides.ProcessOnly
	}

	if overrides.DryRun != nil {
		cfg.DryRun = *overrides.DryRun
	}

	if overrides.PersistRate != nil && *overrides.PersistRate >= 0 {
		cfg.PersistRate = *overrides.PersistRate
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.EnvironmentFile == "" {
		return fmt.Errorf("environment file path cannot be empty")
	}
	if cfg.SetxExecutable == "" {
		return fmt.Errorf("setx executable cannot be empty")
	}
	if cfg.PersistRate < 0 {
		return fmt.Errorf("persist rate must be >= 0")
	}
	return nil
}
