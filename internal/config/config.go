// Package config handles configuration loading and management for teamplan.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// ProjectConfigName is the per-project override file.
const ProjectConfigName = ".teamplan.yaml"

// Config holds all configuration for teamplan.
type Config struct {
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	UseBedrock        bool   `mapstructure:"use_bedrock"`
	AWSRegion         string `mapstructure:"aws_region"`
	AWSProfile        string `mapstructure:"aws_profile"`
	MaxTokens         int64  `mapstructure:"max_tokens"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// ProviderConfig controls the AI decomposition provider.
type ProviderConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SchedulingConfig holds the scheduling policy.
type SchedulingConfig struct {
	Buffer           time.Duration `mapstructure:"buffer"`
	DeadlineMargin   time.Duration `mapstructure:"deadline_margin"`
	UtilizationLimit float64       `mapstructure:"utilization_limit"`
}

// DefaultsConfig fills in values a request file leaves out.
type DefaultsConfig struct {
	Parts           int   `mapstructure:"parts"`
	WorkHoursPerDay int   `mapstructure:"work_hours_per_day"`
	StartHour       int   `mapstructure:"start_hour"`
	EndHour         int   `mapstructure:"end_hour"`
	DaysOfWeek      []int `mapstructure:"days_of_week"`
}

// Constraints builds validated working constraints from the defaults.
func (d DefaultsConfig) Constraints() (models.Constraints, error) {
	return models.NewConstraints(d.WorkHoursPerDay, d.StartHour, d.EndHour, d.DaysOfWeek)
}

// StorageConfig holds database locations. Empty paths mean the XDG defaults.
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path"`
	RunlogPath string `mapstructure:"runlog_path"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (TEAMPLAN_<SECTION>_<KEY>, ANTHROPIC_API_KEY)
// 2. Project config (.teamplan.yaml in current directory or parent)
// 3. User config (~/.config/teamplan/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	bindEnv(v)
	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file on top of the defaults.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("TEAMPLAN")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "TEAMPLAN_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
}

// Keys returns every known configuration key, sorted.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// IsKnownKey reports whether key is a configuration key.
func IsKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// SetUserValue stores one key in the user config file, creating it if needed.
func SetUserValue(key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	dir := getUserConfigDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading user config: %w", err)
		}
	}
	v.Set(key, value)

	return v.WriteConfigAs(path)
}

// Get returns the effective value of key after all sources are applied.
func Get(key string) (any, error) {
	if !IsKnownKey(key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return Value(cfg, key)
}

// Value returns the value of key in cfg, with the API key masked.
func Value(cfg *Config, key string) (any, error) {
	if !IsKnownKey(key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	v := viper.New()
	if err := v.MergeConfigMap(AsMap(cfg)); err != nil {
		return nil, err
	}
	return v.Get(key), nil
}

// AsMap renders cfg keyed like the config file, with the API key masked.
func AsMap(cfg *Config) map[string]any {
	return map[string]any{
		"anthropic": map[string]any{
			"api_key":             MaskAPIKey(cfg.Anthropic.APIKey),
			"model":               cfg.Anthropic.Model,
			"use_bedrock":         cfg.Anthropic.UseBedrock,
			"aws_region":          cfg.Anthropic.AWSRegion,
			"aws_profile":         cfg.Anthropic.AWSProfile,
			"max_tokens":          cfg.Anthropic.MaxTokens,
			"requests_per_minute": cfg.Anthropic.RequestsPerMinute,
		},
		"provider": map[string]any{
			"enabled": cfg.Provider.Enabled,
			"timeout": cfg.Provider.Timeout.String(),
		},
		"scheduling": map[string]any{
			"buffer":            cfg.Scheduling.Buffer.String(),
			"deadline_margin":   cfg.Scheduling.DeadlineMargin.String(),
			"utilization_limit": cfg.Scheduling.UtilizationLimit,
		},
		"defaults": map[string]any{
			"parts":              cfg.Defaults.Parts,
			"work_hours_per_day": cfg.Defaults.WorkHoursPerDay,
			"start_hour":         cfg.Defaults.StartHour,
			"end_hour":           cfg.Defaults.EndHour,
			"days_of_week":       cfg.Defaults.DaysOfWeek,
		},
		"storage": map[string]any{
			"db_path":     cfg.Storage.DBPath,
			"runlog_path": cfg.Storage.RunlogPath,
		},
		"logging": map[string]any{
			"level":   cfg.Logging.Level,
			"file":    cfg.Logging.File,
			"console": cfg.Logging.Console,
		},
	}
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")
	v.SetDefault("anthropic.max_tokens", d.Anthropic.MaxTokens)
	v.SetDefault("anthropic.requests_per_minute", d.Anthropic.RequestsPerMinute)

	v.SetDefault("provider.enabled", d.Provider.Enabled)
	v.SetDefault("provider.timeout", d.Provider.Timeout.String())

	v.SetDefault("scheduling.buffer", d.Scheduling.Buffer.String())
	v.SetDefault("scheduling.deadline_margin", d.Scheduling.DeadlineMargin.String())
	v.SetDefault("scheduling.utilization_limit", d.Scheduling.UtilizationLimit)

	v.SetDefault("defaults.parts", d.Defaults.Parts)
	v.SetDefault("defaults.work_hours_per_day", d.Defaults.WorkHoursPerDay)
	v.SetDefault("defaults.start_hour", d.Defaults.StartHour)
	v.SetDefault("defaults.end_hour", d.Defaults.EndHour)
	v.SetDefault("defaults.days_of_week", d.Defaults.DaysOfWeek)

	v.SetDefault("storage.db_path", "")
	v.SetDefault("storage.runlog_path", "")

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.console", d.Logging.Console)
}

// getUserConfigDir returns the XDG config directory for teamplan.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "teamplan")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "teamplan")
	}
	return filepath.Join(home, ".config", "teamplan")
}

// findProjectConfig searches for .teamplan.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:             "claude-sonnet-4-5-20250929",
			MaxTokens:         4096,
			RequestsPerMinute: 20,
		},
		Provider: ProviderConfig{
			Enabled: true,
			Timeout: 60 * time.Second,
		},
		Scheduling: SchedulingConfig{
			Buffer:           15 * time.Minute,
			DeadlineMargin:   24 * time.Hour,
			UtilizationLimit: 0.8,
		},
		Defaults: DefaultsConfig{
			Parts:           1,
			WorkHoursPerDay: 8,
			StartHour:       9,
			EndHour:         17,
			DaysOfWeek:      []int{1, 2, 3, 4, 5},
		},
		Logging: LoggingConfig{
			Level:   "info",
			File:    filepath.Join(".teamplan", "logs", "teamplan.log"),
			Console: false,
		},
	}
}
