// Package config provides CLI configuration management for the vidscribe
// command-line tool. It supports loading configuration from YAML files,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultServiceURL    = "http://localhost:5000"
	DefaultTimeout       = 10 * time.Minute
	DefaultOutputFormat  = OutputFormatText
	DefaultLanguage      = "en"
	DefaultPlayerCommand = "mpv"
	DefaultConfigDir     = ".vidscribe"
	DefaultConfigFile    = "config.yaml"
)

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// ServiceURL is the base URL of the video analysis service.
	ServiceURL string `yaml:"service_url"`

	// Timeout is the default timeout for analysis requests. Video
	// processing can run for minutes, so this is deliberately generous.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Language is the BCP 47 tag of the transcription language.
	Language string `yaml:"language"`

	// PlayerCommand is the external media player used for hosted video
	// files (invoked as "<command> --start=<seconds> <url>").
	PlayerCommand string `yaml:"player_command,omitempty"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		ServiceURL:    DefaultServiceURL,
		Timeout:       DefaultTimeout,
		OutputFormat:  DefaultOutputFormat,
		Language:      DefaultLanguage,
		PlayerCommand: DefaultPlayerCommand,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $VIDSCRIBE_CONFIG_DIR if set, otherwise ~/.vidscribe
func ConfigDir() (string, error) {
	if dir := os.Getenv("VIDSCRIBE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.vidscribe/config.yaml or $VIDSCRIBE_CONFIG_DIR/config.yaml)
// 3. Environment variables (VIDSCRIBE_SERVICE_URL, VIDSCRIBE_TIMEOUT, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// We need a temp struct for unmarshaling duration as string.
	type configFile struct {
		ServiceURL    string       `yaml:"service_url"`
		Timeout       string       `yaml:"timeout"`
		OutputFormat  OutputFormat `yaml:"output_format"`
		Language      string       `yaml:"language"`
		PlayerCommand string       `yaml:"player_command"`
		Debug         bool         `yaml:"debug"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.ServiceURL != "" {
		cfg.ServiceURL = fileCfg.ServiceURL
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.Language != "" {
		cfg.Language = fileCfg.Language
	}
	if fileCfg.PlayerCommand != "" {
		cfg.PlayerCommand = fileCfg.PlayerCommand
	}
	cfg.Debug = fileCfg.Debug

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("VIDSCRIBE_SERVICE_URL"); v != "" {
		cfg.ServiceURL = v
	}

	if v := os.Getenv("VIDSCRIBE_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("VIDSCRIBE_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("VIDSCRIBE_LANGUAGE"); v != "" {
		cfg.Language = v
	}

	if v := os.Getenv("VIDSCRIBE_PLAYER_COMMAND"); v != "" {
		cfg.PlayerCommand = v
	}

	if v := os.Getenv("VIDSCRIBE_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.ServiceURL == "" {
		return fmt.Errorf("service_url is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	if c.Language != "" {
		if _, err := language.Parse(c.Language); err != nil {
			return fmt.Errorf("invalid language %q: %w", c.Language, err)
		}
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	// Convert to YAML-friendly format with duration as string.
	type configFile struct {
		ServiceURL    string       `yaml:"service_url"`
		Timeout       string       `yaml:"timeout"`
		OutputFormat  OutputFormat `yaml:"output_format"`
		Language      string       `yaml:"language"`
		PlayerCommand string       `yaml:"player_command,omitempty"`
		Debug         bool         `yaml:"debug,omitempty"`
	}

	fileCfg := configFile{
		ServiceURL:    cfg.ServiceURL,
		Timeout:       cfg.Timeout.String(),
		OutputFormat:  cfg.OutputFormat,
		Language:      cfg.Language,
		PlayerCommand: cfg.PlayerCommand,
		Debug:         cfg.Debug,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
