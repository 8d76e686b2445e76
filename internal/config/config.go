// =============================================================================
// Expense Intake - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a single YAML file.
// Every setting has a default, so an empty (or missing) file yields a working
// configuration.
//
// CONFIGURATION FILE (config.yaml):
//   server:          HTTP listen address, upload size limit, CORS origins
//   reference_data:  paths to the category and department lists
//   csv:             delimiter used when decoding delimited-text uploads
//   logging:         level and output format
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat     = errors.New("logging.format must be 'console' or 'json'")
	ErrInvalidMaxUpload     = errors.New("server.max_upload_bytes must be positive")
	ErrMissingReferenceData = errors.New("reference_data.categories_file and reference_data.departments_file are required")
	ErrInvalidDelimiter     = errors.New("csv.delimiter must be a single character")
)

// Default values applied when a setting is left empty.
const (
	DefaultAddr            = ":8080"
	DefaultMaxUploadBytes  = 10 << 20
	DefaultCORSOrigins     = "*"
	DefaultCategoriesFile  = "./data/categories.json"
	DefaultDepartmentsFile = "./data/departments.json"
	DefaultDelimiter       = ","
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	ReferenceData ReferenceDataConfig `yaml:"reference_data"`
	CSV           CSVSettings         `yaml:"csv"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// MaxUploadBytes caps the request body size.
	// Default: 10 MiB
	MaxUploadBytes int `yaml:"max_upload_bytes"`

	// CORSOrigins is a comma separated list of allowed origins.
	// Default: "*"
	CORSOrigins string `yaml:"cors_origins"`
}

// ReferenceDataConfig points at the allowed-value lists.
// Each file holds a list of {id, name} objects, as JSON or YAML.
type ReferenceDataConfig struct {
	CategoriesFile  string `yaml:"categories_file"`
	DepartmentsFile string `yaml:"departments_file"`
}

// CSVSettings contains settings for decoding delimited-text uploads.
type CSVSettings struct {
	// Delimiter is the field separator. "tab" and "\t" select a tab.
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "console" for human-readable output or "json".
	Format string `yaml:"format"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads, defaults and validates the configuration at path.
//
// PARAMETERS:
//   - path: The path to the YAML configuration file.
//
// RETURNS:
//   - The loaded configuration.
//   - An error if the file cannot be read, parsed or fails validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML document into a validated configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults fills every empty setting with its default.
func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Server.CORSOrigins == "" {
		cfg.Server.CORSOrigins = DefaultCORSOrigins
	}
	if cfg.ReferenceData.CategoriesFile == "" {
		cfg.ReferenceData.CategoriesFile = DefaultCategoriesFile
	}
	if cfg.ReferenceData.DepartmentsFile == "" {
		cfg.ReferenceData.DepartmentsFile = DefaultDepartmentsFile
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = DefaultDelimiter
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.MaxUploadBytes <= 0 {
		return ErrInvalidMaxUpload
	}
	if c.ReferenceData.CategoriesFile == "" || c.ReferenceData.DepartmentsFile == "" {
		return ErrMissingReferenceData
	}
	if _, err := c.CSV.Comma(); err != nil {
		return err
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return ErrInvalidLogFormat
	}

	return nil
}

// Comma returns the delimiter as a rune.
func (s CSVSettings) Comma() (rune, error) {
	switch s.Delimiter {
	case "", ",":
		return ',', nil
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "pipe", "PIPE":
		return '|', nil
	case "semicolon":
		return ';', nil
	}

	r := []rune(s.Delimiter)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, ErrInvalidDelimiter
	}
	return r[0], nil
}
