package formengine

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for the form engine.
type Config struct {
	// TemplateDir holds the .docx templates.
	TemplateDir string `yaml:"template_dir"`
	// OutputDir receives rendered artifacts, one sub-directory per day.
	OutputDir string `yaml:"output_dir"`
	// LogDir holds the audit log.
	LogDir string `yaml:"log_dir"`
	// AuditFile is the audit log file name inside LogDir.
	AuditFile string `yaml:"audit_file"`
	// BaseURL prefixes artifact URLs in render results. Empty disables URLs.
	BaseURL string `yaml:"base_url"`
	// TempFilePrefix marks editor lock files excluded from template listings.
	TempFilePrefix string `yaml:"temp_file_prefix"`

	// Converter is the external conversion command.
	Converter string `yaml:"converter"`
	// ConvertFormat is the target format passed to --convert-to.
	ConvertFormat string `yaml:"convert_format"`
	// ConvertTimeout bounds a single conversion.
	ConvertTimeout time.Duration `yaml:"convert_timeout"`
	// ConvertCheckTimeout bounds the availability check.
	ConvertCheckTimeout time.Duration `yaml:"convert_check_timeout"`
	// ConvertEnabled turns the conversion step on or off.
	ConvertEnabled bool `yaml:"convert_enabled"`

	// CacheMaxSize is the maximum number of templates to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// ListVariables are variable names whose paragraphs are always left aligned.
	ListVariables []string `yaml:"list_variables"`

	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TemplateDir:         "templates",
		OutputDir:           "output",
		LogDir:              "logs",
		AuditFile:           "audit.jsonl",
		TempFilePrefix:      "~$",
		Converter:           "soffice",
		ConvertFormat:       "pdf",
		ConvertTimeout:      60 * time.Second,
		ConvertCheckTimeout: 5 * time.Second,
		ConvertEnabled:      true,
		CacheMaxSize:        32,
		LogLevel:            "info",
		ListenAddr:          ":8000",
	}
}

// ConfigFromEnvironment creates a configuration from defaults and
// FORMENGINE_* environment variables.
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	config.ApplyEnvironment()
	return config
}

// LoadConfigFile reads a YAML configuration file on top of the defaults.
func LoadConfigFile(path string) (*Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, nil
}

// LoadConfig layers defaults, an optional YAML file and the environment, then
// validates the result.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		var err error
		if config, err = LoadConfigFile(path); err != nil {
			return nil, err
		}
	}
	config.ApplyEnvironment()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnvironment overrides fields from FORMENGINE_* variables. Unparsable
// values are ignored.
func (c *Config) ApplyEnvironment() {
	strs := map[string]*string{
		"FORMENGINE_TEMPLATE_DIR":     &c.TemplateDir,
		"FORMENGINE_OUTPUT_DIR":       &c.OutputDir,
		"FORMENGINE_LOG_DIR":          &c.LogDir,
		"FORMENGINE_AUDIT_FILE":       &c.AuditFile,
		"FORMENGINE_BASE_URL":         &c.BaseURL,
		"FORMENGINE_TEMP_FILE_PREFIX": &c.TempFilePrefix,
		"FORMENGINE_CONVERTER":        &c.Converter,
		"FORMENGINE_CONVERT_FORMAT":   &c.ConvertFormat,
		"FORMENGINE_LOG_LEVEL":        &c.LogLevel,
		"FORMENGINE_LISTEN_ADDR":      &c.ListenAddr,
	}
	for key, dst := range strs {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}

	durations := map[string]*time.Duration{
		"FORMENGINE_CONVERT_TIMEOUT":       &c.ConvertTimeout,
		"FORMENGINE_CONVERT_CHECK_TIMEOUT": &c.ConvertCheckTimeout,
		"FORMENGINE_CACHE_TTL":             &c.CacheTTL,
	}
	for key, dst := range durations {
		if val := os.Getenv(key); val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				*dst = d
			}
		}
	}

	if val := os.Getenv("FORMENGINE_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			c.CacheMaxSize = size
		}
	}

	if val := os.Getenv("FORMENGINE_CONVERT_ENABLED"); val != "" {
		c.ConvertEnabled = parseBool(val)
	}

	if val := os.Getenv("FORMENGINE_LIST_VARIABLES"); val != "" {
		c.ListVariables = splitList(val)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.TemplateDir == "" {
		errs = append(errs, errors.New("template dir is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output dir is required"))
	}
	if c.LogDir == "" || c.AuditFile == "" {
		errs = append(errs, errors.New("log dir and audit file are required"))
	}
	if c.CacheMaxSize < 0 {
		errs = append(errs, errors.New("cache max size cannot be negative"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cache TTL cannot be negative"))
	}
	if c.ConvertEnabled {
		if c.Converter == "" || c.ConvertFormat == "" {
			errs = append(errs, errors.New("converter and convert format are required when conversion is enabled"))
		}
		if c.ConvertTimeout <= 0 || c.ConvertCheckTimeout <= 0 {
			errs = append(errs, errors.New("conversion timeouts must be positive"))
		}
	}
	if _, _, ok := parseLogLevel(c.LogLevel); !ok {
		errs = append(errs, errors.New("invalid log level: "+c.LogLevel))
	}

	return errors.Join(errs...)
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
