// config.go: Startup configuration for the sliceguard core
//
// The two allowed roots and the slicer binary path are explicit
// configuration handed to constructors, never ambient process state. The
// trust boundary is therefore constructible in tests without touching the
// environment.

package sliceguard

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// Config carries everything the core needs at startup: the two sandbox
// roots, the external slicer executable and its timeout, and the audit
// settings.
type Config struct {
	WorkDir      string        `yaml:"work_dir" json:"work_dir"`
	SettingsDir  string        `yaml:"settings_dir" json:"settings_dir"`
	SlicerBinary string        `yaml:"slicer_binary" json:"slicer_binary"`
	SliceTimeout time.Duration `yaml:"slice_timeout" json:"slice_timeout"`

	// AuditOutput overrides the default <WorkDir>/tuning_history.log.
	// A .db extension selects the SQLite backend.
	AuditOutput string `yaml:"audit_output,omitempty" json:"audit_output,omitempty"`

	// AuditDisabled turns the history log off entirely.
	AuditDisabled bool `yaml:"audit_disabled,omitempty" json:"audit_disabled,omitempty"`
}

// WithDefaults applies sensible defaults to the configuration.
func (c *Config) WithDefaults() *Config {
	config := *c

	if config.SliceTimeout <= 0 {
		config.SliceTimeout = 5 * time.Minute
	}
	if config.AuditOutput == "" && config.WorkDir != "" {
		config.AuditOutput = filepath.Join(config.WorkDir, HistoryLogName)
	}

	return &config
}

// ValidationResult contains the result of configuration validation with
// detailed feedback.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// String returns a human-readable representation of validation results.
func (vr ValidationResult) String() string {
	if vr.Valid {
		if len(vr.Warnings) == 0 {
			return "Configuration is valid"
		}
		return fmt.Sprintf("Configuration is valid with %d warning(s)", len(vr.Warnings))
	}
	return fmt.Sprintf("Configuration is invalid: %d error(s), %d warning(s)",
		len(vr.Errors), len(vr.Warnings))
}

// Validate checks the configuration, returning the first error when it is
// unusable. Warnings do not fail validation.
func (c *Config) Validate() error {
	result := c.ValidateDetailed()
	if !result.Valid && len(result.Errors) > 0 {
		return errors.New(ErrCodeInvalidConfig, result.Errors[0])
	}
	return nil
}

// ValidateDetailed performs full validation and returns every error and
// warning, for diagnostics and startup logging.
func (c *Config) ValidateDetailed() ValidationResult {
	result := ValidationResult{
		Valid:    true,
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	if c.WorkDir == "" {
		result.Errors = append(result.Errors, "work directory is required")
	} else if !filepath.IsAbs(c.WorkDir) {
		result.Errors = append(result.Errors, fmt.Sprintf("work directory must be absolute: %s", c.WorkDir))
	}

	if c.SettingsDir == "" {
		result.Errors = append(result.Errors, "settings directory is required")
	} else if !filepath.IsAbs(c.SettingsDir) {
		result.Errors = append(result.Errors, fmt.Sprintf("settings directory must be absolute: %s", c.SettingsDir))
	}

	if c.SlicerBinary == "" {
		result.Errors = append(result.Errors, "slicer binary path is required")
	} else if !filepath.IsAbs(c.SlicerBinary) {
		result.Errors = append(result.Errors, fmt.Sprintf("slicer binary path must be absolute: %s", c.SlicerBinary))
	} else if _, err := os.Stat(c.SlicerBinary); err != nil {
		// Missing binary is survivable until the first slice; warn only.
		result.Warnings = append(result.Warnings, fmt.Sprintf("slicer binary not found at %s", c.SlicerBinary))
	}

	if c.SliceTimeout < 0 {
		result.Errors = append(result.Errors, "slice timeout must not be negative")
	} else if c.SliceTimeout > 0 && c.SliceTimeout < time.Second {
		result.Warnings = append(result.Warnings, "slice timeout below 1s will abort most real slices")
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// AuditConfigFor derives the audit configuration from the general config.
func (c *Config) AuditConfigFor() AuditConfig {
	cfg := DefaultAuditConfig(c.WorkDir)
	if c.AuditOutput != "" {
		cfg.OutputFile = c.AuditOutput
	}
	cfg.Enabled = !c.AuditDisabled
	return cfg
}

// LoadConfigFile reads a YAML configuration file. The file is optional
// plumbing around the core; flags and environment variables (see
// ConfigManager) take precedence over it.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(path)
		}
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, parseFailure(err, path)
	}
	return &config, nil
}
