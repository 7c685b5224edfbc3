// flags.go: Unified configuration discovery (flags, environment, file)
//
// Thin layer over FlashFlags that assembles a Config from command-line
// flags, SLICEGUARD_* environment variables and an optional YAML file, in
// that precedence order. The core itself never reads ambient state; this
// layer is the only place configuration is discovered.

package sliceguard

import (
	"fmt"
	"os"
	"strings"
	"time"

	flashflags "github.com/agilira/flash-flags"
)

// ConfigManager combines command-line parsing and environment lookup for
// the sliceguard tool surface.
type ConfigManager struct {
	flags   *flashflags.FlagSet
	appName string
}

// NewConfigManager creates a configuration manager with the standard
// sliceguard flag set registered.
func NewConfigManager(appName string) *ConfigManager {
	cm := &ConfigManager{
		flags:   flashflags.New(appName),
		appName: appName,
	}

	cm.flags.String("work-dir", "", "Absolute path of the work directory (models, G-code, history log)")
	cm.flags.String("settings-dir", "", "Absolute path of the settings directory (profile documents)")
	cm.flags.String("slicer-bin", "", "Absolute path of the external slicer executable")
	cm.flags.Duration("slice-timeout", 5*time.Minute, "Maximum wall-clock time for one slicer invocation")
	cm.flags.String("audit-output", "", "Audit log path override (.db selects the SQLite backend)")
	cm.flags.Bool("audit-disabled", false, "Disable the tuning history log")
	cm.flags.String("config-file", "", "Optional YAML configuration file")

	return cm
}

// SetDescription sets the application description for help text.
func (cm *ConfigManager) SetDescription(description string) *ConfigManager {
	cm.flags.SetDescription(description)
	return cm
}

// SetVersion sets the application version for help text.
func (cm *ConfigManager) SetVersion(version string) *ConfigManager {
	cm.flags.SetVersion(version)
	return cm
}

// Parse parses command-line arguments and binds environment variables
// with the SLICEGUARD_ prefix.
func (cm *ConfigManager) Parse(args []string) error {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return fmt.Errorf("help requested")
		}
	}

	// Env lookup happens inside Parse, so the prefix must be bound first
	// or SLICEGUARD_* variables are silently ignored.
	cm.flags.SetEnvPrefix(strings.ToUpper(cm.appName))
	if err := cm.flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse command-line flags: %w", err)
	}
	return nil
}

// ParseArgs is a convenience method that parses os.Args[1:].
func (cm *ConfigManager) ParseArgs() error {
	return cm.Parse(os.Args[1:])
}

// PrintUsage prints the flag help text.
func (cm *ConfigManager) PrintUsage() {
	cm.flags.PrintHelp()
}

// BuildConfig assembles the final Config: YAML file values first (when a
// file is named), then flag and environment values on top.
func (cm *ConfigManager) BuildConfig() (*Config, error) {
	config := &Config{}

	if file := cm.flags.GetString("config-file"); file != "" {
		fileConfig, err := LoadConfigFile(file)
		if err != nil {
			return nil, err
		}
		config = fileConfig
	}

	if v := cm.flags.GetString("work-dir"); v != "" {
		config.WorkDir = v
	}
	if v := cm.flags.GetString("settings-dir"); v != "" {
		config.SettingsDir = v
	}
	if v := cm.flags.GetString("slicer-bin"); v != "" {
		config.SlicerBinary = v
	}
	if v := cm.flags.GetDuration("slice-timeout"); v > 0 {
		config.SliceTimeout = v
	}
	if v := cm.flags.GetString("audit-output"); v != "" {
		config.AuditOutput = v
	}
	if cm.flags.GetBool("audit-disabled") {
		config.AuditDisabled = true
	}

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
