// Package config handles the workspace configuration for sirius.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/ui"
	"gopkg.in/yaml.v3"
)

// Supported driver names.
const (
	DriverAppium = "appium"
	DriverRod    = "rod"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Page selection
	Catalog []string `yaml:"catalog"` // Glob patterns for page catalogue files

	// Execution settings
	Platform core.Platform     `yaml:"platform"` // Active platform for descriptor resolution
	Timeouts Timeouts          `yaml:"timeouts"`
	Vars     map[string]string `yaml:"vars"` // Initial scope variables

	// Driver settings
	Driver       string                 `yaml:"driver"`    // appium or rod
	AppiumURL    string                 `yaml:"appiumUrl"` // Appium server URL
	Capabilities map[string]interface{} `yaml:"capabilities"`
	Browser      Browser                `yaml:"browser"`

	// Logging
	LogFile  string `yaml:"logFile"`
	LogLevel string `yaml:"logLevel"`
}

// Timeouts are Go duration strings, e.g. "60s" or "200ms".
type Timeouts struct {
	Default time.Duration `yaml:"default"`
	Short   time.Duration `yaml:"short"`
	Tiny    time.Duration `yaml:"tiny"`
	Poll    time.Duration `yaml:"poll"`
}

// Browser configures the rod driver.
type Browser struct {
	Headless bool   `yaml:"headless"`
	URL      string `yaml:"url"`    // Page opened after launch
	Bin      string `yaml:"bin"`    // Browser binary; empty downloads or finds one
	Remote   string `yaml:"remote"` // DevTools websocket URL of a running browser
}

// Defaults returns the configuration used when no file sets a value.
func Defaults() *Config {
	t := ui.DefaultTimeouts()
	return &Config{
		Platform: core.PlatformAny,
		Timeouts: Timeouts{
			Default: t.Default,
			Short:   t.Short,
			Tiny:    t.Tiny,
			Poll:    t.Poll,
		},
		Driver:    DriverAppium,
		AppiumURL: "http://127.0.0.1:4723",
		Browser:   Browser{Headless: true},
		LogLevel:  "info",
	}
}

// Load loads configuration from a file on top of Defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return defaults
	return Defaults(), nil
}

// Validate checks driver name and timeouts.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverAppium, DriverRod:
	default:
		return core.NewExecutionError(core.ErrCategoryConfig, "invalid_config",
			fmt.Sprintf("unknown driver %q (want %s or %s)", c.Driver, DriverAppium, DriverRod))
	}
	t := c.Timeouts
	if t.Default < 0 || t.Short < 0 || t.Tiny < 0 || t.Poll < 0 {
		return core.NewExecutionError(core.ErrCategoryConfig, "invalid_config", "timeouts must not be negative")
	}
	return nil
}

// UITimeouts converts the configured timeouts for a ui.Scope.
func (c *Config) UITimeouts() ui.Timeouts {
	return ui.Timeouts{
		Default: c.Timeouts.Default,
		Short:   c.Timeouts.Short,
		Tiny:    c.Timeouts.Tiny,
		Poll:    c.Timeouts.Poll,
	}
}

// CatalogFiles expands the catalogue globs relative to baseDir.
// The result is sorted and free of duplicates.
func (c *Config) CatalogFiles(baseDir string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range c.Catalog {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("catalog pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
