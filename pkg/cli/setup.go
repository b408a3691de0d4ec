package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/sirius/pkg/catalog"
	"github.com/devicelab-dev/sirius/pkg/config"
	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/driver/appium"
	"github.com/devicelab-dev/sirius/pkg/driver/rod"
	"github.com/devicelab-dev/sirius/pkg/logger"
	"github.com/devicelab-dev/sirius/pkg/session"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

// workspace is the state shared by all commands.
type workspace struct {
	cfg     *config.Config
	baseDir string
	catalog *ui.Catalog
}

// prepare loads the configuration, applies flag overrides, sets up
// logging and loads the page catalogue.
func prepare(c *cli.Context) (*workspace, error) {
	cfg, baseDir, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := applyFlags(c, cfg); err != nil {
		return nil, err
	}
	if err := initLogging(c, cfg, baseDir); err != nil {
		return nil, err
	}

	files := c.Args().Slice()
	if len(files) == 0 {
		files, err = cfg.CatalogFiles(baseDir)
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no page catalogue files: pass them as arguments or set catalog in config.yaml")
	}

	cat, err := catalog.LoadFiles(files...)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded %d pages from %d files", cat.Len(), len(files))

	return &workspace{cfg: cfg, baseDir: baseDir, catalog: cat}, nil
}

// loadConfig loads path, or config.yaml from the working directory.
// Relative catalogue globs resolve against the config file's directory.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, filepath.Dir(path), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFromDir(cwd)
	if err != nil {
		return nil, "", err
	}
	return cfg, cwd, nil
}

func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("platform") {
		p, ok := core.LookupPlatform(c.String("platform"))
		if !ok {
			return core.ErrUnknownPlatform.WithMessage(fmt.Sprintf("unknown platform %q", c.String("platform")))
		}
		cfg.Platform = p
	}
	if c.IsSet("driver") {
		cfg.Driver = strings.ToLower(c.String("driver"))
	}
	if c.IsSet("appium-url") {
		cfg.AppiumURL = c.String("appium-url")
	}
	if c.IsSet("url") {
		cfg.Browser.URL = c.String("url")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if capsFile := c.String("caps"); capsFile != "" {
		caps, err := loadCapabilities(capsFile)
		if err != nil {
			return err
		}
		if cfg.Capabilities == nil {
			cfg.Capabilities = make(map[string]interface{})
		}
		for k, v := range caps {
			cfg.Capabilities[k] = v
		}
	}
	return cfg.Validate()
}

func loadCapabilities(capsFile string) (map[string]interface{}, error) {
	data, err := os.ReadFile(capsFile) //#nosec G304 -- user-provided caps file
	if err != nil {
		return nil, fmt.Errorf("failed to read caps file: %w", err)
	}

	var caps map[string]interface{}
	if err := json.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("failed to parse caps JSON: %w", err)
	}
	return caps, nil
}

func initLogging(c *cli.Context, cfg *config.Config, baseDir string) error {
	switch {
	case c.Bool("verbose"):
		logger.InitWriter(c.App.ErrWriter)
		cfg.LogLevel = "debug"
	case cfg.LogFile != "":
		path := cfg.LogFilePath(baseDir)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := logger.Init(path); err != nil {
			return err
		}
	}
	if cfg.LogLevel == "" {
		return nil
	}
	return logger.SetLevel(cfg.LogLevel)
}

// parseEnvVars turns KEY=VALUE pairs into a map. Entries without '='
// are ignored.
func parseEnvVars(envs []string) map[string]string {
	result := make(map[string]string)
	for _, e := range envs {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}
	return result
}

// openDriver connects the configured driver and returns it with its
// close function.
var openDriver = func(cfg *config.Config) (core.Driver, func() error, error) {
	switch cfg.Driver {
	case config.DriverRod:
		d, err := rod.Launch(rod.Options{
			Headless: cfg.Browser.Headless,
			Bin:      cfg.Browser.Bin,
			Remote:   cfg.Browser.Remote,
			URL:      cfg.Browser.URL,
		})
		if err != nil {
			return nil, nil, err
		}
		d.SetPollInterval(cfg.Timeouts.Poll)
		return d, d.Close, nil
	default:
		caps := cfg.Capabilities
		if caps == nil {
			caps = map[string]interface{}{}
		}
		d, err := appium.NewDriver(cfg.AppiumURL, caps, cfg.Platform)
		if err != nil {
			return nil, nil, err
		}
		d.SetPollInterval(cfg.Timeouts.Poll)
		if cfg.Browser.URL != "" && cfg.Platform.IsWeb() {
			if err := d.Client().OpenURL(cfg.Browser.URL); err != nil {
				_ = d.Close()
				return nil, nil, err
			}
		}
		return d, d.Close, nil
	}
}

// newScope opens the driver and registers a scope for it. The returned
// function closes the driver and forgets the scope.
func (w *workspace) newScope(vars map[string]string) (*ui.Scope, func(), error) {
	d, closeDriver, err := openDriver(w.cfg)
	if err != nil {
		return nil, nil, err
	}
	scope := ui.NewScope(d, w.cfg.Platform,
		ui.WithTimeouts(w.cfg.UITimeouts()),
		ui.WithCatalog(w.catalog))
	for k, v := range w.cfg.Vars {
		scope.SetVar(k, v)
	}
	for k, v := range vars {
		scope.SetVar(k, v)
	}
	session.Default.Put(scope)

	cleanup := func() {
		session.Default.Delete(scope.ID())
		if err := closeDriver(); err != nil {
			logger.Warn("closing driver: %v", err)
		}
	}
	return scope, cleanup, nil
}
