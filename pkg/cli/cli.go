// Package cli provides the command-line interface for sirius.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to workspace config.yaml (default: ./config.yaml if present)",
		EnvVars: []string{"SIRIUS_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "Platform to resolve locators for (chrome, firefox, safari, android_native, android_web, ios_native, ...)",
		EnvVars: []string{"SIRIUS_PLATFORM"},
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Driver to use (appium, rod)",
		EnvVars: []string{"SIRIUS_DRIVER"},
	},
	&cli.StringFlag{
		Name:    "appium-url",
		Usage:   "Appium server URL (for appium driver)",
		EnvVars: []string{"APPIUM_URL"},
	},
	&cli.StringFlag{
		Name:  "caps",
		Usage: "JSON file with Appium capabilities, merged over config.yaml",
	},
	&cli.StringFlag{
		Name:    "url",
		Usage:   "Page to open before checking (web platforms)",
		EnvVars: []string{"SIRIUS_URL"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to this file",
		EnvVars: []string{"SIRIUS_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging to stderr",
		EnvVars: []string{"SIRIUS_VERBOSE"},
	},
}

// NewApp builds the sirius command line application.
func NewApp() *cli.App {
	app := &cli.App{
		Name:    "sirius",
		Usage:   "Declarative page objects for browser and device tests",
		Version: Version,
		Description: `Sirius loads page catalogues (YAML page schemas) and resolves their
element locators for a platform, or checks them against a live session.

Examples:
  sirius --platform android_native resolve pages/*.yaml
  sirius --driver rod --url https://example.com current pages/*.yaml
  sirius check --page Login pages/login.yaml`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			resolveCommand,
			currentCommand,
			checkCommand,
		},
	}
	// formulas passed to --expect may contain commas
	app.DisableSliceFlagSeparator = true
	return app
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
