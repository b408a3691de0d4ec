package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "SIRIUS_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the sirius home directory.
//
// Resolution order:
//  1. $SIRIUS_HOME environment variable
//  2. Parent of the binary's directory (if binary is in <home>/bin/)
//  3. Current working directory (development fallback)
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// GetLogsDir returns <home>/logs.
func GetLogsDir() string {
	return filepath.Join(GetHome(), "logs")
}

// LogFilePath returns the configured log file, or <home>/logs/sirius.log
// when none is set. Relative paths are resolved against baseDir.
func (c *Config) LogFilePath(baseDir string) string {
	if c.LogFile == "" {
		return filepath.Join(GetLogsDir(), "sirius.log")
	}
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(baseDir, c.LogFile)
}

func resolveHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	// Binary-relative: <home>/bin/sirius
	if execPath, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = resolved
		}
		binDir := filepath.Dir(execPath)
		if filepath.Base(binDir) == "bin" {
			return filepath.Dir(binDir)
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}

	return "."
}

// ResetHome resets the cached home directory (for testing).
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
