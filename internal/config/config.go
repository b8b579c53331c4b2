// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/invowk/modrun/internal/cueutil"
)

const (
	// AppName is the application name.
	AppName = "modrun"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variables that override config values,
	// e.g. MODRUN_UI_VERBOSE.
	EnvPrefix = "MODRUN"
	// ConfigDirEnv names the variable that overrides ConfigDir.
	ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"
)

//go:embed config_schema.cue
var configSchema string

var fileSchema = cueutil.MustCompile(configSchema, "#Config")

// ConfigDir returns the modrun configuration directory. MODRUN_CONFIG_DIR
// wins; otherwise Windows uses %APPDATA%, macOS uses ~/Library/Application
// Support, and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// configDirOr returns dir, or ConfigDir when dir is empty.
func configDirOr(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file into dir, or into
// ConfigDir when dir is empty. An existing file is left untouched; the
// returned bool reports whether a file was created.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgDir, err := configDirOr(dir)
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// modrun configuration file\n\n")

	// Repositories
	if len(cfg.Repositories) > 0 {
		sb.WriteString("repositories: [\n")
		for _, r := range cfg.Repositories {
			sb.WriteString(fmt.Sprintf("\t%q,\n", r))
		}
		sb.WriteString("]\n")
	} else {
		sb.WriteString("repositories: []\n")
	}
	sb.WriteString(fmt.Sprintf("disable_default_repositories: %v\n", cfg.DisableDefaultRepositories))

	if cfg.CacheDir != "" {
		sb.WriteString(fmt.Sprintf("cache_dir: %q\n", cfg.CacheDir))
	}
	if cfg.Run != "" {
		sb.WriteString(fmt.Sprintf("run: %q\n", cfg.Run))
	}
	sb.WriteString(fmt.Sprintf("builtins: %v\n", cfg.Builtins))

	// UI config
	sb.WriteString("\nui: {\n")
	sb.WriteString(fmt.Sprintf("\tverbose: %v\n", cfg.UI.Verbose))
	sb.WriteString(fmt.Sprintf("\tcolor_scheme: %q\n", cfg.UI.ColorScheme))
	sb.WriteString("}\n")

	return sb.String()
}
