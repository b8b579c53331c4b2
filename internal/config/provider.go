// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/invowk/modrun/internal/cueutil"
	"github.com/invowk/modrun/internal/issue"
)

type (
	// LoadOptions selects where configuration is read from.
	LoadOptions struct {
		// ConfigFilePath forces a specific file, which must exist.
		ConfigFilePath string
		// ConfigDirPath replaces ConfigDir in the file search.
		ConfigDirPath string
	}

	// Provider loads configuration.
	Provider interface {
		// Load returns the effective configuration and the file it was read
		// from ("" when none was found).
		Load(ctx context.Context, opts LoadOptions) (*Config, string, error)
	}

	// fileProvider layers defaults, a config.cue file and MODRUN_*
	// environment variables, in increasing order of precedence.
	fileProvider struct{}
)

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return fileProvider{}
}

func (fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := newViper(DefaultConfig())

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := mergeCUEFile(v, path); err != nil {
			return nil, "", issue.Wrap(err, "load configuration",
				issue.WithResource(path),
				issue.WithSuggestions("Verify the configuration values match the expected schema"),
				issue.WithIssue(issue.ConfigLoadFailedId))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment values bypass the CUE schema.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.Wrap(errors.Join(fieldErrors(errs)...), "validate configuration",
			issue.WithSuggestions("Check MODRUN_* environment variables for invalid values"))
	}
	return &cfg, path, nil
}

// newViper returns a viper instance seeded with defaults. Every key needs a
// default for AutomaticEnv to pick up its variable during Unmarshal.
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetDefault("repositories", defaults.Repositories)
	v.SetDefault("disable_default_repositories", defaults.DisableDefaultRepositories)
	v.SetDefault("cache_dir", string(defaults.CacheDir))
	v.SetDefault("run", defaults.Run)
	v.SetDefault("builtins", defaults.Builtins)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))

	// ui.verbose <- MODRUN_UI_VERBOSE
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// findConfigFile returns the config file to load. An explicit file must
// exist; otherwise the config directory and then the current directory are
// tried, and "" means defaults only.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.Wrap(ErrConfigNotFound, "load configuration",
				issue.WithResource(opts.ConfigFilePath),
				issue.WithSuggestions("Verify the file path given with --config", "Run 'modrun config init' to create a default file"))
		}
		return opts.ConfigFilePath, nil
	}

	dir, err := configDirOr(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	name := ConfigFileName + "." + ConfigFileExt
	for _, candidate := range []string{filepath.Join(dir, name), name} {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// mergeCUEFile validates path against #Config and merges it over the
// defaults. Fields are optional, so values need not be concrete.
func mergeCUEFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	values, err := fileSchema.DecodeMap(data, cueutil.Partial(), cueutil.WithFilename(path))
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fieldErrors flattens the field errors of an InvalidConfigError.
func fieldErrors(errs []error) []error {
	var out []error
	for _, err := range errs {
		var cfgErr *InvalidConfigError
		if errors.As(err, &cfgErr) {
			out = append(out, cfgErr.FieldErrors...)
		}
	}
	return out
}
