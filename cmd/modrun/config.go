// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/modrun/internal/config"
	"github.com/invowk/modrun/internal/issue"
	"github.com/invowk/modrun/internal/repo"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage modrun configuration",
	Long: `Manage modrun configuration.

Configuration is stored in:
  - Linux: ~/.config/modrun/config.cue
  - macOS: ~/Library/Application Support/modrun/config.cue
  - Windows: %APPDATA%\modrun\config.cue

Every value can be overridden with a MODRUN_ environment variable,
e.g. MODRUN_UI_VERBOSE=true.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE:  showConfig,
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE:  initConfig,
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(appConfig))
			return nil
		},
	})
}

func showConfig(cmd *cobra.Command, _ []string) error {
	cfg, path, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
		if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render(markdownStyle(appConfig.UI.ColorScheme)); renderErr == nil {
			fmt.Fprint(cmd.ErrOrStderr(), rendered)
		}
		return reported(cmd, 1, err)
	}

	w := cmd.OutOrStdout()
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("repositories"))
	writeList(w, cfg.Repositories, valueStyle.Render)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("disable_default_repositories"), valueStyle.Render(fmt.Sprintf("%v", cfg.DisableDefaultRepositories)))
	if !cfg.DisableDefaultRepositories {
		fmt.Fprintf(w, "%s:\n", keyStyle.Render("default repositories"))
		writeList(w, repo.DefaultRepositories(), SubtitleStyle.Render)
	}

	cacheDir := string(cfg.CacheDir)
	if cacheDir == "" {
		cacheDir = SubtitleStyle.Render("(default: " + filepath.Join(repo.DataDir(), cacheDirName) + ")")
	} else {
		cacheDir = valueStyle.Render(cacheDir)
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("cache_dir"), cacheDir)

	run := SubtitleStyle.Render("(module run function)")
	if cfg.Run != "" {
		run = valueStyle.Render(cfg.Run)
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("run"), run)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("builtins"), valueStyle.Render(fmt.Sprintf("%v", cfg.Builtins)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))

	return nil
}

func writeList(w io.Writer, items []string, style func(...string) string) {
	if len(items) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", style(item))
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	dir := ""
	if cfgFile != "" {
		dir = filepath.Dir(cfgFile)
	}
	path, created, err := config.CreateDefaultConfig(dir)
	if err != nil {
		return issue.Wrap(err, "create configuration",
			issue.WithResource(dir),
			issue.WithSuggestions("Check that the config directory is writable"))
	}

	w := cmd.OutOrStdout()
	if !created {
		fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("Config file already exists:"), path)
		return nil
	}
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("Created config file:"), path)
	fmt.Fprintln(w, SubtitleStyle.Render("Edit it to add repositories or change the UI settings."))
	return nil
}
