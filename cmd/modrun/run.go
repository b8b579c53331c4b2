// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/internal/repo"
	"github.com/invowk/modrun/internal/script"
	"github.com/invowk/modrun/internal/uroot"
)

// cacheDirName is the git cache directory below the data dir.
const cacheDirName = "cache"

type (
	// repoFlags are the repository selection flags shared by run and info.
	repoFlags struct {
		locations       []string
		disableDefaults bool
		entry           string
	}
)

var (
	runFlags repoFlags

	runCmd = &cobra.Command{
		Use:   "run [flags] MODULE[/VERSION] [ARGS...]",
		Short: "Launch the entry point of a module",
		Long: `Launch the entry point of a module.

The module is looked up in the repositories given with --rep, then in the
repositories of the config file, then in ./modules and ~/.modrun/repo.
VERSION may be an exact version or a constraint such as ^1.2.0; without it
the newest version is used.

Without --run the entry point is the function '<module>.run' (or 'run' for
the default module). Everything after MODULE is passed to the entry point
unchanged.`,
		Example: `  modrun run com.example.hello
  modrun run --rep ./repo com.example.hello/1.0.0 --name world
  modrun run -d --rep git+https://example.com/mods.git --run com.example.hello::Main com.example.hello`,
		Args: cobra.MinimumNArgs(1),
		RunE: runModule,
	}
)

func init() {
	runFlags.register(runCmd)
	runCmd.Flags().StringVar(&runFlags.entry, "run", "", "entry point to run instead of the module's run function")
	// Flags after MODULE belong to the entry point.
	runCmd.Flags().SetInterspersed(false)
}

func (f *repoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.locations, "rep", nil, "repository path or URL to search first (repeatable)")
	cmd.Flags().BoolVarP(&f.disableDefaults, "disable-default-repositories", "d", false, "do not search the default repositories")
}

// repositories combines the flags with the config file. Flag locations
// come first.
func (f *repoFlags) repositories() launcher.Repositories {
	return launcher.Repositories{
		Locations:       slices.Concat(f.locations, appConfig.Repositories),
		DisableDefaults: f.disableDefaults || appConfig.DisableDefaultRepositories,
	}
}

// newBuilder creates the execution context builder for cmd, wired to the
// command's streams.
func newBuilder(cmd *cobra.Command) *repo.Builder {
	cacheDir := string(appConfig.CacheDir)
	if cacheDir == "" {
		if dataDir := repo.DataDir(); dataDir != "" {
			cacheDir = filepath.Join(dataDir, cacheDirName)
		}
	}
	opts := []repo.BuilderOption{
		repo.WithGitCache(cacheDir),
		repo.WithIO(script.IO{
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}),
		repo.WithLogger(logger),
	}
	if appConfig.Builtins {
		opts = append(opts, repo.WithBuiltins(uroot.Default()))
	}
	return repo.NewBuilder(opts...)
}

func runModule(cmd *cobra.Command, args []string) error {
	entry := runFlags.entry
	if entry == "" {
		entry = appConfig.Run
	}

	l := launcher.New(newBuilder(cmd), launcher.WithLogger(logger))
	err := l.Execute(cmd.Context(), launcher.Config{
		Module:       args[0],
		Run:          entry,
		Repositories: runFlags.repositories(),
		Arguments:    args[1:],
	})
	if err == nil {
		return nil
	}

	// A script that exits non-zero already reported its own failure.
	if code, ok := script.ExitCode(err); ok {
		return reported(cmd, code, nil)
	}
	renderLaunchError(cmd.ErrOrStderr(), err, args[0], verbose)
	return reported(cmd, 1, err)
}
