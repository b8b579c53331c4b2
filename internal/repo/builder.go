// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/invowk/modrun/internal/dag"
	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/internal/script"
	"github.com/invowk/modrun/internal/uroot"
)

type (
	// Builder creates execution contexts from repositories. It implements
	// launcher.Builder.
	Builder struct {
		cacheDir string
		defaults []string
		env      []string
		dir      string
		io       script.IO
		builtins *uroot.Registry
		logger   *log.Logger
	}

	// BuilderOption configures a Builder.
	BuilderOption func(*Builder)
)

// WithGitCache sets the directory git repositories are cloned into.
func WithGitCache(dir string) BuilderOption {
	return func(b *Builder) {
		b.cacheDir = dir
	}
}

// WithDefaults replaces the built-in repository locations.
func WithDefaults(locations ...string) BuilderOption {
	return func(b *Builder) {
		b.defaults = locations
	}
}

// WithEnv sets the base environment of invoked scripts. Nil inherits the
// process environment.
func WithEnv(env []string) BuilderOption {
	return func(b *Builder) {
		b.env = env
	}
}

// WithWorkDir sets the working directory of invoked scripts.
func WithWorkDir(dir string) BuilderOption {
	return func(b *Builder) {
		b.dir = dir
	}
}

// WithIO sets the streams of invoked scripts.
func WithIO(streams script.IO) BuilderOption {
	return func(b *Builder) {
		b.io = streams
	}
}

// WithBuiltins runs the utilities in reg in-process for every script.
func WithBuiltins(reg *uroot.Registry) BuilderOption {
	return func(b *Builder) {
		b.builtins = reg
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder searching DefaultRepositories unless
// configured otherwise.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		defaults: DefaultRepositories(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build implements launcher.Builder.
func (b *Builder) Build(ctx context.Context, name, version string, repos launcher.Repositories) (launcher.ExecutionContext, error) {
	c, err := b.Load(ctx, name, version, repos)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Load builds the Context for name at version.
func (b *Builder) Load(ctx context.Context, name, version string, repos launcher.Repositories) (*Context, error) {
	opened, err := b.open(ctx, repos)
	if err != nil {
		return nil, err
	}

	selected, err := selectVersion(opened, name, version)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("selected module", "module", name, "requested", version, "version", selected.version, "root", selected.root)

	deps, err := b.resolveDependencies(opened, name, selected)
	if err != nil {
		return nil, err
	}

	roots := make([]string, 0, len(deps)+1)
	roots = append(roots, selected.root)
	for _, d := range deps {
		roots = append(roots, d.Root)
	}

	c := newContext(name, selected.version, roots)
	c.deps = deps
	c.env = b.env
	c.dir = b.dir
	c.io = b.io
	c.builtins = b.builtins
	c.logger = b.logger
	return c, nil
}

// Repositories opens the locations a Build with repos would search.
func (b *Builder) Repositories(ctx context.Context, repos launcher.Repositories) ([]Repository, error) {
	return b.open(ctx, repos)
}

func (b *Builder) open(ctx context.Context, repos launcher.Repositories) ([]Repository, error) {
	locations := slices.Clone(repos.Locations)
	if !repos.DisableDefaults {
		locations = append(locations, b.defaults...)
	}

	opened := make([]Repository, 0, len(locations))
	for _, loc := range locations {
		r, err := Open(ctx, loc, WithCacheDir(b.cacheDir), WithOpenLogger(b.logger))
		if err != nil {
			return nil, err
		}
		opened = append(opened, r)
	}
	return opened, nil
}

// resolveDependencies walks the requirements declared by module
// descriptors. The result is ordered for searching: direct dependencies
// before the modules they depend on.
func (b *Builder) resolveDependencies(repos []Repository, name string, root versionRoot) ([]Dependency, error) {
	g := dag.New()
	g.Add(name)
	resolved := map[string]Dependency{name: {Name: name, Version: root.version, Root: root.root}}
	queue := []string{name}

	for len(queue) > 0 {
		current := resolved[queue[0]]
		queue = queue[1:]

		desc, err := newContext(current.Name, current.Version, []string{current.Root}).ModuleDescriptor(current.Name)
		if err != nil {
			return nil, err
		}
		if desc == nil {
			continue
		}

		for _, req := range desc.Requires {
			selected, err := selectVersion(repos, req.Name, req.Version)
			if err != nil {
				return nil, err
			}
			if prev, ok := resolved[req.Name]; ok {
				if prev.Version != selected.version {
					return nil, &ConflictError{
						Name:       req.Name,
						Versions:   [2]string{prev.Version, selected.version},
						RequiredBy: current.Name,
					}
				}
			} else {
				resolved[req.Name] = Dependency{Name: req.Name, Version: selected.version, Root: selected.root}
				queue = append(queue, req.Name)
				b.logger.Debug("resolved dependency", "module", req.Name, "version", selected.version, "required_by", current.Name)
			}
			g.Require(current.Name, req.Name)
		}
	}

	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	deps := make([]Dependency, 0, len(order))
	for _, n := range order {
		if n != name {
			deps = append(deps, resolved[n])
		}
	}
	return deps, nil
}
