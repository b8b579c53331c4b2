// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/invowk/modrun/pkg/modspec"
)

type (
	// Config describes one launch.
	Config struct {
		// Module is the "name[/version]" token.
		Module string
		// Run is an explicit entry point; empty selects the default.
		Run string
		// Repositories selects where modules are looked up.
		Repositories Repositories
		// Arguments are passed to the entry point unchanged.
		Arguments []string
	}

	// Launcher runs module entry points.
	Launcher struct {
		builder Builder
		slot    *Slot
		logger  *log.Logger
	}

	// Option configures a Launcher.
	Option func(*Launcher)
)

// WithSlot sets the ambient slot. The default is DefaultSlot.
func WithSlot(s *Slot) Option {
	return func(l *Launcher) {
		l.slot = s
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// New creates a Launcher that obtains execution contexts from builder.
func New(builder Builder, opts ...Option) *Launcher {
	l := &Launcher{
		builder: builder,
		slot:    DefaultSlot,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Execute performs a complete launch described by cfg.
func (l *Launcher) Execute(ctx context.Context, cfg Config) error {
	if cfg.Module == "" {
		return ErrNoInitialModule
	}

	ref, err := modspec.Parse(cfg.Module)
	if err != nil {
		return err
	}

	ec, err := l.builder.Build(ctx, ref.Name, ref.Version, cfg.Repositories)
	if err != nil {
		return err
	}
	version := ec.Version()
	l.logger.Debug("built execution context", "module", ref.Name, "requested", ref.Version, "version", version)

	md, err := ReadMetadata(ec, ref.Name)
	if err != nil {
		return err
	}
	if err := checkIdentity(ref.Name, version, md); err != nil {
		return err
	}
	if md == nil && ref.Name != DefaultModule {
		l.logger.Debug("no module descriptor, running as plain code", "module", ref.Name)
	}

	return l.Run(ctx, ec, ref.Name, cfg.Run, cfg.Arguments)
}

// checkIdentity compares the requested module with its declared identity.
// A missing descriptor passes, and so does the default module, whose
// descriptor only ever describes loose code.
func checkIdentity(name, version string, md *Metadata) error {
	if md == nil || name == DefaultModule {
		return nil
	}
	if md.Name != name {
		return &MismatchError{Err: ErrModuleNameMismatch, Requested: name, Declared: md.Name}
	}
	if md.Version != version {
		return &MismatchError{Err: ErrModuleVersionMismatch, Requested: version, Declared: md.Version}
	}
	return nil
}
