// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"mvdan.cc/sh/v3/interp"
)

// Command is a utility that runs inside the shell interpreter.
type Command interface {
	// Name returns the command name (e.g., "cp", "ls", "cat").
	Name() string
	// Run executes the command. args[0] is the command name.
	Run(ctx context.Context, args []string) error
}

var (
	// ErrUnnamedCommand is returned for a command with an empty name.
	ErrUnnamedCommand = errors.New("command has no name")
	// ErrDuplicateCommand is returned when two commands share a name.
	ErrDuplicateCommand = errors.New("duplicate command")
)

// Registry maps command names to in-process implementations. It is
// immutable once built and safe for concurrent use.
type Registry struct {
	commands map[string]Command
}

// NewRegistry builds a registry holding cmds.
func NewRegistry(cmds ...Command) (*Registry, error) {
	r := &Registry{commands: make(map[string]Command, len(cmds))}
	for _, c := range cmds {
		name := c.Name()
		if name == "" {
			return nil, ErrUnnamedCommand
		}
		if _, exists := r.commands[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
		}
		r.commands[name] = c
	}
	return r, nil
}

// Default returns a Registry holding every core utility.
func Default() *Registry {
	cmds := make([]Command, len(coreCommands))
	for i, c := range coreCommands {
		cmds[i] = c
	}
	r, err := NewRegistry(cmds...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup retrieves a command by name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.commands))
}

// ExecHandler is an interp exec middleware. Registered commands run
// in-process; anything else goes to next. A registered command that fails
// does not fall back to a host binary.
func (r *Registry) ExecHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return next(ctx, args)
		}
		cmd, ok := r.Lookup(args[0])
		if !ok {
			return next(ctx, args)
		}
		if err := cmd.Run(ctx, args); err != nil {
			fmt.Fprintf(interp.HandlerCtx(ctx).Stderr, "%v\n", err)
			return interp.ExitStatus(1)
		}
		return nil
	}
}
