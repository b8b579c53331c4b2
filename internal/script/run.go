// SPDX-License-Identifier: MPL-2.0

package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"

	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/internal/uroot"
)

// CallCommand is the builtin scripts use to run another entry point.
const CallCommand = "modrun-call"

type (
	// IO holds the standard streams of a running script.
	IO struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// RunOptions configures a single script run.
	RunOptions struct {
		// Args are the positional parameters ($1, $2, ...). They also bind
		// declared parameters by position.
		Args []string
		// Env is the base environment as KEY=VALUE pairs. Nil inherits the
		// process environment.
		Env []string
		// Dir is the working directory. Empty uses the process directory.
		Dir string
		IO  IO
		// Builtins, when set, run registered utilities in-process instead
		// of host binaries.
		Builtins *uroot.Registry
	}

	ioKey struct{}
)

// WithIO returns a copy of ctx carrying the streams of a calling script.
func WithIO(ctx context.Context, streams IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// IOFrom returns the streams stored by WithIO.
func IOFrom(ctx context.Context) (IO, bool) {
	streams, ok := ctx.Value(ioKey{}).(IO)
	return streams, ok
}

// Run interprets the script. A non-zero exit is returned as
// interp.ExitStatus; see ExitCode.
func (s *Script) Run(ctx context.Context, opts RunOptions) error {
	env := opts.Env
	if env == nil {
		env = os.Environ()
	}
	env = append(env[:len(env):len(env)], s.paramEnv(opts.Args)...)

	runnerOpts := []interp.RunnerOption{
		interp.Dir(opts.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(opts.IO.Stdin, opts.IO.Stdout, opts.IO.Stderr),
	}
	handlers := []func(interp.ExecHandlerFunc) interp.ExecHandlerFunc{callHandler}
	if opts.Builtins != nil {
		handlers = append(handlers, opts.Builtins.ExecHandler)
	}
	runnerOpts = append(runnerOpts, interp.ExecHandlers(handlers...))

	// "--" keeps arguments such as "-v" from being read as shell options.
	if len(opts.Args) > 0 {
		params := append([]string{"--"}, opts.Args...)
		runnerOpts = append(runnerOpts, interp.Params(params...))
	}

	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}
	return runner.Run(ctx, s.file)
}

// paramEnv binds declared parameters to positional arguments, falling back
// to their defaults. Parameters with neither are left unset.
func (s *Script) paramEnv(args []string) []string {
	var env []string
	for i, p := range s.params {
		switch {
		case i < len(args):
			env = append(env, p.Name+"="+args[i])
		case p.HasDefault:
			env = append(env, p.Name+"="+p.Default)
		}
	}
	return env
}

// callHandler implements the modrun-call builtin on top of the launcher's
// task-scoped execution context.
func callHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 || args[0] != CallCommand {
			return next(ctx, args)
		}

		hc := interp.HandlerCtx(ctx)
		if len(args) < 2 {
			fmt.Fprintf(hc.Stderr, "usage: %s NAME [ARGS...]\n", CallCommand)
			return interp.ExitStatus(2)
		}

		ctx = WithIO(ctx, IO{Stdin: hc.Stdin, Stdout: hc.Stdout, Stderr: hc.Stderr})
		err := launcher.Call(ctx, args[1], args[2:])
		if err == nil {
			return nil
		}
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return status
		}
		fmt.Fprintf(hc.Stderr, "%s: %v\n", CallCommand, err)
		return interp.ExitStatus(1)
	}
}

// ExitCode extracts the shell exit status from err.
func ExitCode(err error) (int, bool) {
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return int(status), true
	}
	return 0, false
}
