// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"
	"fmt"

	"github.com/u-root/u-root/pkg/core"
	"github.com/u-root/u-root/pkg/core/cat"
	"github.com/u-root/u-root/pkg/core/cp"
	"github.com/u-root/u-root/pkg/core/ls"
	"github.com/u-root/u-root/pkg/core/mkdir"
	"github.com/u-root/u-root/pkg/core/mv"
	"github.com/u-root/u-root/pkg/core/rm"
	"github.com/u-root/u-root/pkg/core/touch"
	"mvdan.cc/sh/v3/interp"
)

// coreCommand adapts a u-root pkg/core implementation. A fresh instance is
// created per run since core commands keep per-run state.
type coreCommand struct {
	name   string
	newCmd func() core.Command
}

var coreCommands = []*coreCommand{
	{name: "cat", newCmd: func() core.Command { return cat.New() }},
	{name: "cp", newCmd: func() core.Command { return cp.New() }},
	{name: "ls", newCmd: func() core.Command { return ls.New() }},
	{name: "mkdir", newCmd: func() core.Command { return mkdir.New() }},
	{name: "mv", newCmd: func() core.Command { return mv.New() }},
	{name: "rm", newCmd: func() core.Command { return rm.New() }},
	{name: "touch", newCmd: func() core.Command { return touch.New() }},
}

// Name returns the command name.
func (c *coreCommand) Name() string { return c.name }

// Run executes the command with the interpreter's streams, working
// directory and environment.
func (c *coreCommand) Run(ctx context.Context, args []string) error {
	hc := interp.HandlerCtx(ctx)
	cmd := c.newCmd()
	cmd.SetIO(hc.Stdin, hc.Stdout, hc.Stderr)
	cmd.SetWorkingDir(hc.Dir)
	cmd.SetLookupEnv(func(name string) (string, bool) {
		v := hc.Env.Get(name)
		return v.Str, v.Set
	})

	if err := cmd.RunContext(ctx, args[1:]...); err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	return nil
}
