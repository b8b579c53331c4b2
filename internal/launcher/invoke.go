// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"fmt"
)

// Run resolves and invokes the entry point of module inside ec.
//
// The slot holds ec from before resolution until Run returns, on every
// path. Errors returned by the invoked code are passed through unchanged.
func (l *Launcher) Run(ctx context.Context, ec ExecutionContext, module, raw string, args []string) error {
	release := l.slot.Enter(ec)
	defer release()

	ep, err := ResolveEntryPoint(ec, module, raw)
	if err != nil {
		return err
	}
	l.logger.Debug("resolved entry point", "target", ep.Target, "symbol", ep.Lookup, "kind", ep.Kind)

	if !ep.Symbol.Shared() {
		return &EntryPointError{Err: ErrEntryPointNotAccessible, Kind: ep.Kind, Name: ep.Target}
	}
	if err := checkInvocable(ep); err != nil {
		return err
	}

	return ec.Invoke(WithExecutionContext(ctx, ec), ep.Symbol, args)
}

// Call runs another entry point from inside running code. The execution
// context is taken from ctx, so nested calls never touch a Slot. name
// follows the same rules as an explicit entry point reference; visibility
// is not checked since callers already run inside the context.
func Call(ctx context.Context, name string, args []string) error {
	ec, ok := ExecutionContextFrom(ctx)
	if !ok {
		return fmt.Errorf("%w: cannot call %q", ErrNoExecutionContext, name)
	}
	ep, err := ResolveEntryPoint(ec, ec.Module(), name)
	if err != nil {
		return err
	}
	if err := checkInvocable(ep); err != nil {
		return err
	}
	return ec.Invoke(ctx, ep.Symbol, args)
}

// checkInvocable accepts symbols whose parameters all have defaults. Their
// arguments are supplied as the string vector instead.
func checkInvocable(ep *EntryPoint) error {
	for _, p := range ep.Symbol.Params() {
		if !p.HasDefault {
			return &EntryPointError{Err: ErrEntryPointNotInvocable, Kind: ep.Kind, Name: ep.Target}
		}
	}
	return nil
}
