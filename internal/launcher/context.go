// SPDX-License-Identifier: MPL-2.0

package launcher

import "context"

type (
	// Param is one declared parameter of an entry point.
	Param struct {
		Name       string
		Default    string
		HasDefault bool
	}

	// Symbol is a callable resolved inside an ExecutionContext.
	Symbol interface {
		// Name returns the name the symbol was resolved under.
		Name() string
		// Shared reports whether the symbol is exported by its module.
		Shared() bool
		// Params returns the declared parameters in order.
		Params() []Param
	}

	// Metadata is the identity a module declares in its descriptor.
	Metadata struct {
		Name    string
		Version string
	}

	// ExecutionContext is an isolated resolution and execution boundary
	// for one module and its dependencies.
	ExecutionContext interface {
		// Module returns the module name the context was built for.
		Module() string
		// Version returns the version that was actually selected.
		Version() string
		// Resolve looks up a callable by fully qualified name. Missing
		// names fail with an error wrapping ErrSymbolNotFound.
		Resolve(name string) (Symbol, error)
		// Descriptor looks up a descriptor record by fully qualified name.
		// Missing names fail with an error wrapping ErrSymbolNotFound.
		Descriptor(name string) (*Metadata, error)
		// QuoteKeywords escapes name segments that are reserved words of
		// the context's runtime.
		QuoteKeywords(name string) string
		// Invoke runs sym with args.
		Invoke(ctx context.Context, sym Symbol, args []string) error
	}

	// Repositories selects where modules are looked up.
	Repositories struct {
		// Locations are repository paths or URLs, searched in order.
		Locations []string
		// DisableDefaults skips the built-in repositories.
		DisableDefaults bool
	}

	// Builder creates execution contexts. version is empty when none was
	// requested; it may also be a constraint the builder resolves.
	Builder interface {
		Build(ctx context.Context, name, version string, repos Repositories) (ExecutionContext, error)
	}

	executionContextKey struct{}
)

// WithExecutionContext returns a copy of ctx carrying ec.
func WithExecutionContext(ctx context.Context, ec ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey{}, ec)
}

// ExecutionContextFrom returns the execution context carried by ctx.
func ExecutionContextFrom(ctx context.Context) (ExecutionContext, bool) {
	ec, ok := ctx.Value(executionContextKey{}).(ExecutionContext)
	return ec, ok
}
