// SPDX-License-Identifier: MPL-2.0

package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mvdan.cc/sh/v3/interp"

	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/internal/uroot"
)

// scriptContext is an execution context over in-memory scripts.
type scriptContext struct {
	module  string
	scripts map[string]*Script
}

func newScriptContext(t *testing.T, module string, sources map[string]string) *scriptContext {
	t.Helper()
	c := &scriptContext{module: module, scripts: make(map[string]*Script)}
	for name, src := range sources {
		s, err := Parse(strings.NewReader(src), name+Ext, name)
		if err != nil {
			t.Fatalf("Parse(%s) error: %v", name, err)
		}
		c.scripts[name] = s
	}
	return c
}

func (c *scriptContext) Module() string                   { return c.module }
func (c *scriptContext) Version() string                  { return "" }
func (c *scriptContext) QuoteKeywords(name string) string { return name }

func (c *scriptContext) Descriptor(string) (*launcher.Metadata, error) {
	return nil, launcher.ErrSymbolNotFound
}

func (c *scriptContext) Resolve(name string) (launcher.Symbol, error) {
	if s, ok := c.scripts[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", launcher.ErrSymbolNotFound, name)
}

func (c *scriptContext) Invoke(ctx context.Context, sym launcher.Symbol, args []string) error {
	streams, _ := IOFrom(ctx)
	return sym.(*Script).Run(ctx, RunOptions{Args: args, Env: []string{}, IO: streams})
}

func mustParse(t *testing.T, src string) *Script {
	t.Helper()
	s, err := Parse(strings.NewReader(src), "test.sh", "test")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return s
}

func TestRun_PositionalAndParams(t *testing.T) {
	t.Parallel()

	s := mustParse(t, `#modrun:param FIRST
#modrun:param SECOND=fallback
echo "$1|$FIRST|$SECOND|$#"
`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"defaults", nil, "||fallback|0\n"},
		{"one argument", []string{"a"}, "a|a|fallback|1\n"},
		{"all arguments", []string{"a", "b", "c"}, "a|a|b|3\n"},
		{"option-like argument", []string{"-v"}, "-v|-v|fallback|1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var stdout bytes.Buffer
			err := s.Run(context.Background(), RunOptions{
				Args: tt.args,
				Env:  []string{},
				IO:   IO{Stdout: &stdout},
			})
			if err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}
			if stdout.String() != tt.want {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.want)
			}
		})
	}
}

func TestRun_Environment(t *testing.T) {
	t.Parallel()

	s := mustParse(t, "#modrun:param MODE=default\necho \"$MODRUN_MODULE $MODE\"\n")
	var stdout bytes.Buffer
	err := s.Run(context.Background(), RunOptions{
		Env: []string{"MODRUN_MODULE=com.example", "MODE=from-env"},
		IO:  IO{Stdout: &stdout},
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got, want := stdout.String(), "com.example default\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_ExitStatus(t *testing.T) {
	t.Parallel()

	s := mustParse(t, "exit 3\n")
	err := s.Run(context.Background(), RunOptions{Env: []string{}})
	code, ok := ExitCode(err)
	if !ok || code != 3 {
		t.Errorf("ExitCode(%v) = (%d, %v), want (3, true)", err, code, ok)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	if _, ok := ExitCode(nil); ok {
		t.Error("ExitCode(nil) ok = true, want false")
	}
	if _, ok := ExitCode(errors.New("other")); ok {
		t.Error("ExitCode(other) ok = true, want false")
	}
	if code, ok := ExitCode(fmt.Errorf("wrapped: %w", interp.ExitStatus(7))); !ok || code != 7 {
		t.Errorf("ExitCode(wrapped) = (%d, %v), want (7, true)", code, ok)
	}
}

func TestRun_Call(t *testing.T) {
	t.Parallel()

	ec := newScriptContext(t, "pkg", map[string]string{
		"pkg.main":   "modrun-call pkg::helper one two\necho \"after $?\"\n",
		"pkg.helper": "#modrun:param A=x\necho \"helper $A $2\"\n",
	})
	ctx := launcher.WithExecutionContext(context.Background(), ec)

	var stdout bytes.Buffer
	err := ec.scripts["pkg.main"].Run(ctx, RunOptions{Env: []string{}, IO: IO{Stdout: &stdout}})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got, want := stdout.String(), "helper one two\nafter 0\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_CallFailures(t *testing.T) {
	t.Parallel()

	ec := newScriptContext(t, "pkg", map[string]string{
		"pkg.fails":    "exit 4\n",
		"pkg.required": "#modrun:param NEEDED\necho never\n",
	})
	ctx := launcher.WithExecutionContext(context.Background(), ec)

	tests := []struct {
		name       string
		src        string
		wantOut    string
		wantStderr string
	}{
		{
			name:    "exit status propagates",
			src:     "modrun-call pkg::fails\necho \"status $?\"\n",
			wantOut: "status 4\n",
		},
		{
			name:       "missing entry point",
			src:        "modrun-call pkg::missing\necho \"status $?\"\n",
			wantOut:    "status 1\n",
			wantStderr: "modrun-call: could not find toplevel function 'pkg.missing'\n",
		},
		{
			name:       "required parameter",
			src:        "modrun-call pkg::required\necho \"status $?\"\n",
			wantOut:    "status 1\n",
			wantStderr: "it should have no parameters or they should all have default values",
		},
		{
			name:       "usage",
			src:        "modrun-call\necho \"status $?\"\n",
			wantOut:    "status 2\n",
			wantStderr: "usage: modrun-call NAME [ARGS...]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var stdout, stderr bytes.Buffer
			err := mustParse(t, tt.src).Run(ctx, RunOptions{Env: []string{}, IO: IO{Stdout: &stdout, Stderr: &stderr}})
			if err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}
			if stdout.String() != tt.wantOut {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantOut)
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRun_CallWithoutExecutionContext(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	err := mustParse(t, "modrun-call anything\n").Run(context.Background(), RunOptions{Env: []string{}, IO: IO{Stderr: &stderr}})
	if code, ok := ExitCode(err); !ok || code != 1 {
		t.Errorf("ExitCode(%v) = (%d, %v), want (1, true)", err, code, ok)
	}
	if !strings.Contains(stderr.String(), "no active execution context") {
		t.Errorf("stderr = %q, want it to mention the missing context", stderr.String())
	}
}

func TestRun_Builtins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := mustParse(t, `mkdir -p out
echo data > out/file
cat out/file
`)

	var stdout, stderr bytes.Buffer
	// PATH is empty, so only the builtins can serve mkdir and cat.
	err := s.Run(t.Context(), RunOptions{
		Env:      []string{"PATH="},
		Dir:      dir,
		IO:       IO{Stdout: &stdout, Stderr: &stderr},
		Builtins: uroot.Default(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v, stderr = %q", err, stderr.String())
	}
	if stdout.String() != "data\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "data\n")
	}

	stdout.Reset()
	err = s.Run(t.Context(), RunOptions{Env: []string{"PATH="}, Dir: t.TempDir(), IO: IO{Stdout: &stdout, Stderr: &stderr}})
	if code, ok := ExitCode(err); !ok || code != 127 {
		t.Errorf("Run() without builtins error = %v, want exit status 127", err)
	}
}
