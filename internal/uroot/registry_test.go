// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type fakeCommand struct {
	name string
	err  error
	got  []string
}

func (f *fakeCommand) Name() string { return f.name }

func (f *fakeCommand) Run(_ context.Context, args []string) error {
	f.got = args
	return f.err
}

// runScript interprets src in dir with reg installed.
func runScript(t *testing.T, reg *Registry, dir, src string) (string, string, error) {
	t.Helper()

	file, err := syntax.NewParser().Parse(strings.NewReader(src), "test.sh")
	if err != nil {
		t.Fatalf("failed to parse script: %v", err)
	}
	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron("PATH=")),
		interp.StdIO(nil, &stdout, &stderr),
		interp.ExecHandlers(reg.ExecHandler),
	)
	if err != nil {
		t.Fatalf("interp.New() error = %v", err)
	}
	err = runner.Run(t.Context(), file)
	return stdout.String(), stderr.String(), err
}

// mustRegistry builds a registry or fails the test.
func mustRegistry(t *testing.T, cmds ...Command) *Registry {
	t.Helper()
	r, err := NewRegistry(cmds...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	r := mustRegistry(t, &fakeCommand{name: "b"}, &fakeCommand{name: "a"})

	if _, ok := r.Lookup("a"); !ok {
		t.Error("Lookup(a) not found")
	}
	if _, ok := r.Lookup("git"); ok {
		t.Error("Lookup(git) should not be found")
	}
	if got := r.Names(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v, want [a b]", got)
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmds []Command
		want error
	}{
		{"empty name", []Command{&fakeCommand{}}, ErrUnnamedCommand},
		{"duplicate", []Command{&fakeCommand{name: "x"}, &fakeCommand{name: "x"}}, ErrDuplicateCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewRegistry(tt.cmds...); !errors.Is(err, tt.want) {
				t.Errorf("NewRegistry() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	want := []string{"cat", "cp", "ls", "mkdir", "mv", "rm", "touch"}
	if got := Default().Names(); !slices.Equal(got, want) {
		t.Errorf("Default().Names() = %v, want %v", got, want)
	}
}

func TestExecHandler_Dispatch(t *testing.T) {
	t.Parallel()

	hello := &fakeCommand{name: "hello"}
	r := mustRegistry(t, hello)

	if _, _, err := runScript(t, r, t.TempDir(), "hello a 'b c'"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := []string{"hello", "a", "b c"}; !slices.Equal(hello.got, want) {
		t.Errorf("args = %q, want %q", hello.got, want)
	}
}

func TestExecHandler_FailureIsExitStatus(t *testing.T) {
	t.Parallel()

	r := mustRegistry(t, &fakeCommand{name: "broken", err: errors.New("boom")})

	_, stderr, err := runScript(t, r, t.TempDir(), "broken")
	var status interp.ExitStatus
	if !errors.As(err, &status) || status != 1 {
		t.Fatalf("Run() error = %v, want exit status 1", err)
	}
	if !strings.Contains(stderr, "boom") {
		t.Errorf("stderr = %q, want the command error", stderr)
	}
}

func TestExecHandler_UnregisteredFallsThrough(t *testing.T) {
	t.Parallel()

	// PATH is empty, so the default handler cannot find the binary.
	_, _, err := runScript(t, mustRegistry(t), t.TempDir(), "definitely-not-a-command")
	var status interp.ExitStatus
	if !errors.As(err, &status) || status != 127 {
		t.Errorf("Run() error = %v, want exit status 127", err)
	}
}

func TestCoreCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stdout, stderr, err := runScript(t, Default(), dir, `
mkdir -p a/b
touch a/b/empty
echo hello > a/src.txt
cp a/src.txt a/b/copy.txt
mv a/b/copy.txt a/moved.txt
cat a/moved.txt
rm a/src.txt
ls a
`)
	if err != nil {
		t.Fatalf("Run() error = %v, stderr = %q", err, stderr)
	}
	if !strings.HasPrefix(stdout, "hello\n") {
		t.Errorf("cat output = %q, want hello first", stdout)
	}
	for _, name := range []string{"b", "moved.txt"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("ls output %q missing %q", stdout, name)
		}
	}
	if strings.Contains(stdout, "src.txt") {
		t.Errorf("ls output %q still lists removed src.txt", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "b", "empty")); err != nil {
		t.Errorf("touch did not create the file: %v", err)
	}
}
