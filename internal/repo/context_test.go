// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/internal/script"
	"github.com/invowk/modrun/internal/testutil"
)

func TestContext_Resolve(t *testing.T) {
	t.Parallel()

	main := t.TempDir()
	dep := t.TempDir()
	testutil.WriteFile(t, main, "com/example/run.sh", "#modrun:shared\necho main\n")
	testutil.WriteFile(t, main, "com/example/do/it.sh", "echo quoted\n")
	testutil.WriteFile(t, dep, "com/example/run.sh", "echo shadowed\n")
	testutil.WriteFile(t, dep, "org/lib/helper.sh", "echo helper\n")
	testutil.WriteFile(t, main, "com/example/broken.sh", "if then fi\n")
	testutil.MustMkdirAll(t, filepath.Join(main, "com", "example", "dir.sh"))

	c := newContext("com.example", "1.0.0", []string{main, dep})

	tests := []struct {
		name     string
		symbol   string
		wantPath string
		wantErr  error
	}{
		{name: "module root first", symbol: "com.example.run", wantPath: filepath.Join(main, "com", "example", "run.sh")},
		{name: "dependency root", symbol: "org.lib.helper", wantPath: filepath.Join(dep, "org", "lib", "helper.sh")},
		{name: "quoted keyword", symbol: "com.example.$do.it", wantPath: filepath.Join(main, "com", "example", "do", "it.sh")},
		{name: "bare keyword", symbol: "com.example.do.it", wantErr: launcher.ErrSymbolNotFound},
		{name: "missing", symbol: "com.example.missing", wantErr: launcher.ErrSymbolNotFound},
		{name: "directory", symbol: "com.example.dir", wantErr: launcher.ErrSymbolNotFound},
		{name: "empty segment", symbol: "com..run", wantErr: launcher.ErrSymbolNotFound},
		{name: "trailing dots", symbol: "com.example...", wantErr: launcher.ErrSymbolNotFound},
		{name: "path separator", symbol: "com/example.run", wantErr: launcher.ErrSymbolNotFound},
		{name: "empty", symbol: "", wantErr: launcher.ErrSymbolNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sym, err := c.Resolve(tt.symbol)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.symbol, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.symbol, err)
			}
			s, ok := sym.(*script.Script)
			if !ok {
				t.Fatalf("Resolve(%q) = %T, want *script.Script", tt.symbol, sym)
			}
			if s.Path() != tt.wantPath {
				t.Errorf("Path() = %q, want %q", s.Path(), tt.wantPath)
			}
			if s.Name() != tt.symbol {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.symbol)
			}
		})
	}

	t.Run("parse error propagates", func(t *testing.T) {
		t.Parallel()
		_, err := c.Resolve("com.example.broken")
		if err == nil || errors.Is(err, launcher.ErrSymbolNotFound) {
			t.Errorf("Resolve(broken) error = %v, want a parse error", err)
		}
	})
}

func TestContext_Descriptor(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteFile(t, root, "com/example/$module_.cue", descriptorCUE("com.example", "1.0.0"))
	testutil.WriteFile(t, root, "com/example/module_.toml", "name = \"com.example\"\nversion = \"0.9.0\"\n")
	testutil.WriteFile(t, root, "org/legacy/module_.toml", "name = \"org.legacy\"\nversion = \"2.0.0\"\n")
	testutil.WriteFile(t, root, "org/bad/$module_.cue", "name: \"org.bad\"\nunknown: 1\n")

	c := newContext("com.example", "1.0.0", []string{root})

	md, err := c.Descriptor("com.example.$module_")
	if err != nil {
		t.Fatalf("Descriptor() unexpected error: %v", err)
	}
	if md.Name != "com.example" || md.Version != "1.0.0" {
		t.Errorf("Descriptor() = %+v, want com.example 1.0.0", md)
	}

	md, err = c.Descriptor("com.example.module_")
	if err != nil {
		t.Fatalf("Descriptor(legacy) unexpected error: %v", err)
	}
	if md.Version != "0.9.0" {
		t.Errorf("Descriptor(legacy).Version = %q, want %q", md.Version, "0.9.0")
	}

	if _, err := c.Descriptor("org.missing.$module_"); !errors.Is(err, launcher.ErrSymbolNotFound) {
		t.Errorf("Descriptor(missing) error = %v, want %v", err, launcher.ErrSymbolNotFound)
	}
	if _, err := c.Descriptor("org.bad.$module_"); err == nil || errors.Is(err, launcher.ErrSymbolNotFound) {
		t.Errorf("Descriptor(bad) error = %v, want a schema error", err)
	}
	if _, err := c.Descriptor("org.$module_"); !errors.Is(err, launcher.ErrSymbolNotFound) {
		t.Errorf("Descriptor(org) error = %v, want %v", err, launcher.ErrSymbolNotFound)
	}

	legacy, err := ReadModuleMetadata(root, "org.legacy")
	if err != nil {
		t.Fatalf("ReadModuleMetadata() unexpected error: %v", err)
	}
	if legacy == nil || legacy.Version != "2.0.0" {
		t.Errorf("ReadModuleMetadata() = %+v, want org.legacy 2.0.0", legacy)
	}

	none, err := ReadModuleMetadata(root, "org.none")
	if err != nil || none != nil {
		t.Errorf("ReadModuleMetadata(none) = (%+v, %v), want (nil, nil)", none, err)
	}
}

func TestContext_QuoteKeywords(t *testing.T) {
	t.Parallel()

	c := newContext("x", "", nil)
	tests := []struct {
		in   string
		want string
	}{
		{"com.example.run", "com.example.run"},
		{"do.it", "$do.it"},
		{"pkg.if.then", "pkg.$if.$then"},
		{"done_", "done_"},
	}
	for _, tt := range tests {
		if got := c.QuoteKeywords(tt.in); got != tt.want {
			t.Errorf("QuoteKeywords(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContext_Invoke(t *testing.T) {
	t.Parallel()

	main := t.TempDir()
	dep := t.TempDir()
	testutil.WriteFile(t, main, "app/run.sh", "#modrun:param WHO=world\necho \"$MODRUN_MODULE@$MODRUN_VERSION $WHO $#\"\necho \"$MODRUN_PATH\"\n")

	var stdout bytes.Buffer
	c := newContext("app", "1.2.3", []string{main, dep})
	c.env = []string{}
	c.io = script.IO{Stdout: &stdout}

	sym, err := c.Resolve("app.run")
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if err := c.Invoke(context.Background(), sym, []string{"you", "extra"}); err != nil {
		t.Fatalf("Invoke() unexpected error: %v", err)
	}

	want := "app@1.2.3 you 2\n" + main + string(os.PathListSeparator) + dep + "\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestContext_InvokeUsesCallerIO(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteFile(t, root, "app/run.sh", "echo nested\n")

	var own, caller bytes.Buffer
	c := newContext("app", "", []string{root})
	c.env = []string{}
	c.io = script.IO{Stdout: &own}

	sym, err := c.Resolve("app.run")
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	ctx := script.WithIO(context.Background(), script.IO{Stdout: &caller})
	if err := c.Invoke(ctx, sym, nil); err != nil {
		t.Fatalf("Invoke() unexpected error: %v", err)
	}
	if own.Len() != 0 {
		t.Errorf("context stdout = %q, want empty", own.String())
	}
	if !strings.Contains(caller.String(), "nested") {
		t.Errorf("caller stdout = %q, want it to contain %q", caller.String(), "nested")
	}
}
