// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/modrun/internal/testutil"
)

// descriptorCUE returns a $module_.cue body.
func descriptorCUE(name, version string, requires ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %q\nversion: %q\n", name, version)
	if len(requires) > 0 {
		b.WriteString("requires: [\n")
		for _, r := range requires {
			n, v, _ := strings.Cut(r, "/")
			fmt.Fprintf(&b, "\t{name: %q, version: %q},\n", n, v)
		}
		b.WriteString("]\n")
	}
	return b.String()
}

// addModule lays out a module version with a descriptor and scripts.
func addModule(t *testing.T, repoDir, name, version string, scripts map[string]string, requires ...string) string {
	t.Helper()
	root := filepath.Join(repoDir, name, version)
	pkg := strings.ReplaceAll(name, ".", "/")
	testutil.WriteFile(t, root, pkg+"/$module_.cue", descriptorCUE(name, version, requires...))
	testutil.WriteTree(t, root, scripts)
	return root
}

// newTestBuilder returns a builder without default repositories and
// with an empty script environment.
func newTestBuilder(opts ...BuilderOption) *Builder {
	return NewBuilder(append([]BuilderOption{WithDefaults(), WithEnv([]string{})}, opts...)...)
}
