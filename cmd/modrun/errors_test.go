// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/invowk/modrun/internal/dag"
	"github.com/invowk/modrun/internal/issue"
	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/internal/repo"
	"github.com/invowk/modrun/internal/script"
	"github.com/invowk/modrun/pkg/modspec"
)

func TestClassifyLaunchError(t *testing.T) {
	t.Parallel()

	_, malformed := modspec.Parse("com.example.hello/")

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"malformed", malformed, issue.MalformedModuleSpecId},
		{"no module", launcher.ErrNoInitialModule, issue.MalformedModuleSpecId},
		{"not found", &repo.NotFoundError{Name: "com.example.missing"}, issue.ModuleNotFoundId},
		{"no matching version", fmt.Errorf("%w: x/^2", repo.ErrNoMatchingVersion), issue.NoMatchingVersionId},
		{"conflict", &repo.ConflictError{Name: "lib", Versions: [2]string{"1.0.0", "2.0.0"}, RequiredBy: "app"}, issue.VersionConflictId},
		{"cycle", fmt.Errorf("resolve: %w", &dag.CycleError{Cycle: []string{"a", "b", "a"}}), issue.DependencyCycleId},
		{"unsupported", fmt.Errorf("%w: https://example.com", repo.ErrUnsupportedRepository), issue.UnsupportedRepositoryId},
		{"name mismatch", &launcher.MismatchError{Err: launcher.ErrModuleNameMismatch}, issue.ModuleMismatchId},
		{"version mismatch", &launcher.MismatchError{Err: launcher.ErrModuleVersionMismatch}, issue.ModuleMismatchId},
		{"entry point not found", &launcher.EntryPointError{Err: launcher.ErrEntryPointNotFound}, issue.EntryPointNotFoundId},
		{"not shared", &launcher.EntryPointError{Err: launcher.ErrEntryPointNotAccessible}, issue.EntryPointNotSharedId},
		{"not invocable", &launcher.EntryPointError{Err: launcher.ErrEntryPointNotInvocable}, issue.EntryPointNotInvocableId},
		{"bad header", &script.HeaderError{Path: "run.sh", Line: 2, Msg: "unknown directive"}, issue.ScriptHeaderInvalidId},
		{"other", errors.New("boom"), issue.ScriptExecutionFailedId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := classifyLaunchError(tt.err); got != tt.want {
				t.Errorf("classifyLaunchError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRenderLaunchError(t *testing.T) {
	t.Parallel()

	err := &launcher.EntryPointError{Err: launcher.ErrEntryPointNotAccessible, Name: "com.example.hello.run"}

	var buf bytes.Buffer
	renderLaunchError(&buf, err, "com.example.hello", false)
	out := buf.String()

	for _, want := range []string{
		"failed to launch module com.example.hello:",
		"it should be shared",
		"#modrun:shared",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("renderLaunchError() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Error chain:") {
		t.Error("non-verbose output should not include the error chain")
	}
}

func TestRenderLaunchError_QualifiedSuggestion(t *testing.T) {
	t.Parallel()

	err := &launcher.EntryPointError{
		Err:        launcher.ErrEntryPointNotFound,
		Name:       "greet",
		Suggestion: "com.example.hello::greet",
	}

	var buf bytes.Buffer
	renderLaunchError(&buf, err, "com.example.hello", false)
	if out := buf.String(); !strings.Contains(out, "• Retry with --run com.example.hello::greet") {
		t.Errorf("renderLaunchError() output missing the qualified name:\n%s", out)
	}
}

func TestRepoFlags_Repositories(t *testing.T) {
	t.Parallel()

	f := repoFlags{locations: []string{"/flag/repo"}}
	got := f.repositories()
	if len(got.Locations) == 0 || got.Locations[0] != "/flag/repo" {
		t.Errorf("Locations = %v, want flag locations first", got.Locations)
	}
	if got.DisableDefaults {
		t.Error("DisableDefaults = true, want false")
	}

	f.disableDefaults = true
	if !f.repositories().DisableDefaults {
		t.Error("DisableDefaults = false with -d")
	}
}
