// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/invowk/modrun/internal/dag"
	"github.com/invowk/modrun/internal/issue"
	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/internal/repo"
	"github.com/invowk/modrun/internal/script"
	"github.com/invowk/modrun/pkg/moddesc"
	"github.com/invowk/modrun/pkg/semver"
)

// classifyLaunchError maps a launch failure to its issue catalog entry.
func classifyLaunchError(err error) issue.Id {
	var cycleErr *dag.CycleError

	switch {
	case errors.Is(err, launcher.ErrMalformedModuleSpec), errors.Is(err, launcher.ErrNoInitialModule):
		return issue.MalformedModuleSpecId
	case errors.Is(err, repo.ErrModuleNotFound):
		return issue.ModuleNotFoundId
	case errors.Is(err, repo.ErrNoMatchingVersion), errors.Is(err, semver.ErrInvalidConstraint):
		return issue.NoMatchingVersionId
	case errors.Is(err, repo.ErrVersionConflict):
		return issue.VersionConflictId
	case errors.As(err, &cycleErr):
		return issue.DependencyCycleId
	case errors.Is(err, repo.ErrUnsupportedRepository):
		return issue.UnsupportedRepositoryId
	case errors.Is(err, launcher.ErrModuleNameMismatch), errors.Is(err, launcher.ErrModuleVersionMismatch):
		return issue.ModuleMismatchId
	case errors.Is(err, launcher.ErrEntryPointNotFound):
		return issue.EntryPointNotFoundId
	case errors.Is(err, launcher.ErrEntryPointNotAccessible):
		return issue.EntryPointNotSharedId
	case errors.Is(err, launcher.ErrEntryPointNotInvocable):
		return issue.EntryPointNotInvocableId
	case errors.Is(err, script.ErrInvalidHeader):
		return issue.ScriptHeaderInvalidId
	case errors.Is(err, moddesc.ErrInvalidDescriptor), errors.Is(err, moddesc.ErrUnknownFormat):
		return issue.DescriptorInvalidId
	default:
		return issue.ScriptExecutionFailedId
	}
}

// renderLaunchError prints err as an actionable error. In verbose mode the
// matching issue catalog entry is rendered below it.
func renderLaunchError(w io.Writer, err error, module string, verboseMode bool) {
	opts := []issue.Option{issue.WithResource(module), issue.WithIssue(classifyLaunchError(err))}
	var epErr *launcher.EntryPointError
	if errors.As(err, &epErr) && epErr.Suggestion != "" {
		opts = append(opts, issue.WithSuggestions("Retry with --run "+epErr.Suggestion))
	}
	ae := issue.New("launch module", opts...)
	ae.Cause = err

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), ae.Format(verboseMode))

	if !verboseMode {
		return
	}
	if entry := ae.Entry(); entry != nil {
		if rendered, renderErr := entry.Render(markdownStyle(appConfig.UI.ColorScheme)); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
}
