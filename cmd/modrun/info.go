// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/internal/repo"
	"github.com/invowk/modrun/pkg/modspec"
)

var (
	infoFlags repoFlags

	infoCmd = &cobra.Command{
		Use:   "info [flags] MODULE[/VERSION]",
		Short: "Show how a module resolves",
		Long: `Show how a module resolves without running it.

Prints the selected version, the search path of the execution context
(the module root followed by its requirements), the module descriptor and
the entry point that 'modrun run' would launch.`,
		Args: cobra.ExactArgs(1),
		RunE: showInfo,
	}
)

// documented is implemented by symbols that carry a description.
type documented interface {
	Doc() string
}

func init() {
	infoFlags.register(infoCmd)
	infoCmd.Flags().StringVar(&infoFlags.entry, "run", "", "entry point to describe instead of the module's run function")
}

func showInfo(cmd *cobra.Command, args []string) error {
	module := args[0]
	fail := func(err error) error {
		renderLaunchError(cmd.ErrOrStderr(), err, module, verbose)
		return reported(cmd, 1, err)
	}

	ref, err := modspec.Parse(module)
	if err != nil {
		return fail(err)
	}
	c, err := newBuilder(cmd).Load(cmd.Context(), ref.Name, ref.Version, infoFlags.repositories())
	if err != nil {
		return fail(err)
	}
	desc, err := c.ModuleDescriptor(ref.Name)
	if err != nil {
		return fail(err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, TitleStyle.Render(c.Module()))
	writeField(w, "Version", c.Version())
	writeField(w, "Search path", c.Roots()...)
	writeDependencies(w, c.Dependencies())

	if desc != nil {
		writeField(w, "Descriptor", desc.FilePath)
		if desc.Description != "" {
			rendered, err := glamour.Render(desc.Description, markdownStyle(appConfig.UI.ColorScheme))
			if err != nil {
				return fail(err)
			}
			fmt.Fprint(w, rendered)
		}
	}

	writeEntryPoint(w, c, ref.Name, infoFlags.entry)
	return nil
}

// writeField prints a label followed by one value per line.
func writeField(w io.Writer, label string, values ...string) {
	if len(values) == 0 {
		values = []string{SubtitleStyle.Render("(none)")}
	}
	for i, v := range values {
		name := label
		if i > 0 {
			name = ""
		}
		fmt.Fprintln(w, labelStyle.Render(name)+v)
	}
}

func writeDependencies(w io.Writer, deps []repo.Dependency) {
	values := make([]string, 0, len(deps))
	for _, d := range deps {
		values = append(values, CmdStyle.Render(d.Name+"/"+d.Version))
	}
	writeField(w, "Requires", values...)
}

// writeEntryPoint describes the entry point a launch would resolve. A
// missing entry point is reported, not treated as a failure.
func writeEntryPoint(w io.Writer, ec launcher.ExecutionContext, module, raw string) {
	ep, err := launcher.ResolveEntryPoint(ec, module, raw)
	if err != nil {
		writeField(w, "Entry point", WarningStyle.Render(err.Error()))
		return
	}

	var flags []string
	if !ep.Symbol.Shared() {
		flags = append(flags, "not shared")
	}
	entry := CmdStyle.Render(ep.Lookup) + " (" + ep.Kind.String()
	if len(flags) > 0 {
		entry += ", " + strings.Join(flags, ", ")
	}
	entry += ")"
	writeField(w, "Entry point", entry)

	if d, ok := ep.Symbol.(documented); ok && d.Doc() != "" {
		writeField(w, "Doc", d.Doc())
	}
	params := make([]string, 0, len(ep.Symbol.Params()))
	for _, p := range ep.Symbol.Params() {
		if p.HasDefault {
			params = append(params, fmt.Sprintf("%s=%q", p.Name, p.Default))
		} else {
			params = append(params, p.Name+" "+WarningStyle.Render("(required)"))
		}
	}
	if len(params) > 0 {
		writeField(w, "Parameters", params...)
	}
}
