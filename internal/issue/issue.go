// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ModuleNotFoundId Id = iota + 1
	NoMatchingVersionId
	VersionConflictId
	DependencyCycleId
	UnsupportedRepositoryId
	MalformedModuleSpecId
	DescriptorInvalidId
	ModuleMismatchId
	EntryPointNotFoundId
	EntryPointNotSharedId
	EntryPointNotInvocableId
	ScriptHeaderInvalidId
	ScriptExecutionFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	hints    []string    // one-line suggestions shown with the error
	docLinks []HttpLink  // documentation pages about this issue type
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Hints returns the one-line suggestions listed under an error message.
func (i *Issue) Hints() []string {
	return slices.Clone(i.hints)
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var extraMd strings.Builder
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			extraMd.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
		for _, link := range i.extLinks {
			extraMd.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
	}
	return render(string(i.mdMsg)+extraMd.String(), stylePath)
}

var (
	render = glamour.Render

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		hints: []string{
			"Add the repository holding the module with --rep",
			"Check the module name for typos",
		},
		mdMsg: `
# Module not found!

None of the configured repositories contains the requested module.

## Search locations (in order of precedence):
1. Repositories given with ` + "`--rep`" + `
2. Repositories listed in your config file
3. ` + "`./modules`" + `
4. ` + "`$MODRUN_HOME/repo`" + ` (defaults to ` + "`~/.modrun/repo`" + `)

## Things you can try:
- Check the module name for typos
- List the repository layout, a module lives in ` + "`<repo>/<name>/<version>/`" + `
- Add the repository holding the module:
~~~
$ modrun run --rep /path/to/repo com.example.hello
~~~`,
	}

	noMatchingVersionIssue = &Issue{
		id: NoMatchingVersionId,
		hints: []string{
			"Relax the version constraint or omit it to use the newest version",
		},
		mdMsg: `
# No matching version!

The module exists, but none of its versions satisfies the requested constraint.

## Things you can try:
- Relax the constraint, e.g. ` + "`com.example.hello/^1.0.0`" + `
- Ask for an exact version directory instead
- Install the missing version into one of your repositories`,
	}

	versionConflictIssue = &Issue{
		id: VersionConflictId,
		hints: []string{
			"Align the 'requires' constraints of the module descriptors",
		},
		mdMsg: `
# Version conflict!

Two modules require the same dependency, but the requirements resolve to different versions.
Only one version of each module can be loaded at a time.

## Things you can try:
- Align the ` + "`requires`" + ` constraints in the module descriptors
- Install a version that satisfies every constraint`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		hints: []string{
			"Review the 'requires' lists of the module descriptors",
		},
		mdMsg: `
# Dependency cycle detected!

The module requirements form a cycle, so no search order can be computed.

## Things you can try:
- Review the ` + "`requires`" + ` lists of the modules named in the error
- Move the shared code into a separate module that both can require`,
	}

	unsupportedRepositoryIssue = &Issue{
		id: UnsupportedRepositoryId,
		hints: []string{
			"Use a directory, a file:// URL or a git remote",
		},
		mdMsg: `
# Unsupported repository!

The repository location could not be opened.

## Supported locations:
- Local directories (absolute or relative paths)
- ` + "`file://`" + ` URLs
- Git remotes such as ` + "`git+https://host/repo.git`" + ` or ` + "`git@host:org/repo.git`" + `

## Things you can try:
- Check the location given with ` + "`--rep`" + ` or in the config file
- Make sure a git cache directory is configured when using git remotes`,
	}

	malformedModuleSpecIssue = &Issue{
		id: MalformedModuleSpecId,
		hints: []string{
			"Use MODULE or MODULE/VERSION, e.g. com.example.hello/1.0.0",
		},
		mdMsg: `
# Malformed module spec!

A module spec has the form ` + "`name[/version]`" + `. Neither half may be empty.
The entry point is chosen separately with ` + "`--run`" + `.

## Examples:
~~~
$ modrun run com.example.hello
$ modrun run com.example.hello/1.0.0
$ modrun run --run com.example.hello::greet com.example.hello/^1.0.0
~~~`,
	}

	descriptorInvalidIssue = &Issue{
		id: DescriptorInvalidId,
		hints: []string{
			"Check the descriptor syntax and its name and version fields",
		},
		mdMsg: `
# Failed to parse module descriptor!

The module descriptor (` + "`$module_.cue`" + ` or ` + "`$module_.toml`" + `) could not be read.

## Things you can try:
- Check the descriptor syntax
- Verify that ` + "`name`" + ` and ` + "`version`" + ` are present

## Example descriptor:
~~~cue
name: "com.example.hello"
version: "1.0.0"
requires: [{name: "com.example.util", version: "^1.0.0"}]
~~~`,
	}

	moduleMismatchIssue = &Issue{
		id: ModuleMismatchId,
		hints: []string{
			"Make the repository layout match the descriptor's name and version",
		},
		mdMsg: `
# Module identity mismatch!

The descriptor found for the module declares a different name or version than the one requested.

## Things you can try:
- Make the directory layout match the descriptor
- Fix the ` + "`name`" + ` or ` + "`version`" + ` fields of the descriptor`,
	}

	entryPointNotFoundIssue = &Issue{
		id: EntryPointNotFoundId,
		mdMsg: `
# Entry point not found!

The entry point does not resolve to a script in the module or its dependencies.

## Things you can try:
- Check the entry point name, ` + "`a.b.c`" + ` resolves to ` + "`a/b/c.sh`" + `
- Inspect the module:
~~~
$ modrun info com.example.hello
~~~`,
	}

	entryPointNotSharedIssue = &Issue{
		id: EntryPointNotSharedId,
		hints: []string{
			"Add '#modrun:shared' to the script header",
		},
		mdMsg: `
# Entry point not accessible!

Only scripts marked as shared can be launched as entry points.

## Things you can try:
- Add the header directive to the script:
~~~sh
#modrun:shared
~~~`,
	}

	entryPointNotInvocableIssue = &Issue{
		id: EntryPointNotInvocableId,
		hints: []string{
			"Give every '#modrun:param' a default value",
		},
		mdMsg: `
# Entry point not invocable!

An entry point can only be launched when every parameter it declares has a default value.
Arguments from the command line are passed as positional parameters instead.

## Things you can try:
- Give the parameter a default: ` + "`#modrun:param NAME=value`" + `
- Launch a wrapper entry point that supplies the value:
~~~sh
#modrun:shared
modrun-call com.example.hello.greet "$@"
~~~`,
	}

	scriptHeaderInvalidIssue = &Issue{
		id: ScriptHeaderInvalidId,
		hints: []string{
			"Check the #modrun: directives at the top of the script",
		},
		mdMsg: `
# Invalid script header!

A ` + "`#modrun:`" + ` directive in the leading comment block is not valid.

## Supported directives:
- ` + "`#modrun:shared`" + `
- ` + "`#modrun:param NAME[=DEFAULT]`" + `
- ` + "`#modrun:doc TEXT`",
	}

	scriptExecutionFailedIssue = &Issue{
		id: ScriptExecutionFailedId,
		mdMsg: `
# Script execution failed!

The script could not be executed.

## Things you can try:
- Run with verbose output to see what went wrong:
~~~
$ modrun --verbose run com.example.hello
~~~
- Check the script syntax`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		hints: []string{
			"Check the CUE syntax of the config file",
			"Run 'modrun config show' to see the effective configuration",
		},
		mdMsg: `
# Failed to load configuration!

Could not load the modrun configuration file.

## Configuration file locations:
- Linux: ~/.config/modrun/config.cue
- macOS: ~/Library/Application Support/modrun/config.cue
- Windows: %APPDATA%\modrun\config.cue

## Things you can try:
- Check the CUE syntax of the file
- Print the effective configuration:
~~~
$ modrun config show
~~~
- Recreate a default configuration:
~~~
$ modrun config init
~~~`,
	}

	issues = map[Id]*Issue{
		moduleNotFoundIssue.Id():         moduleNotFoundIssue,
		noMatchingVersionIssue.Id():      noMatchingVersionIssue,
		versionConflictIssue.Id():        versionConflictIssue,
		dependencyCycleIssue.Id():        dependencyCycleIssue,
		unsupportedRepositoryIssue.Id():  unsupportedRepositoryIssue,
		malformedModuleSpecIssue.Id():    malformedModuleSpecIssue,
		descriptorInvalidIssue.Id():      descriptorInvalidIssue,
		moduleMismatchIssue.Id():         moduleMismatchIssue,
		entryPointNotFoundIssue.Id():     entryPointNotFoundIssue,
		entryPointNotSharedIssue.Id():    entryPointNotSharedIssue,
		entryPointNotInvocableIssue.Id(): entryPointNotInvocableIssue,
		scriptHeaderInvalidIssue.Id():    scriptHeaderInvalidIssue,
		scriptExecutionFailedIssue.Id():  scriptExecutionFailedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
	}
)

// Values returns all issues ordered by id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
