// SPDX-License-Identifier: MPL-2.0

// Package repo builds execution contexts from module repositories.
//
// A repository is a directory, local or cloned from git, laid out as
//
//	<repo>/<module name>/<version>/   versioned modules
//	<repo>/default/                   loose code of the default module
//
// Inside a module root the symbol a.b.c is the script a/b/c.sh, and the
// descriptor a.b.$module_ is a/b/$module_.cue (or .toml). A Builder selects
// the module version, resolves the transitive requirements declared in
// descriptors and returns a Context whose search path is the module root
// followed by its dependencies.
package repo
