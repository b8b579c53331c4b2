// SPDX-License-Identifier: MPL-2.0

// Package launcher decides which entry point of a module to run, checks
// that it can be run, and runs it.
//
// A launch goes through these steps:
//
//  1. Parse the "name[/version]" token (see pkg/modspec).
//  2. Ask a Builder for an ExecutionContext: the isolated set of code
//     visible to the module, plus the version that was actually selected.
//  3. Read the module descriptor, trying "<name>.$module_" first and the
//     legacy "<name>.module_" second. A module without a descriptor is run
//     as plain code.
//  4. Check that the declared name and version match the request. The
//     default module is exempt from the version check.
//  5. Resolve the entry point: "<name>.run" unless one was given, with "::"
//     accepted as a qualifier, keyword quoting delegated to the context,
//     and a "_" suffix appended to lowercase-initial names.
//  6. Check that the entry point is shared and needs no arguments, then
//     invoke it with the active context installed in the ambient Slot and
//     in the call's context.Context.
//
// Every failure is terminal. Errors wrap one of the sentinel values in
// errors.go so callers can classify them with errors.Is.
package launcher
