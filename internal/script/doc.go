// SPDX-License-Identifier: MPL-2.0

// Package script loads and runs shell entry points.
//
// An entry point is a POSIX shell file interpreted in-process by
// mvdan.cc/sh. A leading comment block carries its declaration:
//
//	#!/bin/sh
//	#modrun:shared
//	#modrun:doc Greets someone.
//	#modrun:param NAME=world
//	echo "hello, $NAME"
//
// Scripts call other entry points of the running module with the
// modrun-call builtin.
package script
