// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	cmd "github.com/invowk/modrun/cmd/modrun"
)

func main() {
	os.Exit(cmd.Execute())
}
