// Command gizmo stores widgets and gadgets and executes functions over them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/gizmo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "gizmo:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
