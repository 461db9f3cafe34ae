// Command inhost drives and simulates in-process plugin integration tests.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/inhost/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
