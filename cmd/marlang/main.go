// Command marlang builds, simplifies and compares marlang programs.
package main

import (
	"fmt"
	"os"

	"github.com/marlang/marlang/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
