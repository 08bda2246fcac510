package main

import (
	"fmt"
	"os"

	"github.com/thenoetrevino/handla/cmd"
	"github.com/thenoetrevino/handla/internal/cli"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// command errors are already printed by the formatter
		if !cli.Reported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'handla --help' for usage.")
		}
		os.Exit(cli.ExitCode(err))
	}
}
