package main

import (
	"fmt"
	"os"
)

// errorHandled is set once an error has already been printed (e.g. by a
// subcommand that wants a different message), so main doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}
