// Package main is the entry point for the floorper CLI.
package main

import (
	"os"

	"github.com/floorper/floorper/cmd/floorper/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
