// Package main is the entry point for the shipquote operator CLI.
package main

import (
	"os"

	"shipquote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
