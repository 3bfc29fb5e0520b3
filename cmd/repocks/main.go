// Package main provides the entry point for the repocks CLI.
package main

import (
	"os"

	"github.com/repocks/repocks/cmd/repocks/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
