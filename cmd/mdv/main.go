// Package main is the entry point for the mdv CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/mdvault/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
