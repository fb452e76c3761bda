// Package main provides the CLI entrypoint for bindcheck.
//
// bindcheck is a static companion of the runtime accessor compiler:
//   - Loads entity packages (go/packages + go/types)
//   - Type-checks the binding expressions of a YAML bindings file
//   - Reports which bindings are editable properties and which have text
//   - Generates typed accessors for property chains
package main

import (
	"os"

	"accessor-compiler/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
