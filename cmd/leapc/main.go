// Package main provides the leapc command.
package main

import (
	"os"

	"github.com/leapstack-labs/leapc/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}
