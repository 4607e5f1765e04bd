// Package main provides the blockcat CLI.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/blockcat/internal/concat"
)

const version = "v0.1.0-dev"

// Exit codes.
const (
	exitOK            = 0
	exitError         = 1
	exitInvalid       = 2
	exitUnimplemented = 3
)

func main() {
	cmd := newRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, concat.ErrUnimplemented):
		return exitUnimplemented
	case errors.Is(err, concat.ErrInvalidArgument):
		return exitInvalid
	default:
		return exitError
	}
}
