// Package main is the entry point for the memix CLI.
// memix suggests a commit message for the staged changes of a git
// repository and commits with it once confirmed.
package main

import (
	"fmt"
	"os"

	"github.com/memix/memix/internal/cmd"
	apperrors "github.com/memix/memix/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		if apperrors.IsVerbose() {
			fmt.Fprint(os.Stderr, apperrors.FormatErrorVerbose(err))
		} else {
			fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		}
		os.Exit(apperrors.GetExitCode(err))
	}
}
