// Package main is the entry point for cclog, the command-line front end
// for claude-code-log's cache, render, watch, and serve operations.
package main

import (
	"fmt"
	"os"

	"github.com/brianly1003/claude-code-log/cmd/cclog/cmd"
)

// Version information, set by ldflags during build.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, BuildTime, GitCommit)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
