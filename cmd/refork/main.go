package main

import (
	"fmt"
	"os"

	"github.com/nixpig/refork"
	"github.com/nixpig/refork/internal/cli"
)

func main() {
	// A relaunched fork child is dispatched here and never reaches the
	// command line handling below.
	refork.Init()

	if err := cli.RootCmd().Execute(); err != nil {
		os.Stderr.Write(fmt.Appendf(nil, "failed to execute: %s\n", err))
		os.Exit(1)
	}
}
