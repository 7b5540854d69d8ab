package main

import (
	"os"

	"github.com/Paintersrp/forkprobe/internal/cli"
	"github.com/Paintersrp/forkprobe/internal/probe"
)

func main() {
	// Forked generations re-execute this binary and must not reach the
	// command line parser.
	if probe.IsChild() {
		os.Exit(cli.ExecuteGeneration())
	}
	cli.Execute()
}
