package main

import (
	"io"
	"os"

	"github.com/hyperifyio/sdutils/internal/cliutil"
)

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdout, os.Stderr))
}

// cliMain is a testable entrypoint for the CLI. It accepts argv (excluding
// program name) and writers for stdout/stderr, and returns the intended
// process exit code.
func cliMain(args []string, stdout io.Writer, stderr io.Writer) int {
	// Handle help and version flags prior to any parsing or side effects
	if cliutil.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if cliutil.VersionRequested(args) {
		cliutil.PrintVersion(stdout, "xyzgrid")
		return 0
	}

	fl, err := parseFlags(args)
	if err != nil {
		cliutil.SafeFprintln(stderr, "error: "+err.Error())
		printUsage(stderr)
		return 2
	}
	cfg, err := resolveConfig(fl)
	if err != nil {
		cliutil.StderrJSON(stderr, err)
		return 2
	}
	if fl.printConfig {
		return printResolvedConfig(cfg, stdout, stderr)
	}
	return runGrid(cfg, stdout, stderr)
}
