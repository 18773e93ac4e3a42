package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hyperifyio/sdutils/internal/cliutil"
	"github.com/hyperifyio/sdutils/internal/corpus"
	"github.com/hyperifyio/sdutils/internal/logx"
	"github.com/hyperifyio/sdutils/internal/prompttest"
)

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdout, os.Stderr))
}

type cliConfig struct {
	filename         string
	input            string
	target           string
	seed             int
	sampleSeed       int
	sampleSeedSet    bool
	samples          int
	duplicate        bool
	transform        string
	transformTimeout time.Duration
	logLevel         string
	debug            bool
	quiet            bool
}

func parseFlags(args []string) (cliConfig, error) {
	cfg := cliConfig{
		filename: "xyz_prompt_tests.json",
		input:    "input",
		target:   "blip",
		seed:     prompttest.DefaultSeed,
		samples:  15,
		logLevel: "info",
	}
	fs := flag.NewFlagSet("caption2prompt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cliutil.StringVar(fs, &cfg.filename, nil, "Output prompt test JSON file", "f", "filename")
	cliutil.StringVar(fs, &cfg.input, nil, "Root folder holding caption subfolders", "i", "input-folder", "input_folder")
	cliutil.StringVar(fs, &cfg.target, nil, "Name of the folders that contain caption filenames", "t", "target-folder", "target_folder")
	cliutil.IntVar(fs, &cfg.seed, nil, "Seed written into every record", "seed")
	cliutil.IntVar(fs, &cfg.sampleSeed, &cfg.sampleSeedSet, "Seed for caption sampling (defaults to -seed)", "sample-seed")
	cliutil.IntVar(fs, &cfg.samples, nil, "Number of captions to sample", "S", "samples")
	cliutil.BoolVar(fs, &cfg.duplicate, nil, "Also add every caption without its token", "d", "duplicate")
	cliutil.StringVar(fs, &cfg.transform, nil, "JavaScript expression rewriting each caption", "transform")
	cliutil.DurationVar(fs, &cfg.transformTimeout, nil, "Per caption transform timeout", "transform-timeout")
	cliutil.StringVar(fs, &cfg.logLevel, nil, "Log level", "log-level")
	cliutil.BoolVar(fs, &cfg.debug, nil, "Debug logging", "debug")
	cliutil.BoolVar(fs, &cfg.quiet, nil, "Only log errors", "quiet")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if cfg.samples < 0 {
		return cfg, fmt.Errorf("-S must be >= 0")
	}
	if !cfg.sampleSeedSet {
		cfg.sampleSeed = cfg.seed
	}
	return cfg, nil
}

// cliMain is a testable entrypoint. It returns the process exit code.
func cliMain(args []string, stdout, stderr io.Writer) int {
	if cliutil.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if cliutil.VersionRequested(args) {
		cliutil.PrintVersion(stdout, "caption2prompt")
		return 0
	}
	cfg, err := parseFlags(args)
	if err != nil {
		cliutil.SafeFprintln(stderr, "error: "+err.Error())
		printUsage(stderr)
		return 2
	}
	log, err := logx.New(stderr, logx.Options{Level: cfg.logLevel, Debug: cfg.debug, Quiet: cfg.quiet})
	if err != nil {
		cliutil.StderrJSON(stderr, err)
		return 2
	}

	records, err := corpus.Build(corpus.Options{
		Root:             cfg.input,
		Target:           cfg.target,
		Samples:          cfg.samples,
		SampleSeed:       int64(cfg.sampleSeed),
		Seed:             cfg.seed,
		Duplicate:        cfg.duplicate,
		Transform:        cfg.transform,
		TransformTimeout: cfg.transformTimeout,
	})
	if err != nil {
		cliutil.StderrJSON(stderr, err)
		return 1
	}
	if err := prompttest.WriteFile(cfg.filename, records); err != nil {
		cliutil.StderrJSON(stderr, err)
		return 1
	}
	log.Info().
		Str("file", cfg.filename).
		Str("input", cfg.input).
		Str("target", cfg.target).
		Int("records", len(records)).
		Msg("wrote prompt tests")
	return 0
}

func printUsage(w io.Writer) {
	var b strings.Builder
	b.WriteString("caption2prompt - build X/Y/Z prompt tests from caption filenames\n\n")
	b.WriteString("Usage:\n  caption2prompt [flags]\n\n")
	b.WriteString("Flags:\n")
	b.WriteString("  -f, -filename string\n    Output prompt test JSON file (default \"xyz_prompt_tests.json\")\n")
	b.WriteString("  -i, -input-folder string\n    Root folder holding caption subfolders (default \"input\")\n")
	b.WriteString("  -t, -target-folder string\n    Name of the folders that contain caption filenames (default \"blip\")\n")
	b.WriteString("  -seed int\n    Seed written into every record (default 555)\n")
	b.WriteString("  -sample-seed int\n    Seed for caption sampling (defaults to -seed)\n")
	b.WriteString("  -S, -samples int\n    Number of captions to sample (default 15)\n")
	b.WriteString("  -d, -duplicate\n    Also add every caption without its token\n")
	b.WriteString("  -transform string\n    JavaScript expression over `caption`; empty or null drops the caption\n")
	b.WriteString("  -transform-timeout duration\n    Per caption transform timeout (default 250ms)\n")
	b.WriteString("  -log-level string\n    debug|info|warn|error (default \"info\")\n")
	b.WriteString("  -debug, -quiet\n    Shortcuts for debug or error-only logging\n")
	b.WriteString("  -h, --help\n    Show this help\n")
	b.WriteString("  --version\n    Print version and exit\n\n")
	b.WriteString("Examples:\n  caption2prompt -d\n  caption2prompt -i input -t blip -S 15 -seed -1 -d\n")
	cliutil.SafeFprintf(w, "%s", b.String())
}
