package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/hyperifyio/sdutils/internal/cliutil"
	"github.com/hyperifyio/sdutils/internal/logx"
	"github.com/hyperifyio/sdutils/internal/prompttest"
)

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdout, os.Stderr))
}

type cliConfig struct {
	filename string
	prompt   string
	promptSR string
	seed     int
	axis     string
	logLevel string
	debug    bool
}

// cliMain is a testable entrypoint. It returns the process exit code.
func cliMain(args []string, stdout, stderr io.Writer) int {
	if cliutil.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if cliutil.VersionRequested(args) {
		cliutil.PrintVersion(stdout, "prompt2test")
		return 0
	}

	cfg := cliConfig{filename: "prompt_sr_tests.json", seed: prompttest.DefaultSeed, axis: "Prompt S/R", logLevel: "info"}
	fs := flag.NewFlagSet("prompt2test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cliutil.StringVar(fs, &cfg.filename, nil, "Prompt test JSON file", "f", "filename")
	cliutil.StringVar(fs, &cfg.prompt, nil, "Prompt (required)", "p", "prompt")
	cliutil.StringVar(fs, &cfg.promptSR, nil, "Prompt S/R values, comma separated", "r", "prompt-sr", "prompt_sr")
	cliutil.IntVar(fs, &cfg.seed, nil, "Seed", "seed")
	cliutil.StringVar(fs, &cfg.axis, nil, "Z axis type label", "z", "z-axis")
	cliutil.StringVar(fs, &cfg.logLevel, nil, "Log level", "log-level")
	cliutil.BoolVar(fs, &cfg.debug, nil, "Debug logging", "debug")
	if err := fs.Parse(args); err != nil {
		cliutil.SafeFprintln(stderr, "error: "+err.Error())
		printUsage(stderr)
		return 2
	}
	if fs.NArg() > 0 {
		cliutil.SafeFprintln(stderr, "error: unexpected arguments: "+strings.Join(fs.Args(), " "))
		printUsage(stderr)
		return 2
	}
	if strings.TrimSpace(cfg.prompt) == "" {
		cliutil.SafeFprintln(stderr, "error: -p is required")
		printUsage(stderr)
		return 2
	}
	axis, err := prompttest.ParseAxisKind(cfg.axis)
	if err != nil {
		cliutil.StderrJSON(stderr, err)
		return 2
	}
	log, err := logx.New(stderr, logx.Options{Level: cfg.logLevel, Debug: cfg.debug})
	if err != nil {
		cliutil.StderrJSON(stderr, err)
		return 2
	}

	rec := prompttest.Record{Prompt: cfg.prompt, PromptSR: cfg.promptSR, ZAxis: axis, Seed: cfg.seed}
	if _, statErr := os.Stat(cfg.filename); statErr == nil {
		if _, rerr := prompttest.ReadFile(cfg.filename, prompttest.DefaultSeed); rerr != nil && !errors.Is(rerr, prompttest.ErrEmptyList) {
			log.Warn().Err(rerr).Str("file", cfg.filename).Msg("existing list unreadable; starting a new one")
		}
	}
	records, err := prompttest.AppendFile(cfg.filename, rec, prompttest.DefaultSeed)
	if err != nil {
		cliutil.StderrJSON(stderr, err)
		return 1
	}
	log.Info().Str("file", cfg.filename).Int("records", len(records)).Msg("appended prompt test")
	return 0
}

func printUsage(w io.Writer) {
	var b strings.Builder
	b.WriteString("prompt2test - append one Prompt S/R test to a prompt test JSON file\n\n")
	b.WriteString("Usage:\n  prompt2test -p PROMPT [-r VALUES] [flags]\n\n")
	b.WriteString("Flags:\n")
	b.WriteString("  -f, -filename string\n    Prompt test JSON file (default \"prompt_sr_tests.json\")\n")
	b.WriteString("  -p, -prompt string\n    Prompt (required)\n")
	b.WriteString("  -r, -prompt-sr string\n    Prompt S/R values, comma separated; the first one must occur in the prompt\n")
	b.WriteString("  -seed int\n    Seed (default 555)\n")
	b.WriteString("  -z, -z-axis string\n    Z axis type (default \"Prompt S/R\")\n")
	b.WriteString("  -log-level string\n    debug|info|warn|error (default \"info\")\n")
	b.WriteString("  -debug\n    Debug logging\n")
	b.WriteString("  -h, --help\n    Show this help\n")
	b.WriteString("  --version\n    Print version and exit\n\n")
	b.WriteString("Example:\n  prompt2test -p 'A photo of Morgan Freeman' -r 'Morgan Freeman, Tom Cruise, Emma Watson'\n")
	cliutil.SafeFprintf(w, "%s", b.String())
}
