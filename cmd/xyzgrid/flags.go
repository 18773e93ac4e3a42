package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hyperifyio/sdutils/internal/cliutil"
	"github.com/hyperifyio/sdutils/internal/config"
)

// cliFlags holds raw flag values; the *Set fields record explicit use so
// that config file values only fill what the command line left open.
type cliFlags struct {
	webui config.WebUIFlags

	filename          string
	filenameSet       bool
	ckptFolder        string
	ckptFolderSet     bool
	baseline          string
	baselineSet       bool
	outputFolder      string
	outputFolderSet   bool
	sampler           string
	samplerSet        bool
	steps             int
	stepsSet          bool
	seed              int
	seedSet           bool
	cfgScale          float64
	cfgScaleSet       bool
	width             int
	widthSet          bool
	height            int
	heightSet         bool
	flat              bool
	flatSet           bool
	nameResolution    bool
	nameResolutionSet bool

	configFile  string
	envFile     string
	printConfig bool
	dryRun      bool
	checkModels bool
	metricsFile string
	indexDB     string
	reportPDF   string

	logLevel string
	debug    bool
	quiet    bool
	console  bool
}

func parseFlags(args []string) (cliFlags, error) {
	fl := cliFlags{
		filename:       "prompt_tests.json",
		ckptFolder:     "models/Stable-diffusion/",
		baseline:       "SDv1-5.ckpt",
		outputFolder:   "output",
		sampler:        "Euler a",
		steps:          20,
		seed:           555,
		cfgScale:       7.0,
		width:          512,
		height:         512,
		nameResolution: true,
		logLevel:       "info",
	}
	fs := flag.NewFlagSet("xyzgrid", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cliutil.StringVar(fs, &fl.filename, &fl.filenameSet, "Prompt test JSON file", "f", "filename")
	cliutil.StringVar(fs, &fl.ckptFolder, &fl.ckptFolderSet, "Checkpoint folder", "C", "ckpt-folder", "ckpt_folder")
	cliutil.StringVar(fs, &fl.baseline, &fl.baselineSet, "Baseline checkpoint", "b", "baseline-ckpt", "baseline_ckpt")
	cliutil.StringVar(fs, &fl.outputFolder, &fl.outputFolderSet, "Output folder", "o", "output-folder", "output_folder")
	cliutil.StringVar(fs, &fl.sampler, &fl.samplerSet, "Sampler", "S", "sampler")
	cliutil.IntVar(fs, &fl.steps, &fl.stepsSet, "Steps", "t", "steps")
	cliutil.IntVar(fs, &fl.seed, &fl.seedSet, "Seed for records without one", "s", "seed")
	cliutil.Float64Var(fs, &fl.cfgScale, &fl.cfgScaleSet, "CFG scale", "c", "cfg-scale", "cfg_scale")
	cliutil.IntVar(fs, &fl.width, &fl.widthSet, "Width", "W", "width")
	cliutil.IntVar(fs, &fl.height, &fl.heightSet, "Height", "H", "height")
	cliutil.BoolVar(fs, &fl.flat, &fl.flatSet, "Write directly into the output folder, which must not exist", "flat")
	cliutil.BoolVar(fs, &fl.nameResolution, &fl.nameResolutionSet, "Include WxH in file names", "name-resolution")

	w := &fl.webui
	cliutil.StringVar(fs, &w.BaseURL, &w.BaseURLSet, "WebUI base URL", "base-url")
	cliutil.StringVar(fs, &w.Auth, &w.AuthSet, "WebUI basic auth user:password", "auth")
	cliutil.DurationVar(fs, &w.HTTPTimeout, &w.HTTPTimeoutSet, "HTTP timeout per request", "http-timeout")
	cliutil.IntVar(fs, &w.HTTPRetries, &w.HTTPRetriesSet, "Retries for transient HTTP failures", "http-retries")
	cliutil.DurationVar(fs, &w.RetryBackoff, &w.RetryBackoffSet, "Base retry backoff", "http-retry-backoff")
	cliutil.Float64Var(fs, &w.Rate, &w.RateSet, "Max requests per second", "rate")

	cliutil.StringVar(fs, &fl.configFile, nil, "YAML config file", "config")
	cliutil.StringVar(fs, &fl.envFile, nil, "dotenv file loaded before env resolution", "env-file")
	cliutil.BoolVar(fs, &fl.printConfig, nil, "Print resolved config and exit", "print-config")
	cliutil.BoolVar(fs, &fl.dryRun, nil, "Print planned requests and exit", "dry-run")
	cliutil.BoolVar(fs, &fl.checkModels, nil, "Verify checkpoints against the server first", "check-models")
	cliutil.StringVar(fs, &fl.metricsFile, nil, "Write Prometheus textfile metrics here", "metrics-file")
	cliutil.StringVar(fs, &fl.indexDB, nil, "Record grids in this sqlite index", "index-db")
	cliutil.StringVar(fs, &fl.reportPDF, nil, "Write a PDF contact sheet here", "report-pdf")

	cliutil.StringVar(fs, &fl.logLevel, nil, "Log level", "log-level")
	cliutil.BoolVar(fs, &fl.debug, nil, "Debug logging", "debug")
	cliutil.BoolVar(fs, &fl.quiet, nil, "Only log errors", "quiet")
	cliutil.BoolVar(fs, &fl.console, nil, "Human readable logs", "log-console")

	if err := fs.Parse(args); err != nil {
		return fl, err
	}
	if fs.NArg() > 0 {
		return fl, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return fl, nil
}
