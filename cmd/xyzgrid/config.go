package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hyperifyio/sdutils/internal/cliutil"
	"github.com/hyperifyio/sdutils/internal/config"
	"github.com/hyperifyio/sdutils/internal/grid"
	"github.com/hyperifyio/sdutils/internal/logx"
)

// runConfig is the fully resolved invocation.
type runConfig struct {
	webui config.WebUI

	filename     string
	ckptFolder   string
	baseline     string
	outputFolder string
	seed         int
	timestamped  bool
	nameRes      bool
	params       grid.Params
	sources      map[string]string

	dryRun      bool
	checkModels bool
	metricsFile string
	indexDB     string
	reportPDF   string
	log         logx.Options
}

func resolveConfig(fl cliFlags) (runConfig, error) {
	if err := config.LoadEnvFile(fl.envFile); err != nil {
		return runConfig{}, err
	}
	file, err := config.LoadFile(fl.configFile)
	if err != nil {
		return runConfig{}, err
	}
	wcfg, err := config.ResolveWebUI(fl.webui, file.WebUI)
	if err != nil {
		return runConfig{}, err
	}
	cfg := runConfig{
		webui:       wcfg,
		sources:     map[string]string{},
		dryRun:      fl.dryRun,
		checkModels: fl.checkModels,
		metricsFile: fl.metricsFile,
		indexDB:     fl.indexDB,
		reportPDF:   fl.reportPDF,
		log:         logx.Options{Level: fl.logLevel, Debug: fl.debug, Quiet: fl.quiet, Console: fl.console},
	}
	g := file.Grid
	var src string
	cfg.filename, cfg.sources["filename"] = config.ResolveString(fl.filename, fl.filenameSet, "", g.Filename, fl.filename)
	cfg.ckptFolder, cfg.sources["ckpt_folder"] = config.ResolveString(fl.ckptFolder, fl.ckptFolderSet, "", g.CkptFolder, fl.ckptFolder)
	cfg.baseline, cfg.sources["baseline_ckpt"] = config.ResolveString(fl.baseline, fl.baselineSet, "", g.BaselineCkpt, fl.baseline)
	cfg.baseline = strings.TrimSpace(cfg.baseline)
	cfg.outputFolder, cfg.sources["output_folder"] = config.ResolveString(fl.outputFolder, fl.outputFolderSet, "", g.OutputFolder, fl.outputFolder)
	cfg.params.Sampler, cfg.sources["sampler"] = config.ResolveString(fl.sampler, fl.samplerSet, "", g.Sampler, fl.sampler)

	// The remaining resolvers never fail without an env key.
	cfg.params.Steps, src, _ = config.ResolveInt(fl.steps, fl.stepsSet, "", g.Steps, fl.steps)
	cfg.sources["steps"] = src
	cfg.seed, src, _ = config.ResolveInt(fl.seed, fl.seedSet, "", g.Seed, fl.seed)
	cfg.sources["seed"] = src
	cfg.params.CFGScale, src, _ = config.ResolveFloat(fl.cfgScale, fl.cfgScaleSet, "", g.CFGScale, fl.cfgScale)
	cfg.sources["cfg_scale"] = src
	cfg.params.Width, src, _ = config.ResolveInt(fl.width, fl.widthSet, "", g.Width, fl.width)
	cfg.sources["width"] = src
	cfg.params.Height, src, _ = config.ResolveInt(fl.height, fl.heightSet, "", g.Height, fl.height)
	cfg.sources["height"] = src
	// -flat is the inverse of the file's timestamp key.
	cfg.timestamped, src, _ = config.ResolveBool(!fl.flat, fl.flatSet, "", g.Timestamp, true)
	cfg.sources["timestamp"] = src
	cfg.nameRes = fl.nameResolution

	if strings.TrimSpace(cfg.filename) == "" {
		return runConfig{}, fmt.Errorf("-f must not be empty")
	}
	if strings.TrimSpace(cfg.outputFolder) == "" {
		return runConfig{}, fmt.Errorf("-o must not be empty")
	}
	if cfg.params.Steps <= 0 {
		return runConfig{}, fmt.Errorf("-t must be > 0")
	}
	if cfg.params.Width <= 0 || cfg.params.Height <= 0 {
		return runConfig{}, fmt.Errorf("-W and -H must be > 0")
	}
	if math.IsNaN(cfg.params.CFGScale) || math.IsInf(cfg.params.CFGScale, 0) || cfg.params.CFGScale <= 0 {
		return runConfig{}, fmt.Errorf("-c must be a positive number")
	}
	return cfg, nil
}

// printResolvedConfig writes the effective settings as JSON with auth masked.
func printResolvedConfig(cfg runConfig, stdout, stderr io.Writer) int {
	w := cfg.webui
	payload := map[string]any{
		"baseURL":          w.BaseURL,
		"auth":             config.MaskSecret(w.Auth),
		"httpTimeout":      w.HTTPTimeout.String(),
		"httpRetries":      w.HTTPRetries,
		"httpRetryBackoff": w.RetryBackoff.String(),
		"rate":             w.Rate,
		"webuiSources":     w.Sources,
		"filename":         cfg.filename,
		"ckptFolder":       cfg.ckptFolder,
		"baselineCkpt":     cfg.baseline,
		"outputFolder":     cfg.outputFolder,
		"timestamped":      cfg.timestamped,
		"nameResolution":   cfg.nameRes,
		"sampler":          cfg.params.Sampler,
		"steps":            cfg.params.Steps,
		"seed":             cfg.seed,
		"cfgScale":         cfg.params.CFGScale,
		"width":            cfg.params.Width,
		"height":           cfg.params.Height,
		"gridSources":      cfg.sources,
	}
	if err := cliutil.WriteJSON(stdout, payload); err != nil {
		cliutil.StderrJSON(stderr, err)
		return 1
	}
	return 0
}
