package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/sdutils/internal/checkpoint"
	"github.com/hyperifyio/sdutils/internal/cliutil"
	"github.com/hyperifyio/sdutils/internal/grid"
	"github.com/hyperifyio/sdutils/internal/index"
	"github.com/hyperifyio/sdutils/internal/logx"
	"github.com/hyperifyio/sdutils/internal/prompttest"
	"github.com/hyperifyio/sdutils/internal/report"
	"github.com/hyperifyio/sdutils/internal/webui"
)

func runGrid(cfg runConfig, stdout, stderr io.Writer) int {
	log, err := logx.New(stderr, cfg.log)
	if err != nil {
		cliutil.StderrJSON(stderr, err)
		return 2
	}
	records, err := prompttest.ReadFile(cfg.filename, cfg.seed)
	if err != nil {
		cliutil.StderrJSON(stderr, fmt.Errorf("read prompt tests: %w", err))
		return 1
	}
	if len(records) == 0 {
		cliutil.StderrJSON(stderr, fmt.Errorf("read prompt tests: %w", prompttest.ErrEmptyList))
		return 1
	}
	names, err := checkpoint.Resolve(cfg.ckptFolder, cfg.baseline)
	if err != nil {
		cliutil.StderrJSON(stderr, err)
		return 1
	}
	ckpts := checkpoint.Join(names)
	log.Info().Int("records", len(records)).Str("checkpoints", ckpts).Msg("resolved run")

	if cfg.dryRun {
		if err := cliutil.WriteJSON(stdout, grid.Plan(records, ckpts, cfg.params, cfg.nameRes)); err != nil {
			cliutil.StderrJSON(stderr, err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := webui.NewClient(webui.Config{
		BaseURL:       cfg.webui.BaseURL,
		Auth:          cfg.webui.Auth,
		HTTPTimeout:   cfg.webui.HTTPTimeout,
		Retry:         webui.RetryPolicy{MaxRetries: cfg.webui.HTTPRetries, Backoff: cfg.webui.RetryBackoff},
		RatePerSecond: cfg.webui.Rate,
		Logger:        &log,
	})
	if cfg.checkModels {
		var trained []string
		for _, n := range names {
			if n != cfg.baseline {
				trained = append(trained, n)
			}
		}
		if err := grid.CheckModels(ctx, gen, trained); err != nil {
			cliutil.StderrJSON(stderr, err)
			return 1
		}
	}

	gcfg := grid.Config{
		Checkpoints:    ckpts,
		OutputDir:      cfg.outputFolder,
		Timestamped:    cfg.timestamped,
		NameResolution: cfg.nameRes,
		Params:         cfg.params,
		Generator:      gen,
		Logger:         &log,
	}
	if cfg.metricsFile != "" {
		gcfg.Metrics = grid.NewMetrics()
	}
	if cfg.indexDB != "" {
		db, err := index.Open(cfg.indexDB)
		if err != nil {
			cliutil.StderrJSON(stderr, err)
			return 1
		}
		defer func() { _ = db.Close() }()
		gcfg.Sinks = append(gcfg.Sinks, db)
	}

	sum, runErr := grid.Run(ctx, gcfg, records)
	code := finishRun(cfg, gcfg.Metrics, sum, log, stderr)
	if runErr != nil {
		cliutil.StderrJSON(stderr, runErr)
		return 1
	}
	if code != 0 {
		return code
	}
	if err := cliutil.WriteJSON(stdout, sum); err != nil {
		cliutil.StderrJSON(stderr, err)
		return 1
	}
	return 0
}

// finishRun writes the metrics file and the report for whatever the run
// produced, including partial runs.
func finishRun(cfg runConfig, m *grid.Metrics, sum grid.Summary, log zerolog.Logger, stderr io.Writer) int {
	code := 0
	if m != nil {
		if err := m.WriteFile(cfg.metricsFile); err != nil {
			cliutil.StderrJSON(stderr, fmt.Errorf("write metrics: %w", err))
			code = 1
		}
	}
	if cfg.reportPDF != "" && len(sum.Entries) > 0 {
		pages, err := report.PagesFromSummary(sum)
		if err == nil {
			err = report.Write(cfg.reportPDF, pages, report.Options{})
		}
		if err != nil {
			cliutil.StderrJSON(stderr, fmt.Errorf("write report: %w", err))
			code = 1
		} else {
			log.Info().Str("path", cfg.reportPDF).Int("pages", len(pages)).Msg("wrote report")
		}
	}
	return code
}
