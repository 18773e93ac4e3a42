// Package grid dispatches prompt tests to the WebUI X/Y/Z Plot script and
// stores every returned grid with a text sidecar describing the request.
package grid

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hyperifyio/sdutils/internal/fsutil"
	"github.com/hyperifyio/sdutils/internal/prompttest"
	"github.com/hyperifyio/sdutils/internal/webui"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Generator renders one txt2img request. *webui.Client satisfies it.
type Generator interface {
	Txt2Img(ctx context.Context, req webui.Txt2ImgRequest) (webui.Result, error)
}

// Sink receives every saved grid, e.g. to index it. An error aborts the run.
type Sink interface {
	Add(ctx context.Context, run RunInfo, e Entry) error
}

// RunInfo identifies the run an Entry belongs to.
type RunInfo struct {
	ID          string
	OutputDir   string
	Checkpoints string
}

// Config describes one dispatcher run.
type Config struct {
	// Checkpoints is the comma separated Y axis value list.
	Checkpoints string
	OutputDir   string
	// Timestamped writes into OutputDir/<YYYYMMDD-HHMMSS>.
	Timestamped bool
	// NameResolution adds -<W>x<H> to file names.
	NameResolution bool
	Params         Params
	Generator      Generator

	Logger  *zerolog.Logger
	Metrics *Metrics
	Sinks   []Sink
	// Now defaults to time.Now.
	Now func() time.Time
}

// Entry describes one saved grid.
type Entry struct {
	Seq       int               `json:"seq"`
	Record    prompttest.Record `json:"record"`
	ImagePath string            `json:"image_path"`
	TextPath  string            `json:"text_path"`
	Bytes     int               `json:"bytes"`
	SHA256    string            `json:"sha256"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Elapsed   time.Duration     `json:"elapsed_ns"`
}

// Summary reports what a run produced, including partial runs.
type Summary struct {
	RunID       string    `json:"run_id"`
	OutputDir   string    `json:"output_dir"`
	Checkpoints string    `json:"checkpoints"`
	StartedAt   time.Time `json:"started_at"`
	Entries     []Entry   `json:"entries"`
}

// Run submits records in order and stops at the first failure. The output
// directory is only created once the input has been validated.
func Run(ctx context.Context, cfg Config, records []prompttest.Record) (Summary, error) {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cfg.Generator == nil {
		return Summary{}, errors.New("grid: generator is required")
	}
	if len(records) == 0 {
		return Summary{}, prompttest.ErrEmptyList
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return Summary{}, fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	sum := Summary{RunID: uuid.NewString(), Checkpoints: cfg.Checkpoints, StartedAt: now()}
	dir, err := PrepareOutputDir(cfg.OutputDir, cfg.Timestamped, sum.StartedAt)
	if err != nil {
		return sum, err
	}
	sum.OutputDir = dir
	info := RunInfo{ID: sum.RunID, OutputDir: dir, Checkpoints: cfg.Checkpoints}
	log = log.With().Str("run", sum.RunID).Logger()
	log.Info().Str("dir", dir).Int("records", len(records)).Str("checkpoints", cfg.Checkpoints).Msg("starting grid run")

	for i, rec := range records {
		seq := i + 1
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("grid %04d: %w", seq, err)
		}
		entry, err := runOne(ctx, cfg, log, dir, seq, rec)
		if err != nil {
			cfg.Metrics.failed()
			log.Error().Err(err).Int("seq", seq).Msg("grid failed")
			return sum, fmt.Errorf("grid %04d: %w", seq, err)
		}
		sum.Entries = append(sum.Entries, entry)
		for _, s := range cfg.Sinks {
			if err := s.Add(ctx, info, entry); err != nil {
				return sum, fmt.Errorf("grid %04d: %w", seq, err)
			}
		}
	}
	log.Info().Int("grids", len(sum.Entries)).Msg("grid run complete")
	return sum, nil
}

func runOne(ctx context.Context, cfg Config, log zerolog.Logger, dir string, seq int, rec prompttest.Record) (Entry, error) {
	req := BuildRequest(rec, cfg.Checkpoints, cfg.Params)
	start := time.Now()
	res, err := cfg.Generator.Txt2Img(ctx, req)
	elapsed := time.Since(start)
	cfg.Metrics.observeRequest(elapsed.Seconds())
	if err != nil {
		return Entry{}, err
	}
	log.Info().
		Int("seq", seq).
		Int("seed", rec.Seed).
		Str("z_axis", rec.ZAxis.String()).
		Dur("elapsed", elapsed).
		Msg("grid rendered")

	img, err := imaging.Decode(bytes.NewReader(res.Image))
	if err != nil {
		return Entry{}, fmt.Errorf("invalid image from webui: %w", err)
	}
	data := res.Image
	if !bytes.HasPrefix(data, pngSignature) {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return Entry{}, fmt.Errorf("re-encode image: %w", err)
		}
		data = buf.Bytes()
	}
	base := filepath.Join(dir, BaseName(seq, rec, cfg.Params, cfg.NameResolution))
	entry := Entry{
		Seq:       seq,
		Record:    rec,
		ImagePath: base + ".png",
		TextPath:  base + ".txt",
		Bytes:     len(data),
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Elapsed:   elapsed,
	}
	sum := sha256.Sum256(data)
	entry.SHA256 = hex.EncodeToString(sum[:])

	if err := fsutil.WriteFileAtomic(entry.ImagePath, data, 0o644); err != nil {
		return Entry{}, fmt.Errorf("write image: %w", err)
	}
	if err := fsutil.WriteFileAtomic(entry.TextPath, []byte(Metadata(rec, cfg.Checkpoints, cfg.Params)), 0o644); err != nil {
		return Entry{}, fmt.Errorf("write metadata: %w", err)
	}
	cfg.Metrics.saved(entry.Bytes)
	log.Debug().Str("path", entry.ImagePath).Int("bytes", entry.Bytes).Msg("saved grid")
	return entry, nil
}
