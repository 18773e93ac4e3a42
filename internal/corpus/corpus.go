// Package corpus builds prompt-test lists from caption filenames.
//
// Captioning tools commonly store a caption as the image filename, e.g.
// "a photo of sks dog, sitting on grass_0001.png" inside a folder named
// after the captioner ("blip"). The corpus builder gathers those captions,
// samples a reproducible subset and turns each into a prompt test.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hyperifyio/sdutils/internal/prompttest"
)

// Options controls Build.
type Options struct {
	// Root is the directory tree to scan.
	Root string
	// Target is the base name of the folders that hold caption files.
	Target string
	// Samples is the number of captions to draw from the pool.
	Samples int
	// SampleSeed seeds the sampler so runs are reproducible.
	SampleSeed int64
	// Seed is written into every produced record.
	Seed int
	// Duplicate appends a token-stripped copy of each sampled caption.
	Duplicate bool
	// Transform is an optional JavaScript expression applied to each caption
	// in the pool before sampling. See NewTransform.
	Transform string
	// TransformTimeout bounds a single Transform evaluation.
	TransformTimeout time.Duration
}

// Clean returns the caption part of a filename: everything before the first
// underscore. Names without an underscore are returned unchanged.
func Clean(filename string) string {
	if i := strings.IndexByte(filename, '_'); i >= 0 {
		return filename[:i]
	}
	return filename
}

// WithoutToken approximates a caption without its leading subject token by
// keeping only the text after the last ", ". Captions without that separator
// are returned unchanged.
func WithoutToken(caption string) string {
	if i := strings.LastIndex(caption, ", "); i >= 0 {
		return caption[i+len(", "):]
	}
	return caption
}

// Collect walks root and returns the cleaned names of the regular files that
// sit directly inside every directory named target. The root itself is not
// considered a target even when its name matches. Directories are visited
// in lexical order, so the pool order is stable across runs.
func Collect(root, target string) ([]string, error) {
	if strings.TrimSpace(target) == "" {
		return nil, errors.New("target folder name is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}
	var pool []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root || d.Name() != target {
			return nil
		}
		names, err := listFiles(path)
		if err != nil {
			return err
		}
		for _, n := range names {
			pool = append(pool, Clean(n))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return pool, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Build runs the full pipeline: collect, transform, sample, optionally
// duplicate without token, and wrap every caption in a prompt test record.
// Blank captions, such as the one from "_0001.png", never enter the pool,
// and a blank derived caption is not appended.
func Build(opts Options) ([]prompttest.Record, error) {
	pool, err := Collect(opts.Root, opts.Target)
	if err != nil {
		return nil, err
	}
	pool = dropBlank(pool)
	if strings.TrimSpace(opts.Transform) != "" {
		tr, err := NewTransform(opts.Transform, opts.TransformTimeout)
		if err != nil {
			return nil, err
		}
		if pool, err = tr.Apply(pool); err != nil {
			return nil, err
		}
	}
	captions, err := Sample(pool, opts.Samples, opts.SampleSeed)
	if err != nil {
		return nil, err
	}
	if opts.Duplicate {
		derived := make([]string, 0, len(captions))
		for _, c := range captions {
			if d := WithoutToken(c); strings.TrimSpace(d) != "" {
				derived = append(derived, d)
			}
		}
		captions = append(captions, derived...)
	}
	records := make([]prompttest.Record, 0, len(captions))
	for _, c := range captions {
		records = append(records, prompttest.Record{
			Prompt:   c,
			PromptSR: "",
			ZAxis:    prompttest.AxisNothing,
			Seed:     opts.Seed,
		})
	}
	return records, nil
}

func dropBlank(captions []string) []string {
	out := captions[:0]
	for _, c := range captions {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
