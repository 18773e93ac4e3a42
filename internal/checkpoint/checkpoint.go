// Package checkpoint discovers model checkpoints saved during training and
// orders them by the global step embedded in their filenames.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Pattern is the glob a checkpoint filename must match to be considered.
const Pattern = "*gs*.ckpt"

var stepRe = regexp.MustCompile(`gs(\d+)`)

// Checkpoint is a discovered checkpoint file.
type Checkpoint struct {
	Name string // base name, as the WebUI expects it on the plot axis
	Step int64
}

// Step extracts the global step from a filename such as "model_gs1500.ckpt".
// ok is false when the name carries no "gs<digits>" token.
func Step(name string) (step int64, ok bool) {
	m := stepRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Scan lists dir for files matching Pattern and returns them sorted by
// ascending step. Ties keep lexical filename order. Files that match the
// glob but carry no step are skipped.
func Scan(dir string) ([]Checkpoint, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint dir: %w", err)
	}
	var out []Checkpoint
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ok, _ := filepath.Match(Pattern, name); !ok {
			continue
		}
		step, ok := Step(name)
		if !ok {
			continue
		}
		out = append(out, Checkpoint{Name: name, Step: step})
	}
	// ReadDir returns entries sorted by name, so a stable sort keeps ties lexical
	sort.SliceStable(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out, nil
}

// Resolve scans dir and returns checkpoint names in plot order: the baseline
// first when given, then the scanned checkpoints by ascending step. The
// baseline is never repeated even when it is also found in dir.
func Resolve(dir, baseline string) ([]string, error) {
	found, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	baseline = strings.TrimSpace(baseline)
	names := make([]string, 0, len(found)+1)
	if baseline != "" {
		names = append(names, baseline)
	}
	for _, c := range found {
		if c.Name == baseline {
			continue
		}
		names = append(names, c.Name)
	}
	return names, nil
}

// Join renders names as the comma separated value list of a plot axis.
func Join(names []string) string {
	return strings.Join(names, ",")
}
