package grid

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hyperifyio/sdutils/internal/prompttest"
	"github.com/hyperifyio/sdutils/internal/webui"
)

// ScriptName is the WebUI script that composes the grid.
const ScriptName = "X/Y/Z Plot"

// maxPromptNameBytes bounds the prompt part of output file names.
const maxPromptNameBytes = 120

// Params are the generation settings shared by every request in a run.
type Params struct {
	Sampler  string
	Steps    int
	CFGScale float64
	Width    int
	Height   int
}

// BuildRequest maps one record onto a txt2img call driving the X/Y/Z Plot
// script: seeds on X, checkpoints on Y and the record's own axis on Z.
func BuildRequest(rec prompttest.Record, checkpoints string, p Params) webui.Txt2ImgRequest {
	return webui.Txt2ImgRequest{
		Prompt:      rec.Prompt,
		Seed:        rec.Seed,
		SamplerName: p.Sampler,
		Steps:       p.Steps,
		CFGScale:    p.CFGScale,
		Width:       p.Width,
		Height:      p.Height,
		BatchSize:   1,
		NIter:       1,
		ScriptName:  ScriptName,
		ScriptArgs: []any{
			prompttest.AxisSeed.Index(),
			strconv.Itoa(rec.Seed),
			prompttest.AxisCheckpointName.Index(),
			checkpoints,
			rec.ZAxis.Index(),
			rec.PromptSR,
			true,  // draw legend
			false, // include lone images
			false, // include sub grids
			false, // no fixed seeds
			0,     // margin size
		},
		SendImages: true,
	}
}

// Metadata renders the sidecar text stored next to each grid image.
func Metadata(rec prompttest.Record, checkpoints string, p Params) string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "Prompt: %s\n", rec.Prompt)
	fmt.Fprintf(&b, "Steps: %d\n", p.Steps)
	fmt.Fprintf(&b, "Sampler: %s\n", p.Sampler)
	fmt.Fprintf(&b, "CFG scale: %s\n", formatCFG(p.CFGScale))
	b.WriteString("Script: X/Y/Z plot\n")
	b.WriteString("X Type: Seed\n")
	fmt.Fprintf(&b, "X Values: %d\n", rec.Seed)
	fmt.Fprintf(&b, "Fixed X Values: %d\n", rec.Seed)
	b.WriteString("Y Type: Checkpoint name\n")
	fmt.Fprintf(&b, "Y Values: %s\n", checkpoints)
	fmt.Fprintf(&b, "Z Type: %s\n", rec.ZAxis)
	fmt.Fprintf(&b, "Z Values: \"%s\"\n", rec.PromptSR)
	return b.String()
}

// BaseName returns the extension-less file name for grid number seq.
// The resolution component is included when withResolution is set.
func BaseName(seq int, rec prompttest.Record, p Params, withResolution bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "xyz_grid-%04d-%d", seq, rec.Seed)
	if withResolution {
		fmt.Fprintf(&b, "-%dx%d", p.Width, p.Height)
	}
	b.WriteString("-")
	b.WriteString(sanitizePrompt(rec.Prompt))
	return b.String()
}

// sanitizePrompt makes prompt text safe as a single path component.
func sanitizePrompt(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, s)
	if len(s) <= maxPromptNameBytes {
		return s
	}
	cut := maxPromptNameBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// formatCFG prints whole numbers with one decimal, e.g. "7.0".
func formatCFG(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// PlannedGrid is one request of a dry run.
type PlannedGrid struct {
	Seq      int                  `json:"seq"`
	BaseName string               `json:"base_name"`
	Request  webui.Txt2ImgRequest `json:"request"`
}

// Plan lists the requests Run would send, without side effects.
func Plan(records []prompttest.Record, checkpoints string, p Params, withResolution bool) []PlannedGrid {
	out := make([]PlannedGrid, 0, len(records))
	for i, rec := range records {
		out = append(out, PlannedGrid{
			Seq:      i + 1,
			BaseName: BaseName(i+1, rec, p, withResolution),
			Request:  BuildRequest(rec, checkpoints, p),
		})
	}
	return out
}
