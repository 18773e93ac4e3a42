package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Build-time variables set via -ldflags; defaults are useful for dev builds.
var (
	Version   = "v0.0.0-dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// PrintVersion writes a concise single-line version string.
func PrintVersion(w io.Writer, tool string) {
	SafeFprintln(w, fmt.Sprintf("%s version %s (commit %s, built %s)", tool, Version, shortCommit(Commit), BuildDate))
}

func shortCommit(c string) string {
	c = strings.TrimSpace(c)
	if len(c) > 7 {
		return c[:7]
	}
	if c == "" {
		return "unknown"
	}
	return c
}

// HelpRequested reports whether a help flag appears before any "--".
func HelpRequested(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-h" || a == "--help" || a == "-help" {
			return true
		}
	}
	return false
}

// VersionRequested reports whether a version flag appears before any "--".
func VersionRequested(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "--version" || a == "-version" {
			return true
		}
	}
	return false
}

// SafeFprintln writes a line to w and intentionally ignores write errors.
func SafeFprintln(w io.Writer, a ...any) {
	if _, err := fmt.Fprintln(w, a...); err != nil {
		return
	}
}

// SafeFprintf writes formatted text to w and intentionally ignores write errors.
func SafeFprintf(w io.Writer, format string, a ...any) {
	if _, err := fmt.Fprintf(w, format, a...); err != nil {
		return
	}
}

// StderrJSON writes {"error": "..."} as a single line.
func StderrJSON(w io.Writer, err error) {
	b, mErr := json.Marshal(map[string]string{"error": err.Error()})
	if mErr != nil {
		SafeFprintln(w, `{"error":"internal error"}`)
		return
	}
	SafeFprintln(w, string(b))
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
