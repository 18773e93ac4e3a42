package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates empty files under root. Paths are slash-separated and
// relative to root; parent directories are created as needed. It returns
// root for chaining.
func WriteTree(t *testing.T, root string, files ...string) string {
	t.Helper()
	for _, rel := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return root
}

// CaptionTree builds a dataset layout with one captioner folder per subject:
//
//	<root>/<subject>/<target>/<caption>_<nnnn>.txt
//
// and returns root. Every caption gets a distinct numeric suffix so the
// cleaned names equal the captions.
func CaptionTree(t *testing.T, target string, subjects map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	n := 0
	for subject, captions := range subjects {
		for _, c := range captions {
			n++
			name := filepath.ToSlash(filepath.Join(subject, target, fmt.Sprintf("%s_%04d.txt", c, n)))
			WriteTree(t, root, name)
		}
	}
	return root
}

