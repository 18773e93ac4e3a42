package webui

import (
	"path/filepath"
	"strings"
)

// HasCheckpoint reports whether name (a checkpoint file name as used on the
// plot axis) refers to one of models. The WebUI titles models as
// "<file> [<hash>]", so titles, model names and file base names are all
// accepted.
func HasCheckpoint(models []Model, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, m := range models {
		switch {
		case m.Title == name,
			strings.HasPrefix(m.Title, name+" ["),
			m.ModelName == name,
			m.ModelName == stem,
			m.Filename != "" && filepath.Base(filepath.ToSlash(m.Filename)) == name:
			return true
		}
	}
	return false
}
