package prompttest

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hyperifyio/sdutils/internal/fsutil"
)

// ReadFile loads the record list stored at path.
func ReadFile(path string, defaultSeed int) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := Decode(bytes.NewReader(data), defaultSeed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteFile replaces the file at path with records. The new content is
// written to a temporary sibling, fsynced and renamed over the target so a
// crash never leaves a truncated list behind.
func WriteFile(path string, records []Record) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	data, err := marshalRecords(records)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0o644)
}

// AppendFile adds rec to the list at path and returns the resulting list.
// A missing or unreadable list is treated as empty, so the first append
// creates the file.
func AppendFile(path string, rec Record, defaultSeed int) ([]Record, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	existing, err := ReadFile(path, defaultSeed)
	if err != nil {
		existing = nil
	}
	records := append(existing, rec)
	if err := WriteFile(path, records); err != nil {
		return nil, err
	}
	return records, nil
}
