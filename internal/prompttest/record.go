package prompttest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultSeed is the seed the CLIs assign to new records unless told otherwise.
const DefaultSeed = 555

// ErrEmptyList is returned when a prompt-test file holds no data.
var ErrEmptyList = errors.New("empty prompt test list")

// Record is one prompt test: a prompt, an optional search/replace list that
// feeds the third plot axis, the kind of that axis, and the seed.
type Record struct {
	Prompt   string   `json:"prompt"`
	PromptSR string   `json:"prompt_sr"`
	ZAxis    AxisKind `json:"z_axis_type"`
	Seed     int      `json:"seed"`
}

// wireRecord mirrors Record with pointer fields so missing keys can be told
// apart from zero values.
type wireRecord struct {
	Prompt   *string   `json:"prompt"`
	PromptSR *string   `json:"prompt_sr"`
	ZAxis    *AxisKind `json:"z_axis_type"`
	Seed     *int      `json:"seed"`
}

// Validate returns nil when the record can be sent to the plot script.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return errors.New("prompt is required")
	}
	if !r.ZAxis.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAxis, int(r.ZAxis))
	}
	return nil
}

// Decode parses a JSON array of records. Keys other than the four record
// fields are rejected. Records without a seed get defaultSeed; a missing
// z_axis_type means AxisNothing and a missing prompt_sr means "".
func Decode(r io.Reader, defaultSeed int) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyList
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var wire []wireRecord
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("bad json: %w", err)
	}
	if dec.More() {
		return nil, errors.New("bad json: trailing data after list")
	}
	out := make([]Record, 0, len(wire))
	for i, w := range wire {
		rec := Record{Seed: defaultSeed}
		if w.Prompt != nil {
			rec.Prompt = *w.Prompt
		}
		if w.PromptSR != nil {
			rec.PromptSR = *w.PromptSR
		}
		if w.ZAxis != nil {
			rec.ZAxis = *w.ZAxis
		}
		if w.Seed != nil {
			rec.Seed = *w.Seed
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Encode writes records as an indented JSON array followed by a newline.
// A nil slice is written as an empty array.
func Encode(w io.Writer, records []Record) error {
	b, err := marshalRecords(records)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func marshalRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return append(b, '\n'), nil
}
