package prompttest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// TestWriteRead_RoundTrip writes a list and reads it back unchanged and in order.
func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tests.json")
	want := []Record{
		{Prompt: "a photo of sks dog", PromptSR: "", ZAxis: AxisNothing, Seed: 555},
		{Prompt: "A photo of Morgan Freeman", PromptSR: "Morgan Freeman, Tom Cruise", ZAxis: AxisPromptSR, Seed: -1},
		{Prompt: "castle, oil painting", PromptSR: "Euler a, DDIM", ZAxis: AxisSampler, Seed: 42},
	}
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path, 0)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got, want)
	}
}

func TestWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, "x.json"), []Record{{Prompt: "p", Seed: 1}}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "x.json" {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriteFile_RejectsInvalidRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := WriteFile(path, []Record{{Prompt: " "}}); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should not be created on validation failure")
	}
}

// TestAppendFile_CreatesSingleRecordList covers appending to a missing file.
func TestAppendFile_CreatesSingleRecordList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt_sr_tests.json")
	rec := Record{Prompt: "A photo of a cartoon character", PromptSR: "cartoon character, monkey, dog", ZAxis: AxisPromptSR, Seed: 555}
	if _, err := AppendFile(path, rec, DefaultSeed); err != nil {
		t.Fatalf("AppendFile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d records; want 1", len(list))
	}
	for _, k := range []string{"prompt", "prompt_sr", "seed", "z_axis_type"} {
		if _, ok := list[0][k]; !ok {
			t.Fatalf("missing key %q in %v", k, list[0])
		}
	}
	if len(list[0]) != 4 {
		t.Fatalf("record has %d keys; want 4", len(list[0]))
	}
	if list[0]["z_axis_type"] != "Prompt S/R" {
		t.Fatalf("z_axis_type=%v", list[0]["z_axis_type"])
	}
}

func TestAppendFile_PreservesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tests.json")
	first := Record{Prompt: "one", ZAxis: AxisPromptSR, Seed: 1}
	second := Record{Prompt: "two", PromptSR: "a, b", ZAxis: AxisPromptSR, Seed: 2}
	if _, err := AppendFile(path, first, DefaultSeed); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	got, err := AppendFile(path, second, DefaultSeed)
	if err != nil {
		t.Fatalf("append 2: %v", err)
	}
	if !reflect.DeepEqual(got, []Record{first, second}) {
		t.Fatalf("got %+v", got)
	}
}

// TestAppendFile_CorruptFileStartsFresh mirrors the append tool: an unparsable
// list is replaced rather than failing the append.
func TestAppendFile_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tests.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	got, err := AppendFile(path, Record{Prompt: "fresh", ZAxis: AxisPromptSR, Seed: 3}, DefaultSeed)
	if err != nil {
		t.Fatalf("AppendFile: %v", err)
	}
	if len(got) != 1 || got[0].Prompt != "fresh" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecode_Defaults(t *testing.T) {
	got, err := Decode(strings.NewReader(`[{"prompt":"only prompt"}]`), 777)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []Record{{Prompt: "only prompt", ZAxis: AxisNothing, Seed: 777}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v; want %+v", got, want)
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown axis":   `[{"prompt":"p","z_axis_type":"Colour"}]`,
		"unknown key":    `[{"prompt":"p","negative":"x"}]`,
		"empty prompt":   `[{"prompt":"","seed":1}]`,
		"object":         `{"prompt":"p"}`,
		"trailing data":  `[] []`,
		"seed not int":   `[{"prompt":"p","seed":"555"}]`,
		"truncated list": `[{"prompt":"p"}`,
	}
	for name, in := range cases {
		if _, err := Decode(strings.NewReader(in), DefaultSeed); err == nil {
			t.Errorf("%s: expected error for %s", name, in)
		}
	}
	if _, err := Decode(strings.NewReader(" \n"), DefaultSeed); !errors.Is(err, ErrEmptyList) {
		t.Fatalf("blank input err=%v; want ErrEmptyList", err)
	}
	if _, err := Decode(strings.NewReader(`[{"prompt":"p","z_axis_type":"Colour"}]`), 0); !errors.Is(err, ErrUnknownAxis) {
		t.Fatalf("unknown axis err=%v; want ErrUnknownAxis", err)
	}
}
