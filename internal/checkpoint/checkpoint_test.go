package checkpoint

import (
	"reflect"
	"testing"

	"github.com/hyperifyio/sdutils/internal/testutil"
)

// TestResolve_BaselineFirstThenByStep is the documented ordering example.
func TestResolve_BaselineFirstThenByStep(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(), "model_gs100.ckpt", "model_gs5.ckpt", "model_gs20.ckpt")
	names, err := Resolve(dir, "SDv1-5.ckpt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := Join(names)
	want := "SDv1-5.ckpt,model_gs5.ckpt,model_gs20.ckpt,model_gs100.ckpt"
	if got != want {
		t.Fatalf("got %q; want %q", got, want)
	}
}

// TestResolve_BaselinePinnedRegardlessOfStep places a high-step baseline first.
func TestResolve_BaselinePinnedRegardlessOfStep(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(), "run_gs10.ckpt", "run_gs9000.ckpt", "run_gs300.ckpt")
	names, err := Resolve(dir, "run_gs9000.ckpt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"run_gs9000.ckpt", "run_gs10.ckpt", "run_gs300.ckpt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %q; want %q", names, want)
	}
}

func TestScan_FiltersAndStableTies(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(),
		"b_gs50.ckpt",
		"a_gs50.ckpt",
		"c_gs7.ckpt",
		"no_step_gsx.ckpt",
		"model_gs10.safetensors",
		"notes.txt",
		"sub/d_gs1.ckpt",
	)
	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []Checkpoint{{"c_gs7.ckpt", 7}, {"a_gs50.ckpt", 50}, {"b_gs50.ckpt", 50}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v; want %+v", got, want)
	}
}

func TestResolve_NoBaseline(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(), "x_gs2.ckpt", "x_gs1.ckpt")
	names, err := Resolve(dir, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if Join(names) != "x_gs1.ckpt,x_gs2.ckpt" {
		t.Fatalf("got %q", Join(names))
	}
}

func TestResolve_MissingDir(t *testing.T) {
	if _, err := Resolve(t.TempDir()+"/nope", "SDv1-5.ckpt"); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestStep(t *testing.T) {
	if s, ok := Step("last-gs12345-e2.ckpt"); !ok || s != 12345 {
		t.Fatalf("Step = %d, %v", s, ok)
	}
	if _, ok := Step("SDv1-5.ckpt"); ok {
		t.Fatalf("baseline without step reported a step")
	}
}
