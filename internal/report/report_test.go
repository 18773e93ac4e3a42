package report

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/hyperifyio/sdutils/internal/grid"
	"github.com/hyperifyio/sdutils/internal/prompttest"
	"github.com/hyperifyio/sdutils/internal/testutil"
	"github.com/hyperifyio/sdutils/internal/webui"
)

func TestWrite_OnePagePerGrid(t *testing.T) {
	srv := testutil.NewFakeWebUI(t)
	srv.Image = testutil.PNG(t, 300, 120)
	sum, err := grid.Run(context.Background(), grid.Config{
		Checkpoints: "SDv1-5.ckpt,m_gs5.ckpt",
		OutputDir:   t.TempDir(),
		Timestamped: true,
		Params:      grid.Params{Sampler: "Euler a", Steps: 20, CFGScale: 7, Width: 512, Height: 512},
		Generator:   webui.NewClient(webui.Config{BaseURL: srv.URL}),
	}, []prompttest.Record{
		{Prompt: "café at night", Seed: 1},
		{Prompt: "lighthouse", PromptSR: "day,night", ZAxis: prompttest.AxisPromptSR, Seed: 2},
		{Prompt: "orchard", Seed: 3},
	})
	if err != nil {
		t.Fatalf("grid.Run: %v", err)
	}
	pages, err := PagesFromSummary(sum)
	if err != nil {
		t.Fatalf("PagesFromSummary: %v", err)
	}
	if pages[1].Title != "Grid 0002  seed 2  Prompt S/R" {
		t.Fatalf("title=%q", pages[1].Title)
	}

	out := filepath.Join(t.TempDir(), "report.pdf")
	if err := Write(out, pages, Options{MaxEdge: 100}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, r, err := pdf.Open(out)
	if err != nil {
		t.Fatalf("pdf.Open: %v", err)
	}
	defer func() { _ = f.Close() }()
	if n := r.NumPage(); n != 3 {
		t.Fatalf("pages=%d; want 3", n)
	}
}

func TestWrite_Errors(t *testing.T) {
	out := filepath.Join(t.TempDir(), "r.pdf")
	if err := Write(out, nil, Options{}); err == nil {
		t.Fatalf("expected error for no pages")
	}
	if err := Write(out, []Page{{ImagePath: filepath.Join(t.TempDir(), "missing.png")}}, Options{}); err == nil {
		t.Fatalf("expected error for missing image")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("report written despite errors")
	}
}

func TestFitBox(t *testing.T) {
	w, h := fitBox(1000, 500, 190, 200)
	if math.Abs(w-190) > 1e-9 || math.Abs(h-95) > 1e-9 {
		t.Fatalf("wide: %v x %v", w, h)
	}
	w, h = fitBox(500, 1000, 190, 100)
	if math.Abs(w-50) > 1e-9 || math.Abs(h-100) > 1e-9 {
		t.Fatalf("tall: %v x %v", w, h)
	}
}
