// Package report renders grid runs as a PDF contact sheet, one page per
// grid with the sidecar text printed beneath the image.
package report

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/sdutils/internal/fsutil"
	"github.com/hyperifyio/sdutils/internal/grid"
)

const (
	margin      = 10.0 // mm
	textAreaMM  = 70.0
	lineHeight  = 4.0
	defaultEdge = 2048
	jpegQuality = 85
)

// Page is one grid of the report.
type Page struct {
	Title     string
	ImagePath string
	Text      string
}

// Options tune rendering. Zero values select defaults.
type Options struct {
	// MaxEdge caps the longest image edge in pixels before embedding.
	MaxEdge int
}

// PagesFromSummary builds one page per saved grid, reading each sidecar.
func PagesFromSummary(sum grid.Summary) ([]Page, error) {
	pages := make([]Page, 0, len(sum.Entries))
	for _, e := range sum.Entries {
		txt, err := os.ReadFile(e.TextPath)
		if err != nil {
			return nil, fmt.Errorf("read sidecar: %w", err)
		}
		pages = append(pages, Page{
			Title:     fmt.Sprintf("Grid %04d  seed %d  %s", e.Seq, e.Record.Seed, e.Record.ZAxis),
			ImagePath: e.ImagePath,
			Text:      string(txt),
		})
	}
	return pages, nil
}

// Write renders pages into a PDF at path.
func Write(path string, pages []Page, opts Options) error {
	if len(pages) == 0 {
		return fmt.Errorf("report: no pages")
	}
	maxEdge := opts.MaxEdge
	if maxEdge <= 0 {
		maxEdge = defaultEdge
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	boxW := pageW - 2*margin
	boxH := pageH - 2*margin - textAreaMM

	for i, p := range pages {
		img, err := imaging.Open(p.ImagePath)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		jpg, w, h, err := encodeForPage(img, maxEdge)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		name := "grid" + strconv.Itoa(i+1)
		imgOpts := gofpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(jpg))

		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(boxW, 6, tr(p.Title), "", 1, "L", false, 0, "")

		dw, dh := fitBox(float64(w), float64(h), boxW, boxH-8)
		x := margin + (boxW-dw)/2
		pdf.ImageOptions(name, x, margin+8, dw, dh, false, imgOpts, 0, "")

		pdf.SetXY(margin, margin+8+dh+4)
		pdf.SetFont("Courier", "", 8)
		pdf.MultiCell(boxW, lineHeight, tr(p.Text), "", "L", false)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// encodeForPage downsizes img to fit maxEdge and returns JPEG bytes with
// the final pixel size.
func encodeForPage(img image.Image, maxEdge int) ([]byte, int, int, error) {
	b := img.Bounds()
	if b.Dx() > maxEdge || b.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
		b = img.Bounds()
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}

// fitBox scales w x h to fit inside boxW x boxH keeping the aspect ratio.
func fitBox(w, h, boxW, boxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := boxW / w
	if s := boxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
