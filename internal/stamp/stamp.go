// Package stamp overlays an identifying header and a rotated watermark onto
// every page of an existing PDF.
//
// The overlays are drawn into a separate transparent layer document whose
// pages mirror the source page dimensions; pdfcpu then multistamps layer
// page n onto source page n. Latin text is drawn natively with core-font
// metrics; Devanagari text is rasterized first because the core fonts
// cannot shape it.
package stamp

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math"
	"os"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"go-paperstamp/internal/raster"
	"go-paperstamp/internal/script"
)

var pdfMagic = []byte("%PDF-")

// watermarkAngle is the diagonal rotation applied to the watermark. 45
// degrees reads diagonally across typical portrait pages without excessive
// clipping.
const watermarkAngle = math.Pi / 4

// Header layout constants, in points.
const (
	headerSideMargin = 40 // per side; fit width is page width minus both
	headerBaseline   = 30 // baseline distance from the top edge
	headerImageTop   = 14 // raster header top inset
	headerStartSize  = 18
	headerMinSize    = 8
	headerStep       = 1
)

// Watermark layout constants.
const (
	watermarkWidthFrac = 0.75 // of page width
	watermarkStartSize = 180
	watermarkMinSize   = 30
	watermarkStep      = 5
	watermarkGray      = 115
	watermarkAlpha     = 0.25
)

// headerImageMaxFrac limits how much page width a raster header may occupy.
const headerImageMaxFrac = 0.92

// DocumentLoadError is fatal: the source bytes are empty, not a PDF, or
// unparsable. Nothing was stamped.
type DocumentLoadError struct {
	Reason string
	Err    error
}

func (e *DocumentLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stamp: load document: %s: %v", e.Reason, e.Err)
	}
	return "stamp: load document: " + e.Reason
}

func (e *DocumentLoadError) Unwrap() error { return e.Err }

// DocumentSaveError is fatal: the source loaded but the stamped document
// could not be produced.
type DocumentSaveError struct {
	Err error
}

func (e *DocumentSaveError) Error() string {
	return fmt.Sprintf("stamp: save document: %v", e.Err)
}

func (e *DocumentSaveError) Unwrap() error { return e.Err }

// Request carries one stamping operation. HeaderText and WatermarkText are
// assembled upstream and expected non-empty; the stamper does not enforce
// business rules. HeaderEveryPage repeats the header on all pages instead of
// page 1 only.
type Request struct {
	SourceBytes     []byte
	HeaderText      string
	WatermarkText   string
	HeaderEveryPage bool
}

// Stamped is the result of one stamping operation.
type Stamped struct {
	Bytes []byte
	Pages int
}

// Stamper applies headers and watermarks. A nil raster face disables the
// Devanagari path; affected overlays are skipped with a log line and the
// document is still produced. Stampers hold no per-call state and are safe
// for concurrent use.
type Stamper struct {
	face *raster.Face
}

func New(face *raster.Face) *Stamper {
	return &Stamper{face: face}
}

// Stamp loads the source, draws a watermark on every page and the header on
// page 1 (or all pages), and returns the serialized result. Page count and
// per-page dimensions are preserved; pages may differ in size.
func (s *Stamper) Stamp(ctx context.Context, req Request) (*Stamped, error) {
	if len(req.SourceBytes) == 0 {
		return nil, &DocumentLoadError{Reason: "empty document"}
	}
	if !bytes.HasPrefix(req.SourceBytes, pdfMagic) {
		return nil, &DocumentLoadError{Reason: "missing %PDF- signature"}
	}

	conf := model.NewDefaultConfiguration()
	dctx, err := pdfapi.ReadContext(bytes.NewReader(req.SourceBytes), conf)
	if err != nil {
		return nil, &DocumentLoadError{Reason: "parse failed", Err: err}
	}
	if err := pdfapi.ValidateContext(dctx); err != nil {
		return nil, &DocumentLoadError{Reason: "validation failed", Err: err}
	}
	dims, err := dctx.PageDims()
	if err != nil {
		return nil, &DocumentLoadError{Reason: "page geometry unavailable", Err: err}
	}

	l := newLayer()
	for i, d := range dims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := l.addPage(d.Width, d.Height)
		if i == 0 || req.HeaderEveryPage {
			s.drawHeader(p, req.HeaderText)
		}
		s.drawWatermark(p, req.WatermarkText)
	}
	layerBytes, err := l.bytes()
	if err != nil {
		return nil, &DocumentSaveError{Err: err}
	}

	out, err := applyLayer(req.SourceBytes, layerBytes, conf)
	if err != nil {
		return nil, &DocumentSaveError{Err: err}
	}
	return &Stamped{Bytes: out, Pages: dctx.PageCount}, nil
}

// applyLayer multistamps the overlay document onto the source. pdfcpu reads
// PDF stamps from a file path, so the layer goes through a temp file.
func applyLayer(src, layerBytes []byte, conf *model.Configuration) ([]byte, error) {
	tmp, err := os.CreateTemp("", "stamp-layer-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create layer temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(layerBytes); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write layer temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close layer temp file: %w", err)
	}

	wm, err := pdfcpu.ParsePDFWatermarkDetails(tmp.Name(), "pos:full, rot:0, op:1, scale:1 abs", true, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse layer watermark: %w", err)
	}
	// Source page 0 selects the matching layer page for each stamped page.
	wm.PdfPageNrSrc = 0

	var out bytes.Buffer
	if err := pdfapi.AddWatermarks(bytes.NewReader(src), &out, nil, wm, conf); err != nil {
		return nil, fmt.Errorf("apply layer: %w", err)
	}
	return out.Bytes(), nil
}

// drawHeader stamps the identifying line near the top edge, horizontally
// centered, solid black. Devanagari goes through the rasterizer; everything
// else is native text sized by the fitter.
func (s *Stamper) drawHeader(p Page, text string) {
	w, _ := p.Size()
	if script.ContainsDevanagari(text) {
		img, err := s.face.Rasterize(text, raster.HeaderPreset())
		if err != nil {
			log.Printf("stamp: header overlay skipped: %v", err)
			return
		}
		scale := math.Min(w*headerImageMaxFrac/float64(img.Width), 0.7)
		dw := float64(img.Width) * scale
		dh := float64(img.Height) * scale
		p.DrawImage(img.PNG, (w-dw)/2, headerImageTop, dw, dh)
		return
	}

	maxWidth := w - 2*headerSideMargin
	size := FitSize(text, maxWidth, headerStartSize, headerMinSize, headerStep, p.MeasureText)
	p.SetTextStyle(TextStyle{Gray: 0, Alpha: 1})
	tw := p.MeasureText(text, size)
	p.DrawText(text, (w-tw)/2, headerBaseline, size)
}

// drawWatermark stamps the institution mark rotated about the page center,
// translucent gray, sized to a fraction of the page width.
func (s *Stamper) drawWatermark(p Page, text string) {
	w, _ := p.Size()
	if script.ContainsDevanagari(text) {
		img, err := s.face.Rasterize(text, raster.WatermarkPreset())
		if err != nil {
			log.Printf("stamp: watermark overlay skipped: %v", err)
			return
		}
		dw := w * watermarkWidthFrac
		dh := float64(img.Height) * dw / float64(img.Width)
		WithCenteredRotation(p, watermarkAngle, func() {
			p.DrawImage(img.PNG, -dw/2, -dh/2, dw, dh)
		})
		return
	}

	size := FitSize(text, w*watermarkWidthFrac, watermarkStartSize, watermarkMinSize, watermarkStep, p.MeasureText)
	tw := p.MeasureText(text, size)
	WithCenteredRotation(p, watermarkAngle, func() {
		p.SetTextStyle(TextStyle{Gray: watermarkGray, Alpha: watermarkAlpha})
		p.DrawText(text, -tw/2, size/2, size)
		p.SetTextStyle(TextStyle{Gray: 0, Alpha: 1})
	})
}
