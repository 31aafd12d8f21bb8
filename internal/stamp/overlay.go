package stamp

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// layer is the transparent overlay document stamped onto the source. It has
// one page per source page, each with identical dimensions, so pdfcpu can
// map overlay page n onto source page n.
type layer struct {
	doc    *gofpdf.Fpdf
	tr     func(string) string
	imgSeq int
}

func newLayer() *layer {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	doc.SetFont("Helvetica", "B", 12)
	return &layer{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
}

// addPage appends an overlay page of the given dimensions in points.
func (l *layer) addPage(w, h float64) *layerPage {
	l.doc.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
	return &layerPage{l: l, w: w, h: h}
}

// bytes serializes the overlay document.
func (l *layer) bytes() ([]byte, error) {
	if l.doc.Err() {
		return nil, fmt.Errorf("stamp: overlay layer: %w", l.doc.Error())
	}
	var buf bytes.Buffer
	if err := l.doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("stamp: serialize overlay layer: %w", err)
	}
	return buf.Bytes(), nil
}

// layerPage adapts one gofpdf page to the Page interface. gofpdf composes
// transform operators between TransformBegin and TransformEnd, which gives
// the push/translate/rotate/pop semantics WithCenteredRotation needs.
type layerPage struct {
	l *layer
	w float64
	h float64
}

func (p *layerPage) Size() (float64, float64) { return p.w, p.h }

func (p *layerPage) PushState() { p.l.doc.TransformBegin() }
func (p *layerPage) PopState()  { p.l.doc.TransformEnd() }

func (p *layerPage) Translate(tx, ty float64) { p.l.doc.TransformTranslate(tx, ty) }

// Rotate rotates the frame about the current origin.
func (p *layerPage) Rotate(angleDeg float64) { p.l.doc.TransformRotate(angleDeg, 0, 0) }

func (p *layerPage) SetTextStyle(s TextStyle) {
	p.l.doc.SetTextColor(s.Gray, s.Gray, s.Gray)
	p.l.doc.SetAlpha(s.Alpha, "Normal")
}

func (p *layerPage) MeasureText(text string, size float64) float64 {
	p.l.doc.SetFontSize(size)
	return p.l.doc.GetStringWidth(p.l.tr(text))
}

func (p *layerPage) DrawText(text string, x, y, size float64) {
	p.l.doc.SetFontSize(size)
	p.l.doc.Text(x, y, p.l.tr(text))
}

func (p *layerPage) DrawImage(pngData []byte, x, y, w, h float64) {
	p.l.imgSeq++
	name := fmt.Sprintf("overlay-%d", p.l.imgSeq)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.l.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(pngData))
	p.l.doc.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}
