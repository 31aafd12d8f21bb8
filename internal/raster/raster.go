// Package raster renders text to a PNG image for scripts the PDF core fonts
// cannot shape.
//
// The PDF standard font set has no Devanagari coverage, so header stamps and
// watermarks in Marathi are shaped with a real font, rasterized off-screen
// and embedded into the page as an image instead of native text. Shaping is
// done with go-text/typesetting (HarfBuzz port), glyph outlines come from
// the same font file via x/image/font/sfnt, and fills are rendered with
// x/image/vector.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"go-paperstamp/internal/script"
)

// ErrNoFace is returned when rasterization is requested but no font face has
// been loaded. Callers treat this as a recoverable, skip-the-overlay
// condition.
var ErrNoFace = errors.New("raster: no font face loaded")

// Face is a font loaded for shaping and outline extraction. A Face is
// immutable after creation and safe for concurrent use.
type Face struct {
	shape    *gofont.Face
	outlines *sfnt.Font
}

// LoadFace reads a TTF file from disk. The font must cover the scripts it
// will be asked to render; for this service that means Devanagari.
func LoadFace(path string) (*Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("raster: read font: %w", err)
	}
	return NewFace(data)
}

// NewFace parses TTF bytes into a Face.
func NewFace(ttf []byte) (*Face, error) {
	shape, err := gofont.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("raster: parse font: %w", err)
	}
	outlines, err := sfnt.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("raster: parse font outlines: %w", err)
	}
	return &Face{shape: shape, outlines: outlines}, nil
}

// Preset controls surface sizing and the shrink-to-fit loop for one kind of
// overlay. Surface width grows with text length between MinWidth and
// MaxWidth; height is fixed because the drawn line is always a single line.
type Preset struct {
	WidthPerRune int
	MinWidth     int
	MaxWidth     int
	Height       int

	StartSize float64
	MinSize   float64
	Step      float64

	Color color.NRGBA
}

// HeaderPreset sizes a solid black header stamp. The fine 2pt step keeps
// successive header sizes from jumping visibly.
func HeaderPreset() Preset {
	return Preset{
		WidthPerRune: 90,
		MinWidth:     600,
		MaxWidth:     1800,
		Height:       140,
		StartSize:    55,
		MinSize:      18,
		Step:         2,
		Color:        color.NRGBA{A: 255},
	}
}

// WatermarkPreset sizes a large translucent gray watermark. The coarse 5pt
// step is fine for text this large and converges faster.
func WatermarkPreset() Preset {
	return Preset{
		WidthPerRune: 150,
		MinWidth:     800,
		MaxWidth:     2000,
		Height:       700,
		StartSize:    220,
		MinSize:      50,
		Step:         5,
		Color:        color.NRGBA{R: 120, G: 120, B: 120, A: 64},
	}
}

// Image is a rendered text bitmap. FontSize is the size the shrink-to-fit
// loop settled on, exposed for tests and logging.
type Image struct {
	PNG      []byte
	Width    int
	Height   int
	FontSize float64
}

// fitLimit is the fraction of the surface width the shaped text may occupy.
const fitLimit = 0.90

// Rasterize shapes text at the largest size from the preset that fits the
// surface, draws it centered, and returns the PNG-encoded result. Any font
// or shaping failure is returned as an error; the caller decides whether to
// skip the overlay.
func (f *Face) Rasterize(text string, p Preset) (*Image, error) {
	if f == nil || f.shape == nil || f.outlines == nil {
		return nil, ErrNoFace
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, errors.New("raster: empty text")
	}

	w := len(runes) * p.WidthPerRune
	if w < p.MinWidth {
		w = p.MinWidth
	}
	if w > p.MaxWidth {
		w = p.MaxWidth
	}
	h := p.Height

	size, out := f.fit(runes, float64(w)*fitLimit, p)

	asc := fromFixed(out.LineBounds.Ascent)
	desc := fromFixed(out.LineBounds.Descent) // negative below the baseline
	baseline := float64(h)/2 + (asc+desc)/2
	penX := (float64(w) - fromFixed(out.Advance)) / 2

	z := vector.NewRasterizer(w, h)
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(size * 64)
	for _, g := range out.Glyphs {
		segs, err := f.outlines.LoadGlyph(&buf, sfnt.GlyphIndex(g.GlyphID), ppem, nil)
		if err != nil {
			return nil, fmt.Errorf("raster: load glyph %d: %w", g.GlyphID, err)
		}
		appendSegments(z, segs, penX+fromFixed(g.XOffset), baseline-fromFixed(g.YOffset))
		penX += fromFixed(g.XAdvance)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	z.Draw(img, img.Bounds(), image.NewUniform(p.Color), image.Point{})

	var enc bytes.Buffer
	if err := png.Encode(&enc, img); err != nil {
		return nil, fmt.Errorf("raster: encode png: %w", err)
	}
	return &Image{PNG: enc.Bytes(), Width: w, Height: h, FontSize: size}, nil
}

// fit runs the shrink-to-fit loop: starting at the preset ceiling, decrement
// by the preset step until the shaped advance fits maxWidth or the floor is
// reached. Returns the chosen size and the shaping output at that size.
func (f *Face) fit(runes []rune, maxWidth float64, p Preset) (float64, shaping.Output) {
	size := p.StartSize
	out := f.shapeAt(runes, size)
	for fromFixed(out.Advance) > maxWidth && size > p.MinSize {
		size -= p.Step
		if size < p.MinSize {
			size = p.MinSize
		}
		out = f.shapeAt(runes, size)
	}
	return size, out
}

func (f *Face) shapeAt(runes []rune, size float64) shaping.Output {
	scr := language.Latin
	if script.ContainsDevanagari(string(runes)) {
		scr = language.Devanagari
	}
	shaper := &shaping.HarfbuzzShaper{}
	return shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      f.shape,
		Size:      fixed.Int26_6(size * 64),
		Script:    scr,
		Language:  language.DefaultLanguage(),
	})
}

// appendSegments adds one glyph's outline to the rasterizer. sfnt segments
// are already scaled to the requested ppem with the y axis pointing down and
// contours already closed, so they only need translating to the pen
// position.
func appendSegments(z *vector.Rasterizer, segs sfnt.Segments, ox, oy float64) {
	fx := float32(ox)
	fy := float32(oy)
	for _, seg := range segs {
		a := seg.Args
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			z.MoveTo(fx+fp(a[0].X), fy+fp(a[0].Y))
		case sfnt.SegmentOpLineTo:
			z.LineTo(fx+fp(a[0].X), fy+fp(a[0].Y))
		case sfnt.SegmentOpQuadTo:
			z.QuadTo(fx+fp(a[0].X), fy+fp(a[0].Y), fx+fp(a[1].X), fy+fp(a[1].Y))
		case sfnt.SegmentOpCubeTo:
			z.CubeTo(fx+fp(a[0].X), fy+fp(a[0].Y), fx+fp(a[1].X), fy+fp(a[1].Y), fx+fp(a[2].X), fy+fp(a[2].Y))
		}
	}
}

func fp(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
