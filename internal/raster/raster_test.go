package raster

import (
	"bytes"
	"image/png"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
)

func testFace(t *testing.T) *Face {
	t.Helper()
	f, err := NewFace(gobold.TTF)
	if err != nil {
		t.Fatalf("NewFace(gobold): %v", err)
	}
	return f
}

func TestRasterizeProducesDecodablePNG(t *testing.T) {
	f := testFace(t)
	img, err := f.Rasterize("ABC College", HeaderPreset())
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != img.Width || b.Dy() != img.Height {
		t.Errorf("decoded size %dx%d, reported %dx%d", b.Dx(), b.Dy(), img.Width, img.Height)
	}
	if img.Height != HeaderPreset().Height {
		t.Errorf("height = %d, want preset height %d", img.Height, HeaderPreset().Height)
	}

	// The surface must not be blank.
	opaque := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := decoded.At(x, y).RGBA(); a > 0 {
				opaque++
			}
		}
	}
	if opaque == 0 {
		t.Error("rasterized image is fully transparent")
	}
}

func TestRasterizeShrinksLongText(t *testing.T) {
	f := testFace(t)
	p := HeaderPreset()

	short, err := f.Rasterize("AB", p)
	if err != nil {
		t.Fatalf("Rasterize short: %v", err)
	}
	long, err := f.Rasterize("An Extraordinarily Long Institution Name For Shrinking Way Down Past The Ceiling", p)
	if err != nil {
		t.Fatalf("Rasterize long: %v", err)
	}
	if short.FontSize != p.StartSize {
		t.Errorf("short text size = %v, want start size %v", short.FontSize, p.StartSize)
	}
	if long.FontSize >= short.FontSize {
		t.Errorf("long text size %v not smaller than short text size %v", long.FontSize, short.FontSize)
	}
	if long.FontSize < p.MinSize {
		t.Errorf("size %v fell below floor %v", long.FontSize, p.MinSize)
	}
}

func TestRasterizeDeterministic(t *testing.T) {
	f := testFace(t)
	a, err := f.Rasterize("Shivaji College", WatermarkPreset())
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	b, err := f.Rasterize("Shivaji College", WatermarkPreset())
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if a.FontSize != b.FontSize {
		t.Errorf("font size not deterministic: %v vs %v", a.FontSize, b.FontSize)
	}
	if !bytes.Equal(a.PNG, b.PNG) {
		t.Error("png bytes not deterministic")
	}
}

func TestRasterizeSurfaceWidthClamped(t *testing.T) {
	f := testFace(t)
	p := WatermarkPreset()

	small, err := f.Rasterize("X", p)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if small.Width != p.MinWidth {
		t.Errorf("one-rune surface width = %d, want clamp to %d", small.Width, p.MinWidth)
	}

	big, err := f.Rasterize("A Very Long Name Meant To Hit The Upper Clamp Bound", p)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if big.Width != p.MaxWidth {
		t.Errorf("long text surface width = %d, want clamp to %d", big.Width, p.MaxWidth)
	}
}

func TestRasterizeErrors(t *testing.T) {
	t.Run("nil face", func(t *testing.T) {
		var f *Face
		if _, err := f.Rasterize("x", HeaderPreset()); err != ErrNoFace {
			t.Errorf("err = %v, want ErrNoFace", err)
		}
	})
	t.Run("empty text", func(t *testing.T) {
		f := testFace(t)
		if _, err := f.Rasterize("", HeaderPreset()); err == nil {
			t.Error("expected error for empty text")
		}
	})
	t.Run("garbage font", func(t *testing.T) {
		if _, err := NewFace([]byte("not a font")); err == nil {
			t.Error("expected error for invalid font bytes")
		}
	})
}
