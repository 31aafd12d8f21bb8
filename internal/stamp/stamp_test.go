package stamp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/font/gofont/gobold"

	"go-paperstamp/internal/raster"
)

// makePDF builds a source document in memory; one entry in sizes per page.
func makePDF(t *testing.T, sizes ...[2]float64) []byte {
	t.Helper()
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont("Helvetica", "", 12)
	for _, s := range sizes {
		doc.AddPageFormat("P", gofpdf.SizeType{Wd: s[0], Ht: s[1]})
		doc.Text(50, 50, "page content")
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("build test pdf: %v", err)
	}
	return buf.Bytes()
}

// readBack parses stamped output the way a consumer would. Validation also
// populates the page tree, which PageCount and content extraction need.
func readBack(t *testing.T, pdf []byte) *model.Context {
	t.Helper()
	ctx, err := pdfapi.ReadContext(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("read stamped pdf: %v", err)
	}
	if err := pdfapi.ValidateContext(ctx); err != nil {
		t.Fatalf("validate stamped pdf: %v", err)
	}
	return ctx
}

func pageCount(t *testing.T, pdf []byte) int {
	t.Helper()
	return readBack(t, pdf).PageCount
}

// assertOverlayOnEveryPage checks that each page's content stream invokes
// the overlay form XObject, i.e. the stamp landed on every page and not
// just page 1.
func assertOverlayOnEveryPage(t *testing.T, pdf []byte) {
	t.Helper()
	ctx := readBack(t, pdf)
	for n := 1; n <= ctx.PageCount; n++ {
		r, err := pdfcpu.ExtractPageContent(ctx, n)
		if err != nil {
			t.Fatalf("extract page %d content: %v", n, err)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("read page %d content: %v", n, err)
		}
		if !strings.Contains(string(data), " Do") {
			t.Errorf("page %d carries no overlay invocation", n)
		}
	}
}

func testFace(t *testing.T) *raster.Face {
	t.Helper()
	f, err := raster.NewFace(gobold.TTF)
	if err != nil {
		t.Fatalf("load test face: %v", err)
	}
	return f
}

var a4 = [2]float64{595.28, 841.89}

func TestStampPreservesPages(t *testing.T) {
	src := makePDF(t, a4, a4, a4)
	s := New(testFace(t))

	res, err := s.Stamp(context.Background(), Request{
		SourceBytes:   src,
		HeaderText:    "ABC College | 10th | Mathematics | Unit Test 1 | QUESTION",
		WatermarkText: "ABC College",
	})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if res.Pages != 3 {
		t.Errorf("Pages = %d, want 3", res.Pages)
	}
	if got := pageCount(t, res.Bytes); got != 3 {
		t.Errorf("stamped page count = %d, want 3", got)
	}
	assertOverlayOnEveryPage(t, res.Bytes)
	if !bytes.HasPrefix(res.Bytes, []byte("%PDF-")) {
		t.Error("stamped output is not a PDF")
	}
	if len(res.Bytes) <= len(src) {
		t.Errorf("stamped output (%d bytes) not larger than source (%d bytes)", len(res.Bytes), len(src))
	}
}

func TestStampMixedPageSizes(t *testing.T) {
	src := makePDF(t, a4, [2]float64{500, 500})
	s := New(testFace(t))

	res, err := s.Stamp(context.Background(), Request{
		SourceBytes:   src,
		HeaderText:    "ABC College | 10th | Science | Prelim 1 | ANSWER",
		WatermarkText: "ABC College",
	})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if got := pageCount(t, res.Bytes); got != 2 {
		t.Errorf("stamped page count = %d, want 2", got)
	}
	assertOverlayOnEveryPage(t, res.Bytes)
}

func TestStampHeaderEveryPage(t *testing.T) {
	src := makePDF(t, a4, a4)
	s := New(testFace(t))

	once, err := s.Stamp(context.Background(), Request{
		SourceBytes:   src,
		HeaderText:    "ABC College | 12th | History | Term 1 | QUESTION",
		WatermarkText: "ABC College",
	})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	every, err := s.Stamp(context.Background(), Request{
		SourceBytes:     src,
		HeaderText:      "ABC College | 12th | History | Term 1 | QUESTION",
		WatermarkText:   "ABC College",
		HeaderEveryPage: true,
	})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	// The repeated header means strictly more overlay content.
	if len(every.Bytes) <= len(once.Bytes) {
		t.Errorf("header-every-page output (%d) not larger than page-1-only output (%d)",
			len(every.Bytes), len(once.Bytes))
	}
}

func TestStampDegradesWithoutRasterFace(t *testing.T) {
	// Devanagari overlays need the raster face; without it they are skipped
	// but the operation still succeeds with the page count intact.
	src := makePDF(t, a4, a4)
	s := New(nil)

	res, err := s.Stamp(context.Background(), Request{
		SourceBytes:   src,
		HeaderText:    "श्री शिवाजी महाविद्यालय | 10th | गणित",
		WatermarkText: "श्री शिवाजी महाविद्यालय",
	})
	if err != nil {
		t.Fatalf("Stamp should degrade, got error: %v", err)
	}
	if got := pageCount(t, res.Bytes); got != 2 {
		t.Errorf("degraded page count = %d, want 2", got)
	}
}

func TestStampRejectsMalformedInput(t *testing.T) {
	s := New(nil)

	t.Run("empty", func(t *testing.T) {
		_, err := s.Stamp(context.Background(), Request{SourceBytes: nil, HeaderText: "h", WatermarkText: "w"})
		var loadErr *DocumentLoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("err = %v, want DocumentLoadError", err)
		}
	})
	t.Run("bad magic", func(t *testing.T) {
		_, err := s.Stamp(context.Background(), Request{SourceBytes: []byte("GIF89a not a pdf"), HeaderText: "h", WatermarkText: "w"})
		var loadErr *DocumentLoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("err = %v, want DocumentLoadError", err)
		}
	})
	t.Run("truncated body", func(t *testing.T) {
		_, err := s.Stamp(context.Background(), Request{SourceBytes: []byte("%PDF-1.7 garbage"), HeaderText: "h", WatermarkText: "w"})
		var loadErr *DocumentLoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("err = %v, want DocumentLoadError", err)
		}
	})
}

func TestStampCancelledContext(t *testing.T) {
	src := makePDF(t, a4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Stamp(ctx, Request{SourceBytes: src, HeaderText: "h", WatermarkText: "w"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDrawWatermarkRouting(t *testing.T) {
	s := New(testFace(t))

	t.Run("latin uses vector text inside rotation", func(t *testing.T) {
		p := &recorderPage{w: 595, h: 842}
		s.drawWatermark(p, "ABC College")
		if p.find("image") != nil {
			t.Error("latin watermark should not rasterize")
		}
		txt := p.find("text")
		if txt == nil {
			t.Fatal("no text drawn")
		}
		if p.find("push") == nil || p.find("rotate") == nil {
			t.Error("watermark text not drawn inside a rotated state")
		}
	})

	t.Run("devanagari uses raster image inside rotation", func(t *testing.T) {
		p := &recorderPage{w: 595, h: 842}
		s.drawWatermark(p, "महाविद्यालय")
		if p.find("text") != nil {
			t.Error("devanagari watermark should not use native text")
		}
		img := p.find("image")
		if img == nil {
			t.Fatal("no image drawn")
		}
		// Image width occupies the configured page-width fraction, centered.
		wantW := 595 * watermarkWidthFrac
		if img.args[2] != wantW {
			t.Errorf("image width = %v, want %v", img.args[2], wantW)
		}
		if img.args[0] != -wantW/2 {
			t.Errorf("image x = %v, want %v", img.args[0], -wantW/2)
		}
	})

	t.Run("devanagari without face draws nothing", func(t *testing.T) {
		p := &recorderPage{w: 595, h: 842}
		New(nil).drawWatermark(p, "महाविद्यालय")
		if len(p.ops) != 0 {
			t.Errorf("expected no ops, got %d", len(p.ops))
		}
	})
}

func TestDrawHeaderRouting(t *testing.T) {
	s := New(testFace(t))

	t.Run("latin header is black vector text near the top", func(t *testing.T) {
		p := &recorderPage{w: 595, h: 842}
		s.drawHeader(p, "ABC College | 10th | Mathematics")
		txt := p.find("text")
		if txt == nil {
			t.Fatal("no text drawn")
		}
		if txt.args[1] != headerBaseline {
			t.Errorf("header baseline = %v, want %v", txt.args[1], float64(headerBaseline))
		}
		if p.find("rotate") != nil {
			t.Error("header must not be rotated")
		}
	})

	t.Run("devanagari header is a raster image", func(t *testing.T) {
		p := &recorderPage{w: 595, h: 842}
		s.drawHeader(p, "श्री शिवाजी महाविद्यालय | १०वी")
		if p.find("image") == nil {
			t.Fatal("no image drawn")
		}
		if p.find("rotate") != nil {
			t.Error("header must not be rotated")
		}
	})
}
