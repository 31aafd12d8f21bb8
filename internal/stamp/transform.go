package stamp

import "math"

// TextStyle is the fill style applied before drawing overlay text.
// Gray is a 0-255 gray level, Alpha the fill opacity.
type TextStyle struct {
	Gray  int
	Alpha float64
}

// Page is the drawing surface the stamping pipeline needs from the
// underlying document library: geometry, graphics state, transforms and the
// two draw primitives. Coordinates are points with the origin at the top
// left and y pointing down. DrawText places the baseline at y.
type Page interface {
	Size() (w, h float64)
	PushState()
	PopState()
	Translate(tx, ty float64)
	Rotate(angleDeg float64)
	SetTextStyle(s TextStyle)
	MeasureText(text string, size float64) float64
	DrawText(text string, x, y, size float64)
	DrawImage(pngData []byte, x, y, w, h float64)
}

// WithCenteredRotation runs draw inside a saved graphics state whose origin
// has been moved to the page center and rotated by angleRad. The draw
// callback works in that frame: content centered on its own extent is drawn
// at (-w/2, -h/2). The prior state is restored afterwards, so nothing leaks
// into later drawing on the same page, and the rotation pivot is the page
// center for every page size.
func WithCenteredRotation(p Page, angleRad float64, draw func()) {
	w, h := p.Size()
	p.PushState()
	p.Translate(w/2, h/2)
	p.Rotate(angleRad * 180 / math.Pi)
	draw()
	p.PopState()
}
