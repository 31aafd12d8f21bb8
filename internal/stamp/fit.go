package stamp

// MeasureFunc returns the rendered width of text at the given font size,
// in the same units as the maximum width passed to FitSize.
type MeasureFunc func(text string, size float64) float64

// FitSize returns the largest font size no greater than start for which
// measure(text, size) fits within maxWidth, decrementing by step and never
// going below min. When even min overflows, min is returned and the text
// may legitimately exceed the bound. Deterministic for identical inputs.
func FitSize(text string, maxWidth, start, min, step float64, measure MeasureFunc) float64 {
	size := start
	for size > min && measure(text, size) > maxWidth {
		size -= step
		if size < min {
			size = min
		}
	}
	return size
}
