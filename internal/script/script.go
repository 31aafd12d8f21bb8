// Package script classifies text by writing system.
//
// The stamping pipeline needs to know whether a string can be rendered with
// the PDF core fonts or whether it contains Devanagari, which the core font
// set cannot shape and which therefore takes the raster path.
package script

// devanagariLo and devanagariHi bound the Devanagari Unicode block.
const (
	devanagariLo = 0x0900
	devanagariHi = 0x097F
)

// ContainsDevanagari reports whether any rune of s falls in the Devanagari
// block (U+0900 to U+097F). The empty string contains none.
func ContainsDevanagari(s string) bool {
	for _, r := range s {
		if r >= devanagariLo && r <= devanagariHi {
			return true
		}
	}
	return false
}
