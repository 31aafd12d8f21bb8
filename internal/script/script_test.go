package script

import "testing"

func TestContainsDevanagari(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", false},
		{"ascii", "ABC College", false},
		{"latin accents", "Collège Éducation", false},
		{"pure devanagari", "प्रथम सत्र परीक्षा", true},
		{"mixed", "ABC महाविद्यालय", true},
		{"single codepoint", "क", true},
		{"block lower bound", string(rune(0x0900)), true},
		{"block upper bound", string(rune(0x097F)), true},
		{"below block", string(rune(0x08FF)), false},
		{"above block", string(rune(0x0980)), false},
		{"digits and punctuation", "10th | Mathematics", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ContainsDevanagari(c.in); got != c.want {
				t.Errorf("ContainsDevanagari(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
