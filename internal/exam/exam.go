// Package exam maps internal exam-type codes to display labels and computes
// download filenames.
//
// Labels are the Marathi exam names shown on stamped papers and used inside
// download filenames. Unknown codes fall back to a capitalized form of the
// code itself so that callers always get a printable, non-empty label.
package exam

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LabelFor returns the display label for an internal exam-type code.
func LabelFor(code string) string {
	switch code {
	case "unit1":
		return "प्रथम घटक चाचणी परीक्षा"
	case "term1":
		return "प्रथम सत्र परीक्षा"
	case "unit2":
		return "द्वितीय घटक चाचणी परीक्षा"
	case "prelim1":
		return "पूर्व/सराव परीक्षा-१"
	case "prelim2":
		return "पूर्व/सराव परीक्षा-२"
	case "prelim3":
		return "पूर्व/सराव परीक्षा-३"
	case "term2", "final":
		return "द्वितीय सत्र परीक्षा"
	case "internal":
		return "अंतर्गत मूल्यमापन परीक्षा"
	case "chapter":
		return "प्रकरणानुसार परीक्षा"
	case "":
		return "Exam"
	}
	r, size := utf8.DecodeRuneInString(code)
	return string(unicode.ToUpper(r)) + code[size:]
}

// displayNames remaps stored exam labels to their current display names.
var displayNames = map[string]string{
	"अंतर्गत मूल्यमापन परीक्षा": "फेब्रुवारी / मार्च 2022",
	"प्रकरणानुसार परीक्षा":      "फेब्रुवारी / मार्च 2023",
}

// DisplayName returns the current display name for a stored exam label,
// or the label unchanged when no remapping exists.
func DisplayName(label string) string {
	if name, ok := displayNames[label]; ok {
		return name
	}
	return label
}

// BuildFilename joins the given tokens with underscores, collapsing all
// whitespace inside each token to underscores, and appends the pdf
// extension. Token order is institution, standard, subject, exam label,
// paper kind; downstream tooling relies on this order for readability.
func BuildFilename(parts ...string) string {
	toks := make([]string, 0, len(parts))
	for _, p := range parts {
		toks = append(toks, strings.Join(strings.Fields(p), "_"))
	}
	return strings.Join(toks, "_") + ".pdf"
}
