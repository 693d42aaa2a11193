package chromosome

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const Prefix = "chr"

var upper = cases.Upper(language.Und)

// Normalize strips a leading "chr" (any case) and upper-cases the rest,
// so "chrx", "CHRX" and "X" all become "X". "MT" is left as is.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= len(Prefix) && strings.EqualFold(text[:len(Prefix)], Prefix) {
		text = text[len(Prefix):]
	}
	return upper.String(text)
}

// Label renders a chromosome the way genomic identifiers expect it ("chrX").
// An empty chromosome yields an empty label.
func Label(text string) string {
	normalized := Normalize(text)
	if normalized == "" || normalized == "." {
		return ""
	}
	return Prefix + normalized
}
