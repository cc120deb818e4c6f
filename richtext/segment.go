package richtext

import "golang.org/x/text/unicode/bidi"

// Direction is the base direction of a paragraph.
type Direction uint8

const (
	// DirectionLTR is left-to-right text (default).
	DirectionLTR Direction = iota
	// DirectionRTL is right-to-left text.
	DirectionRTL
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	if d == DirectionRTL {
		return "RTL"
	}
	return "LTR"
}

// BaseDirection resolves the paragraph-level direction of s by the
// first-strong rule: the first rune with a strong bidi class (L, R, or AL)
// decides, with LTR as the neutral default.
func BaseDirection(s string) Direction {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.L:
			return DirectionLTR
		case bidi.R, bidi.AL:
			return DirectionRTL
		}
	}
	return DirectionLTR
}
