package richtext

import "unicode"

// BreakClass classifies a rune for line breaking (UAX #14, reduced to
// the classes journal text actually hits).
type BreakClass uint8

const (
	// breakOther is the default class for most characters.
	breakOther BreakClass = iota
	// breakSpace is for space characters (break after).
	breakSpace
	// breakHyphen is for hyphens and dashes (break after).
	breakHyphen
	// breakIdeographic is for CJK ideographs (break before/after).
	breakIdeographic
	// breakNewline forces a break after.
	breakNewline
)

// classifyRune returns the break class of a rune.
func classifyRune(r rune) BreakClass {
	switch r {
	case ' ', '\t':
		return breakSpace
	case '\n':
		return breakNewline
	case '-', '‐', '‑', '–', '—':
		return breakHyphen
	}
	if isWideRune(r) && !unicode.IsPunct(r) {
		return breakIdeographic
	}
	return breakOther
}

// BreakOpportunity represents a line break opportunity before a rune.
type BreakOpportunity uint8

const (
	// BreakNo means no break allowed here.
	BreakNo BreakOpportunity = iota
	// BreakAllowed means break is allowed here.
	BreakAllowed
	// BreakMandatory means break is required here (newline).
	BreakMandatory
)

// findBreakOpportunities analyzes runes and returns break opportunities.
// Index i indicates the opportunity BEFORE rune i; index 0 is always
// BreakNo.
func findBreakOpportunities(runes []rune) []BreakOpportunity {
	n := len(runes)
	if n == 0 {
		return nil
	}
	classes := make([]BreakClass, n)
	for i, r := range runes {
		classes[i] = classifyRune(r)
	}
	breaks := make([]BreakOpportunity, n)
	for i := 1; i < n; i++ {
		prev, curr := classes[i-1], classes[i]
		switch {
		case prev == breakNewline:
			breaks[i] = BreakMandatory
		case prev == breakSpace:
			breaks[i] = BreakAllowed
		case prev == breakHyphen && curr != breakHyphen:
			breaks[i] = BreakAllowed
		case curr == breakIdeographic || prev == breakIdeographic:
			breaks[i] = BreakAllowed
		default:
			breaks[i] = BreakNo
		}
	}
	return breaks
}
