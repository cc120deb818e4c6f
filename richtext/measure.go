package richtext

// Measurer supplies the horizontal advances and line metrics that layout
// needs. Implementations must be safe for concurrent use.
//
// Two implementations are provided: FixedMeasurer, a deterministic
// metrics table that needs no font files, and GoTextMeasurer, which
// shapes real fonts through go-text/typesetting.
type Measurer interface {
	// Advance returns the horizontal advance of r rendered in st.
	Advance(r rune, st Style) float64

	// LineHeight returns the baseline-to-baseline distance for st.
	LineHeight(st Style) float64
}

// FixedMeasurer measures text with size-proportional advances. It is the
// default measurer: layout results are deterministic across platforms,
// which is what the persistence round trip needs, and no font files are
// required.
type FixedMeasurer struct {
	// EmFraction is the advance of a regular glyph as a fraction of the
	// font size. Zero means the default of 0.6.
	EmFraction float64
}

const (
	defaultEmFraction = 0.6
	wideEmFraction    = 1.0
	lineHeightFactor  = 1.25
)

// Advance implements Measurer. CJK and fullwidth runes take a full em;
// everything else takes EmFraction of the size.
func (m FixedMeasurer) Advance(r rune, st Style) float64 {
	frac := m.EmFraction
	if frac <= 0 {
		frac = defaultEmFraction
	}
	if isWideRune(r) {
		frac = wideEmFraction
	}
	return st.Size * frac
}

// LineHeight implements Measurer.
func (m FixedMeasurer) LineHeight(st Style) float64 {
	return st.Size * lineHeightFactor
}

// isWideRune reports whether r occupies a full em cell (CJK ideographs,
// kana, hangul, fullwidth forms).
func isWideRune(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified Ideographs
		(r >= 0x3400 && r <= 0x4DBF) || // CJK Extension A
		(r >= 0x3040 && r <= 0x309F) || // Hiragana
		(r >= 0x30A0 && r <= 0x30FF) || // Katakana
		(r >= 0xAC00 && r <= 0xD7AF) || // Hangul Syllables
		(r >= 0xFF00 && r <= 0xFFEF) // Fullwidth forms
}
