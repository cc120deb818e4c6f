package richtext

import "errors"

// Sentinel errors for the richtext package.
var (
	// ErrInvalidRange is returned when a character range does not satisfy
	// 0 <= start <= end <= RuneCount().
	ErrInvalidRange = errors.New("richtext: invalid character range")

	// ErrEmptyFontData is returned when font data passed to a measurer is
	// empty.
	ErrEmptyFontData = errors.New("richtext: empty font data")
)
