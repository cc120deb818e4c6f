package richtext

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// GoTextMeasurer measures text by shaping it with go-text/typesetting's
// HarfBuzz implementation, so advances reflect the real font including
// kerning-neutral per-glyph widths. It is an opt-in replacement for
// FixedMeasurer when the host renders with actual fonts and wants layout
// to match.
//
// GoTextMeasurer is safe for concurrent use: the parsed font.Font is
// read-only, HarfbuzzShaper instances are pooled (they have internal
// mutable state and are NOT safe for concurrent use), and the advance
// cache is guarded by a mutex.
type GoTextMeasurer struct {
	fnt *font.Font

	// shaperPool pools HarfbuzzShaper instances; reusing one across
	// sequential calls avoids rebuilding its internal buffers.
	shaperPool sync.Pool

	mu    sync.RWMutex
	cache map[advanceKey]float64
}

type advanceKey struct {
	r    rune
	size float64
}

// NewGoTextMeasurer parses TTF/OTF font data and returns a measurer
// backed by it.
func NewGoTextMeasurer(data []byte) (*GoTextMeasurer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &GoTextMeasurer{
		fnt: face.Font,
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		cache: make(map[advanceKey]float64),
	}, nil
}

// Advance implements Measurer. The style's Size selects the shaping
// size; weight and slant do not alter advances for a single face.
func (m *GoTextMeasurer) Advance(r rune, st Style) float64 {
	key := advanceKey{r: r, size: st.Size}
	m.mu.RLock()
	if adv, ok := m.cache[key]; ok {
		m.mu.RUnlock()
		return adv
	}
	m.mu.RUnlock()

	out := m.shape([]rune{r}, st.Size)
	adv := 0.0
	for _, g := range out.Glyphs {
		adv += fixedToFloat(g.XAdvance)
	}
	m.mu.Lock()
	m.cache[key] = adv
	m.mu.Unlock()
	return adv
}

// LineHeight implements Measurer using the font's line extents at the
// style's size.
func (m *GoTextMeasurer) LineHeight(st Style) float64 {
	out := m.shape([]rune{'x'}, st.Size)
	b := out.LineBounds
	// Descent is negative (below baseline) in shaping output.
	return fixedToFloat(b.Ascent) - fixedToFloat(b.Descent) + fixedToFloat(b.Gap)
}

func (m *GoTextMeasurer) shape(runes []rune, size float64) shaping.Output {
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		// font.Face is NOT safe for concurrent use; each call gets its
		// own lightweight wrapper around the shared read-only Font.
		Face:     font.NewFace(m.fnt),
		Size:     floatToFixed(size),
		Script:   detectScript(runes),
		Language: language.NewLanguage("en"),
	}
	hb := m.shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	m.shaperPool.Put(hb)
	return out
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a float64 size to fixed.Int26_6 (6 fractional
// bits, so multiply by 64).
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat converts fixed.Int26_6 to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
