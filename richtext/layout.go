package richtext

// Alignment specifies horizontal text alignment within the wrap width.
type Alignment uint8

const (
	// AlignLeft aligns text to the left edge (default).
	AlignLeft Alignment = iota
	// AlignCenter centers text horizontally.
	AlignCenter
	// AlignRight aligns text to the right edge.
	AlignRight
	// AlignJustify distributes extra width across inter-word gaps.
	AlignJustify
)

// String returns the string representation of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	case AlignJustify:
		return "Justify"
	default:
		return "Unknown"
	}
}

// LayoutOptions configures a layout pass.
type LayoutOptions struct {
	// MaxWidth is the wrap boundary in page units. For a journal text box
	// this is the locked width, never the measured content width, so
	// typing cannot regrow the box. Zero disables wrapping.
	MaxWidth float64

	// Alignment is the whole-paragraph alignment.
	Alignment Alignment

	// LineSpacing multiplies the measurer's natural line height.
	// Zero means 1.0.
	LineSpacing float64
}

// Line is one laid-out line: a rune interval of the source text plus its
// resolved geometry.
type Line struct {
	// Start and End delimit the half-open rune interval of this line,
	// excluding a trailing newline.
	Start, End int

	// Width is the advance width of the line's content.
	Width float64

	// X is the horizontal offset applied by alignment.
	X float64

	// Y is the top of the line within the layout.
	Y float64

	// Height is the line height.
	Height float64

	// GapSpacing is the extra width added to every inter-word gap when
	// justifying. Zero for non-justified lines and for the last line of a
	// justified paragraph.
	GapSpacing float64
}

// Layout is the result of laying out a Text.
type Layout struct {
	Lines []Line

	// Width is the wrap width the layout was computed against (the locked
	// width when one was given), or the widest line when MaxWidth is 0.
	Width float64

	// Height is the total height of all lines.
	Height float64

	// Direction is the resolved paragraph base direction.
	Direction Direction
}

// LayoutPolicy computes text layout for an element. It is chosen at
// element construction time so hosts can substitute measuring or wrapping
// behavior without reaching into the engine.
type LayoutPolicy interface {
	ComputeLayout(t Text, opts LayoutOptions) Layout
}

// WrapPolicy is the standard LayoutPolicy: greedy word wrapping with
// character fallback for words wider than the wrap width.
type WrapPolicy struct {
	Measurer Measurer
}

// NewWrapPolicy returns a WrapPolicy backed by m, defaulting to
// FixedMeasurer when m is nil.
func NewWrapPolicy(m Measurer) WrapPolicy {
	if m == nil {
		m = FixedMeasurer{}
	}
	return WrapPolicy{Measurer: m}
}

// ComputeLayout implements LayoutPolicy.
func (p WrapPolicy) ComputeLayout(t Text, opts LayoutOptions) Layout {
	m := p.Measurer
	if m == nil {
		m = FixedMeasurer{}
	}
	spacing := opts.LineSpacing
	if spacing <= 0 {
		spacing = 1.0
	}

	runes := []rune(t.Content)
	layout := Layout{Width: opts.MaxWidth, Direction: BaseDirection(t.Content)}
	if len(runes) == 0 {
		// An empty box still has one empty line so the caret has a home.
		h := m.LineHeight(t.Default) * spacing
		layout.Lines = []Line{{Height: h}}
		layout.Height = h
		return layout
	}

	advances := make([]float64, len(runes))
	for i, r := range runes {
		advances[i] = m.Advance(r, t.StyleAt(i))
	}
	breaks := findBreakOpportunities(runes)

	var lines []Line
	var paraEnd []bool // line i ends its paragraph (newline or end of text)
	start := 0
	for start < len(runes) {
		end, mandatory := p.fillLine(runes, advances, breaks, start, opts.MaxWidth)
		lines = append(lines, Line{Start: start, End: trimLineEnd(runes, start, end)})
		paraEnd = append(paraEnd, mandatory)
		if mandatory {
			start = end + 1 // consume the newline
		} else {
			start = end
			// Spaces consumed by the soft break do not open the next line.
			for start < len(runes) && (runes[start] == ' ' || runes[start] == '\t') {
				start++
			}
		}
	}
	// A trailing newline opens one more empty line.
	if len(runes) > 0 && runes[len(runes)-1] == '\n' {
		lines = append(lines, Line{Start: len(runes), End: len(runes)})
		paraEnd = append(paraEnd, true)
	}

	y := 0.0
	maxLineWidth := 0.0
	for i := range lines {
		ln := &lines[i]
		for j := ln.Start; j < ln.End; j++ {
			ln.Width += advances[j]
		}
		ln.Height = p.lineHeight(t, ln, m) * spacing
		ln.Y = y
		y += ln.Height
		if ln.Width > maxLineWidth {
			maxLineWidth = ln.Width
		}
		paragraphFinal := paraEnd[i] || i == len(lines)-1
		alignLine(ln, runes, opts, paragraphFinal)
	}
	layout.Lines = lines
	layout.Height = y
	if opts.MaxWidth <= 0 {
		layout.Width = maxLineWidth
	}
	return layout
}

// fillLine returns the end of the line starting at start, and whether the
// line ends at a mandatory break (a newline rune at index end).
func (p WrapPolicy) fillLine(runes []rune, advances []float64, breaks []BreakOpportunity, start int, maxWidth float64) (end int, mandatory bool) {
	width := 0.0
	lastBreak := -1
	i := start
	for ; i < len(runes); i++ {
		if runes[i] == '\n' {
			return i, true
		}
		if i > start && breaks[i] == BreakAllowed {
			lastBreak = i
		}
		width += advances[i]
		if maxWidth > 0 && width > maxWidth && i > start {
			if lastBreak > start {
				return lastBreak, false
			}
			// Word wider than the wrap width: fall back to a character
			// break before the overflowing rune.
			return i, false
		}
	}
	return i, false
}

// lineHeight is the tallest line height among the styles on the line.
func (p WrapPolicy) lineHeight(t Text, ln *Line, m Measurer) float64 {
	h := m.LineHeight(t.Default)
	for i := ln.Start; i < ln.End; i++ {
		if lh := m.LineHeight(t.StyleAt(i)); lh > h {
			h = lh
		}
	}
	return h
}

// alignLine fills in X and GapSpacing for one line.
func alignLine(ln *Line, runes []rune, opts LayoutOptions, paragraphFinal bool) {
	if opts.MaxWidth <= 0 {
		return
	}
	slack := opts.MaxWidth - ln.Width
	if slack <= 0 {
		return
	}
	switch opts.Alignment {
	case AlignCenter:
		ln.X = slack / 2
	case AlignRight:
		ln.X = slack
	case AlignJustify:
		// The last line of a paragraph stays flush left.
		if paragraphFinal {
			return
		}
		gaps := 0
		for i := ln.Start; i < ln.End; i++ {
			if runes[i] == ' ' || runes[i] == '\t' {
				gaps++
			}
		}
		if gaps > 0 {
			ln.GapSpacing = slack / float64(gaps)
		}
	}
}

// trimLineEnd drops trailing spaces from the line interval so alignment
// slack is computed against visible content.
func trimLineEnd(runes []rune, start, end int) int {
	for end > start && (runes[end-1] == ' ' || runes[end-1] == '\t') {
		end--
	}
	return end
}
