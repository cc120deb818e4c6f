package richtext

// Span is a styling overlay for the half-open rune interval
// [Start, End). The delta is applied on top of the owning Text's default
// style for every character in the interval.
type Span struct {
	Start int        `json:"start"`
	End   int        `json:"end"`
	Delta StyleDelta `json:"delta"`
}

// Text is a rich-text value: a flat rune sequence, a whole-box default
// style, and a sorted list of non-overlapping spans overriding it.
//
// Invariants maintained by the mutating methods: spans are sorted by
// Start, never overlap, never empty, never extend past the content, and
// adjacent spans with equal deltas are coalesced.
type Text struct {
	Content string `json:"content"`
	Default Style  `json:"default"`
	Spans   []Span `json:"spans,omitempty"`
}

// New returns a Text with the given content and default style.
func New(content string, def Style) Text {
	return Text{Content: content, Default: def}
}

// RuneCount returns the number of runes in the content.
func (t Text) RuneCount() int {
	n := 0
	for range t.Content {
		n++
	}
	return n
}

// StyleAt returns the effective style of the rune at index i.
// The default style is returned for indices outside the content.
func (t Text) StyleAt(i int) Style {
	st := t.Default
	for _, sp := range t.Spans {
		if sp.Start > i {
			break
		}
		if i < sp.End {
			st = sp.Delta.Apply(st)
		}
	}
	return st
}

// DeltaAt returns the span delta covering rune index i, if any.
func (t Text) DeltaAt(i int) (StyleDelta, bool) {
	for _, sp := range t.Spans {
		if sp.Start > i {
			break
		}
		if i < sp.End {
			return sp.Delta, true
		}
	}
	return StyleDelta{}, false
}

// ApplyDelta merges delta over the styles of the interval [start, end).
// Existing span deltas inside the interval are merged with (overridden
// by) delta rather than replaced, so bolding a partially italic range
// keeps the italics.
func (t *Text) ApplyDelta(start, end int, delta StyleDelta) error {
	n := t.RuneCount()
	if start < 0 || end < start || end > n {
		return ErrInvalidRange
	}
	if start == end || delta.IsZero() {
		return nil
	}

	var out []Span
	cursor := start // first uncovered index within [start, end)
	for _, sp := range t.Spans {
		// Entirely outside the target interval: keep as is.
		if sp.End <= start || sp.Start >= end {
			out = append(out, sp)
			continue
		}
		// Left part of the span sticking out before start.
		if sp.Start < start {
			out = append(out, Span{Start: sp.Start, End: start, Delta: sp.Delta})
		}
		// Gap between the previous covered index and this span.
		if ov := maxInt(sp.Start, start); ov > cursor {
			out = append(out, Span{Start: cursor, End: ov, Delta: delta})
		}
		// Overlapping part: merge, delta wins.
		ovStart := maxInt(sp.Start, start)
		ovEnd := minInt(sp.End, end)
		out = append(out, Span{Start: ovStart, End: ovEnd, Delta: sp.Delta.Merge(delta)})
		cursor = ovEnd
		// Right part of the span sticking out past end.
		if sp.End > end {
			out = append(out, Span{Start: end, End: sp.End, Delta: sp.Delta})
		}
	}
	if cursor < end {
		out = append(out, Span{Start: cursor, End: end, Delta: delta})
	}
	t.Spans = normalize(out)
	return nil
}

// ApplyDeltaAll merges delta into the default style and into every span,
// implementing whole-box styling.
func (t *Text) ApplyDeltaAll(delta StyleDelta) {
	if delta.IsZero() {
		return
	}
	t.Default = delta.Apply(t.Default)
	// A span delta that re-states an attribute now also set on the
	// default would shadow later whole-box changes, so drop the fields
	// the delta just set from every span.
	for i := range t.Spans {
		t.Spans[i].Delta = clearFields(t.Spans[i].Delta, delta)
	}
	t.Spans = normalize(t.Spans)
}

// Insert places s at rune index at. Span boundaries at or after the
// insertion point shift right; a span strictly containing the point
// stretches over the inserted text. If pending is non-nil its delta is
// applied to the inserted interval, consuming a caret's pending style.
func (t *Text) Insert(at int, s string, pending *StyleDelta) error {
	n := t.RuneCount()
	if at < 0 || at > n {
		return ErrInvalidRange
	}
	if s == "" {
		return nil
	}
	runes := []rune(s)
	k := len(runes)

	prefix := string([]rune(t.Content)[:at])
	suffix := string([]rune(t.Content)[at:])
	t.Content = prefix + s + suffix

	for i := range t.Spans {
		sp := &t.Spans[i]
		switch {
		case sp.Start >= at:
			sp.Start += k
			sp.End += k
		case sp.End > at:
			// Insertion inside the span: inherit its styling.
			sp.End += k
		}
	}
	if pending != nil && !pending.IsZero() {
		// Content length already includes the insertion, so the range is
		// valid by construction.
		_ = t.ApplyDelta(at, at+k, *pending)
	}
	return nil
}

// Delete removes the rune interval [start, end), clipping and shifting
// spans accordingly.
func (t *Text) Delete(start, end int) error {
	n := t.RuneCount()
	if start < 0 || end < start || end > n {
		return ErrInvalidRange
	}
	if start == end {
		return nil
	}
	k := end - start
	runes := []rune(t.Content)
	t.Content = string(runes[:start]) + string(runes[end:])

	var out []Span
	for _, sp := range t.Spans {
		switch {
		case sp.End <= start:
			out = append(out, sp)
		case sp.Start >= end:
			out = append(out, Span{Start: sp.Start - k, End: sp.End - k, Delta: sp.Delta})
		default:
			ns := Span{Start: minInt(sp.Start, start), End: maxInt(sp.End, end) - k, Delta: sp.Delta}
			if ns.End > ns.Start {
				out = append(out, ns)
			}
		}
	}
	t.Spans = normalize(out)
	return nil
}

// normalize sorts spans, drops empties and zero deltas, and coalesces
// adjacent spans carrying equal deltas.
func normalize(spans []Span) []Span {
	var kept []Span
	for _, sp := range spans {
		if sp.End > sp.Start && !sp.Delta.IsZero() {
			kept = append(kept, sp)
		}
	}
	// Insertion sort: span lists are tiny and mostly ordered already.
	for i := 1; i < len(kept); i++ {
		for j := i; j > 0 && kept[j].Start < kept[j-1].Start; j-- {
			kept[j], kept[j-1] = kept[j-1], kept[j]
		}
	}
	var out []Span
	for _, sp := range kept {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.End == sp.Start && last.Delta.Equal(sp.Delta) {
				last.End = sp.End
				continue
			}
		}
		out = append(out, sp)
	}
	return out
}

// clearFields returns d with every field that mask sets reset to nil.
func clearFields(d StyleDelta, mask StyleDelta) StyleDelta {
	if mask.Family != nil {
		d.Family = nil
	}
	if mask.Size != nil {
		d.Size = nil
	}
	if mask.Bold != nil {
		d.Bold = nil
	}
	if mask.Italic != nil {
		d.Italic = nil
	}
	if mask.Underline != nil {
		d.Underline = nil
	}
	if mask.Strikethrough != nil {
		d.Strikethrough = nil
	}
	return d
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
