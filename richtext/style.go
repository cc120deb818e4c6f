package richtext

// Style describes the full character style of a run of text.
type Style struct {
	Family        string
	Size          float64
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
}

// DefaultStyle returns the style a fresh text box starts with.
func DefaultStyle() Style {
	return Style{Family: "sans-serif", Size: 16}
}

// StyleDelta is a partial style: nil fields leave the underlying
// attribute untouched. Deltas are what formatting commands carry, so
// applying bold over a range never disturbs italics already present.
type StyleDelta struct {
	Family        *string
	Size          *float64
	Bold          *bool
	Italic        *bool
	Underline     *bool
	Strikethrough *bool
}

// IsZero reports whether the delta changes nothing.
func (d StyleDelta) IsZero() bool {
	return d.Family == nil && d.Size == nil && d.Bold == nil &&
		d.Italic == nil && d.Underline == nil && d.Strikethrough == nil
}

// Apply returns st with every non-nil field of the delta overriding it.
func (d StyleDelta) Apply(st Style) Style {
	if d.Family != nil {
		st.Family = *d.Family
	}
	if d.Size != nil {
		st.Size = *d.Size
	}
	if d.Bold != nil {
		st.Bold = *d.Bold
	}
	if d.Italic != nil {
		st.Italic = *d.Italic
	}
	if d.Underline != nil {
		st.Underline = *d.Underline
	}
	if d.Strikethrough != nil {
		st.Strikethrough = *d.Strikethrough
	}
	return st
}

// Merge returns the union of two deltas with fields of over taking
// precedence over fields of d.
func (d StyleDelta) Merge(over StyleDelta) StyleDelta {
	out := d
	if over.Family != nil {
		out.Family = over.Family
	}
	if over.Size != nil {
		out.Size = over.Size
	}
	if over.Bold != nil {
		out.Bold = over.Bold
	}
	if over.Italic != nil {
		out.Italic = over.Italic
	}
	if over.Underline != nil {
		out.Underline = over.Underline
	}
	if over.Strikethrough != nil {
		out.Strikethrough = over.Strikethrough
	}
	return out
}

// Equal reports whether two deltas set the same fields to the same values.
func (d StyleDelta) Equal(o StyleDelta) bool {
	return eqStr(d.Family, o.Family) && eqF64(d.Size, o.Size) &&
		eqBool(d.Bold, o.Bold) && eqBool(d.Italic, o.Italic) &&
		eqBool(d.Underline, o.Underline) && eqBool(d.Strikethrough, o.Strikethrough)
}

func eqStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqF64(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Helper constructors for the common one-field deltas.

// Bold returns a delta setting only the bold attribute.
func Bold(v bool) StyleDelta { return StyleDelta{Bold: &v} }

// Italic returns a delta setting only the italic attribute.
func Italic(v bool) StyleDelta { return StyleDelta{Italic: &v} }

// Underline returns a delta setting only the underline attribute.
func Underline(v bool) StyleDelta { return StyleDelta{Underline: &v} }

// Strikethrough returns a delta setting only the strikethrough attribute.
func Strikethrough(v bool) StyleDelta { return StyleDelta{Strikethrough: &v} }

// Family returns a delta setting only the font family.
func Family(name string) StyleDelta { return StyleDelta{Family: &name} }

// Size returns a delta setting only the font size.
func Size(pts float64) StyleDelta { return StyleDelta{Size: &pts} }
