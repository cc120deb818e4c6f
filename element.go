package canvas

import (
	"github.com/google/uuid"

	"github.com/inkleaf/canvas/persist"
	"github.com/inkleaf/canvas/richtext"
)

// ElementID is the stable identifier of a placed element.
type ElementID string

func newElementID() ElementID {
	return ElementID(uuid.NewString())
}

// ElementKind discriminates the closed set of element variants.
type ElementKind uint8

const (
	// KindTextBox is a rich-text box with a locked wrap width.
	KindTextBox ElementKind = iota
	// KindImage is a placed image referencing a stored payload.
	KindImage
	// KindAudioAnchor is an invisible rectangle a native playback control
	// is positioned over.
	KindAudioAnchor
)

// String returns the string representation of the kind.
func (k ElementKind) String() string {
	switch k {
	case KindTextBox:
		return "TextBox"
	case KindImage:
		return "Image"
	case KindAudioAnchor:
		return "AudioAnchor"
	default:
		return "Unknown"
	}
}

// Element is one placed object on the canvas. The variant set is closed:
// TextBox, Image and AudioAnchor are the only implementations, and every
// engine operation switches over them exhaustively.
type Element interface {
	// ID returns the element's stable identifier.
	ID() ElementID

	// Kind returns the variant tag.
	Kind() ElementKind

	// Position returns the grid-snapped top-left corner in page
	// coordinates.
	Position() Point

	// Bounds returns the element's page-space bounding rectangle.
	Bounds() Rect

	// sealed closes the variant set to this package.
	sealed()
}

// TextBox is a rich-text element. Its wrap boundary is the locked width
// chosen by the last explicit resize gesture, independent of the measured
// content width, so typing reflows lines without regrowing the box.
type TextBox struct {
	id          ElementID
	pos         Point
	text        richtext.Text
	alignment   richtext.Alignment
	lockedWidth float64
	policy      richtext.LayoutPolicy
	layout      richtext.Layout

	state    EditState
	caret    int
	selStart int
	selEnd   int
	// pending is the caret style: recorded when a delta is applied with
	// an empty selection, consumed by the next insertion, dropped when
	// the box leaves edit mode.
	pending *richtext.StyleDelta
}

func (t *TextBox) sealed() {}

// ID implements Element.
func (t *TextBox) ID() ElementID { return t.id }

// Kind implements Element.
func (t *TextBox) Kind() ElementKind { return KindTextBox }

// Position implements Element.
func (t *TextBox) Position() Point { return t.pos }

// Bounds implements Element. Width is always the locked width; height
// follows the current layout.
func (t *TextBox) Bounds() Rect {
	return Rect{Min: t.pos, Size: Point{X: t.lockedWidth, Y: t.layout.Height}}
}

// Text returns a copy of the box's rich text.
func (t *TextBox) Text() richtext.Text { return t.text }

// Content returns the plain text content.
func (t *TextBox) Content() string { return t.text.Content }

// Alignment returns the whole-box alignment.
func (t *TextBox) Alignment() richtext.Alignment { return t.alignment }

// LockedWidth returns the wrap boundary set by the last resize gesture.
func (t *TextBox) LockedWidth() float64 { return t.lockedWidth }

// Layout returns the current line layout.
func (t *TextBox) Layout() richtext.Layout { return t.layout }

// State returns the box's edit state.
func (t *TextBox) State() EditState { return t.state }

// Caret returns the caret rune index; meaningful only while editing.
func (t *TextBox) Caret() int { return t.caret }

// Selection returns the live selection interval; meaningful only while
// editing. Both values equal the caret when nothing is selected.
func (t *TextBox) Selection() (start, end int) { return t.selStart, t.selEnd }

// relayout recomputes line layout against the locked width. The top edge
// never moves: layout growth only extends the bottom edge.
func (t *TextBox) relayout() {
	t.layout = t.policy.ComputeLayout(t.text, richtext.LayoutOptions{
		MaxWidth:  t.lockedWidth,
		Alignment: t.alignment,
	})
}

// clearTransientSelection drops the live selection fields, as a focus
// loss to a toolbar control does. The engine-level SelectionContext is
// the durable copy.
func (t *TextBox) clearTransientSelection() {
	t.selStart, t.selEnd = t.caret, t.caret
}

// Image is a placed image element referencing a payload held by the
// persistence collaborator.
type Image struct {
	id    ElementID
	pos   Point
	ref   persist.PayloadRef
	thumb []byte
	size  Point
	scale float64
	// synced is false when the upload failed and the element exists only
	// locally.
	synced bool
}

func (i *Image) sealed() {}

// ID implements Element.
func (i *Image) ID() ElementID { return i.id }

// Kind implements Element.
func (i *Image) Kind() ElementKind { return KindImage }

// Position implements Element.
func (i *Image) Position() Point { return i.pos }

// Bounds implements Element.
func (i *Image) Bounds() Rect {
	return Rect{Min: i.pos, Size: i.size.Mul(i.scale)}
}

// Ref returns the stored payload reference; empty when unsynced.
func (i *Image) Ref() persist.PayloadRef { return i.ref }

// Thumbnail returns the generated thumbnail payload.
func (i *Image) Thumbnail() []byte { return i.thumb }

// Scale returns the display scale.
func (i *Image) Scale() float64 { return i.scale }

// NaturalSize returns the decoded pixel dimensions.
func (i *Image) NaturalSize() Point { return i.size }

// Synced reports whether the payload reached the store.
func (i *Image) Synced() bool { return i.synced }

// AudioAnchor is a zero-visual-fill rectangle associating a stored audio
// payload with a screen-space rectangle for a native playback control.
type AudioAnchor struct {
	id   ElementID
	pos  Point
	size Point
	ref  persist.PayloadRef
	// synced is false when the upload failed.
	synced bool
}

func (a *AudioAnchor) sealed() {}

// ID implements Element.
func (a *AudioAnchor) ID() ElementID { return a.id }

// Kind implements Element.
func (a *AudioAnchor) Kind() ElementKind { return KindAudioAnchor }

// Position implements Element.
func (a *AudioAnchor) Position() Point { return a.pos }

// Bounds implements Element.
func (a *AudioAnchor) Bounds() Rect {
	return Rect{Min: a.pos, Size: a.size}
}

// Ref returns the stored audio reference; empty when unsynced.
func (a *AudioAnchor) Ref() persist.PayloadRef { return a.ref }

// Synced reports whether the payload reached the store.
func (a *AudioAnchor) Synced() bool { return a.synced }
