package canvas

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/inkleaf/canvas/persist"
	"github.com/inkleaf/canvas/richtext"
	"github.com/inkleaf/canvas/thumbnail"
)

// Engine owns the live element set of one journal document and keeps it
// synchronized with the persistence collaborator. All mutations are
// serialized behind an internal mutex; saves run off the caller's
// goroutine and never block mutations.
type Engine struct {
	mu sync.Mutex

	opts   engineOptions
	store  persist.Store
	policy richtext.LayoutPolicy
	timer  Timer

	// elements in z-order: index 0 is backmost.
	elements []Element

	pageSize   Point
	background string
	revision   uint64
	scroll     Point

	sel      SelectionContext
	controls map[ElementID]*PlaybackControl

	status    SaveStatus
	listeners []func(SaveStatus)
}

// NewEngine creates an engine with an empty document.
func NewEngine(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy == nil {
		o.policy = richtext.NewWrapPolicy(o.measurer)
	}
	if o.timer == nil {
		o.timer = newAfterFuncTimer()
	}
	return &Engine{
		opts:       o,
		store:      o.store,
		policy:     o.policy,
		timer:      o.timer,
		pageSize:   o.pageSize,
		background: o.background,
		controls:   make(map[ElementID]*PlaybackControl),
	}
}

// PageSize returns the page surface dimensions.
func (e *Engine) PageSize() Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pageSize
}

// Background returns the page background pattern descriptor.
func (e *Engine) Background() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.background
}

// Elements returns the element list in z-order (backmost first).
func (e *Engine) Elements() []Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Element, len(e.elements))
	copy(out, e.elements)
	return out
}

// Images returns the image elements in z-order, for the host's
// side-panel listing.
func (e *Engine) Images() []*Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*Image
	for _, el := range e.elements {
		if img, ok := el.(*Image); ok {
			out = append(out, img)
		}
	}
	return out
}

// Element returns the element with the given id.
func (e *Engine) Element(id ElementID) (Element, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	el := e.findLocked(id)
	return el, el != nil
}

// AddTextBox creates a text box at position with the default style and
// the default locked width, at top z-order.
func (e *Engine) AddTextBox(position Point) (ElementID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := &TextBox{
		id:          newElementID(),
		pos:         position.Snap(e.opts.gridStep),
		text:        richtext.New("", richtext.DefaultStyle()),
		lockedWidth: e.opts.defaultLockedWidth,
		policy:      e.policy,
	}
	t.relayout()
	e.elements = append(e.elements, t)
	e.markDirtyLocked()
	return t.id, nil
}

// AddImage decodes payload, generates a bounded thumbnail, uploads both,
// and places the image at position. A decode failure aborts the add with
// no element; an upload failure keeps the element locally with
// Synced()==false and logs a warning.
func (e *Engine) AddImage(ctx context.Context, payload []byte, position Point) (ElementID, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		Logger().Warn("image ingestion failed", slog.Any("error", err))
		return "", fmt.Errorf("canvas: decode image: %w", err)
	}
	thumb, err := thumbnail.Generate(payload, e.opts.thumbnailBound)
	if err != nil {
		Logger().Warn("thumbnail generation failed", slog.Any("error", err))
		return "", fmt.Errorf("canvas: %w", err)
	}

	img := &Image{
		id:    newElementID(),
		size:  Pt(float64(cfg.Width), float64(cfg.Height)),
		scale: 1,
		thumb: thumb,
	}
	ref, err := e.store.PutImage(ctx, payload, thumb)
	if err != nil {
		// Non-fatal: the element stays visible locally, unsynced.
		Logger().Warn("image upload failed", slog.Any("error", err))
	} else {
		img.ref = ref
		img.synced = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	img.pos = position.Snap(e.opts.gridStep)
	e.elements = append(e.elements, img)
	e.markDirtyLocked()
	return img.id, nil
}

// AddAudioAnchor uploads payload, places an invisible anchor rectangle
// at position, and registers a playback control against it. Upload
// failure keeps the anchor locally, unsynced, without a control.
func (e *Engine) AddAudioAnchor(ctx context.Context, payload []byte, position Point) (ElementID, error) {
	if len(payload) == 0 {
		Logger().Warn("audio ingestion failed: empty payload")
		return "", fmt.Errorf("canvas: %w", persist.ErrEmptyPayload)
	}

	anchor := &AudioAnchor{
		id:   newElementID(),
		size: e.opts.audioAnchorSize,
	}
	ref, err := e.store.PutAudio(ctx, payload)
	if err != nil {
		Logger().Warn("audio upload failed", slog.Any("error", err))
	} else {
		anchor.ref = ref
		anchor.synced = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	anchor.pos = position.Snap(e.opts.gridStep)
	e.elements = append(e.elements, anchor)
	if anchor.synced {
		e.controls[anchor.id] = &PlaybackControl{Anchor: anchor.id, Ref: ref, Data: payload}
	}
	e.markDirtyLocked()
	return anchor.id, nil
}

// Move translates the element by (dx, dy) and snaps both axes to the
// grid step. Snapping applies on every move, not only on drop.
func (e *Engine) Move(id ElementID, dx, dy float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	el := e.findLocked(id)
	if el == nil {
		return ErrElementNotFound
	}
	snapped := el.Position().Add(Pt(dx, dy)).Snap(e.opts.gridStep)
	switch v := el.(type) {
	case *TextBox:
		v.pos = snapped
	case *Image:
		v.pos = snapped
	case *AudioAnchor:
		v.pos = snapped
	}
	e.markDirtyLocked()
	return nil
}

// Resize sets a text box's locked width to newWidth clamped to the
// minimum floor and relayouts. The top edge does not move: layout growth
// or shrinkage only changes the bottom edge. Resizing a non-TextBox is a
// rejected no-op.
func (e *Engine) Resize(id ElementID, newWidth float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	el := e.findLocked(id)
	if el == nil {
		return ErrElementNotFound
	}
	t, ok := el.(*TextBox)
	if !ok {
		return ErrNotTextBox
	}
	if newWidth < e.opts.minTextBoxWidth {
		newWidth = e.opts.minTextBoxWidth
	}
	t.lockedWidth = newWidth
	t.relayout()
	e.markDirtyLocked()
	return nil
}

// SetAlignment applies a whole-box alignment and forces a full relayout
// (justify changes inter-word spacing, so line geometry must be redone).
func (e *Engine) SetAlignment(id ElementID, align richtext.Alignment) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.textBoxLocked(id)
	if err != nil {
		return err
	}
	t.alignment = align
	t.relayout()
	e.markDirtyLocked()
	return nil
}

// Range is a half-open character interval [Start, End) within a text
// box's content.
type Range struct {
	Start, End int
}

// ApplyTextStyle applies a style delta to a text box.
//
// With a nil range, or when the box is not in edit mode, the delta
// applies to the whole element. With Start == End (a caret, no
// selection) the delta becomes the pending style consumed by the next
// insertion. Otherwise existing per-character styles inside the range
// are merged with (overridden by) the delta, never replaced wholesale.
func (e *Engine) ApplyTextStyle(id ElementID, r *Range, delta richtext.StyleDelta) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.textBoxLocked(id)
	if err != nil {
		return err
	}
	if r == nil || t.state != StateEditing {
		t.text.ApplyDeltaAll(delta)
		t.relayout()
		e.markDirtyLocked()
		return nil
	}
	if r.Start == r.End {
		merged := delta
		if t.pending != nil {
			merged = t.pending.Merge(delta)
		}
		t.pending = &merged
		return nil
	}
	if err := t.text.ApplyDelta(r.Start, r.End, delta); err != nil {
		return err
	}
	t.relayout()
	e.markDirtyLocked()
	return nil
}

// InsertText inserts s at the caret of a box in edit mode, consuming any
// pending caret style. The wrap width stays the locked width, so typing
// only ever changes line count and height.
func (e *Engine) InsertText(id ElementID, s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.textBoxLocked(id)
	if err != nil {
		return err
	}
	if t.state != StateEditing {
		return ErrNotEditing
	}
	// Typing over a selection replaces it.
	if t.selEnd > t.selStart {
		if err := t.text.Delete(t.selStart, t.selEnd); err != nil {
			return err
		}
		t.caret = t.selStart
	}
	if err := t.text.Insert(t.caret, s, t.pending); err != nil {
		return err
	}
	t.pending = nil
	t.caret += len([]rune(s))
	t.clearTransientSelection()
	e.sel = SelectionContext{Element: id, Start: t.caret, End: t.caret}
	t.relayout()
	e.markDirtyLocked()
	return nil
}

// DeleteTextRange removes the rune interval [start, end) from a box in
// edit mode.
func (e *Engine) DeleteTextRange(id ElementID, start, end int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.textBoxLocked(id)
	if err != nil {
		return err
	}
	if t.state != StateEditing {
		return ErrNotEditing
	}
	if err := t.text.Delete(start, end); err != nil {
		return err
	}
	t.caret = start
	t.clearTransientSelection()
	e.sel = SelectionContext{Element: id, Start: start, End: start}
	t.relayout()
	e.markDirtyLocked()
	return nil
}

// RemoveElements deletes the given elements. Ids not present are
// ignored. The whole operation is rejected while any targeted element is
// in active text-edit mode.
func (e *Engine) RemoveElements(ids ...ElementID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	targets := make(map[ElementID]bool, len(ids))
	for _, id := range ids {
		targets[id] = true
	}
	for _, el := range e.elements {
		if t, ok := el.(*TextBox); ok && targets[el.ID()] && t.state == StateEditing {
			return ErrEditing
		}
	}

	kept := e.elements[:0]
	removed := 0
	for _, el := range e.elements {
		if targets[el.ID()] {
			removed++
			delete(e.controls, el.ID())
			if e.sel.Element == el.ID() {
				e.sel = SelectionContext{}
			}
			continue
		}
		kept = append(kept, el)
	}
	e.elements = kept
	if removed > 0 {
		e.markDirtyLocked()
	}
	return nil
}

// ReorderAction selects a z-order change.
type ReorderAction uint8

const (
	// ToFront moves the element to the top of the z-order.
	ToFront ReorderAction = iota
	// ToBack moves the element to the bottom of the z-order.
	ToBack
	// Forward swaps the element with its next-higher neighbor.
	Forward
	// Backward swaps the element with its next-lower neighbor.
	Backward
)

// String returns the string representation of the action.
func (a ReorderAction) String() string {
	switch a {
	case ToFront:
		return "ToFront"
	case ToBack:
		return "ToBack"
	case Forward:
		return "Forward"
	case Backward:
		return "Backward"
	default:
		return "Unknown"
	}
}

// Reorder changes the element's z-order index. The relative order of all
// other elements is preserved.
func (e *Engine) Reorder(id ElementID, action ReorderAction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := -1
	for i, el := range e.elements {
		if el.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrElementNotFound
	}
	el := e.elements[idx]
	switch action {
	case ToFront:
		e.elements = append(append(e.elements[:idx:idx], e.elements[idx+1:]...), el)
	case ToBack:
		rest := append(e.elements[:idx:idx], e.elements[idx+1:]...)
		e.elements = append([]Element{el}, rest...)
	case Forward:
		if idx < len(e.elements)-1 {
			e.elements[idx], e.elements[idx+1] = e.elements[idx+1], e.elements[idx]
		}
	case Backward:
		if idx > 0 {
			e.elements[idx], e.elements[idx-1] = e.elements[idx-1], e.elements[idx]
		}
	}
	e.markDirtyLocked()
	return nil
}

// DeletePayload removes a stored payload that no element references any
// longer, e.g. after the host prunes its side panel.
func (e *Engine) DeletePayload(ctx context.Context, kind ElementKind, ref persist.PayloadRef) error {
	switch kind {
	case KindImage:
		return e.store.DeleteImage(ctx, ref)
	case KindAudioAnchor:
		return e.store.DeleteAudio(ctx, ref)
	case KindTextBox:
		return nil
	default:
		return nil
	}
}

// findLocked returns the element with the given id, or nil.
func (e *Engine) findLocked(id ElementID) Element {
	for _, el := range e.elements {
		if el.ID() == id {
			return el
		}
	}
	return nil
}

// textBoxLocked resolves id to a TextBox or returns the applicable
// sentinel.
func (e *Engine) textBoxLocked(id ElementID) (*TextBox, error) {
	el := e.findLocked(id)
	if el == nil {
		return nil, ErrElementNotFound
	}
	t, ok := el.(*TextBox)
	if !ok {
		return nil, ErrNotTextBox
	}
	return t, nil
}

// IsNotFound reports whether err is a missing-reference failure from the
// persistence collaborator.
func IsNotFound(err error) bool {
	return errors.Is(err, persist.ErrNotFound)
}
