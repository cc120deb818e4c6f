package canvas

import "github.com/inkleaf/canvas/persist"

// PlaybackControl is the engine-side registration of a native audio
// player bound to an anchor element. The host positions the real control
// over the anchor's overlay rectangle and feeds it Data.
type PlaybackControl struct {
	Anchor ElementID
	Ref    persist.PayloadRef
	Data   []byte
}

// Overlay is the screen-space rectangle a playback control must cover
// for one anchor, valid for the current scroll offset only.
type Overlay struct {
	Anchor ElementID
	Ref    persist.PayloadRef
	Rect   Rect
}

// Control returns the playback control registered for an anchor.
func (e *Engine) Control(id ElementID) (*PlaybackControl, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.controls[id]
	return c, ok
}

// SetScroll records the page scroll offset used to map page coordinates
// to screen coordinates.
func (e *Engine) SetScroll(offset Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scroll = offset
}

// OverlayRects recomputes the screen rectangle of every registered
// playback control from current element geometry. The host calls this
// after every render pass so the overlays never drift from their anchors
// during scroll or pan.
func (e *Engine) OverlayRects() []Overlay {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Overlay
	for _, el := range e.elements {
		a, ok := el.(*AudioAnchor)
		if !ok {
			continue
		}
		c, ok := e.controls[a.id]
		if !ok {
			continue
		}
		out = append(out, Overlay{
			Anchor: a.id,
			Ref:    c.Ref,
			Rect:   a.Bounds().Translate(e.scroll.Mul(-1)),
		})
	}
	return out
}
