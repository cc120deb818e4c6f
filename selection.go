package canvas

import "github.com/inkleaf/canvas/richtext"

// EditState is the per-TextBox interaction state.
type EditState uint8

const (
	// StateIdle means the box is not selected.
	StateIdle EditState = iota
	// StateSelected means the object is selected but not being edited.
	StateSelected
	// StateEditing means a caret or range is active inside the box.
	StateEditing
)

// String returns the string representation of the state.
func (s EditState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSelected:
		return "Selected"
	case StateEditing:
		return "Editing"
	default:
		return "Unknown"
	}
}

// SelectionContext is the engine-owned copy of the current text
// selection. It lives outside the element tree because clicking a
// formatting control steals focus and clears a box's live selection
// fields; formatting commands read this cached value instead of guessing
// from transient focus state.
type SelectionContext struct {
	Element ElementID
	Start   int
	End     int
}

// IsZero reports whether no selection is cached.
func (s SelectionContext) IsZero() bool { return s.Element == "" }

// Selection returns the cached selection context.
func (e *Engine) Selection() SelectionContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// Select marks the element as selected (pointer selection). Any other
// text box drops back to idle, ending its edit session.
func (e *Engine) Select(id ElementID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	el := e.findLocked(id)
	if el == nil {
		return ErrElementNotFound
	}
	e.deselectOthersLocked(id)
	if t, ok := el.(*TextBox); ok && t.state == StateIdle {
		t.state = StateSelected
	}
	return nil
}

// EnterEdit puts a text box into edit mode with the caret at the end of
// its content (double-click, or a style operation that needs
// per-character granularity while not yet editing).
func (e *Engine) EnterEdit(id ElementID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enterEditLocked(id)
}

func (e *Engine) enterEditLocked(id ElementID) error {
	t, err := e.textBoxLocked(id)
	if err != nil {
		return err
	}
	e.deselectOthersLocked(id)
	if t.state != StateEditing {
		t.state = StateEditing
		t.caret = t.text.RuneCount()
		t.clearTransientSelection()
		e.sel = SelectionContext{Element: id, Start: t.caret, End: t.caret}
	}
	return nil
}

// SetSelection records a caret or range inside a box in edit mode. The
// host calls this on every selection-change event so the cached
// SelectionContext is always current.
func (e *Engine) SetSelection(id ElementID, start, end int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.textBoxLocked(id)
	if err != nil {
		return err
	}
	if t.state != StateEditing {
		return ErrNotEditing
	}
	n := t.text.RuneCount()
	if start < 0 || end < start || end > n {
		return richtext.ErrInvalidRange
	}
	// Moving the caret away, or selecting a range, discards the pending
	// style; it survives only at the spot it was recorded.
	if start != end || end != t.caret {
		t.pending = nil
	}
	t.selStart, t.selEnd = start, end
	t.caret = end
	e.sel = SelectionContext{Element: id, Start: start, End: end}
	return nil
}

// FocusToolbar records the transient focus loss caused by clicking a
// formatting control: the box's live selection fields clear, the cached
// SelectionContext survives, and the box stays logically in edit mode.
func (e *Engine) FocusToolbar() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sel.IsZero() {
		return
	}
	if t, err := e.textBoxLocked(e.sel.Element); err == nil {
		t.clearTransientSelection()
	}
}

// ApplyStyleToSelection restores the cached selection into its box,
// re-enters editing, and applies the delta. This is the toolbar path of
// the editing -> (toolbar interaction) -> editing transition.
func (e *Engine) ApplyStyleToSelection(delta richtext.StyleDelta) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sel.IsZero() {
		return ErrNoSelection
	}
	sel := e.sel
	t, err := e.textBoxLocked(sel.Element)
	if err != nil {
		return err
	}
	if t.state != StateEditing {
		// enterEditLocked resets the cached selection to a caret at the
		// end of the content, so the saved copy is restored after.
		if err := e.enterEditLocked(sel.Element); err != nil {
			return err
		}
	}
	// Restore the cached range before the mutation; the live fields were
	// cleared by the toolbar's focus steal.
	t.selStart, t.selEnd = sel.Start, sel.End
	t.caret = sel.End
	e.sel = sel

	if sel.Start == sel.End {
		merged := delta
		if t.pending != nil {
			merged = t.pending.Merge(delta)
		}
		t.pending = &merged
		return nil
	}
	if err := t.text.ApplyDelta(sel.Start, sel.End, delta); err != nil {
		return err
	}
	t.relayout()
	e.markDirtyLocked()
	return nil
}

// Blur handles focus moving outside any recognized UI control: every box
// leaves edit mode, pending styles drop, and the cached selection
// clears.
func (e *Engine) Blur() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, el := range e.elements {
		if t, ok := el.(*TextBox); ok && t.state != StateIdle {
			t.state = StateIdle
			t.pending = nil
			t.clearTransientSelection()
		}
	}
	e.sel = SelectionContext{}
}

// deselectOthersLocked drops every box except keep back to idle.
func (e *Engine) deselectOthersLocked(keep ElementID) {
	for _, el := range e.elements {
		t, ok := el.(*TextBox)
		if !ok || el.ID() == keep {
			continue
		}
		if t.state != StateIdle {
			t.state = StateIdle
			t.pending = nil
			t.clearTransientSelection()
		}
	}
	if !e.sel.IsZero() && e.sel.Element != keep {
		e.sel = SelectionContext{}
	}
}
