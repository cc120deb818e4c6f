package canvas

import "errors"

// Sentinel errors for the canvas package. Invalid mutations coming from
// the host UI are no-ops at the document level; the sentinel tells the
// caller (and the tests) which rule rejected them.
var (
	// ErrElementNotFound is returned when an operation targets an id not
	// present in the document.
	ErrElementNotFound = errors.New("canvas: element not found")

	// ErrNotTextBox is returned when a text-only operation targets an
	// image or audio anchor.
	ErrNotTextBox = errors.New("canvas: element is not a text box")

	// ErrEditing is returned when a removal targets an element that is in
	// active text-edit mode.
	ErrEditing = errors.New("canvas: element is being edited")

	// ErrNotEditing is returned when a caret operation targets an element
	// that is not in edit mode.
	ErrNotEditing = errors.New("canvas: element is not in edit mode")

	// ErrNoSelection is returned when a formatting command runs with no
	// cached selection to apply it to.
	ErrNoSelection = errors.New("canvas: no cached selection")
)
