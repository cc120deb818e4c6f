// Package canvas implements the document engine behind a freeform
// journal page: an ordered set of placed elements (text boxes, images,
// audio anchors) that the host UI mutates through edit gestures and that
// the engine keeps synchronized with a remote persistence store on a
// debounced schedule.
//
// # Quick Start
//
//	import (
//	    "github.com/inkleaf/canvas"
//	    "github.com/inkleaf/canvas/persist"
//	)
//
//	eng := canvas.NewEngine(canvas.WithStore(persist.NewMemStore()))
//
//	id, _ := eng.AddTextBox(canvas.Pt(200, 100))
//	eng.EnterEdit(id)
//	eng.InsertText(id, "Hello")
//	eng.Resize(id, 260)
//
// Every mutating operation marks the document dirty; 1.5s after the last
// dirty mutation the whole document is serialized and written to the
// store as a single overwrite. Save progress is exposed through
// Engine.Status and Engine.OnStatus.
//
// # Architecture
//
// The module is organized into:
//   - canvas: the engine, the Element variants, geometry, autosave
//   - richtext: style runs, measuring, line wrapping and layout
//   - persist: the store contract plus HTTP and in-memory implementations
//   - thumbnail: bounded thumbnail generation for image ingestion
//
// # Coordinate System
//
// Page coordinates, origin at the top-left, X increasing right and Y
// increasing down. Element positions are snapped to a fixed grid step on
// every move. A TextBox grows downward only: its top edge is an anchor
// that layout never moves.
//
// # Concurrency
//
// An Engine serializes all mutations behind an internal mutex; callers
// may use it from any goroutine. Saves run off the caller's goroutine and
// never block mutations.
package canvas
