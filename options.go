package canvas

import (
	"time"

	"github.com/inkleaf/canvas/persist"
	"github.com/inkleaf/canvas/richtext"
)

// Option configures an Engine during creation.
//
// Example:
//
//	eng := canvas.NewEngine(
//	    canvas.WithStore(persist.NewHTTPStore("https://journal.example", nil)),
//	    canvas.WithGridStep(30),
//	)
type Option func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	store              persist.Store
	gridStep           float64
	debounce           time.Duration
	minTextBoxWidth    float64
	defaultLockedWidth float64
	thumbnailBound     int
	pageSize           Point
	background         string
	audioAnchorSize    Point
	measurer           richtext.Measurer
	policy             richtext.LayoutPolicy
	timer              Timer
}

// defaultOptions returns the default engine options.
func defaultOptions() engineOptions {
	return engineOptions{
		store:              persist.NewMemStore(),
		gridStep:           30,
		debounce:           1500 * time.Millisecond,
		minTextBoxWidth:    60,
		defaultLockedWidth: 240,
		thumbnailBound:     320,
		pageSize:           Pt(1080, 1528),
		background:         "ruled",
		audioAnchorSize:    Pt(240, 54),
	}
}

// WithStore sets the persistence collaborator. The default is an
// in-memory store, useful for tests and demos only.
func WithStore(s persist.Store) Option {
	return func(o *engineOptions) {
		if s != nil {
			o.store = s
		}
	}
}

// WithGridStep sets the grid step that element positions snap to on
// every move. Non-positive disables snapping.
func WithGridStep(step float64) Option {
	return func(o *engineOptions) {
		o.gridStep = step
	}
}

// WithDebounce sets the quiet period between the last dirty mutation and
// the autosave it triggers. The default is 1.5s.
func WithDebounce(d time.Duration) Option {
	return func(o *engineOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithMinTextBoxWidth sets the floor that resize gestures clamp to.
func WithMinTextBoxWidth(w float64) Option {
	return func(o *engineOptions) {
		if w > 0 {
			o.minTextBoxWidth = w
		}
	}
}

// WithDefaultLockedWidth sets the locked width of freshly created text
// boxes.
func WithDefaultLockedWidth(w float64) Option {
	return func(o *engineOptions) {
		if w > 0 {
			o.defaultLockedWidth = w
		}
	}
}

// WithThumbnailBound sets the maximum thumbnail edge length in pixels.
func WithThumbnailBound(px int) Option {
	return func(o *engineOptions) {
		if px > 0 {
			o.thumbnailBound = px
		}
	}
}

// WithPageSize sets the page surface dimensions.
func WithPageSize(size Point) Option {
	return func(o *engineOptions) {
		o.pageSize = size
	}
}

// WithBackground sets the page background pattern descriptor. The
// background is decoration: it is never serialized and never an element.
func WithBackground(pattern string) Option {
	return func(o *engineOptions) {
		o.background = pattern
	}
}

// WithMeasurer sets the text measurer used by the default layout policy.
// Use a GoTextMeasurer when the host renders real fonts.
func WithMeasurer(m richtext.Measurer) Option {
	return func(o *engineOptions) {
		o.measurer = m
	}
}

// WithLayoutPolicy sets the layout policy attached to new text boxes,
// overriding the default wrap policy entirely.
func WithLayoutPolicy(p richtext.LayoutPolicy) Option {
	return func(o *engineOptions) {
		o.policy = p
	}
}

// WithTimer substitutes the autosave timer. Tests use this to drive the
// debounce deterministically.
func WithTimer(t Timer) Option {
	return func(o *engineOptions) {
		if t != nil {
			o.timer = t
		}
	}
}
