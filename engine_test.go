package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/inkleaf/canvas/persist"
	"github.com/inkleaf/canvas/richtext"
)

// manualTimer is a Timer driven explicitly by tests.
type manualTimer struct {
	mu        sync.Mutex
	scheduled int
	fn        func()
}

func (m *manualTimer) Schedule(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled++
	m.fn = fn
}

func (m *manualTimer) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	armed := m.fn != nil
	m.fn = nil
	return armed
}

// Fire runs the pending callback, if any.
func (m *manualTimer) Fire() {
	m.mu.Lock()
	fn := m.fn
	m.fn = nil
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (m *manualTimer) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduled
}

// failingStore wraps a MemStore and fails document writes on demand.
type failingStore struct {
	*persist.MemStore
	failPuts bool
}

func (f *failingStore) PutDocument(ctx context.Context, blob []byte) error {
	if f.failPuts {
		return errors.New("boom")
	}
	return f.MemStore.PutDocument(ctx, blob)
}

func newTestEngine(opts ...Option) (*Engine, *persist.MemStore, *manualTimer) {
	store := persist.NewMemStore()
	timer := &manualTimer{}
	base := []Option{WithStore(store), WithTimer(timer)}
	return NewEngine(append(base, opts...)...), store, timer
}

// pngPayload encodes a w x h solid image for ingestion tests.
func pngPayload(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEngine_AddTextBoxSnapsPosition(t *testing.T) {
	eng, _, _ := newTestEngine()
	id, err := eng.AddTextBox(Pt(200, 100))
	if err != nil {
		t.Fatalf("AddTextBox: %v", err)
	}
	el, ok := eng.Element(id)
	if !ok {
		t.Fatal("element not found after add")
	}
	if got := el.Position(); got != Pt(210, 90) {
		t.Errorf("position = %v, want (210,90)", got)
	}
	tb := el.(*TextBox)
	if tb.LockedWidth() != 240 {
		t.Errorf("locked width = %v, want default 240", tb.LockedWidth())
	}
}

func TestEngine_MoveSnapsBothAxes(t *testing.T) {
	eng, _, _ := newTestEngine()
	id, _ := eng.AddTextBox(Pt(0, 0))
	if err := eng.Move(id, 44, 16); err != nil {
		t.Fatalf("Move: %v", err)
	}
	el, _ := eng.Element(id)
	if got := el.Position(); got != Pt(30, 30) {
		t.Errorf("position = %v, want (30,30)", got)
	}
	if err := eng.Move("missing", 1, 1); !errors.Is(err, ErrElementNotFound) {
		t.Errorf("Move(missing) = %v, want ErrElementNotFound", err)
	}
}

func TestEngine_ResizeAnchorsTopAndClamps(t *testing.T) {
	eng, _, _ := newTestEngine()
	id, _ := eng.AddTextBox(Pt(200, 100))
	el, _ := eng.Element(id)
	topBefore := el.Position().Y

	if err := eng.Resize(id, 300); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	el, _ = eng.Element(id)
	tb := el.(*TextBox)
	if tb.LockedWidth() != 300 {
		t.Errorf("locked width = %v, want 300", tb.LockedWidth())
	}
	if el.Position().Y != topBefore {
		t.Errorf("top edge moved: %v -> %v", topBefore, el.Position().Y)
	}

	// Below the floor clamps up.
	if err := eng.Resize(id, 10); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	el, _ = eng.Element(id)
	if got := el.(*TextBox).LockedWidth(); got != 60 {
		t.Errorf("locked width = %v, want floor 60", got)
	}
}

func TestEngine_ResizeNonTextBoxRejected(t *testing.T) {
	eng, _, _ := newTestEngine()
	id, err := eng.AddImage(context.Background(), pngPayload(t, 40, 20), Pt(0, 0))
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	if err := eng.Resize(id, 100); !errors.Is(err, ErrNotTextBox) {
		t.Errorf("Resize(image) = %v, want ErrNotTextBox", err)
	}
}

func TestEngine_LockedWidthStableUnderTyping(t *testing.T) {
	eng, _, _ := newTestEngine()
	id, _ := eng.AddTextBox(Pt(0, 0))
	if err := eng.EnterEdit(id); err != nil {
		t.Fatalf("EnterEdit: %v", err)
	}

	el, _ := eng.Element(id)
	tb := el.(*TextBox)
	want := tb.LockedWidth()
	heightBefore := tb.Layout().Height

	for _, chunk := range []string{"Hello", " journal", " this text keeps growing and wrapping", " and growing"} {
		if err := eng.InsertText(id, chunk); err != nil {
			t.Fatalf("InsertText: %v", err)
		}
		el, _ = eng.Element(id)
		tb = el.(*TextBox)
		if tb.LockedWidth() != want {
			t.Fatalf("locked width changed while typing: %v -> %v", want, tb.LockedWidth())
		}
		if tb.Layout().Width != want {
			t.Fatalf("layout wrap width = %v, want locked %v", tb.Layout().Width, want)
		}
	}
	el, _ = eng.Element(id)
	if el.(*TextBox).Layout().Height <= heightBefore {
		t.Error("typing enough text should grow height")
	}
}

func TestEngine_ApplyTextStyle(t *testing.T) {
	t.Run("whole box outside edit mode", func(t *testing.T) {
		eng, _, _ := newTestEngine()
		id, _ := eng.AddTextBox(Pt(0, 0))
		if err := eng.EnterEdit(id); err != nil {
			t.Fatal(err)
		}
		if err := eng.InsertText(id, "abcdef"); err != nil {
			t.Fatal(err)
		}
		eng.Blur()

		if err := eng.ApplyTextStyle(id, &Range{Start: 1, End: 3}, richtext.Bold(true)); err != nil {
			t.Fatalf("ApplyTextStyle: %v", err)
		}
		el, _ := eng.Element(id)
		txt := el.(*TextBox).Text()
		for i := 0; i < 6; i++ {
			if !txt.StyleAt(i).Bold {
				t.Fatalf("rune %d not bold: whole-box application expected outside edit mode", i)
			}
		}
	})

	t.Run("range merge keeps existing attributes", func(t *testing.T) {
		eng, _, _ := newTestEngine()
		id, _ := eng.AddTextBox(Pt(0, 0))
		if err := eng.EnterEdit(id); err != nil {
			t.Fatal(err)
		}
		if err := eng.InsertText(id, "abcdefgh"); err != nil {
			t.Fatal(err)
		}
		if err := eng.ApplyTextStyle(id, &Range{Start: 3, End: 4}, richtext.Italic(true)); err != nil {
			t.Fatal(err)
		}
		if err := eng.ApplyTextStyle(id, &Range{Start: 2, End: 5}, richtext.Bold(true)); err != nil {
			t.Fatal(err)
		}
		el, _ := eng.Element(id)
		txt := el.(*TextBox).Text()

		checks := []struct {
			idx          int
			bold, italic bool
		}{
			{1, false, false},
			{2, true, false},
			{3, true, true},
			{4, true, false},
			{5, false, false},
		}
		for _, c := range checks {
			st := txt.StyleAt(c.idx)
			if st.Bold != c.bold || st.Italic != c.italic {
				t.Errorf("rune %d: bold=%v italic=%v, want bold=%v italic=%v",
					c.idx, st.Bold, st.Italic, c.bold, c.italic)
			}
		}
	})

	t.Run("caret records pending style for next insertion", func(t *testing.T) {
		eng, _, _ := newTestEngine()
		id, _ := eng.AddTextBox(Pt(0, 0))
		if err := eng.EnterEdit(id); err != nil {
			t.Fatal(err)
		}
		if err := eng.InsertText(id, "ab"); err != nil {
			t.Fatal(err)
		}
		if err := eng.ApplyTextStyle(id, &Range{Start: 2, End: 2}, richtext.Bold(true)); err != nil {
			t.Fatal(err)
		}
		if err := eng.InsertText(id, "X"); err != nil {
			t.Fatal(err)
		}
		el, _ := eng.Element(id)
		txt := el.(*TextBox).Text()
		if txt.StyleAt(0).Bold || txt.StyleAt(1).Bold {
			t.Error("pending style leaked onto existing text")
		}
		if !txt.StyleAt(2).Bold {
			t.Error("inserted character should carry the pending style")
		}
		// Consumed: the next insertion is plain again.
		if err := eng.InsertText(id, "Y"); err != nil {
			t.Fatal(err)
		}
		el, _ = eng.Element(id)
		if el.(*TextBox).Text().StyleAt(3).Bold {
			t.Error("pending style should be consumed by one insertion")
		}
	})
}

func TestEngine_SetAlignmentForcesRelayout(t *testing.T) {
	eng, _, _ := newTestEngine()
	id, _ := eng.AddTextBox(Pt(0, 0))
	if err := eng.EnterEdit(id); err != nil {
		t.Fatal(err)
	}
	if err := eng.InsertText(id, "several words that wrap across a couple of lines here"); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetAlignment(id, richtext.AlignJustify); err != nil {
		t.Fatalf("SetAlignment: %v", err)
	}
	el, _ := eng.Element(id)
	tb := el.(*TextBox)
	if tb.Alignment() != richtext.AlignJustify {
		t.Fatalf("alignment = %v, want Justify", tb.Alignment())
	}
	lines := tb.Layout().Lines
	if len(lines) < 2 {
		t.Fatalf("expected wrapped text, got %d lines", len(lines))
	}
	if lines[0].GapSpacing <= 0 {
		t.Error("justified non-final line should have positive gap spacing")
	}
	if lines[len(lines)-1].GapSpacing != 0 {
		t.Error("final line of a justified paragraph stays flush left")
	}
}

func TestEngine_RemoveElements(t *testing.T) {
	eng, _, _ := newTestEngine()
	a, _ := eng.AddTextBox(Pt(0, 0))
	b, _ := eng.AddTextBox(Pt(60, 60))

	// Removing while a target is in edit mode is rejected wholesale.
	if err := eng.EnterEdit(b); err != nil {
		t.Fatal(err)
	}
	if err := eng.RemoveElements(a, b); !errors.Is(err, ErrEditing) {
		t.Fatalf("RemoveElements while editing = %v, want ErrEditing", err)
	}
	if len(eng.Elements()) != 2 {
		t.Fatal("rejected removal must not remove anything")
	}

	eng.Blur()
	if err := eng.RemoveElements(a, "not-present"); err != nil {
		t.Fatalf("RemoveElements: %v", err)
	}
	els := eng.Elements()
	if len(els) != 1 || els[0].ID() != b {
		t.Errorf("unexpected elements after removal: %v", els)
	}
}

func TestEngine_Reorder(t *testing.T) {
	eng, _, _ := newTestEngine()
	a, _ := eng.AddTextBox(Pt(0, 0))
	b, _ := eng.AddTextBox(Pt(0, 60))
	c, _ := eng.AddTextBox(Pt(0, 120))

	order := func() []ElementID {
		var ids []ElementID
		for _, el := range eng.Elements() {
			ids = append(ids, el.ID())
		}
		return ids
	}
	assertOrder := func(t *testing.T, want ...ElementID) {
		t.Helper()
		got := order()
		if len(got) != len(want) {
			t.Fatalf("order = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order = %v, want %v", got, want)
			}
		}
	}

	if err := eng.Reorder(a, ToFront); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, b, c, a)

	if err := eng.Reorder(a, ToBack); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, a, b, c)

	if err := eng.Reorder(b, Forward); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, a, c, b)

	if err := eng.Reorder(a, Backward); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, a, c, b) // already backmost: no-op

	if err := eng.Reorder("missing", ToFront); !errors.Is(err, ErrElementNotFound) {
		t.Errorf("Reorder(missing) = %v, want ErrElementNotFound", err)
	}
}

func TestEngine_AddImage(t *testing.T) {
	t.Run("uploads payload and thumbnail", func(t *testing.T) {
		eng, store, _ := newTestEngine()
		id, err := eng.AddImage(context.Background(), pngPayload(t, 800, 400), Pt(100, 100))
		if err != nil {
			t.Fatalf("AddImage: %v", err)
		}
		el, _ := eng.Element(id)
		img := el.(*Image)
		if !img.Synced() {
			t.Fatal("image should be synced after successful upload")
		}
		thumb, ok := store.Thumbnail(img.Ref())
		if !ok || len(thumb) == 0 {
			t.Fatal("thumbnail not stored alongside payload")
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
		if err != nil {
			t.Fatalf("decode thumbnail: %v", err)
		}
		if cfg.Width > 320 || cfg.Height > 320 {
			t.Errorf("thumbnail %dx%d exceeds bound", cfg.Width, cfg.Height)
		}
	})

	t.Run("garbage payload aborts with no element", func(t *testing.T) {
		eng, _, _ := newTestEngine()
		if _, err := eng.AddImage(context.Background(), []byte("not an image"), Pt(0, 0)); err == nil {
			t.Fatal("expected decode error")
		}
		if len(eng.Elements()) != 0 {
			t.Error("failed ingestion must not leave a partial element")
		}
	})

	t.Run("upload failure keeps element unsynced", func(t *testing.T) {
		store := &unsyncedStore{MemStore: persist.NewMemStore()}
		eng := NewEngine(WithStore(store), WithTimer(&manualTimer{}))
		id, err := eng.AddImage(context.Background(), pngPayload(t, 40, 40), Pt(0, 0))
		if err != nil {
			t.Fatalf("AddImage should not fail on upload errors: %v", err)
		}
		el, _ := eng.Element(id)
		if el.(*Image).Synced() {
			t.Error("image should be unsynced after upload failure")
		}
	})
}

// unsyncedStore fails payload uploads but accepts everything else.
type unsyncedStore struct {
	*persist.MemStore
}

func (s *unsyncedStore) PutImage(ctx context.Context, payload, thumbnail []byte) (persist.PayloadRef, error) {
	return "", errors.New("upload refused")
}

func (s *unsyncedStore) PutAudio(ctx context.Context, payload []byte) (persist.PayloadRef, error) {
	return "", errors.New("upload refused")
}

func TestEngine_AddAudioAnchorRegistersControl(t *testing.T) {
	eng, _, _ := newTestEngine()
	payload := []byte("RIFF....WAVEfmt ")
	id, err := eng.AddAudioAnchor(context.Background(), payload, Pt(33, 33))
	if err != nil {
		t.Fatalf("AddAudioAnchor: %v", err)
	}
	ctl, ok := eng.Control(id)
	if !ok {
		t.Fatal("no playback control registered for anchor")
	}
	if !bytes.Equal(ctl.Data, payload) {
		t.Error("control payload mismatch")
	}
	el, _ := eng.Element(id)
	if el.Kind() != KindAudioAnchor {
		t.Errorf("kind = %v, want AudioAnchor", el.Kind())
	}
}

func TestEngine_OverlayRectsFollowScroll(t *testing.T) {
	eng, _, _ := newTestEngine()
	id, _ := eng.AddAudioAnchor(context.Background(), []byte("audio"), Pt(300, 600))

	rects := eng.OverlayRects()
	if len(rects) != 1 || rects[0].Anchor != id {
		t.Fatalf("unexpected overlays: %+v", rects)
	}
	if rects[0].Rect.Min != Pt(300, 600) {
		t.Errorf("unscrolled overlay at %v, want (300,600)", rects[0].Rect.Min)
	}

	eng.SetScroll(Pt(0, 250))
	rects = eng.OverlayRects()
	if rects[0].Rect.Min != Pt(300, 350) {
		t.Errorf("scrolled overlay at %v, want (300,350)", rects[0].Rect.Min)
	}

	// Moving the anchor moves the overlay on the next recompute.
	if err := eng.Move(id, 0, -300); err != nil {
		t.Fatal(err)
	}
	rects = eng.OverlayRects()
	if rects[0].Rect.Min != Pt(300, 50) {
		t.Errorf("overlay after move at %v, want (300,50)", rects[0].Rect.Min)
	}
}

func TestEngine_EndToEndScenario(t *testing.T) {
	// Add a TextBox at (200,100): grid 30 snaps to (210,90). Typing
	// "Hello" keeps width 240. Resize to 260 locks 260, top unchanged.
	// One idle period later, exactly one blob with one element arrives.
	eng, store, timer := newTestEngine()

	id, err := eng.AddTextBox(Pt(200, 100))
	if err != nil {
		t.Fatal(err)
	}
	el, _ := eng.Element(id)
	if el.Position() != Pt(210, 90) {
		t.Fatalf("position = %v, want (210,90)", el.Position())
	}

	if err := eng.EnterEdit(id); err != nil {
		t.Fatal(err)
	}
	if err := eng.InsertText(id, "Hello"); err != nil {
		t.Fatal(err)
	}
	el, _ = eng.Element(id)
	if got := el.(*TextBox).LockedWidth(); got != 240 {
		t.Fatalf("locked width after typing = %v, want 240", got)
	}

	if err := eng.Resize(id, 260); err != nil {
		t.Fatal(err)
	}
	el, _ = eng.Element(id)
	if got := el.(*TextBox).LockedWidth(); got != 260 {
		t.Fatalf("locked width = %v, want 260", got)
	}
	if el.Position().Y != 90 {
		t.Fatalf("top edge moved to %v", el.Position().Y)
	}

	if store.PutCount() != 0 {
		t.Fatal("no save should happen before the quiet period elapses")
	}
	timer.Fire()
	if store.PutCount() != 1 {
		t.Fatalf("puts = %d, want exactly 1", store.PutCount())
	}

	saved, err := store.Document(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var blob documentBlob
	if err := json.Unmarshal(saved, &blob); err != nil {
		t.Fatalf("decode saved blob: %v", err)
	}
	if len(blob.Elements) != 1 {
		t.Fatalf("blob has %d elements, want 1", len(blob.Elements))
	}
	rec := blob.Elements[0]
	if rec.Kind != "TextBox" || rec.TextBox == nil {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.TextBox.LockedWidth != 260 {
		t.Errorf("stored locked width = %v, want 260", rec.TextBox.LockedWidth)
	}
	if rec.X != 210 || rec.Y != 90 {
		t.Errorf("stored position = (%v,%v), want (210,90)", rec.X, rec.Y)
	}
	if rec.TextBox.Text.Content != "Hello" {
		t.Errorf("stored content = %q", rec.TextBox.Text.Content)
	}
}
