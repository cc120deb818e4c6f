package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkleaf/canvas/persist"
	"github.com/inkleaf/canvas/richtext"
)

// blobVersion is the serialization format version.
const blobVersion = 1

// documentBlob is the transport representation of the whole document.
// The page background decoration is deliberately absent: it is fixed,
// non-interactive, and never round-tripped.
type documentBlob struct {
	Version  int             `json:"version"`
	Revision uint64          `json:"revision"`
	Page     Point           `json:"page"`
	Elements []elementRecord `json:"elements"`
}

// elementRecord is one serialized element. Exactly one of the variant
// payloads is set, matching Kind.
type elementRecord struct {
	Kind string  `json:"kind"`
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`

	TextBox *textBoxRecord `json:"textBox,omitempty"`
	Image   *imageRecord   `json:"image,omitempty"`
	Audio   *audioRecord   `json:"audio,omitempty"`
}

// textBoxRecord carries both the computed layout fields and the
// locked-width override so layout is deterministic on reload.
type textBoxRecord struct {
	Text        richtext.Text `json:"text"`
	Alignment   string        `json:"alignment"`
	LockedWidth float64       `json:"lockedWidth"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Lines       int           `json:"lines"`
}

type imageRecord struct {
	Ref       string  `json:"ref,omitempty"`
	Thumbnail []byte  `json:"thumbnail,omitempty"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Scale     float64 `json:"scale"`
}

type audioRecord struct {
	Ref    string  `json:"ref,omitempty"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Serialize produces the transport-ready representation of the document.
func (e *Engine) Serialize() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.serializeLocked()
}

func (e *Engine) serializeLocked() ([]byte, error) {
	blob := documentBlob{
		Version:  blobVersion,
		Revision: e.revision,
		Page:     e.pageSize,
		Elements: make([]elementRecord, 0, len(e.elements)),
	}
	for _, el := range e.elements {
		rec := elementRecord{
			Kind: el.Kind().String(),
			ID:   string(el.ID()),
			X:    el.Position().X,
			Y:    el.Position().Y,
		}
		switch v := el.(type) {
		case *TextBox:
			rec.TextBox = &textBoxRecord{
				Text:        v.text,
				Alignment:   v.alignment.String(),
				LockedWidth: v.lockedWidth,
				Width:       v.layout.Width,
				Height:      v.layout.Height,
				Lines:       len(v.layout.Lines),
			}
		case *Image:
			rec.Image = &imageRecord{
				Ref:       string(v.ref),
				Thumbnail: v.thumb,
				Width:     v.size.X,
				Height:    v.size.Y,
				Scale:     v.scale,
			}
		case *AudioAnchor:
			rec.Audio = &audioRecord{
				Ref:    string(v.ref),
				Width:  v.size.X,
				Height: v.size.Y,
			}
		}
		blob.Elements = append(blob.Elements, rec)
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("canvas: serialize: %w", err)
	}
	return data, nil
}

// Load fetches the stored document and replaces the live element set.
// An absent document leaves the engine empty and ready. Elements whose
// payload references no longer resolve are omitted with a warning rather
// than aborting the whole load.
func (e *Engine) Load(ctx context.Context) error {
	blob, err := e.store.Document(ctx)
	if err != nil {
		Logger().Warn("document load failed", slog.Any("error", err))
		return fmt.Errorf("canvas: load: %w", err)
	}
	if blob == nil {
		return nil
	}
	return e.LoadBlob(ctx, blob)
}

// LoadBlob replaces the live element set from a serialized document,
// reattaching the locked-width override to every text box and the live
// playback control to every audio anchor. Resolving playback controls
// issues one fetch per distinct audio reference.
func (e *Engine) LoadBlob(ctx context.Context, blob []byte) error {
	var doc documentBlob
	if err := json.Unmarshal(blob, &doc); err != nil {
		return fmt.Errorf("canvas: decode document: %w", err)
	}

	// Resolve audio payloads up front, one fetch per distinct reference.
	audioData := make(map[persist.PayloadRef][]byte)
	for _, rec := range doc.Elements {
		if rec.Audio == nil || rec.Audio.Ref == "" {
			continue
		}
		ref := persist.PayloadRef(rec.Audio.Ref)
		if _, seen := audioData[ref]; seen {
			continue
		}
		data, err := e.store.GetAudio(ctx, ref)
		if err != nil {
			if errors.Is(err, persist.ErrNotFound) {
				Logger().Warn("audio reference no longer resolves, omitting element",
					slog.String("ref", string(ref)))
				continue
			}
			return fmt.Errorf("canvas: fetch audio %s: %w", ref, err)
		}
		audioData[ref] = data
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	elements := make([]Element, 0, len(doc.Elements))
	controls := make(map[ElementID]*PlaybackControl)
	for _, rec := range doc.Elements {
		el, ctl, err := e.restoreLocked(rec, audioData)
		if err != nil {
			Logger().Warn("skipping unrestorable element",
				slog.String("id", rec.ID), slog.Any("error", err))
			continue
		}
		if el == nil {
			continue // omitted: dangling reference
		}
		elements = append(elements, el)
		if ctl != nil {
			controls[el.ID()] = ctl
		}
	}
	e.elements = elements
	e.controls = controls
	e.revision = doc.Revision
	e.sel = SelectionContext{}
	Logger().Info("document loaded",
		slog.Int("elements", len(elements)), slog.Uint64("revision", doc.Revision))
	return nil
}

// restoreLocked rebuilds one element from its stored record. A nil
// element with nil error means the record was deliberately omitted.
func (e *Engine) restoreLocked(rec elementRecord, audioData map[persist.PayloadRef][]byte) (Element, *PlaybackControl, error) {
	pos := Pt(rec.X, rec.Y)
	switch rec.Kind {
	case KindTextBox.String():
		if rec.TextBox == nil {
			return nil, nil, fmt.Errorf("text box record missing payload")
		}
		t := &TextBox{
			id:          ElementID(rec.ID),
			pos:         pos,
			text:        rec.TextBox.Text,
			alignment:   parseAlignment(rec.TextBox.Alignment),
			lockedWidth: rec.TextBox.LockedWidth,
			policy:      e.policy,
		}
		if t.lockedWidth <= 0 {
			t.lockedWidth = e.opts.defaultLockedWidth
		}
		t.relayout()
		return t, nil, nil
	case KindImage.String():
		if rec.Image == nil {
			return nil, nil, fmt.Errorf("image record missing payload")
		}
		scale := rec.Image.Scale
		if scale <= 0 {
			scale = 1
		}
		img := &Image{
			id:     ElementID(rec.ID),
			pos:    pos,
			ref:    persist.PayloadRef(rec.Image.Ref),
			thumb:  rec.Image.Thumbnail,
			size:   Pt(rec.Image.Width, rec.Image.Height),
			scale:  scale,
			synced: rec.Image.Ref != "",
		}
		return img, nil, nil
	case KindAudioAnchor.String():
		if rec.Audio == nil {
			return nil, nil, fmt.Errorf("audio record missing payload")
		}
		ref := persist.PayloadRef(rec.Audio.Ref)
		a := &AudioAnchor{
			id:   ElementID(rec.ID),
			pos:  pos,
			size: Pt(rec.Audio.Width, rec.Audio.Height),
			ref:  ref,
		}
		if ref == "" {
			// Never uploaded. The anchor survives unsynced, like an
			// image whose payload upload failed.
			return a, nil, nil
		}
		data, ok := audioData[ref]
		if !ok {
			// Dangling reference: the element is omitted, not an error.
			return nil, nil, nil
		}
		a.synced = true
		ctl := &PlaybackControl{Anchor: a.id, Ref: ref, Data: data}
		return a, ctl, nil
	default:
		return nil, nil, fmt.Errorf("unknown element kind %q", rec.Kind)
	}
}

// parseAlignment maps a stored alignment name back to the enum,
// defaulting to left for anything unrecognized.
func parseAlignment(s string) richtext.Alignment {
	switch s {
	case richtext.AlignCenter.String():
		return richtext.AlignCenter
	case richtext.AlignRight.String():
		return richtext.AlignRight
	case richtext.AlignJustify.String():
		return richtext.AlignJustify
	default:
		return richtext.AlignLeft
	}
}
