// Package thumbnail produces bounded preview images for canvas image
// ingestion.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Decoders for the formats the journal accepts via paste and upload.
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// DefaultBound is the default maximum edge length in pixels.
const DefaultBound = 320

// Generate decodes payload and returns a PNG thumbnail whose longer side
// is at most bound pixels, preserving aspect ratio. Images already
// within the bound are re-encoded at their original size, never
// upscaled. A non-positive bound uses DefaultBound.
func Generate(payload []byte, bound int) ([]byte, error) {
	if bound <= 0 {
		bound = DefaultBound
	}
	src, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("thumbnail: decode: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("thumbnail: empty image")
	}

	tw, th := fit(w, h, bound)
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("thumbnail: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// fit returns dimensions scaled so the longer side equals bound, or the
// original dimensions when both already fit.
func fit(w, h, bound int) (int, int) {
	if w <= bound && h <= bound {
		return w, h
	}
	if w >= h {
		nh := h * bound / w
		if nh < 1 {
			nh = 1
		}
		return bound, nh
	}
	nw := w * bound / h
	if nw < 1 {
		nw = 1
	}
	return nw, bound
}
