package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/chai2010/webp"
)

// DefaultWebPQuality matches the 0.9 quality of the browser encoder.
const DefaultWebPQuality = 90

// ImageEncoder writes an image in one format. Upload preparation depends
// on this interface so the encoder can be swapped.
type ImageEncoder interface {
	Encode(w io.Writer, img image.Image) error
	ContentType() string
	Ext() string
}

// WebPEncoder encodes lossy WebP.
type WebPEncoder struct {
	Quality float32
}

func (e WebPEncoder) Encode(w io.Writer, img image.Image) error {
	q := e.Quality
	if q <= 0 || q > 100 {
		q = DefaultWebPQuality
	}
	return webp.Encode(w, img, &webp.Options{Quality: q})
}

func (WebPEncoder) ContentType() string { return "image/webp" }
func (WebPEncoder) Ext() string         { return ".webp" }

// PNGEncoder encodes lossless PNG.
type PNGEncoder struct{}

func (PNGEncoder) Encode(w io.Writer, img image.Image) error { return png.Encode(w, img) }
func (PNGEncoder) ContentType() string                       { return "image/png" }
func (PNGEncoder) Ext() string                               { return ".png" }

// Convert decodes data and re-encodes it with enc.
func Convert(data []byte, enc ImageEncoder) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging.Convert: decode: %w", err)
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imaging.Convert: encode %s: %w", enc.ContentType(), err)
	}
	return buf.Bytes(), nil
}
