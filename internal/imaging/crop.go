package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

const (
	// AspectRatio is the fixed width:height of every cropped image.
	AspectRatio = 3.0 / 2.0
	MinZoom     = 1.0
	MaxZoom     = 3.0
	// ZoomStep is the increment used by the crop overlay.
	ZoomStep = 0.1
)

// FrameSize returns the crop frame for a container of the given width.
func FrameSize(width int) (int, int) {
	return width, int(math.Round(float64(width) / AspectRatio))
}

// Cropper tracks zoom and pan over a source image and computes the
// selected region. Pan is normalised to [-1, 1] on each axis and is pinned
// to the centre at zoom 1.
type Cropper struct {
	bounds image.Rectangle
	zoom   float64
	panX   float64
	panY   float64
}

// NewCropper returns a cropper at zoom 1 over the given image bounds.
func NewCropper(bounds image.Rectangle) *Cropper {
	return &Cropper{bounds: bounds, zoom: MinZoom}
}

// Zoom returns the current zoom factor.
func (c *Cropper) Zoom() float64 { return c.zoom }

// Pan returns the current normalised pan offsets.
func (c *Cropper) Pan() (float64, float64) { return c.panX, c.panY }

// SetZoom clamps z into [MinZoom, MaxZoom].
func (c *Cropper) SetZoom(z float64) {
	c.zoom = clamp(math.Round(z*10)/10, MinZoom, MaxZoom)
	if c.zoom == MinZoom {
		c.panX, c.panY = 0, 0
	}
}

// ZoomBy adjusts the zoom by delta.
func (c *Cropper) ZoomBy(delta float64) {
	c.SetZoom(c.zoom + delta)
}

// Move shifts the pan offsets. It has no effect at zoom 1.
func (c *Cropper) Move(dx, dy float64) {
	if c.zoom == MinZoom {
		return
	}
	c.panX = clamp(c.panX+dx, -1, 1)
	c.panY = clamp(c.panY+dy, -1, 1)
}

// Reset returns to zoom 1, centred.
func (c *Cropper) Reset() {
	c.zoom, c.panX, c.panY = MinZoom, 0, 0
}

// Area returns the selected region in source pixel coordinates. At zoom 1
// it is the largest 3:2 rectangle that fits the image; higher zoom shrinks
// it around the panned centre, always inside the image.
func (c *Cropper) Area() image.Rectangle {
	w, h := float64(c.bounds.Dx()), float64(c.bounds.Dy())
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	baseW, baseH := w, w/AspectRatio
	if w/h > AspectRatio {
		baseW, baseH = h*AspectRatio, h
	}
	cw := math.Max(1, math.Round(baseW/c.zoom))
	ch := math.Max(1, math.Round(baseH/c.zoom))

	cx := w/2 + c.panX*(w-cw)/2
	cy := h/2 + c.panY*(h-ch)/2
	x0 := clamp(math.Round(cx-cw/2), 0, w-cw)
	y0 := clamp(math.Round(cy-ch/2), 0, h-ch)

	minX := c.bounds.Min.X + int(x0)
	minY := c.bounds.Min.Y + int(y0)
	return image.Rect(minX, minY, minX+int(cw), minY+int(ch))
}

// Crop copies area of src onto a new canvas the size of area.
func Crop(src image.Image, area image.Rectangle) image.Image {
	area = area.Intersect(src.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	draw.Copy(dst, image.Point{}, src, area, draw.Src, nil)
	return dst
}

// Preview scales img down to cols x rows pixels for terminal rendering.
func Preview(img image.Image, cols, rows int) *image.RGBA {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Target says which draft slot a crop session fills.
type Target int

const (
	TargetHeader Target = iota
	TargetScreenshot
)

func (t Target) String() string {
	if t == TargetHeader {
		return "header"
	}
	return "screenshot"
}

// CropSession is an open crop dialog. The draft is only touched by the
// caller after Confirm returns a URL; dropping the session is a cancel.
type CropSession struct {
	Target  Target
	Source  *Source
	Cropper *Cropper
}

// NewCropSession opens a crop session over src.
func NewCropSession(target Target, src *Source) *CropSession {
	return &CropSession{
		Target:  target,
		Source:  src,
		Cropper: NewCropper(src.Bounds()),
	}
}

// Confirm crops the selected region, stores it as PNG in store and
// returns the blob URL for the draft.
func (s *CropSession) Confirm(store *BlobStore) (string, error) {
	cropped := Crop(s.Source.Image, s.Cropper.Area())
	var buf bytes.Buffer
	enc := PNGEncoder{}
	if err := enc.Encode(&buf, cropped); err != nil {
		return "", fmt.Errorf("imaging.Confirm: %w", err)
	}
	return store.Put(buf.Bytes(), enc.ContentType()), nil
}

// Preview renders the current crop area at cols x rows.
func (s *CropSession) Preview(cols, rows int) *image.RGBA {
	return Preview(Crop(s.Source.Image, s.Cropper.Area()), cols, rows)
}

// RGB returns the 8-bit components of c.
func RGB(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
