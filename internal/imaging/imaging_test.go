package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestIntakeAcceptsImage(t *testing.T) {
	src, err := Intake("shot.png", pngBytes(t, 30, 20))
	require.NoError(t, err)
	assert.Equal(t, "image/png", src.MIME)
	assert.Equal(t, "png", src.Format)
	assert.Equal(t, image.Rect(0, 0, 30, 20), src.Bounds())
	assert.Contains(t, src.DataURL(), "data:image/png;base64,")
}

func TestIntakeRejectsNonImage(t *testing.T) {
	_, err := Intake("notes.txt", []byte("just some text, definitely not pixels"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = Intake("doc.pdf", []byte("%PDF-1.4\n%âãÏÓ\n"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestIntakeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "header.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 12, 8), 0o600))

	src, err := IntakeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "header.png", src.Name)

	_, err = IntakeFile(dir)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = IntakeFile(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestFrameSize(t *testing.T) {
	w, h := FrameSize(900)
	assert.Equal(t, 900, w)
	assert.Equal(t, 600, h)
}

func TestCropperArea(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		zoom   float64
		panX   float64
		want   image.Rectangle
	}{
		{"square at zoom 1", image.Rect(0, 0, 600, 600), 1, 0, image.Rect(0, 100, 600, 500)},
		{"wide at zoom 1", image.Rect(0, 0, 900, 300), 1, 0, image.Rect(225, 0, 675, 300)},
		{"exact ratio", image.Rect(0, 0, 300, 200), 1, 0, image.Rect(0, 0, 300, 200)},
		{"square at zoom 2", image.Rect(0, 0, 600, 600), 2, 0, image.Rect(150, 200, 450, 400)},
		{"zoom 2 panned right", image.Rect(0, 0, 600, 600), 2, 1, image.Rect(300, 200, 600, 400)},
		{"offset bounds", image.Rect(10, 10, 310, 210), 1, 0, image.Rect(10, 10, 310, 210)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCropper(tc.bounds)
			c.SetZoom(tc.zoom)
			c.Move(tc.panX, 0)
			got := c.Area()
			assert.Equal(t, tc.want, got)
			assert.True(t, got.In(tc.bounds), "area %v outside %v", got, tc.bounds)
		})
	}
}

func TestCropperZoomClampAndPanPinning(t *testing.T) {
	c := NewCropper(image.Rect(0, 0, 300, 200))
	c.SetZoom(5)
	assert.Equal(t, MaxZoom, c.Zoom())
	c.SetZoom(0.2)
	assert.Equal(t, MinZoom, c.Zoom())

	c.Move(1, 1)
	x, y := c.Pan()
	assert.Zero(t, x)
	assert.Zero(t, y)

	c.ZoomBy(ZoomStep * 5)
	assert.InDelta(t, 1.5, c.Zoom(), 1e-9)
	c.Move(3, -3)
	x, y = c.Pan()
	assert.Equal(t, 1.0, x)
	assert.Equal(t, -1.0, y)

	// Zooming back out recentres.
	c.SetZoom(1)
	x, y = c.Pan()
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestCropMatchesAreaSize(t *testing.T) {
	src, err := Intake("s.png", pngBytes(t, 120, 120))
	require.NoError(t, err)
	area := image.Rect(10, 20, 70, 60)
	out := Crop(src.Image, area)
	assert.Equal(t, image.Rect(0, 0, 60, 40), out.Bounds())

	r, g, _ := RGB(out.At(0, 0))
	assert.Equal(t, uint8(10), r)
	assert.Equal(t, uint8(20), g)
}

func TestCropSessionConfirmStoresPNG(t *testing.T) {
	src, err := Intake("s.png", pngBytes(t, 300, 300))
	require.NoError(t, err)
	store := NewBlobStore()

	s := NewCropSession(TargetScreenshot, src)
	s.Cropper.SetZoom(2)
	u, err := s.Confirm(store)
	require.NoError(t, err)
	assert.True(t, IsLocal(u))
	assert.Equal(t, 1, store.Len())

	data, err := store.Fetch(u)
	require.NoError(t, err)
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 150, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	preview := s.Preview(12, 8)
	assert.Equal(t, image.Rect(0, 0, 12, 8), preview.Bounds())
}

func TestBlobStore(t *testing.T) {
	store := NewBlobStore()
	u := store.Put([]byte("abc"), "image/png")

	data, err := store.Fetch(u)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	store.Revoke(u)
	_, err = store.Fetch(u)
	assert.ErrorIs(t, err, ErrBlobNotFound)

	data, err = store.Fetch("data:image/png;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)

	data, err = store.Fetch("data:text/plain,a%20b")
	require.NoError(t, err)
	assert.Equal(t, []byte("a b"), data)

	_, err = store.Fetch("https://cdn.example.com/a.webp")
	assert.ErrorIs(t, err, ErrNotLocal)
}

func TestIsLocal(t *testing.T) {
	assert.True(t, IsLocal("blob:folio/1"))
	assert.True(t, IsLocal("data:image/png;base64,AA=="))
	assert.False(t, IsLocal("https://cdn.example.com/a.webp"))
	assert.False(t, IsLocal(""))
}

func TestConvert(t *testing.T) {
	in := pngBytes(t, 20, 10)

	out, err := Convert(in, WebPEncoder{Quality: DefaultWebPQuality})
	require.NoError(t, err)
	require.Greater(t, len(out), 12)
	assert.Equal(t, "RIFF", string(out[:4]))
	assert.Equal(t, "WEBP", string(out[8:12]))

	out, err = Convert(in, PNGEncoder{})
	require.NoError(t, err)
	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, err = Convert([]byte("nope"), PNGEncoder{})
	assert.Error(t, err)
}
