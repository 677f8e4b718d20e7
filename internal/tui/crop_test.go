package tui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/folio/internal/imaging"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writeTestPNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, testPNG(t, 60, 40), 0o600); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func newTestCrop(t *testing.T, target imaging.Target) (cropModel, *imaging.BlobStore) {
	t.Helper()
	src, err := imaging.Intake("shot.png", testPNG(t, 60, 40))
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	blobs := imaging.NewBlobStore()
	return newCropModel(src, target, -1, blobs, 80, 30), blobs
}

func TestCropZoomKeys(t *testing.T) {
	m, _ := newTestCrop(t, imaging.TargetScreenshot)
	start := m.session.Cropper.Zoom()

	m, _ = m.Update(keyRunes("+"))
	if got := m.session.Cropper.Zoom(); got <= start {
		t.Errorf("zoom after + = %v, want > %v", got, start)
	}
	m, _ = m.Update(keyRunes("0"))
	if got := m.session.Cropper.Zoom(); got != start {
		t.Errorf("zoom after reset = %v, want %v", got, start)
	}
}

func TestCropEscCancels(t *testing.T) {
	m, blobs := newTestCrop(t, imaging.TargetScreenshot)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(cropCancelledMsg); !ok {
		t.Error("esc should cancel the crop")
	}
	if blobs.Len() != 0 {
		t.Errorf("cancel stored %d blobs, want 0", blobs.Len())
	}
}

func TestCropEnterStoresBlob(t *testing.T) {
	m, blobs := newTestCrop(t, imaging.TargetHeader)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should return a command")
	}
	done, ok := cmd().(cropDoneMsg)
	if !ok {
		t.Fatal("enter should confirm the crop")
	}
	if done.target != imaging.TargetHeader || done.index != -1 {
		t.Errorf("done = %+v", done)
	}
	if !imaging.IsLocal(done.url) {
		t.Errorf("crop url %q should be local", done.url)
	}
	if blobs.Len() != 1 {
		t.Errorf("blobs = %d, want 1", blobs.Len())
	}
}

func TestCropViewShowsPreview(t *testing.T) {
	m, _ := newTestCrop(t, imaging.TargetScreenshot)
	out := m.View()
	for _, want := range []string{"CROP SCREENSHOT", "zoom 1.0x", "aspect 3:2", "▀"} {
		if !strings.Contains(out, want) {
			t.Errorf("crop view missing %q", want)
		}
	}
}

func TestCropPreviewFitsWindow(t *testing.T) {
	m, _ := newTestCrop(t, imaging.TargetScreenshot)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 200, Height: 20})
	cols, rows := m.previewSize()
	if rows > 20-8 {
		t.Errorf("preview rows = %d, want <= 12", rows)
	}
	if cols > 200 {
		t.Errorf("preview cols = %d, want <= 200", cols)
	}
}
