// Package imaging turns user-selected files into cropped draft images and
// re-encodes them for upload.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // register decoder
)

// ErrNotImage is returned when a selected file is not an image.
var ErrNotImage = errors.New("please select an image file")

// maxIntakeSize caps files read from disk.
const maxIntakeSize = 25 << 20

// Source is a decoded image selected for a header or screenshot slot.
type Source struct {
	Name   string
	MIME   string
	Data   []byte
	Image  image.Image
	Format string
}

// Intake checks that data is an image and decodes it.
func Intake(name string, data []byte) (*Source, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("imaging.Intake %s (%s): %w", name, mt.String(), ErrNotImage)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging.Intake %s: decode: %w", name, err)
	}
	return &Source{
		Name:   name,
		MIME:   mt.String(),
		Data:   data,
		Image:  img,
		Format: format,
	}, nil
}

// IntakeFile reads path and passes it through Intake.
func IntakeFile(path string) (*Source, error) {
	path = expandHome(strings.TrimSpace(path))
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("imaging.IntakeFile: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("imaging.IntakeFile %s: is a directory: %w", path, ErrNotImage)
	}
	if info.Size() > maxIntakeSize {
		return nil, fmt.Errorf("imaging.IntakeFile %s: file is larger than %d MB", path, maxIntakeSize>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imaging.IntakeFile: %w", err)
	}
	return Intake(filepath.Base(path), data)
}

// DataURL returns the source bytes as a data: URL.
func (s *Source) DataURL() string {
	return "data:" + s.MIME + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}

// Bounds returns the pixel bounds of the decoded image.
func (s *Source) Bounds() image.Rectangle {
	return s.Image.Bounds()
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
