package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const blobPrefix = "blob:folio/"

var (
	// ErrBlobNotFound is returned for a blob URL that was never stored or
	// has been revoked.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrNotLocal is returned by Fetch for remote URLs.
	ErrNotLocal = errors.New("not a local image URL")
)

// IsLocal reports whether url refers to in-memory image data rather than a
// stored remote image.
func IsLocal(url string) bool {
	return strings.HasPrefix(url, "blob:") || strings.HasPrefix(url, "data:")
}

type blob struct {
	data        []byte
	contentType string
}

// BlobStore keeps cropped images in memory under blob: URLs until they are
// uploaded or revoked.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// NewBlobStore returns an empty store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]blob)}
}

// Put stores data and returns its blob URL.
func (s *BlobStore) Put(data []byte, contentType string) string {
	u := blobPrefix + uuid.NewString()
	s.mu.Lock()
	s.blobs[u] = blob{data: data, contentType: contentType}
	s.mu.Unlock()
	return u
}

// Fetch returns the bytes behind a blob: or data: URL.
func (s *BlobStore) Fetch(rawURL string) ([]byte, error) {
	switch {
	case strings.HasPrefix(rawURL, "blob:"):
		s.mu.RLock()
		b, ok := s.blobs[rawURL]
		s.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("imaging.Fetch %s: %w", rawURL, ErrBlobNotFound)
		}
		return b.data, nil
	case strings.HasPrefix(rawURL, "data:"):
		data, err := decodeDataURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("imaging.Fetch: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("imaging.Fetch %s: %w", rawURL, ErrNotLocal)
}

// Revoke drops a blob. Unknown and non-blob URLs are ignored.
func (s *BlobStore) Revoke(rawURL string) {
	s.mu.Lock()
	delete(s.blobs, rawURL)
	s.mu.Unlock()
}

// Len returns the number of live blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

func decodeDataURL(raw string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URL: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return []byte(s), nil
}
