// Package editor turns a portfolio draft into an upload: it decides which
// images need a new file, builds the images_meta side channel and tracks
// unsaved changes.
package editor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/naveenspark/folio/internal/imaging"
	"github.com/naveenspark/folio/pkg/domain"
)

// MovePolicy decides what happens to a stored screenshot that is no
// longer at its original position.
type MovePolicy int

const (
	// ReuploadMoved re-uploads any screenshot that is not at its original
	// index.
	ReuploadMoved MovePolicy = iota
	// ReuseMoved sends a moved screenshot's stored URL by reference.
	ReuseMoved
)

// ParseMovePolicy parses "reupload" or "reuse".
func ParseMovePolicy(s string) (MovePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reupload":
		return ReuploadMoved, nil
	case "reuse":
		return ReuseMoved, nil
	}
	return ReuploadMoved, fmt.Errorf("editor.ParseMovePolicy: unknown policy %q", s)
}

func (p MovePolicy) String() string {
	if p == ReuseMoved {
		return "reuse"
	}
	return "reupload"
}

// SlotKind distinguishes the header slot from screenshot slots.
type SlotKind int

const (
	SlotHeader SlotKind = iota
	SlotScreenshot
)

// Slot is the upload decision for one image position.
type Slot struct {
	Kind  SlotKind
	Index int // screenshot index; -1 for the header
	URL   string
	IsNew bool
}

// Plan classifies every image slot of current against original, header
// first and then screenshots in display order. A nil original means a
// create, where every image is new.
func Plan(current, original *domain.Draft, policy MovePolicy) []Slot {
	slots := make([]Slot, 0, 1+len(current.Images))

	headerNew := imaging.IsLocal(current.HeaderImageURL) ||
		original == nil ||
		current.HeaderImageURL != original.HeaderImageURL
	slots = append(slots, Slot{Kind: SlotHeader, Index: -1, URL: current.HeaderImageURL, IsNew: headerNew})

	for i, img := range current.Images {
		slots = append(slots, Slot{
			Kind:  SlotScreenshot,
			Index: i,
			URL:   img.ImageURL,
			IsNew: screenshotIsNew(img.ImageURL, i, original, policy),
		})
	}
	return slots
}

func screenshotIsNew(url string, i int, original *domain.Draft, policy MovePolicy) bool {
	if imaging.IsLocal(url) || original == nil {
		return true
	}
	first := slices.IndexFunc(original.Images, func(o domain.DraftImage) bool { return o.ImageURL == url })
	if first < 0 {
		return true
	}
	if policy == ReuseMoved {
		return false
	}
	// Same URL at the same index, and that index is where it first appeared.
	if i < len(original.Images) && original.Images[i].ImageURL == url {
		return first != i
	}
	return true
}

// NewCount returns how many slots need a file upload.
func NewCount(slots []Slot) int {
	n := 0
	for _, s := range slots {
		if s.IsNew {
			n++
		}
	}
	return n
}
