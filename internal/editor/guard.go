package editor

import "github.com/naveenspark/folio/pkg/domain"

// Guard tracks the last saved snapshot of a draft so navigation away can
// be blocked while there are unsaved changes.
type Guard struct {
	original *domain.Draft
}

// NewGuard snapshots original.
func NewGuard(original *domain.Draft) *Guard {
	return &Guard{original: original.Clone()}
}

// Original returns the last saved snapshot. Callers must not modify it.
func (g *Guard) Original() *domain.Draft {
	return g.original
}

// Dirty reports whether current differs from the snapshot.
func (g *Guard) Dirty(current *domain.Draft) bool {
	return !g.original.Equal(current)
}

// MarkSaved replaces the snapshot with a copy of current.
func (g *Guard) MarkSaved(current *domain.Draft) {
	g.original = current.Clone()
}

// ConfirmLeave reports whether leaving the editor needs a confirmation.
func (g *Guard) ConfirmLeave(current *domain.Draft) bool {
	return g.Dirty(current)
}
