package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/naveenspark/folio/internal/imaging"
	"github.com/naveenspark/folio/pkg/client"
	"github.com/naveenspark/folio/pkg/domain"
)

// ErrSaveInProgress is returned when a save starts while another one is
// still running.
var ErrSaveInProgress = errors.New("a save is already in progress")

// PortfolioAPI is the part of the API client the saver needs.
type PortfolioAPI interface {
	CreatePortfolio(ctx context.Context, form *client.PortfolioForm) error
	UpdatePortfolio(ctx context.Context, id int64, form *client.PortfolioForm) error
	FetchImage(ctx context.Context, rawURL string) ([]byte, error)
}

// SaveRequest describes one save. ID 0 creates a new portfolio; Original
// is the last saved snapshot and is nil for a create.
type SaveRequest struct {
	ID         int64
	Draft      *domain.Draft
	Original   *domain.Draft
	Categories []domain.Category
}

// IsCreate reports whether the request creates a new portfolio.
func (r SaveRequest) IsCreate() bool {
	return r.ID == 0
}

// Result summarises a successful save.
type Result struct {
	Form     *client.PortfolioForm
	Uploaded int
	Bytes    int
	Created  bool
}

// Saver validates drafts, prepares their images and submits them. Only
// one save runs at a time.
type Saver struct {
	api     PortfolioAPI
	blobs   *imaging.BlobStore
	encoder imaging.ImageEncoder
	policy  MovePolicy
	logger  *slog.Logger
	now     func() time.Time

	inFlight atomic.Bool
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithEncoder replaces the WebP encoder.
func WithEncoder(enc imaging.ImageEncoder) SaverOption {
	return func(s *Saver) { s.encoder = enc }
}

// WithMovePolicy sets how moved screenshots are treated.
func WithMovePolicy(p MovePolicy) SaverOption {
	return func(s *Saver) { s.policy = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SaverOption {
	return func(s *Saver) { s.logger = l }
}

// WithClock replaces time.Now, used for create-flow file names.
func WithClock(now func() time.Time) SaverOption {
	return func(s *Saver) { s.now = now }
}

// NewSaver returns a saver that uploads through api and resolves local
// image URLs from blobs.
func NewSaver(api PortfolioAPI, blobs *imaging.BlobStore, opts ...SaverOption) *Saver {
	s := &Saver{
		api:     api,
		blobs:   blobs,
		encoder: imaging.WebPEncoder{Quality: imaging.DefaultWebPQuality},
		policy:  ReuploadMoved,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the moved-screenshot policy.
func (s *Saver) Policy() MovePolicy {
	return s.policy
}

// Busy reports whether a save is running.
func (s *Saver) Busy() bool {
	return s.inFlight.Load()
}

// Prepare validates the draft and builds the multipart form without
// sending it. Validation failures are returned as *domain.ValidationError
// before any image is fetched.
func (s *Saver) Prepare(ctx context.Context, req SaveRequest) (*client.PortfolioForm, error) {
	if err := req.Draft.Validate(); err != nil {
		return nil, err
	}

	d := req.Draft
	original := req.Original
	if req.IsCreate() {
		original = nil
	}
	slots := Plan(d, original, s.policy)

	form := &client.PortfolioForm{
		Title:         d.Title,
		Slug:          d.Slug,
		PublisherName: d.PublisherName,
		ProjectLink:   d.ProjectLink,
		ProjectType:   d.ProjectType,
		TechCategory:  domain.CategorySlugs(d.SelectedCategories, req.Categories),
		Descriptions:  append([]string{}, d.Descriptions...),
		ImagesMeta:    make([]domain.ImageMeta, 0, len(slots)),
	}

	stamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	for _, slot := range slots {
		if !slot.IsNew {
			form.ImagesMeta = append(form.ImagesMeta, domain.ExistingImage(slot.URL))
			continue
		}
		data, err := s.fetch(ctx, slot.URL)
		if err != nil {
			return nil, fmt.Errorf("editor.Prepare: %s image: %w", slotLabel(slot), err)
		}
		converted, err := imaging.Convert(data, s.encoder)
		if err != nil {
			s.logger.Error("image re-encode failed", "slot", slotLabel(slot), "err", err)
			return nil, fmt.Errorf("editor.Prepare: %s image: %w", slotLabel(slot), err)
		}
		form.ImagesMeta = append(form.ImagesMeta, domain.NewImage(len(form.Files)))
		form.Files = append(form.Files, client.UploadFile{
			Name:        s.fileName(slot, req, stamp),
			ContentType: s.encoder.ContentType(),
			Data:        converted,
		})
	}
	return form, nil
}

// Save prepares and submits the draft. The draft is never modified; on
// success the caller should take a new snapshot of it.
func (s *Saver) Save(ctx context.Context, req SaveRequest) (*Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSaveInProgress
	}
	defer s.inFlight.Store(false)

	form, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	log := s.logger.With("slug", form.Slug, "files", len(form.Files), "bytes", form.UploadSize())
	if req.IsCreate() {
		err = s.api.CreatePortfolio(ctx, form)
	} else {
		log = log.With("id", req.ID)
		err = s.api.UpdatePortfolio(ctx, req.ID, form)
	}
	if err != nil {
		log.Error("portfolio save failed", "err", err)
		return nil, fmt.Errorf("editor.Save: %w", err)
	}
	log.Info("portfolio saved", "create", req.IsCreate())

	return &Result{
		Form:     form,
		Uploaded: len(form.Files),
		Bytes:    form.UploadSize(),
		Created:  req.IsCreate(),
	}, nil
}

func (s *Saver) fetch(ctx context.Context, url string) ([]byte, error) {
	if imaging.IsLocal(url) {
		return s.blobs.Fetch(url)
	}
	return s.api.FetchImage(ctx, url)
}

func (s *Saver) fileName(slot Slot, req SaveRequest, stamp string) string {
	ext := strings.TrimPrefix(s.encoder.Ext(), ".")
	id := strconv.FormatInt(req.ID, 10)
	switch {
	case slot.Kind == SlotHeader && req.IsCreate():
		return fmt.Sprintf("header_%s.%s", stamp, ext)
	case slot.Kind == SlotHeader:
		return fmt.Sprintf("header_%s.%s", id, ext)
	case req.IsCreate():
		return fmt.Sprintf("screenshot_%d_%s.%s", slot.Index, stamp, ext)
	}
	return fmt.Sprintf("screenshot_%s_%d.%s", id, slot.Index, ext)
}

func slotLabel(s Slot) string {
	if s.Kind == SlotHeader {
		return "header"
	}
	return fmt.Sprintf("screenshot %d", s.Index+1)
}
