package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MinDescriptions is the number of description paragraphs a draft keeps
// at all times.
const MinDescriptions = 2

// ErrIndexOutOfRange is returned by draft operations given a bad index.
var ErrIndexOutOfRange = errors.New("index out of range")

// Draft field names accepted by SetField. They match the API form fields.
const (
	FieldTitle         = "title"
	FieldSlug          = "slug"
	FieldPublisherName = "publisher_name"
	FieldProjectLink   = "project_link"
	FieldProjectType   = "project_type"
	FieldHeaderImage   = "header_image_url"
)

// DraftImage is one screenshot slot in a draft.
type DraftImage struct {
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
}

// Draft is the in-memory, unsaved form of a portfolio entry being created
// or edited. All mutation happens through its methods.
type Draft struct {
	Title              string       `json:"title"`
	Slug               string       `json:"slug"`
	PublisherName      string       `json:"publisher_name"`
	ProjectLink        string       `json:"project_link"`
	HeaderImageURL     string       `json:"header_image_url"`
	ProjectType        string       `json:"project_type"`
	SelectedCategories []int64      `json:"selectedCategories"`
	Descriptions       []string     `json:"descriptions"`
	Images             []DraftImage `json:"images"`
}

// NewDraft returns an empty create-flow draft with two blank paragraphs.
func NewDraft() *Draft {
	return &Draft{
		SelectedCategories: []int64{},
		Descriptions:       make([]string, MinDescriptions),
		Images:             []DraftImage{},
	}
}

// DraftFromPortfolio hydrates an edit-flow draft from a stored record.
func DraftFromPortfolio(p *Portfolio) *Draft {
	d := &Draft{
		Title:              p.Title,
		Slug:               p.Slug,
		PublisherName:      p.PublisherName,
		ProjectLink:        p.ProjectLink,
		ProjectType:        p.ProjectType,
		SelectedCategories: make([]int64, 0, len(p.Categories)),
		Descriptions:       append([]string{}, p.Descriptions...),
		Images:             []DraftImage{},
	}
	for _, img := range p.Images {
		if img.IsHeader == 1 {
			if d.HeaderImageURL == "" {
				d.HeaderImageURL = img.ImageURL
			}
			continue
		}
		d.Images = append(d.Images, DraftImage{ImageURL: img.ImageURL, AltText: img.AltText})
	}
	for _, c := range p.Categories {
		d.SelectedCategories = append(d.SelectedCategories, c.ID)
	}
	return d
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.SelectedCategories = slices.Clone(d.SelectedCategories)
	c.Descriptions = slices.Clone(d.Descriptions)
	c.Images = slices.Clone(d.Images)
	return &c
}

// Equal reports whether two drafts hold the same content. Nil and empty
// slices compare equal.
func (d *Draft) Equal(o *Draft) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Title == o.Title &&
		d.Slug == o.Slug &&
		d.PublisherName == o.PublisherName &&
		d.ProjectLink == o.ProjectLink &&
		d.HeaderImageURL == o.HeaderImageURL &&
		d.ProjectType == o.ProjectType &&
		slices.Equal(d.SelectedCategories, o.SelectedCategories) &&
		slices.Equal(d.Descriptions, o.Descriptions) &&
		slices.Equal(d.Images, o.Images)
}

// SetField sets one of the scalar fields by its API name.
func (d *Draft) SetField(field, value string) error {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldSlug:
		d.Slug = value
	case FieldPublisherName:
		d.PublisherName = value
	case FieldProjectLink:
		d.ProjectLink = value
	case FieldProjectType:
		d.ProjectType = value
	case FieldHeaderImage:
		d.HeaderImageURL = value
	default:
		return fmt.Errorf("domain.SetField: unknown field %q", field)
	}
	return nil
}

// Field returns the value of a scalar field by its API name.
func (d *Draft) Field(field string) string {
	switch field {
	case FieldTitle:
		return d.Title
	case FieldSlug:
		return d.Slug
	case FieldPublisherName:
		return d.PublisherName
	case FieldProjectLink:
		return d.ProjectLink
	case FieldProjectType:
		return d.ProjectType
	case FieldHeaderImage:
		return d.HeaderImageURL
	}
	return ""
}

// SetTitle sets the title and, when autoSlug is true, derives the slug.
func (d *Draft) SetTitle(title string, autoSlug bool) {
	d.Title = title
	if autoSlug {
		d.Slug = Slugify(title)
	}
}

// ToggleCategory selects the category if absent and deselects it otherwise.
func (d *Draft) ToggleCategory(id int64) {
	if i := slices.Index(d.SelectedCategories, id); i >= 0 {
		d.SelectedCategories = slices.Delete(slices.Clone(d.SelectedCategories), i, i+1)
		return
	}
	d.SelectedCategories = append(slices.Clone(d.SelectedCategories), id)
}

// HasCategory reports whether the category is selected.
func (d *Draft) HasCategory(id int64) bool {
	return slices.Contains(d.SelectedCategories, id)
}

// UpdateDescriptionAt replaces the paragraph at i.
func (d *Draft) UpdateDescriptionAt(i int, text string) error {
	if i < 0 || i >= len(d.Descriptions) {
		return fmt.Errorf("domain.UpdateDescriptionAt(%d): %w", i, ErrIndexOutOfRange)
	}
	d.Descriptions = slices.Clone(d.Descriptions)
	d.Descriptions[i] = text
	return nil
}

// AddDescription appends an empty paragraph.
func (d *Draft) AddDescription() {
	d.Descriptions = append(slices.Clone(d.Descriptions), "")
}

// DeleteDescriptionAt removes the paragraph at i. When fewer than
// MinDescriptions remain, the list is padded with empty paragraphs.
func (d *Draft) DeleteDescriptionAt(i int) error {
	if i < 0 || i >= len(d.Descriptions) {
		return fmt.Errorf("domain.DeleteDescriptionAt(%d): %w", i, ErrIndexOutOfRange)
	}
	out := slices.Delete(slices.Clone(d.Descriptions), i, i+1)
	for len(out) < MinDescriptions {
		out = append(out, "")
	}
	d.Descriptions = out
	return nil
}

// ReorderDescriptions moves the paragraph at from to position to.
func (d *Draft) ReorderDescriptions(from, to int) error {
	moved, err := Move(d.Descriptions, from, to)
	if err != nil {
		return fmt.Errorf("domain.ReorderDescriptions: %w", err)
	}
	d.Descriptions = moved
	return nil
}

// AppendImage adds a screenshot at the end of the list.
func (d *Draft) AppendImage(url, alt string) {
	d.Images = append(slices.Clone(d.Images), DraftImage{ImageURL: url, AltText: alt})
}

// SetAltText sets the alt text of the screenshot at i.
func (d *Draft) SetAltText(i int, alt string) error {
	if i < 0 || i >= len(d.Images) {
		return fmt.Errorf("domain.SetAltText(%d): %w", i, ErrIndexOutOfRange)
	}
	d.Images = slices.Clone(d.Images)
	d.Images[i].AltText = alt
	return nil
}

// DeleteImageAt removes the screenshot at i and returns it.
func (d *Draft) DeleteImageAt(i int) (DraftImage, error) {
	if i < 0 || i >= len(d.Images) {
		return DraftImage{}, fmt.Errorf("domain.DeleteImageAt(%d): %w", i, ErrIndexOutOfRange)
	}
	removed := d.Images[i]
	d.Images = slices.Delete(slices.Clone(d.Images), i, i+1)
	return removed, nil
}

// ReplaceImageAt swaps the URL of the screenshot at i, keeping its alt
// text, and returns the previous URL.
func (d *Draft) ReplaceImageAt(i int, url string) (string, error) {
	if i < 0 || i >= len(d.Images) {
		return "", fmt.Errorf("domain.ReplaceImageAt(%d): %w", i, ErrIndexOutOfRange)
	}
	d.Images = slices.Clone(d.Images)
	old := d.Images[i].ImageURL
	d.Images[i].ImageURL = url
	return old, nil
}

// ReorderImages moves the screenshot at from to position to.
func (d *Draft) ReorderImages(from, to int) error {
	moved, err := Move(d.Images, from, to)
	if err != nil {
		return fmt.Errorf("domain.ReorderImages: %w", err)
	}
	d.Images = moved
	return nil
}

// NonEmptyDescriptions counts paragraphs with non-blank text.
func (d *Draft) NonEmptyDescriptions() int {
	n := 0
	for _, s := range d.Descriptions {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// Move returns a copy of s with the element at from removed and
// re-inserted at to. The relative order of all other elements is kept.
func Move[T any](s []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return nil, fmt.Errorf("move %d -> %d in %d items: %w", from, to, len(s), ErrIndexOutOfRange)
	}
	out := slices.Clone(s)
	if from == to {
		return out, nil
	}
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item), nil
}
