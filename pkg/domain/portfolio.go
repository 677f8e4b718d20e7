package domain

import (
	"strings"
	"time"
)

// Portfolio is a stored portfolio entry as returned by the content API.
type Portfolio struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Slug          string           `json:"slug"`
	PublisherName string           `json:"publisher_name"`
	ProjectLink   string           `json:"project_link"`
	ProjectType   string           `json:"project_type"`
	Descriptions  []string         `json:"descriptions"`
	Images        []PortfolioImage `json:"images"`
	Categories    []Category       `json:"categories"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at,omitempty"`
}

// PortfolioImage is one stored image of a portfolio. The header image has
// IsHeader set to 1; screenshots carry 0.
type PortfolioImage struct {
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text,omitempty"`
	IsHeader int    `json:"is_header"`
}

// PlaceholderImage is shown for portfolios without a header image.
const PlaceholderImage = "/placeholder.webp"

// HeaderImage returns the header image URL, or PlaceholderImage.
func (p Portfolio) HeaderImage() string {
	for _, img := range p.Images {
		if img.IsHeader == 1 && img.ImageURL != "" {
			return img.ImageURL
		}
	}
	return PlaceholderImage
}

// Screenshots returns the non-header images in stored order.
func (p Portfolio) Screenshots() []PortfolioImage {
	var out []PortfolioImage
	for _, img := range p.Images {
		if img.IsHeader == 0 {
			out = append(out, img)
		}
	}
	return out
}

// HasCategory reports whether the portfolio is tagged with the category slug.
func (p Portfolio) HasCategory(slug string) bool {
	for _, c := range p.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

// Category is reference data used to tag portfolios.
type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	TotalProjects *int   `json:"total_projects,omitempty"`
}

// CategorySlugs maps category ids to slugs in the order given. Ids that
// are not in cats are dropped.
func CategorySlugs(ids []int64, cats []Category) []string {
	byID := make(map[int64]string, len(cats))
	for _, c := range cats {
		byID[c.ID] = c.Slug
	}
	slugs := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok && s != "" {
			slugs = append(slugs, s)
		}
	}
	return slugs
}

// Admin is the authenticated administrator profile.
type Admin struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"admin_email"`
}

// DisplayName returns "First Last", falling back to the email.
func (a Admin) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Email
	}
	return name
}

// Initials returns the upper-cased first letters of first and last name.
func (a Admin) Initials() string {
	var b strings.Builder
	for _, s := range []string{a.FirstName, a.LastName} {
		if r := []rune(strings.TrimSpace(s)); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	return b.String()
}

// ImageMeta tells the API, per image slot, whether a new file is uploaded
// for it or the stored URL is reused. Slots are header first, then
// screenshots in display order.
type ImageMeta struct {
	ImageURL  *string `json:"image_url"`
	IsNew     bool    `json:"isNew"`
	FileIndex *int    `json:"fileIndex"`
}

// ExistingImage returns the meta entry for a reused URL.
func ExistingImage(url string) ImageMeta {
	return ImageMeta{ImageURL: &url}
}

// NewImage returns the meta entry for an uploaded file at fileIndex.
func NewImage(fileIndex int) ImageMeta {
	return ImageMeta{IsNew: true, FileIndex: &fileIndex}
}
