package domain

import (
	"slices"
	"strings"
)

// Listing sort orders.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortTitleAsc  = "title-asc"
	SortTitleDesc = "title-desc"
)

// SortOrders is the cycle order used by the listing view.
var SortOrders = []string{SortNewest, SortOldest, SortTitleAsc, SortTitleDesc}

// FilterAll disables the category or project type filter.
const FilterAll = "all"

// ListQuery narrows and orders a portfolio listing.
type ListQuery struct {
	Search   string
	Category string // category slug or FilterAll
	Type     string // project type or FilterAll
	Sort     string
}

// IsDefault reports whether the query leaves the listing untouched.
func (q ListQuery) IsDefault() bool {
	return strings.TrimSpace(q.Search) == "" &&
		(q.Category == "" || q.Category == FilterAll) &&
		(q.Type == "" || q.Type == FilterAll) &&
		(q.Sort == "" || q.Sort == SortNewest)
}

// FilterPortfolios returns the portfolios matching q, sorted by q.Sort.
// The input slice is not modified.
func FilterPortfolios(list []Portfolio, q ListQuery) []Portfolio {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Portfolio, 0, len(list))
	for _, p := range list {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Slug), needle) &&
			!strings.Contains(strings.ToLower(p.PublisherName), needle) {
			continue
		}
		if q.Category != "" && q.Category != FilterAll && !p.HasCategory(q.Category) {
			continue
		}
		if q.Type != "" && q.Type != FilterAll && p.ProjectType != q.Type {
			continue
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b Portfolio) int {
		switch q.Sort {
		case SortOldest:
			return a.CreatedAt.Compare(b.CreatedAt)
		case SortTitleAsc:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortTitleDesc:
			return strings.Compare(strings.ToLower(b.Title), strings.ToLower(a.Title))
		case SortNewest, "":
			return b.CreatedAt.Compare(a.CreatedAt)
		}
		return 0
	})
	return out
}

// ProjectTypes returns the distinct non-empty project types in list order.
func ProjectTypes(list []Portfolio) []string {
	var types []string
	for _, p := range list {
		if p.ProjectType != "" && !slices.Contains(types, p.ProjectType) {
			types = append(types, p.ProjectType)
		}
	}
	return types
}

// NextOption returns the element after current in opts, wrapping around.
// An unknown current yields the first option.
func NextOption(opts []string, current string) string {
	if len(opts) == 0 {
		return current
	}
	i := slices.Index(opts, current)
	return opts[(i+1)%len(opts)]
}
