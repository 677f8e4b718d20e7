package domain

import (
	"regexp"
	"strings"
)

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title: lower-cased, runs of anything
// other than a-z and 0-9 collapsed to "-", no leading or trailing "-".
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonSlugRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
