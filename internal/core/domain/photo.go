package domain

import (
	"regexp"
	"strings"
)

// Photo references one image of the catalog.
// Two photos are the same photo when their IDs match.
type Photo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source,omitempty"` // file path, empty for bundled photos
}

// Equal reports whether both photos reference the same resource
func (p Photo) Equal(other Photo) bool {
	return p.ID == other.ID
}

// IsLandscape reports whether an image of the given size is wider than tall
func IsLandscape(width, height int) bool {
	return width > height
}

// Orientation returns a short label for the given size
func Orientation(width, height int) string {
	switch {
	case width > height:
		return "landscape"
	case width < height:
		return "portrait"
	default:
		return "square"
	}
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// GenerateSlug creates an identifier-friendly slug from a name
// Converts "Beach Day.JPG" -> "beach-day-jpg"
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = slugInvalid.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return slugDashes.ReplaceAllString(slug, "-")
}
