package tmdb

import "strings"

const (
	// DefaultImageBaseURL is the CDN prefix for poster and backdrop assets.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	// PlaceholderPoster is shown for movies without a poster.
	PlaceholderPoster = "https://via.placeholder.com/300x450/1f2937/6b7280?text=No+Image"

	SizePoster   = "w500"
	SizeOriginal = "original"
)

// Images builds CDN URLs for catalog image paths.
type Images struct {
	BaseURL string
}

// URL returns the asset URL for path at size, or "" when path is unset.
func (i Images) URL(size string, path *string) string {
	if path == nil || strings.TrimSpace(*path) == "" {
		return ""
	}
	base := i.BaseURL
	if base == "" {
		base = DefaultImageBaseURL
	}
	p := *path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(base, "/") + "/" + size + p
}

// Poster returns the w500 poster URL, falling back to the placeholder image.
func (i Images) Poster(path *string) string {
	if u := i.URL(SizePoster, path); u != "" {
		return u
	}
	return PlaceholderPoster
}

// Backdrop returns the full-size backdrop URL, or "" when absent.
func (i Images) Backdrop(path *string) string {
	return i.URL(SizeOriginal, path)
}
