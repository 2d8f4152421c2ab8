package domain

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category selects which remote collection is paged through.
type Category string

const (
	CategoryPopular  Category = "popular"
	CategoryTopRated Category = "top_rated"
	CategoryUpcoming Category = "upcoming"
)

// ErrUnknownCategory is returned for anything outside the fixed catalog groupings.
var ErrUnknownCategory = errors.New("domain: unknown category")

// Categories lists every supported category in display order.
func Categories() []Category {
	return []Category{CategoryPopular, CategoryTopRated, CategoryUpcoming}
}

// ParseCategory validates a raw category path segment.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.TrimSpace(raw))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPopular, CategoryTopRated, CategoryUpcoming:
		return true
	}
	return false
}

// Title returns the page heading for the category, e.g. "Top Rated Movies".
func (c Category) Title() string {
	if !c.Valid() {
		return "Movies"
	}
	words := strings.ReplaceAll(string(c), "_", " ")
	return cases.Title(language.English).String(words) + " Movies"
}

// ListQuery identifies which remote collection and page is being viewed.
type ListQuery struct {
	Category Category
	Page     int
}

// WithCategory switches the category, resetting to the first page.
func (q ListQuery) WithCategory(c Category) ListQuery {
	return ListQuery{Category: c, Page: 1}
}

// Next returns the query for the following page.
func (q ListQuery) Next() ListQuery {
	return ListQuery{Category: q.Category, Page: q.Page + 1}
}
