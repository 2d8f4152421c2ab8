package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date encoded as YYYY-MM-DD, the format used by the catalog.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD value. An empty string yields nil.
func ParseDate(value string) (*Date, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return &Date{Time: t}, nil
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as YYYY-MM-DD, or an empty string when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts YYYY-MM-DD, an empty string, or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}

// MovieSummary is the minimal movie record used for lists and cards.
// The JSON form mirrors the catalog payload so stored favorites stay readable
// by any client that speaks the catalog's field names.
type MovieSummary struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	PosterPath   *string  `json:"poster_path,omitempty"`
	BackdropPath *string  `json:"backdrop_path,omitempty"`
	ReleaseDate  *Date    `json:"release_date,omitempty"`
	VoteAverage  *float64 `json:"vote_average,omitempty"`
}

// ReleaseYear returns the release year, or 0 when the date is unknown.
func (m MovieSummary) ReleaseYear() int {
	if m.ReleaseDate == nil || m.ReleaseDate.IsZero() {
		return 0
	}
	return m.ReleaseDate.Year()
}

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetail is the richer record shown on the movie page.
type MovieDetail struct {
	MovieSummary
	Tagline   string  `json:"tagline,omitempty"`
	Runtime   *int    `json:"runtime,omitempty"`
	Genres    []Genre `json:"genres,omitempty"`
	VoteCount int     `json:"vote_count"`
	Status    string  `json:"status,omitempty"`
	Homepage  string  `json:"homepage,omitempty"`
	IMDbID    string  `json:"imdb_id,omitempty"`
}

// FavoritesSet is an ordered list of movies, unique by ID.
type FavoritesSet []MovieSummary

// Contains reports whether a movie with the given ID is present.
func (s FavoritesSet) Contains(id int) bool {
	return s.index(id) >= 0
}

// With returns the set with movie appended, unless its ID is already present.
func (s FavoritesSet) With(movie MovieSummary) (FavoritesSet, bool) {
	if s.Contains(movie.ID) {
		return s, false
	}
	out := make(FavoritesSet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, movie), true
}

// Without returns the set with every movie matching id filtered out.
func (s FavoritesSet) Without(id int) (FavoritesSet, bool) {
	if !s.Contains(id) {
		return s, false
	}
	out := make(FavoritesSet, 0, len(s))
	for _, movie := range s {
		if movie.ID != id {
			out = append(out, movie)
		}
	}
	return out, true
}

// IDs returns the membership of the set as a lookup map.
func (s FavoritesSet) IDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(s))
	for _, movie := range s {
		ids[movie.ID] = struct{}{}
	}
	return ids
}

func (s FavoritesSet) index(id int) int {
	for i, movie := range s {
		if movie.ID == id {
			return i
		}
	}
	return -1
}
