// Package view turns catalog records into the card, detail, carousel and
// page models clients render. Every function here is pure: favorite state
// is passed in, never read from storage.
package view

import (
	"fmt"
	"strconv"

	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/tmdb"
)

const (
	// HeroSlides is the number of popular movies shown in the home carousel.
	HeroSlides = 5
	// SectionSize is the number of cards in each home page section.
	SectionSize = 6
)

// FavoriteLookup answers whether a movie is a favorite.
type FavoriteLookup interface {
	IsFavorite(id int) bool
}

// FavoriteIDs is a FavoriteLookup over a set of IDs.
type FavoriteIDs map[int]struct{}

// IsFavorite implements FavoriteLookup. A nil map reports false.
func (f FavoriteIDs) IsFavorite(id int) bool {
	_, ok := f[id]
	return ok
}

// Renderer holds the image URL configuration shared by all views.
type Renderer struct {
	Images tmdb.Images
}

// CardView is a movie card in a grid or section.
type CardView struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview,omitempty"`
	PosterURL   string `json:"posterUrl"`
	Rating      string `json:"rating,omitempty"`
	ReleaseYear int    `json:"releaseYear,omitempty"`
	Link        string `json:"link"`
	Favorite    bool   `json:"favorite"`
}

// Card renders one movie.
func (r Renderer) Card(movie domain.MovieSummary, favorite bool) CardView {
	return CardView{
		ID:          movie.ID,
		Title:       movie.Title,
		Overview:    movie.Overview,
		PosterURL:   r.Images.Poster(movie.PosterPath),
		Rating:      domain.FormatVote(movie.VoteAverage),
		ReleaseYear: movie.ReleaseYear(),
		Link:        MovieLink(movie.ID),
		Favorite:    favorite,
	}
}

// Cards renders movies in order, marking favorites from lookup.
func (r Renderer) Cards(movies []domain.MovieSummary, lookup FavoriteLookup) []CardView {
	cards := make([]CardView, 0, len(movies))
	for _, movie := range movies {
		cards = append(cards, r.Card(movie, isFavorite(lookup, movie.ID)))
	}
	return cards
}

// Slide is one hero carousel entry.
type Slide struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	BackdropURL string `json:"backdropUrl"`
	Rating      string `json:"rating,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Link        string `json:"link"`
}

// Carousel renders up to limit movies as slides.
func (r Renderer) Carousel(movies []domain.MovieSummary, limit int) []Slide {
	movies = head(movies, limit)
	slides := make([]Slide, 0, len(movies))
	for _, movie := range movies {
		slides = append(slides, Slide{
			ID:          movie.ID,
			Title:       movie.Title,
			Overview:    movie.Overview,
			BackdropURL: r.Images.Backdrop(movie.BackdropPath),
			Rating:      domain.FormatVote(movie.VoteAverage),
			ReleaseDate: FormatDate(movie.ReleaseDate),
			Link:        MovieLink(movie.ID),
		})
	}
	return slides
}

// SectionView is a titled row of cards with a "view all" link. Failed marks
// a section whose movies could not be loaded; it has no cards.
type SectionView struct {
	Category domain.Category `json:"category"`
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle,omitempty"`
	Link     string          `json:"link"`
	Cards    []CardView      `json:"cards"`
	Failed   bool            `json:"failed,omitempty"`
}

// Section renders the first limit movies of a category.
func (r Renderer) Section(category domain.Category, movies []domain.MovieSummary, limit int, lookup FavoriteLookup) SectionView {
	return SectionView{
		Category: category,
		Title:    category.Title(),
		Link:     CategoryLink(category),
		Cards:    r.Cards(head(movies, limit), lookup),
	}
}

// DetailView is the movie page.
type DetailView struct {
	CardView
	Tagline     string   `json:"tagline,omitempty"`
	BackdropURL string   `json:"backdropUrl,omitempty"`
	Runtime     string   `json:"runtime,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	VoteCount   int      `json:"voteCount"`
	Status      string   `json:"status,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	IMDbURL     string   `json:"imdbUrl,omitempty"`
}

// Detail renders the movie page.
func (r Renderer) Detail(detail domain.MovieDetail, favorite bool) DetailView {
	genres := make([]string, 0, len(detail.Genres))
	for _, g := range detail.Genres {
		genres = append(genres, g.Name)
	}
	v := DetailView{
		CardView:    r.Card(detail.MovieSummary, favorite),
		Tagline:     detail.Tagline,
		BackdropURL: r.Images.Backdrop(detail.BackdropPath),
		Runtime:     FormatRuntime(detail.Runtime),
		Genres:      genres,
		ReleaseDate: FormatDate(detail.ReleaseDate),
		VoteCount:   detail.VoteCount,
		Status:      detail.Status,
		Homepage:    detail.Homepage,
	}
	if detail.IMDbID != "" {
		v.IMDbURL = "https://www.imdb.com/title/" + detail.IMDbID
	}
	return v
}

// FormatRuntime renders minutes as "2h 28m"; nil yields "".
func FormatRuntime(minutes *int) string {
	if minutes == nil || *minutes <= 0 {
		return ""
	}
	h, m := *minutes/60, *minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatDate renders a release date as "January 2, 2006".
func FormatDate(d *domain.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format("January 2, 2006")
}

// MovieLink is the page path of a movie.
func MovieLink(id int) string {
	return "/movie/" + strconv.Itoa(id)
}

// CategoryLink is the page path of a category listing.
func CategoryLink(c domain.Category) string {
	return "/movies/" + string(c)
}

func isFavorite(lookup FavoriteLookup, id int) bool {
	if lookup == nil {
		return false
	}
	return lookup.IsFavorite(id)
}

func head(movies []domain.MovieSummary, limit int) []domain.MovieSummary {
	if limit >= 0 && len(movies) > limit {
		return movies[:limit]
	}
	return movies
}
