package view

import (
	"github.com/Clark-Hu/cinescope/internal/domain"
)

// Page kinds returned to clients so they can pick a layout.
const (
	KindHome      = "home"
	KindList      = "list"
	KindDetail    = "detail"
	KindSearch    = "search"
	KindFavorites = "favorites"
	KindLogin     = "login"
	KindSignup    = "signup"
	KindNotFound  = "not_found"
	KindError     = "error"
)

// HomePage is the landing page: a hero carousel and one section per category.
type HomePage struct {
	Kind     string        `json:"kind"`
	Hero     []Slide       `json:"hero"`
	Sections []SectionView `json:"sections"`
}

// HomeFeed is the first page of each category. A category listed in Failed
// could not be fetched and renders as an empty, flagged section.
type HomeFeed struct {
	Movies map[domain.Category][]domain.MovieSummary
	Failed map[domain.Category]bool
}

// homeSections are the home page rows in display order.
var homeSections = []struct {
	category domain.Category
	title    string
	subtitle string
}{
	{domain.CategoryTopRated, "Top Rated Movies", "The highest rated movies of all time"},
	{domain.CategoryUpcoming, "Coming Soon", "New releases you won't want to miss"},
	{domain.CategoryPopular, "Popular Now", "What everyone is watching right now"},
}

// Home assembles the landing page. The hero carousel shows popular movies.
func (r Renderer) Home(feed HomeFeed, lookup FavoriteLookup) HomePage {
	sections := make([]SectionView, 0, len(homeSections))
	for _, hs := range homeSections {
		section := r.Section(hs.category, feed.Movies[hs.category], SectionSize, lookup)
		section.Title = hs.title
		section.Subtitle = hs.subtitle
		section.Failed = feed.Failed[hs.category]
		sections = append(sections, section)
	}
	return HomePage{
		Kind:     KindHome,
		Hero:     r.Carousel(feed.Movies[domain.CategoryPopular], HeroSlides),
		Sections: sections,
	}
}

// ListPage is one page of a category or search listing.
type ListPage struct {
	Kind       string          `json:"kind"`
	Title      string          `json:"title"`
	Category   domain.Category `json:"category,omitempty"`
	Query      string          `json:"query,omitempty"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	HasMore    bool            `json:"hasMore"`
	Cards      []CardView      `json:"cards"`
}

// CategoryList renders a fetched category page.
func (r Renderer) CategoryList(category domain.Category, page domain.Page[domain.MovieSummary], lookup FavoriteLookup) ListPage {
	return ListPage{
		Kind:       KindList,
		Title:      category.Title(),
		Category:   category,
		Page:       page.PageNumber,
		TotalPages: page.TotalPages,
		HasMore:    page.HasMore(),
		Cards:      r.Cards(page.Items, lookup),
	}
}

// SearchResults renders a search page. An empty query renders no cards.
func (r Renderer) SearchResults(query string, page domain.Page[domain.MovieSummary], lookup FavoriteLookup) ListPage {
	return ListPage{
		Kind:       KindSearch,
		Title:      "Search",
		Query:      query,
		Page:       page.PageNumber,
		TotalPages: page.TotalPages,
		HasMore:    page.HasMore(),
		Cards:      r.Cards(page.Items, lookup),
	}
}

// DetailPage wraps the movie detail view.
type DetailPage struct {
	Kind  string     `json:"kind"`
	Movie DetailView `json:"movie"`
}

// MoviePage renders the movie detail page.
func (r Renderer) MoviePage(detail domain.MovieDetail, favorite bool) DetailPage {
	return DetailPage{Kind: KindDetail, Movie: r.Detail(detail, favorite)}
}

// FavoritesPage lists the client's favorites; every card is a favorite.
type FavoritesPage struct {
	Kind  string     `json:"kind"`
	Title string     `json:"title"`
	Count int        `json:"count"`
	Cards []CardView `json:"cards"`
}

// Favorites renders the favorites page in insertion order.
func (r Renderer) Favorites(set domain.FavoritesSet) FavoritesPage {
	cards := make([]CardView, 0, len(set))
	for _, movie := range set {
		cards = append(cards, r.Card(movie, true))
	}
	return FavoritesPage{Kind: KindFavorites, Title: "My Favorites", Count: len(set), Cards: cards}
}

// FormPage describes the login and signup forms.
type FormPage struct {
	Kind   string   `json:"kind"`
	Title  string   `json:"title"`
	Action string   `json:"action"`
	Fields []string `json:"fields"`
	Alt    string   `json:"alt"`
}

// Login renders the login form description.
func Login() FormPage {
	return FormPage{Kind: KindLogin, Title: "Login", Action: "/api/auth/login", Fields: []string{"email", "password"}, Alt: "/signup"}
}

// Signup renders the signup form description.
func Signup() FormPage {
	return FormPage{Kind: KindSignup, Title: "Sign Up", Action: "/api/auth/signup", Fields: []string{"email", "password"}, Alt: "/login"}
}

// MessagePage is used for not-found and error pages.
type MessagePage struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Retry   bool   `json:"retry,omitempty"`
	Home    string `json:"home"`
}

// NotFound renders the catch-all page.
func NotFound() MessagePage {
	return MessagePage{Kind: KindNotFound, Title: "404", Message: "Page not found", Home: "/"}
}

// LoadError renders the page shown when the catalog could not be reached.
func LoadError(message string) MessagePage {
	return MessagePage{Kind: KindError, Title: "Oops! Something went wrong", Message: message, Retry: true, Home: "/"}
}

// FavoritesUnreadable renders the page shown when stored favorites cannot
// be decoded.
func FavoritesUnreadable() MessagePage {
	return MessagePage{
		Kind:    KindError,
		Title:   "Favorites unavailable",
		Message: "Your saved favorites could not be read. Reset them to start a new list.",
		Home:    "/",
	}
}
