package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/favorites"
	"github.com/Clark-Hu/cinescope/internal/listing"
	"github.com/Clark-Hu/cinescope/internal/tmdb"
	"github.com/Clark-Hu/cinescope/internal/view"
)

// handleHomePage fetches the first page of every category concurrently. A
// category that fails renders as an empty, flagged section; the page fails
// only when no category loads.
func (s *Server) handleHomePage(w http.ResponseWriter, r *http.Request) {
	categories := domain.Categories()
	results := make([][]domain.MovieSummary, len(categories))
	errs := make([]error, len(categories))

	var g errgroup.Group
	for i, category := range categories {
		g.Go(func() error {
			page, err := s.catalog.FetchPage(r.Context(), category, 1)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = page.Items
			return nil
		})
	}
	_ = g.Wait()

	feed := view.HomeFeed{
		Movies: make(map[domain.Category][]domain.MovieSummary, len(categories)),
		Failed: make(map[domain.Category]bool),
	}
	var lastErr error
	for i, category := range categories {
		if errs[i] != nil {
			s.logger.Printf("home: %s section unavailable: %v", category, errs[i])
			feed.Failed[category] = true
			lastErr = errs[i]
			continue
		}
		feed.Movies[category] = results[i]
	}
	if len(feed.Failed) == len(categories) {
		s.respondPageError(w, lastErr)
		return
	}

	lookup := s.favoriteLookup(r.Context(), r)
	s.respondJSON(w, http.StatusOK, s.views.Home(feed, lookup))
}

func (s *Server) handleMoviePage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, view.NotFound())
		return
	}
	detail, err := s.catalog.FetchMovie(r.Context(), id)
	if err != nil {
		s.respondPageError(w, err)
		return
	}
	lookup := s.favoriteLookup(r.Context(), r)
	s.respondJSON(w, http.StatusOK, s.views.MoviePage(detail, lookup.IsFavorite(id)))
}

func (s *Server) handleCategoryPage(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "type"))
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, view.NotFound())
		return
	}
	page, err := parsePageParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	result, err := s.catalog.FetchPage(r.Context(), category, page)
	if err != nil {
		s.respondPageError(w, err)
		return
	}
	lookup := s.favoriteLookup(r.Context(), r)
	s.respondJSON(w, http.StatusOK, s.views.CategoryList(category, result, lookup))
}

// handleSearchPage renders search results. An empty query renders an empty
// result page without calling the catalog.
func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondJSON(w, http.StatusOK, s.views.SearchResults("", domain.Page[domain.MovieSummary]{}, nil))
		return
	}
	page, err := parsePageParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	result, err := s.catalog.Search(r.Context(), query, page)
	if err != nil {
		s.respondPageError(w, err)
		return
	}
	lookup := s.favoriteLookup(r.Context(), r)
	s.respondJSON(w, http.StatusOK, s.views.SearchResults(query, result, lookup))
}

// handleFavoritesPage renders the caller's favorites. Anonymous callers get
// an empty list.
func (s *Server) handleFavoritesPage(w http.ResponseWriter, r *http.Request) {
	ns, err := s.namespace(r, false)
	if err != nil {
		s.respondJSON(w, http.StatusOK, s.views.Favorites(nil))
		return
	}
	set, err := s.favorites.Load(r.Context(), ns)
	if err != nil {
		var decodeErr *favorites.DecodeError
		if errors.As(err, &decodeErr) {
			s.respondJSON(w, http.StatusConflict, view.FavoritesUnreadable())
			return
		}
		s.logger.Printf("load favorites page: %v", err)
		s.respondJSON(w, http.StatusInternalServerError, view.LoadError("Failed to load favorites."))
		return
	}
	s.respondJSON(w, http.StatusOK, s.views.Favorites(set))
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, view.Login())
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, view.Signup())
}

func (s *Server) handleNotFoundPage(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusNotFound, view.NotFound())
}

func (s *Server) respondPageError(w http.ResponseWriter, err error) {
	if errors.Is(err, tmdb.ErrNotFound) {
		s.respondJSON(w, http.StatusNotFound, view.NotFound())
		return
	}
	s.logger.Printf("page load failed: %v", err)
	s.respondJSON(w, http.StatusBadGateway, view.LoadError(listing.ErrorMessage))
}
