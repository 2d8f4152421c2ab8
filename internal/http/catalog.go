package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/tmdb"
)

const upstreamMessage = "Failed to load movies"

func (s *Server) handleListCategory(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown category")
		return
	}
	page, err := parsePageParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.catalog.FetchPage(r.Context(), category, page)
	if err != nil {
		s.respondCatalogError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movie, err := s.catalog.FetchMovie(r.Context(), id)
	if err != nil {
		s.respondCatalogError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "q is required")
		return
	}
	page, err := parsePageParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.catalog.Search(r.Context(), query, page)
	if err != nil {
		s.respondCatalogError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// respondCatalogError maps catalog failures to responses. Network and
// parse failures share one message.
func (s *Server) respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found")
	case errors.Is(err, tmdb.ErrInvalidArgument):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		s.logger.Printf("catalog request failed: %v", err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", upstreamMessage)
	}
}
