package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/favorites"
	"github.com/Clark-Hu/cinescope/internal/view"
)

type favoritesResponse struct {
	Items domain.FavoritesSet `json:"items"`
	Count int                 `json:"count"`
}

type toggleResponse struct {
	Favorite bool                `json:"favorite"`
	Items    domain.FavoritesSet `json:"items"`
}

type quarantineResponse struct {
	QuarantinedKey string `json:"quarantinedKey,omitempty"`
}

func newFavoritesResponse(set domain.FavoritesSet) favoritesResponse {
	if set == nil {
		set = domain.FavoritesSet{}
	}
	return favoritesResponse{Items: set, Count: len(set)}
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.requireNamespace(w, r, false)
	if !ok {
		return
	}
	set, err := s.favorites.Load(r.Context(), ns)
	if err != nil {
		s.respondFavoritesError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newFavoritesResponse(set))
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.requireNamespace(w, r, false)
	if !ok {
		return
	}
	var movie domain.MovieSummary
	if err := decodeMovieBody(w, r, &movie); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	added, err := s.favorites.Add(r.Context(), ns, movie)
	if err != nil {
		s.respondFavoritesError(w, err)
		return
	}
	s.respondWithFavorites(w, r, ns, statusFor(added))
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.requireNamespace(w, r, false)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	var movie domain.MovieSummary
	if err := decodeMovieBody(w, r, &movie); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if movie.ID == 0 {
		movie.ID = id
	}
	if movie.ID != id {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "body id does not match path id")
		return
	}

	favorite, err := s.favorites.Toggle(r.Context(), ns, movie)
	if err != nil {
		s.respondFavoritesError(w, err)
		return
	}
	set, err := s.favorites.Load(r.Context(), ns)
	if err != nil {
		s.respondFavoritesError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toggleResponse{Favorite: favorite, Items: set})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.requireNamespace(w, r, false)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if _, err := s.favorites.Remove(r.Context(), ns, id); err != nil {
		s.respondFavoritesError(w, err)
		return
	}
	s.respondWithFavorites(w, r, ns, http.StatusOK)
}

func (s *Server) handleClearFavorites(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.requireNamespace(w, r, false)
	if !ok {
		return
	}
	if err := s.favorites.Clear(r.Context(), ns); err != nil {
		s.respondFavoritesError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuarantineFavorites(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.requireNamespace(w, r, false)
	if !ok {
		return
	}
	key, err := s.favorites.Quarantine(r.Context(), ns)
	if err != nil {
		s.respondFavoritesError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, quarantineResponse{QuarantinedKey: key})
}

func (s *Server) respondWithFavorites(w http.ResponseWriter, r *http.Request, ns string, status int) {
	set, err := s.favorites.Load(r.Context(), ns)
	if err != nil {
		s.respondFavoritesError(w, err)
		return
	}
	s.respondJSON(w, status, newFavoritesResponse(set))
}

func (s *Server) respondFavoritesError(w http.ResponseWriter, err error) {
	var decodeErr *favorites.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		s.logger.Printf("corrupt favorites: %v", err)
		s.respondError(w, http.StatusConflict, "CORRUPT_FAVORITES", "Stored favorites are unreadable; quarantine them to start over")
	case errors.Is(err, favorites.ErrInvalidMovie):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "movie id must be positive")
	default:
		s.logger.Printf("favorites error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update favorites")
	}
}

// favoriteLookup returns the favorite IDs of the request's client for
// marking cards. Anonymous requests and unreadable favorites mark nothing.
func (s *Server) favoriteLookup(ctx context.Context, r *http.Request) view.FavoriteIDs {
	ns, err := s.namespace(r, false)
	if err != nil {
		return nil
	}
	set, err := s.favorites.Load(ctx, ns)
	if err != nil {
		s.logger.Printf("load favorites for %s: %v", ns, err)
		return nil
	}
	return view.FavoriteIDs(set.IDs())
}

func statusFor(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
