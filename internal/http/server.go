package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/cinescope/internal/auth"
	"github.com/Clark-Hu/cinescope/internal/config"
	"github.com/Clark-Hu/cinescope/internal/favorites"
	"github.com/Clark-Hu/cinescope/internal/store"
	"github.com/Clark-Hu/cinescope/internal/tmdb"
	"github.com/Clark-Hu/cinescope/internal/view"
)

// HealthChecker reports database health. *store.Store satisfies it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Stats() store.PoolStats
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg       config.Config
	health    HealthChecker
	favorites *favorites.Store
	catalog   tmdb.Client
	auth      auth.Provider
	views     view.Renderer
	logger    *log.Logger
	router    chi.Router
	httpSrv   *http.Server
}

// New constructs the HTTP server with base middleware and routes. health may
// be nil when the server runs without a database.
func New(cfg config.Config, health HealthChecker, favs *favorites.Store, catalog tmdb.Client, authn auth.Provider, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:       cfg,
		health:    health,
		favorites: favs,
		catalog:   catalog,
		auth:      authn,
		views:     view.Renderer{Images: tmdb.Images{BaseURL: cfg.TMDBImageBaseURL}},
		logger:    logger,
		router:    r,
	}
	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/movies/{category}", s.handleListCategory)
		r.Get("/movie/{id}", s.handleGetMovie)
		r.Get("/search", s.handleSearch)

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", s.handleListFavorites)
			r.Post("/", s.handleAddFavorite)
			r.Delete("/", s.handleClearFavorites)
			r.Post("/quarantine", s.handleQuarantineFavorites)
			r.Get("/events", s.handleFavoriteEvents)
			r.Delete("/{id}", s.handleRemoveFavorite)
			r.Post("/{id}/toggle", s.handleToggleFavorite)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignUp)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		})
	})

	s.router.Route("/pages", func(r chi.Router) {
		r.Get("/", s.handleHomePage)
		r.Get("/movie/{id}", s.handleMoviePage)
		r.Get("/movies/{type}", s.handleCategoryPage)
		r.Get("/search", s.handleSearchPage)
		r.Get("/favorites", s.handleFavoritesPage)
		r.Get("/login", s.handleLoginPage)
		r.Get("/signup", s.handleSignupPage)
		r.NotFound(s.handleNotFoundPage)
	})
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

type healthResponse struct {
	Status string           `json:"status"`
	Store  *store.PoolStats `json:"store,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		s.respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.Printf("health check failed: %v", err)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	stats := s.health.Stats()
	s.respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: &stats})
}
