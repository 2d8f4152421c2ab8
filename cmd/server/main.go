package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/cinescope/internal/auth"
	"github.com/Clark-Hu/cinescope/internal/config"
	"github.com/Clark-Hu/cinescope/internal/favorites"
	httpserver "github.com/Clark-Hu/cinescope/internal/http"
	"github.com/Clark-Hu/cinescope/internal/jobs"
	"github.com/Clark-Hu/cinescope/internal/kv"
	"github.com/Clark-Hu/cinescope/internal/repository"
	"github.com/Clark-Hu/cinescope/internal/store"
	"github.com/Clark-Hu/cinescope/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CINESCOPE_CONFIG"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[cinescope] ", log.LstdFlags|log.Lshortfile)

	var (
		backend  kv.Store
		authRepo auth.Repository
		health   httpserver.HealthChecker
	)
	if cfg.DBURL == "" {
		logger.Println("DB_URL not set: favorites and accounts are kept in memory and lost on restart")
		backend = kv.NewMemory()
		authRepo = auth.NewMemoryRepository()
	} else {
		st, err := store.New(ctx, cfg.DBURL, store.OptionsFromConfig(cfg, logger))
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer st.Close()

		repo := repository.New(st)
		backend = repo.KV
		authRepo = repo.Auth()
		health = st
	}

	catalog, err := tmdb.NewHTTPClient(tmdb.Options{
		BaseURL:  cfg.TMDBBaseURL,
		APIKey:   cfg.TMDBAPIKey,
		Language: cfg.TMDBLanguage,
		Timeout:  cfg.TMDBTimeout(),
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("init catalog client: %v", err)
	}

	provider, err := auth.NewPasswordProvider(authRepo, auth.Options{
		Cost:       cfg.BcryptCost,
		SessionTTL: cfg.SessionTTL(),
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("init auth provider: %v", err)
	}

	scheduler, err := jobs.Start(provider, cfg.SessionSweepInterval(), logger)
	if err != nil {
		log.Fatalf("start jobs: %v", err)
	}
	defer scheduler.Stop()

	favs := favorites.NewStore(backend, favorites.NewHub(), logger)
	server := httpserver.New(cfg, health, favs, catalog, provider, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
