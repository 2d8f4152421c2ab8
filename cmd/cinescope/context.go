package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Clark-Hu/cinescope/internal/config"
	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/favorites"
	"github.com/Clark-Hu/cinescope/internal/localstore"
	"github.com/Clark-Hu/cinescope/internal/tmdb"
	"github.com/Clark-Hu/cinescope/internal/view"
)

// localNamespace holds this device's favorites in the local store.
const localNamespace = "local"

const (
	outputAuto  = "auto"
	outputTable = "table"
	outputJSON  = "json"
)

type commandContext struct {
	configPath string
	output     string
	logger     *log.Logger

	configOnce sync.Once
	config     config.Config
	configErr  error

	// catalog and local are created on first use; tests may preset them.
	catalog tmdb.Client
	local   *localstore.Store
}

func newCommandContext() *commandContext {
	return &commandContext{
		output: outputAuto,
		logger: log.New(os.Stderr, "[cinescope] ", log.LstdFlags),
	}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(strings.TrimSpace(c.configPath))
	})
	return c.config, c.configErr
}

func (c *commandContext) catalogClient() (tmdb.Client, error) {
	if c.catalog != nil {
		return c.catalog, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := tmdb.NewHTTPClient(tmdb.Options{
		BaseURL:  cfg.TMDBBaseURL,
		APIKey:   cfg.TMDBAPIKey,
		Language: cfg.TMDBLanguage,
		Timeout:  cfg.TMDBTimeout(),
		Logger:   c.logger,
	})
	if err != nil {
		return nil, err
	}
	c.catalog = client
	return client, nil
}

func (c *commandContext) favoritesStore() (*favorites.Store, error) {
	if c.local == nil {
		cfg, err := c.ensureConfig()
		if err != nil {
			return nil, err
		}
		st, err := localstore.Open(cfg.LocalDBPath)
		if err != nil {
			return nil, err
		}
		c.local = st
	}
	return favorites.NewStore(c.local, nil, c.logger), nil
}

// localFavorites returns the local favorite IDs for marking cards. An
// unreadable store marks nothing and is reported on stderr.
func (c *commandContext) localFavorites(cmd *cobra.Command) view.FavoriteLookup {
	favs, err := c.favoritesStore()
	if err == nil {
		var set domain.FavoritesSet
		set, err = favs.Load(cmd.Context(), localNamespace)
		if err == nil {
			return view.FavoriteIDs(set.IDs())
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: favorites unavailable: %v\n", err)
	return nil
}

func (c *commandContext) renderer() view.Renderer {
	return view.Renderer{Images: tmdb.Images{BaseURL: c.config.TMDBImageBaseURL}}
}

// wantJSON reports whether output to w should be JSON: when asked for, or
// in auto mode when w is not a terminal.
func (c *commandContext) wantJSON(w io.Writer) bool {
	switch c.output {
	case outputJSON:
		return true
	case outputTable:
		return false
	}
	return !isTerminal(w)
}

func (c *commandContext) close() error {
	if c.local == nil {
		return nil
	}
	err := c.local.Close()
	c.local = nil
	return err
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
