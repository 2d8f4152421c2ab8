package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/listing"
	"github.com/Clark-Hu/cinescope/internal/localstore"
	"github.com/Clark-Hu/cinescope/internal/tmdb"
	"github.com/Clark-Hu/cinescope/internal/view"
)

// stubCatalog serves three pages of twenty movies per category.
type stubCatalog struct {
	fail error
}

func (s *stubCatalog) FetchPage(ctx context.Context, category domain.Category, page int) (domain.Page[domain.MovieSummary], error) {
	if s.fail != nil {
		return domain.Page[domain.MovieSummary]{}, s.fail
	}
	offset := 0
	for i, c := range domain.Categories() {
		if c == category {
			offset = i * 1000
		}
	}
	items := make([]domain.MovieSummary, 0, 20)
	for i := 1; i <= 20; i++ {
		id := offset + (page-1)*20 + i
		items = append(items, domain.MovieSummary{ID: id, Title: fmt.Sprintf("%s %d", category, id)})
	}
	return domain.Page[domain.MovieSummary]{Items: items, PageNumber: page, TotalPages: 3, TotalResults: 60}, nil
}

func (s *stubCatalog) FetchMovie(ctx context.Context, id int) (domain.MovieDetail, error) {
	if id > 5000 {
		return domain.MovieDetail{}, tmdb.ErrNotFound
	}
	runtime := 148
	vote := 8.36
	return domain.MovieDetail{
		MovieSummary: domain.MovieSummary{
			ID:          id,
			Title:       fmt.Sprintf("Movie %d", id),
			Overview:    "A thief who steals corporate secrets.",
			VoteAverage: &vote,
		},
		Runtime: &runtime,
		Genres:  []domain.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
	}, nil
}

func (s *stubCatalog) Search(ctx context.Context, query string, page int) (domain.Page[domain.MovieSummary], error) {
	if !strings.Contains("the matrix", strings.ToLower(query)) {
		return domain.Page[domain.MovieSummary]{PageNumber: page}, nil
	}
	return domain.Page[domain.MovieSummary]{
		Items:      []domain.MovieSummary{{ID: 603, Title: "The Matrix"}},
		PageNumber: page,
		TotalPages: 1,
	}, nil
}

type cliEnv struct {
	catalog *stubCatalog
	dbPath  string
}

func setupCLITestEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Chdir(t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "local.db")
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("LOCAL_DB_PATH", dbPath)
	return &cliEnv{catalog: &stubCatalog{}, dbPath: dbPath}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.logger = log.New(io.Discard, "", 0)
	ctx.catalog = e.catalog
	defer ctx.close()
	cmd := newRootCommand(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestBrowseDefaultsToJSONWhenPiped(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "browse", "top_rated", "--pages", "2")
	require.NoError(t, err)

	result := decodeOutput[browseResult](t, out)
	assert.Equal(t, domain.CategoryTopRated, result.Category)
	assert.Equal(t, "Top Rated Movies", result.Title)
	assert.Equal(t, 2, result.Page)
	assert.True(t, result.HasMore)
	require.Len(t, result.Cards, 40)
	assert.Equal(t, 1001, result.Cards[0].ID)
	assert.Equal(t, 1040, result.Cards[39].ID)
}

func TestBrowsePagesStopAtLastPage(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "browse", "--pages", "10", "-o", "json")
	require.NoError(t, err)
	result := decodeOutput[browseResult](t, out)
	assert.Equal(t, domain.CategoryPopular, result.Category)
	assert.Equal(t, 3, result.Page)
	assert.False(t, result.HasMore)
	assert.Len(t, result.Cards, 60)
}

func TestBrowseTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "browse", "upcoming", "--output", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Upcoming Movies")
	assert.Contains(t, out, "upcoming 2001")
	assert.Contains(t, out, "page 1, 20 movies, more available")
}

func TestBrowseFailureShowsUserMessage(t *testing.T) {
	env := setupCLITestEnv(t)
	env.catalog.fail = errors.New("upstream 500")

	_, _, err := env.run(t, "", "browse", "popular")
	require.Error(t, err)
	assert.Equal(t, listing.ErrorMessage, err.Error())
}

func TestBrowseRejectsUnknownCategory(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "", "browse", "now_playing")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestBrowseInteractive(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "m\nm\nm\nc top_rated\nc bogus\nx\nq\n", "browse", "--interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "Popular Movies")
	assert.Contains(t, out, "page 3, 60 movies, end of list")
	assert.Contains(t, out, "No more movies.")
	assert.Contains(t, out, "Top Rated Movies")
	assert.Contains(t, out, "page 1, 20 movies, more available")
	assert.Contains(t, out, domain.ErrUnknownCategory.Error())
	assert.Contains(t, out, "commands: m (more)")
}

func TestSearch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "search", "matrix", "-o", "json")
	require.NoError(t, err)
	list := decodeOutput[view.ListPage](t, out)
	assert.Equal(t, view.KindSearch, list.Kind)
	assert.Equal(t, "matrix", list.Query)
	require.Len(t, list.Cards, 1)
	assert.Equal(t, 603, list.Cards[0].ID)

	out, _, err = env.run(t, "", "search", "nothing", "here", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, `No movies match "nothing here"`)

	_, _, err = env.run(t, "", "search", "   ")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "show", "27205", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Movie 27205")
	assert.Contains(t, out, "2h 28m")
	assert.Contains(t, out, "Action, Science Fiction")
	assert.Contains(t, out, "8.4")
	assert.Contains(t, out, "A thief who steals corporate secrets.")

	_, _, err = env.run(t, "", "show", "9999")
	assert.EqualError(t, err, "movie 9999 not found")

	_, _, err = env.run(t, "", "show", "abc")
	assert.Error(t, err)
}

func TestFavoritesLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "favorites", "add", "7")
	require.NoError(t, err)
	change := decodeOutput[favoriteChange](t, out)
	assert.Equal(t, favoriteChange{ID: 7, Title: "Movie 7", Favorite: true, Changed: true}, change)

	out, _, err = env.run(t, "", "favorites", "add", "7", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Movie 7 is already a favorite.")

	_, _, err = env.run(t, "", "favorites", "add", "8")
	require.NoError(t, err)

	out, _, err = env.run(t, "", "favorites", "list")
	require.NoError(t, err)
	page := decodeOutput[view.FavoritesPage](t, out)
	require.Equal(t, 2, page.Count)
	assert.Equal(t, []int{7, 8}, []int{page.Cards[0].ID, page.Cards[1].ID})

	out, _, err = env.run(t, "", "browse", "popular")
	require.NoError(t, err)
	result := decodeOutput[browseResult](t, out)
	for _, card := range result.Cards {
		assert.Equal(t, card.ID == 7 || card.ID == 8, card.Favorite, "card %d", card.ID)
	}

	out, _, err = env.run(t, "", "favorites", "toggle", "7")
	require.NoError(t, err)
	assert.False(t, decodeOutput[favoriteChange](t, out).Favorite)

	out, _, err = env.run(t, "", "favorites", "remove", "42", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "movie 42 was not a favorite.")

	_, _, err = env.run(t, "", "favorites", "clear")
	require.NoError(t, err)
	out, _, err = env.run(t, "", "favorites", "list", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "No favorites yet.")

	_, _, err = env.run(t, "", "favorites", "add", "9999")
	assert.ErrorIs(t, err, tmdb.ErrNotFound)
}

func TestCorruptFavoritesQuarantine(t *testing.T) {
	env := setupCLITestEnv(t)

	st, err := localstore.Open(env.dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Put(context.Background(), localNamespace, "favorites", []byte(`{"not":"an array"}`)))
	require.NoError(t, st.Close())

	_, _, err = env.run(t, "", "favorites", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "favorites quarantine")

	_, stderr, err := env.run(t, "", "browse", "popular")
	require.NoError(t, err, "browsing still works with unreadable favorites")
	assert.Contains(t, stderr, "favorites unavailable")

	out, _, err := env.run(t, "", "favorites", "quarantine")
	require.NoError(t, err)
	key := decodeOutput[map[string]string](t, out)["quarantinedKey"]
	assert.True(t, strings.HasPrefix(key, "favorites.corrupt."), key)

	out, _, err = env.run(t, "", "favorites", "list")
	require.NoError(t, err)
	assert.Equal(t, 0, decodeOutput[view.FavoritesPage](t, out).Count)

	out, _, err = env.run(t, "", "favorites", "quarantine", "--list")
	require.NoError(t, err)
	assert.Equal(t, []string{key}, decodeOutput[map[string][]string](t, out)["quarantinedKeys"])
}

func TestInvalidOutputFlag(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "", "browse", "-o", "yaml")
	assert.ErrorContains(t, err, "invalid --output")
}

func TestMissingAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("TMDB_API_KEY", "")

	_, _, err := env.run(t, "", "favorites", "list")
	assert.ErrorContains(t, err, "TMDB_API_KEY")
}
