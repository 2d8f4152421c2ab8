package tmdb

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Clark-Hu/cinescope/internal/domain"
)

// TestHTTPClientSmoke checks that the client can parse a live (or mock)
// catalog. It only runs when TMDB_API_KEY is set.
func TestHTTPClientSmoke(t *testing.T) {
	apiKey := os.Getenv("TMDB_API_KEY")
	if apiKey == "" {
		t.Skip("TMDB_API_KEY not provided")
	}
	client, err := NewHTTPClient(Options{
		BaseURL: os.Getenv("TMDB_BASE_URL"),
		APIKey:  apiKey,
		Timeout: 5 * time.Second,
		Logger:  log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("create http client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, err := client.FetchPage(ctx, domain.CategoryPopular, 1)
	if err != nil {
		t.Fatalf("fetch popular: %v", err)
	}
	if len(page.Items) == 0 || page.TotalPages < 1 {
		t.Fatalf("unexpected catalog payload: %+v", page)
	}
}
