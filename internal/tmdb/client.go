package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Clark-Hu/cinescope/internal/domain"
)

const (
	// DefaultBaseURL is the public TMDB v3 endpoint.
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"
)

const maxResponseBody = 4 << 20 // 4 MiB

// Client defines the contract for querying the movie catalog.
type Client interface {
	FetchPage(ctx context.Context, category domain.Category, page int) (domain.Page[domain.MovieSummary], error)
	FetchMovie(ctx context.Context, id int) (domain.MovieDetail, error)
	Search(ctx context.Context, query string, page int) (domain.Page[domain.MovieSummary], error)
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
	Logger   *log.Logger
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL  *url.URL
	apiKey   string
	language string
	client   *http.Client
	logger   *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed catalog client.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("tmdb: api key is required")
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("parse catalog url: unsupported scheme %q", parsed.Scheme)
	}
	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:  parsed,
		apiKey:   opts.APIKey,
		language: language,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// FetchPage retrieves one page of a category listing.
func (c *HTTPClient) FetchPage(ctx context.Context, category domain.Category, page int) (domain.Page[domain.MovieSummary], error) {
	if !category.Valid() {
		return domain.Page[domain.MovieSummary]{}, fmt.Errorf("%w: category %q", ErrInvalidArgument, category)
	}
	if page < 1 {
		return domain.Page[domain.MovieSummary]{}, fmt.Errorf("%w: page %d", ErrInvalidArgument, page)
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	var payload listResponse
	if err := c.get(ctx, "/movie/"+string(category), q, &payload); err != nil {
		return domain.Page[domain.MovieSummary]{}, err
	}
	return convertPage(payload, page)
}

// Search runs a free-text movie search.
func (c *HTTPClient) Search(ctx context.Context, query string, page int) (domain.Page[domain.MovieSummary], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Page[domain.MovieSummary]{}, fmt.Errorf("%w: empty query", ErrInvalidArgument)
	}
	if page < 1 {
		return domain.Page[domain.MovieSummary]{}, fmt.Errorf("%w: page %d", ErrInvalidArgument, page)
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("include_adult", "false")
	var payload listResponse
	if err := c.get(ctx, "/search/movie", q, &payload); err != nil {
		return domain.Page[domain.MovieSummary]{}, err
	}
	return convertPage(payload, page)
}

// FetchMovie retrieves the detail record of a single movie.
func (c *HTTPClient) FetchMovie(ctx context.Context, id int) (domain.MovieDetail, error) {
	if id <= 0 {
		return domain.MovieDetail{}, fmt.Errorf("%w: movie id %d", ErrInvalidArgument, id)
	}
	var payload detailResponse
	if err := c.get(ctx, "/movie/"+strconv.Itoa(id), url.Values{}, &payload); err != nil {
		return domain.MovieDetail{}, err
	}
	return convertDetail(payload)
}

func (c *HTTPClient) get(ctx context.Context, path string, q url.Values, dst any) error {
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + path
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		if resp.StatusCode != http.StatusNotFound {
			c.logger.Printf("tmdb: unexpected status %d for %s", resp.StatusCode, path)
		}
		return &NetworkError{Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(dst); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

type listResponse struct {
	Page         *int           `json:"page"`
	Results      *[]movieRecord `json:"results"`
	TotalPages   *int           `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

type movieRecord struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	PosterPath   *string  `json:"poster_path"`
	BackdropPath *string  `json:"backdrop_path"`
	ReleaseDate  string   `json:"release_date"`
	VoteAverage  *float64 `json:"vote_average"`
}

type detailResponse struct {
	movieRecord
	Tagline   string         `json:"tagline"`
	Runtime   *int           `json:"runtime"`
	Genres    []domain.Genre `json:"genres"`
	VoteCount int            `json:"vote_count"`
	Status    string         `json:"status"`
	Homepage  string         `json:"homepage"`
	IMDbID    string         `json:"imdb_id"`
}

func convertPage(payload listResponse, requested int) (domain.Page[domain.MovieSummary], error) {
	if payload.Results == nil {
		return domain.Page[domain.MovieSummary]{}, &ParseError{Err: fmt.Errorf("response has no results")}
	}

	page := requested
	if payload.Page != nil && *payload.Page >= 1 {
		page = *payload.Page
	}
	totalPages := page
	if payload.TotalPages != nil && *payload.TotalPages >= 1 {
		totalPages = *payload.TotalPages
	}

	items := make([]domain.MovieSummary, 0, len(*payload.Results))
	for _, rec := range *payload.Results {
		movie, err := convertMovie(rec)
		if err != nil {
			return domain.Page[domain.MovieSummary]{}, err
		}
		items = append(items, movie)
	}

	return domain.Page[domain.MovieSummary]{
		Items:        items,
		PageNumber:   page,
		TotalPages:   totalPages,
		TotalResults: payload.TotalResults,
	}, nil
}

func convertMovie(rec movieRecord) (domain.MovieSummary, error) {
	if rec.ID <= 0 {
		return domain.MovieSummary{}, &ParseError{Err: fmt.Errorf("movie record has invalid id %d", rec.ID)}
	}
	// Unreleased titles often carry a malformed date; treat it as unknown.
	released, err := domain.ParseDate(rec.ReleaseDate)
	if err != nil {
		released = nil
	}
	return domain.MovieSummary{
		ID:           rec.ID,
		Title:        rec.Title,
		Overview:     rec.Overview,
		PosterPath:   normalizePath(rec.PosterPath),
		BackdropPath: normalizePath(rec.BackdropPath),
		ReleaseDate:  released,
		VoteAverage:  rec.VoteAverage,
	}, nil
}

func convertDetail(payload detailResponse) (domain.MovieDetail, error) {
	summary, err := convertMovie(payload.movieRecord)
	if err != nil {
		return domain.MovieDetail{}, err
	}
	runtime := payload.Runtime
	if runtime != nil && *runtime <= 0 {
		runtime = nil
	}
	return domain.MovieDetail{
		MovieSummary: summary,
		Tagline:      payload.Tagline,
		Runtime:      runtime,
		Genres:       payload.Genres,
		VoteCount:    payload.VoteCount,
		Status:       payload.Status,
		Homepage:     payload.Homepage,
		IMDbID:       payload.IMDbID,
	}, nil
}

func normalizePath(ptr *string) *string {
	if ptr == nil {
		return nil
	}
	val := strings.TrimSpace(*ptr)
	if val == "" {
		return nil
	}
	return &val
}
