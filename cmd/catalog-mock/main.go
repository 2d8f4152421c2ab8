package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

const pageSize = 20

// fixture is the mock catalog: raw movie objects in the catalog's wire
// shape, and the ordered ids listed under each category.
type fixture struct {
	Movies     []json.RawMessage `json:"movies"`
	Categories map[string][]int  `json:"categories"`
}

type catalog struct {
	apiKey  string
	byID    map[int]json.RawMessage
	titles  map[int]string
	order   []int
	lists   map[string][]int
	verbose bool
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "mock-catalog.json", "path to mock data file")
		apiKey  = flag.String("api-key", "dev", "api_key value clients must send")
		verbose = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}
	c, err := loadCatalog(file, *apiKey)
	if err != nil {
		log.Fatalf("parse mock data: %v", err)
	}
	c.verbose = *verbose

	addr := ":" + *port
	log.Printf("mock catalog listening on %s with %d movies", addr, len(c.byID))
	if err := http.ListenAndServe(addr, c.handler()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func loadCatalog(raw []byte, apiKey string) (*catalog, error) {
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return nil, err
	}
	c := &catalog{
		apiKey: apiKey,
		byID:   make(map[int]json.RawMessage, len(fx.Movies)),
		titles: make(map[int]string, len(fx.Movies)),
		lists:  fx.Categories,
	}
	for i, movie := range fx.Movies {
		var head struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		}
		if err := json.Unmarshal(movie, &head); err != nil || head.ID <= 0 {
			return nil, fmt.Errorf("movie %d: missing id", i)
		}
		c.byID[head.ID] = movie
		c.titles[head.ID] = strings.ToLower(head.Title)
		c.order = append(c.order, head.ID)
	}
	for name, ids := range c.lists {
		for _, id := range ids {
			if _, ok := c.byID[id]; !ok {
				return nil, fmt.Errorf("category %s: unknown movie %d", name, id)
			}
		}
	}
	return c, nil
}

func (c *catalog) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /movie/{name}", c.handleMovie)
	mux.HandleFunc("GET /search/movie", c.handleSearch)
	return c.checkKey(mux)
}

func (c *catalog) checkKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.verbose {
			log.Printf("%s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != c.apiKey {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"status_code":    7,
				"status_message": "Invalid API key: You must be granted a valid key.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *catalog) handleMovie(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if id, err := strconv.Atoi(name); err == nil {
		movie, ok := c.byID[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"status_code": 34, "status_message": "The resource you requested could not be found."})
			return
		}
		writeJSON(w, http.StatusOK, movie)
		return
	}
	ids, ok := c.lists[name]
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	c.writePage(w, r, ids)
}

func (c *catalog) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	var ids []int
	for _, id := range c.order {
		if query != "" && strings.Contains(c.titles[id], query) {
			ids = append(ids, id)
		}
	}
	c.writePage(w, r, ids)
}

func (c *catalog) writePage(w http.ResponseWriter, r *http.Request, ids []int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	totalPages := (len(ids) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	results := make([]json.RawMessage, 0, pageSize)
	for i := (page - 1) * pageSize; i < len(ids) && i < page*pageSize; i++ {
		results = append(results, c.byID[ids[i]])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":          page,
		"results":       results,
		"total_pages":   totalPages,
		"total_results": len(ids),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}
