// Package favorites keeps each client's list of favorite movies in a
// key-value store and notifies observers whenever a list changes.
package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/maphash"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/kv"
)

// Key is the storage key holding the JSON-encoded favorites array.
const Key = "favorites"

// quarantinePrefix prefixes keys that hold corrupt payloads moved aside.
const quarantinePrefix = "favorites.corrupt."

// ErrInvalidMovie is returned for movies without a positive catalog ID.
var ErrInvalidMovie = errors.New("favorites: movie id must be positive")

// DecodeError reports a stored favorites value that is not a valid JSON
// array of movies. Raw holds the undecodable payload.
type DecodeError struct {
	Namespace string
	Raw       []byte
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("favorites: corrupt value in %s: %v", e.Namespace, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Store reads and writes favorites for a namespace.
type Store struct {
	kv     kv.Store
	hub    *Hub
	logger *log.Logger

	// Writes to one namespace commit and publish under the same stripe, so
	// subscribers see events in commit order.
	seed    maphash.Seed
	stripes [namespaceStripes]sync.Mutex
}

const namespaceStripes = 64

// NewStore returns a Store backed by backend. Change events are published to
// hub, which may be nil when nobody observes changes.
func NewStore(backend kv.Store, hub *Hub, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{kv: backend, hub: hub, logger: logger, seed: maphash.MakeSeed()}
}

// Hub returns the hub change events are published on.
func (s *Store) Hub() *Hub {
	return s.hub
}

// Load returns the favorites of ns. A missing key yields an empty set; a
// corrupt value yields a *DecodeError so callers can warn or quarantine.
func (s *Store) Load(ctx context.Context, ns string) (domain.FavoritesSet, error) {
	raw, err := s.kv.Get(ctx, ns, Key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return domain.FavoritesSet{}, nil
		}
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	return decode(ns, raw)
}

// Contains reports whether movie id is a favorite in ns.
func (s *Store) Contains(ctx context.Context, ns string, id int) (bool, error) {
	set, err := s.Load(ctx, ns)
	if err != nil {
		return false, err
	}
	return set.Contains(id), nil
}

// Add appends movie unless a movie with the same ID is already present.
// It reports whether the set changed.
func (s *Store) Add(ctx context.Context, ns string, movie domain.MovieSummary) (bool, error) {
	if movie.ID <= 0 {
		return false, ErrInvalidMovie
	}
	unlock := s.lockNamespace(ns)
	defer unlock()

	set, changed, err := s.mutate(ctx, ns, func(set domain.FavoritesSet) (domain.FavoritesSet, bool) {
		return set.With(movie)
	})
	if err != nil {
		return false, err
	}
	if changed {
		s.publish(Event{Namespace: ns, Kind: EventAdded, MovieID: movie.ID, Favorites: set})
	}
	return changed, nil
}

// Remove filters out the movie with the given id. Removing an absent id is a
// no-op. It reports whether the set changed.
func (s *Store) Remove(ctx context.Context, ns string, id int) (bool, error) {
	unlock := s.lockNamespace(ns)
	defer unlock()

	set, changed, err := s.mutate(ctx, ns, func(set domain.FavoritesSet) (domain.FavoritesSet, bool) {
		return set.Without(id)
	})
	if err != nil {
		return false, err
	}
	if changed {
		s.publish(Event{Namespace: ns, Kind: EventRemoved, MovieID: id, Favorites: set})
	}
	return changed, nil
}

// Toggle adds movie when absent and removes it when present. It returns the
// membership after the call.
func (s *Store) Toggle(ctx context.Context, ns string, movie domain.MovieSummary) (bool, error) {
	if movie.ID <= 0 {
		return false, ErrInvalidMovie
	}
	unlock := s.lockNamespace(ns)
	defer unlock()

	var added bool
	set, _, err := s.mutate(ctx, ns, func(set domain.FavoritesSet) (domain.FavoritesSet, bool) {
		if set.Contains(movie.ID) {
			added = false
			return set.Without(movie.ID)
		}
		added = true
		return set.With(movie)
	})
	if err != nil {
		return false, err
	}
	kind := EventRemoved
	if added {
		kind = EventAdded
	}
	s.publish(Event{Namespace: ns, Kind: kind, MovieID: movie.ID, Favorites: set})
	return added, nil
}

// Clear deletes the favorites key of ns.
func (s *Store) Clear(ctx context.Context, ns string) error {
	unlock := s.lockNamespace(ns)
	defer unlock()

	if err := s.kv.Delete(ctx, ns, Key); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}
	s.publish(Event{Namespace: ns, Kind: EventCleared, Favorites: domain.FavoritesSet{}})
	return nil
}

// Quarantine moves a corrupt favorites value aside under a unique key and
// resets the list to empty. It returns the quarantine key, or "" when the
// stored value was readable and nothing was moved. The copy is written
// before the main key is touched, so a failed write leaves the corrupt value
// where it was.
func (s *Store) Quarantine(ctx context.Context, ns string) (string, error) {
	unlock := s.lockNamespace(ns)
	defer unlock()

	raw, err := s.kv.Get(ctx, ns, Key)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("quarantine favorites: %w", err)
	}
	if _, err := decode(ns, raw); err == nil {
		return "", nil
	}

	target := quarantinePrefix + uuid.NewString()
	if err := s.kv.Put(ctx, ns, target, raw); err != nil {
		return "", fmt.Errorf("store quarantined favorites: %w", err)
	}

	// Only the bytes that were copied are removed; a value written in the
	// meantime by another process stays.
	replaced := false
	err = s.kv.Update(ctx, ns, Key, func(old []byte, found bool) ([]byte, bool, error) {
		if found && !bytes.Equal(old, raw) {
			replaced = true
			return old, true, nil
		}
		return nil, false, nil
	})
	if err != nil {
		if delErr := s.kv.Delete(ctx, ns, target); delErr != nil {
			s.logger.Printf("favorites: drop unused quarantine copy %s for %s: %v", target, ns, delErr)
		}
		return "", fmt.Errorf("quarantine favorites: %w", err)
	}

	s.logger.Printf("favorites: quarantined corrupt value for %s under %s", ns, target)
	if !replaced {
		s.publish(Event{Namespace: ns, Kind: EventCleared, Favorites: domain.FavoritesSet{}})
	}
	return target, nil
}

// Quarantined lists the keys of values moved aside by Quarantine.
func (s *Store) Quarantined(ctx context.Context, ns string) ([]string, error) {
	keys, err := s.kv.Keys(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("list quarantined favorites: %w", err)
	}
	out := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, quarantinePrefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *Store) lockNamespace(ns string) func() {
	mu := &s.stripes[maphash.String(s.seed, ns)%namespaceStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *Store) mutate(ctx context.Context, ns string, fn func(domain.FavoritesSet) (domain.FavoritesSet, bool)) (domain.FavoritesSet, bool, error) {
	var (
		result  domain.FavoritesSet
		changed bool
	)
	err := s.kv.Update(ctx, ns, Key, func(old []byte, found bool) ([]byte, bool, error) {
		current := domain.FavoritesSet{}
		if found {
			decoded, err := decode(ns, old)
			if err != nil {
				return nil, false, err
			}
			current = decoded
		}
		result, changed = fn(current)
		if !changed {
			return old, found, nil
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return nil, false, err
		}
		return payload, true, nil
	})
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return nil, false, decodeErr
		}
		return nil, false, fmt.Errorf("update favorites: %w", err)
	}
	return result, changed, nil
}

func (s *Store) publish(evt Event) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(evt)
}

func decode(ns string, raw []byte) (domain.FavoritesSet, error) {
	var set domain.FavoritesSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, &DecodeError{Namespace: ns, Raw: raw, Err: err}
	}
	if set == nil {
		// A stored JSON null is treated like an absent key.
		set = domain.FavoritesSet{}
	}
	return set, nil
}
