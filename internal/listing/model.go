// Package listing holds the paginated list state behind category pages:
// which items are loaded, whether a fetch is in flight, and whether more
// pages exist.
package listing

import (
	"context"
	"log"
	"sync"

	"github.com/Clark-Hu/cinescope/internal/domain"
)

// ErrorMessage is the single user-facing message for any failed fetch.
const ErrorMessage = "Failed to load movies. Please try again later."

// Fetcher retrieves one page of a category. tmdb.Client satisfies it.
type Fetcher interface {
	FetchPage(ctx context.Context, category domain.Category, page int) (domain.Page[domain.MovieSummary], error)
}

// Status is the state of a Model.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// State is an immutable snapshot of a Model.
type State struct {
	Status   Status
	Category domain.Category
	// Page is the last page successfully loaded, 0 before the first one.
	Page    int
	Items   []domain.MovieSummary
	HasMore bool
	// Err is the cause of the last failure; Message is what users see.
	Err     error
	Message string
}

// Exhausted reports the terminal Loaded state with no further pages.
func (s State) Exhausted() bool {
	return s.Status == StatusLoaded && !s.HasMore
}

// Model drives Idle → Loading → {Loaded, Error} for one category list.
// At most one fetch is in flight; calls that would start a second one
// return false and change nothing. Fetch completions are bound to the
// model's lifetime and dropped after Close or after a category switch.
type Model struct {
	fetcher Fetcher
	logger  *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       State
	generation  uint64
	pending     domain.ListQuery
	failed      domain.ListQuery
	cancelFetch context.CancelFunc
	closed      bool
	observers   map[int]func(State)
	nextObs     int

	// Transitions are queued under mu and delivered by one goroutine at a
	// time, so observers see them in the order they happened.
	queue      []notification
	delivering bool
}

type notification struct {
	state     State
	observers []func(State)
}

// New returns an Idle model for category. Cancelling parent has the same
// effect as Close.
func New(parent context.Context, fetcher Fetcher, category domain.Category, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Model{
		fetcher:   fetcher,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		state:     State{Status: StatusIdle, Category: category, HasMore: true},
		observers: make(map[int]func(State)),
	}
}

// Snapshot returns a copy of the current state.
func (m *Model) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// OnChange registers fn to be called with a snapshot after every state
// transition. It returns a func that unregisters fn.
func (m *Model) OnChange(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

// Load starts fetching the first page. Only valid from Idle.
func (m *Model) Load() bool {
	m.mu.Lock()
	if !m.usableLocked() || m.state.Status != StatusIdle {
		m.mu.Unlock()
		return false
	}
	m.startLocked(m.queryLocked().WithCategory(m.state.Category))
	return m.unlockAndNotify()
}

// LoadMore fetches the next page and appends it. It is a no-op unless the
// model is Loaded with more pages available.
func (m *Model) LoadMore() bool {
	m.mu.Lock()
	if !m.usableLocked() || m.state.Status != StatusLoaded || !m.state.HasMore {
		m.mu.Unlock()
		return false
	}
	m.startLocked(m.queryLocked().Next())
	return m.unlockAndNotify()
}

// Retry re-issues the request that failed. Only valid from Error.
func (m *Model) Retry() bool {
	m.mu.Lock()
	if !m.usableLocked() || m.state.Status != StatusError {
		m.mu.Unlock()
		return false
	}
	m.startLocked(m.failed)
	return m.unlockAndNotify()
}

// SetCategory switches to category, dropping loaded items and any fetch in
// flight, and starts loading its first page. Selecting the category already
// shown is a no-op unless the model is Idle.
func (m *Model) SetCategory(category domain.Category) bool {
	m.mu.Lock()
	if !m.usableLocked() || (category == m.state.Category && m.state.Status != StatusIdle) {
		m.mu.Unlock()
		return false
	}
	m.abortLocked()
	q := m.queryLocked().WithCategory(category)
	m.state = State{Category: category, HasMore: true}
	m.startLocked(q)
	return m.unlockAndNotify()
}

// Reset returns the model to Idle for its current category, discarding
// items and any fetch in flight.
func (m *Model) Reset() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.abortLocked()
	m.state = State{Status: StatusIdle, Category: m.state.Category, HasMore: true}
	m.unlockAndNotify()
}

// Wait blocks until no fetch goroutine is running.
func (m *Model) Wait() {
	m.wg.Wait()
}

// Close tears the model down. Pending fetches are cancelled and their
// results discarded; later calls are no-ops.
func (m *Model) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.generation++
	m.observers = make(map[int]func(State))
	m.queue = nil
	m.mu.Unlock()
	m.cancel()
}

func (m *Model) usableLocked() bool {
	if m.closed {
		return false
	}
	if m.ctx.Err() != nil {
		m.closed = true
		return false
	}
	return true
}

func (m *Model) abortLocked() {
	m.generation++
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
}

// queryLocked is the query of the last loaded page.
func (m *Model) queryLocked() domain.ListQuery {
	return domain.ListQuery{Category: m.state.Category, Page: m.state.Page}
}

func (m *Model) startLocked(q domain.ListQuery) {
	m.generation++
	gen := m.generation

	fetchCtx, cancel := context.WithCancel(m.ctx)
	m.cancelFetch = cancel
	m.pending = q
	m.state.Status = StatusLoading
	m.state.Err = nil
	m.state.Message = ""

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		result, err := m.fetcher.FetchPage(fetchCtx, q.Category, q.Page)
		m.complete(gen, result, err)
	}()
}

func (m *Model) complete(gen uint64, result domain.Page[domain.MovieSummary], err error) {
	m.mu.Lock()
	if m.closed || gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.cancelFetch = nil

	if err != nil {
		m.logger.Printf("listing: fetch %s page %d failed: %v", m.pending.Category, m.pending.Page, err)
		m.failed = m.pending
		m.state.Status = StatusError
		m.state.Err = err
		m.state.Message = ErrorMessage
		m.unlockAndNotify()
		return
	}

	if m.pending.Page == 1 {
		m.state.Items = append([]domain.MovieSummary(nil), result.Items...)
	} else {
		items := make([]domain.MovieSummary, 0, len(m.state.Items)+len(result.Items))
		items = append(items, m.state.Items...)
		m.state.Items = append(items, result.Items...)
	}
	m.state.Page = m.pending.Page
	m.state.HasMore = result.HasMore()
	m.state.Status = StatusLoaded
	m.unlockAndNotify()
}

// unlockAndNotify queues the current state for observers, releases m.mu
// and delivers queued transitions unless another goroutine already is. It
// always returns true so transitions can end with it.
func (m *Model) unlockAndNotify() bool {
	if len(m.observers) > 0 {
		observers := make([]func(State), 0, len(m.observers))
		for _, fn := range m.observers {
			observers = append(observers, fn)
		}
		m.queue = append(m.queue, notification{state: m.snapshotLocked(), observers: observers})
	}
	if m.delivering {
		m.mu.Unlock()
		return true
	}
	m.delivering = true
	for len(m.queue) > 0 {
		n := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		for _, fn := range n.observers {
			fn(n.state)
		}
		m.mu.Lock()
	}
	m.delivering = false
	m.mu.Unlock()
	return true
}

func (m *Model) snapshotLocked() State {
	snap := m.state
	snap.Items = append([]domain.MovieSummary(nil), m.state.Items...)
	return snap
}
