package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/TFMV/pivotgraph/metrics"
	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/physics"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// SourceFactory creates the tick source for a new session.
type SourceFactory func() physics.TickSource

// Store holds live sessions keyed by UUID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	newSource SourceFactory
	limit     int
	opts      Options
}

// NewStore creates a store. A limit of zero or less means unlimited.
func NewStore(newSource SourceFactory, limit int, opts Options) *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		newSource: newSource,
		limit:     limit,
		opts:      opts,
	}
}

// Create starts a new session over ds.
func (st *Store) Create(ds *models.Dataset) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.limit > 0 && len(st.sessions) >= st.limit {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManySessions, st.limit)
	}

	id := uuid.NewString()
	s, err := New(id, ds, st.newSource(), st.opts)
	if err != nil {
		return nil, err
	}
	st.sessions[id] = s
	metrics.ActiveSessions.Set(float64(len(st.sessions)))
	return s, nil
}

// Get returns a session by id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete closes and removes a session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	metrics.ActiveSessions.Set(float64(len(st.sessions)))
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Close()
	return nil
}

// List returns the sorted session ids.
func (st *Store) List() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Close destroys every session.
func (st *Store) Close() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	metrics.ActiveSessions.Set(0)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
