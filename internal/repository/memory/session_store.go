// Package memory provides map-backed implementations of the repository
// ports. They satisfy the same contracts as the MySQL repositories,
// including generated IDs, stamped timestamps and independent copies on
// every read, which makes them the storage used by the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// SessionStore holds sessions and their seat maps in process memory.
type SessionStore struct {
	mu     sync.RWMutex
	nextID uint64
	items  map[uint64]*model.Session

	// Now stamps CreatedAt and UpdatedAt. Tests pin it.
	Now func() time.Time
}

// NewSessionStore returns an empty store stamping wall-clock UTC times.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		items: make(map[uint64]*model.Session),
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// GetByID returns a copy of the stored session or ErrSessionNotFound.
func (s *SessionStore) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.items[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Save inserts the session when its ID is zero, assigning the next ID
// and the creation timestamp on the passed struct, and replaces the
// stored row otherwise.
func (s *SessionStore) Save(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	if sess.ID == 0 {
		s.nextID++
		sess.ID = s.nextID
		sess.CreatedAt = now
	} else if _, ok := s.items[sess.ID]; !ok {
		return model.ErrSessionNotFound
	}
	sess.UpdatedAt = now
	s.items[sess.ID] = sess.Clone()
	return nil
}

// FindByMovie returns copies of every session for the movie, ordered by
// ID.
func (s *SessionStore) FindByMovie(ctx context.Context, movieID uint64) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Session, 0)
	for _, sess := range s.items {
		if sess.MovieID == movieID {
			out = append(out, sess.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListAll returns copies of every session ordered by ID.
func (s *SessionStore) ListAll(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Session, 0, len(s.items))
	for _, sess := range s.items {
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
