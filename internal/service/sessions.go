package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// SessionService manages session creation, schedule changes and
// cancellation. Reads apply the lazy past-time transition: a session
// whose start time has passed is reported UNAVAILABLE on the next read
// without requiring a sweep, and the flipped status is persisted.
type SessionService struct {
	sessions SessionRepository
	clock    Clock
	locks    *LockTable
}

// NewSessionService constructs a SessionService. All dependencies must
// be non-nil.
func NewSessionService(sessions SessionRepository, clock Clock, locks *LockTable) *SessionService {
	if sessions == nil || clock == nil || locks == nil {
		panic("nil dependency passed to NewSessionService")
	}
	return &SessionService{sessions: sessions, clock: clock, locks: locks}
}

// Create schedules a new session and generates its seat map from the
// room capacity. The start time must be in the future.
func (s *SessionService) Create(ctx context.Context, movieID, roomID uint64, capacity int, startsAt time.Time, basePriceCents uint32) (*model.Session, error) {
	sess, err := model.NewSession(movieID, roomID, capacity, startsAt, basePriceCents, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session, applying and persisting the lazy UNAVAILABLE
// transition when its start time has passed.
func (s *SessionService) Get(ctx context.Context, id uint64) (*model.Session, error) {
	release := s.locks.AcquireSession(id)
	defer release()
	return s.loadFresh(ctx, id)
}

// loadFresh loads and refreshes a session. The caller must hold the
// session's lock.
func (s *SessionService) loadFresh(ctx context.Context, id uint64) (*model.Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Refresh(s.clock.Now()) {
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// List returns all sessions with the lazy transition applied. Flipped
// statuses are persisted best-effort; a persistence failure still
// returns the refreshed view.
func (s *SessionService) List(ctx context.Context) ([]*model.Session, error) {
	all, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.refreshAll(ctx, all), nil
}

// FindByMovie returns the sessions screening one movie, refreshed the
// same way List refreshes.
func (s *SessionService) FindByMovie(ctx context.Context, movieID uint64) ([]*model.Session, error) {
	found, err := s.sessions.FindByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	return s.refreshAll(ctx, found), nil
}

func (s *SessionService) refreshAll(ctx context.Context, list []*model.Session) []*model.Session {
	now := s.clock.Now()
	for _, sess := range list {
		if sess.Refresh(now) {
			if err := s.sessions.Save(ctx, sess); err != nil {
				log.Printf("session %d: persist status flip: %v", sess.ID, err)
			}
		}
	}
	return list
}

// ModifySchedule applies a partial update to a session's time, room and
// capacity under the session's exclusive scope.
func (s *SessionService) ModifySchedule(ctx context.Context, id uint64, ch model.ScheduleChange) (*model.Session, error) {
	release := s.locks.AcquireSession(id)
	defer release()
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.ModifySchedule(ch, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Cancel performs the explicit cancellation transition. Cancellation is
// a status change, never a delete: the session and its sold tickets
// remain queryable.
func (s *SessionService) Cancel(ctx context.Context, id uint64) (*model.Session, error) {
	release := s.locks.AcquireSession(id)
	defer release()
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Cancel(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
