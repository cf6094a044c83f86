package service

import "context"

// ExpiryService retires tickets whose session has already started.
// The sweep is idempotent: tickets that are already EXPIRED or
// CANCELLED are skipped, so running it twice over the same session
// reports zero on the second pass.
type ExpiryService struct {
	sessions SessionRepository
	tickets  TicketRepository
	clock    Clock
	locks    *LockTable
}

// NewExpiryService wires the sweep over its repositories.
func NewExpiryService(sessions SessionRepository, tickets TicketRepository, clock Clock, locks *LockTable) *ExpiryService {
	if sessions == nil || tickets == nil || clock == nil || locks == nil {
		panic("expiry service: nil dependency")
	}
	return &ExpiryService{sessions: sessions, tickets: tickets, clock: clock, locks: locks}
}

// ForSession expires every ACTIVE ticket of one started session and
// returns how many tickets changed state. A session that has not
// started yet yields zero without touching anything.
func (e *ExpiryService) ForSession(ctx context.Context, sessionID uint64) (int, error) {
	release := e.locks.AcquireSession(sessionID)
	defer release()
	return e.sweepLocked(ctx, sessionID)
}

// ForAllPastSessions runs the sweep over every session in the store and
// returns the total number of expired tickets. Individual session
// failures abort the pass so the caller sees the error.
func (e *ExpiryService) ForAllPastSessions(ctx context.Context) (int, error) {
	all, err := e.sessions.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, sess := range all {
		n, err := e.ForSession(ctx, sess.ID)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (e *ExpiryService) sweepLocked(ctx context.Context, sessionID uint64) (int, error) {
	sess, err := e.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	now := e.clock.Now()
	if !sess.HasStarted(now) {
		return 0, nil
	}
	if sess.Refresh(now) {
		if err := e.sessions.Save(ctx, sess); err != nil {
			return 0, err
		}
	}
	candidates, err := e.tickets.ListActiveForSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, t := range candidates {
		if !t.Expire() {
			continue
		}
		t.UpdatedAt = now
		if err := e.tickets.Save(ctx, t); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
