package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository/memory"
)

// testNow is the pinned instant every engine test starts from.
var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

// fixedClock is a settable Clock shared between the engines and the
// stores of one test.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock() *fixedClock { return &fixedClock{t: testNow} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// seqCodes hands out sequential unique codes.
type seqCodes struct {
	mu sync.Mutex
	n  int
}

func (s *seqCodes) NewCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("TKT%06d", s.n), nil
}

// stuckCodes always returns the same code, driving the generator into
// its collision bound.
type stuckCodes struct{ code string }

func (s stuckCodes) NewCode() (string, error) { return s.code, nil }

// engines bundles every service over shared in-memory stores.
type engines struct {
	sessions *memory.SessionStore
	tickets  *memory.TicketStore
	audit    *memory.AuditStore
	clock    *fixedClock
	locks    *LockTable

	session  *SessionService
	sales    *SalesService
	resched  *RescheduleService
	validate *ValidationService
	expiry   *ExpiryService
}

func newEngines(t *testing.T) *engines {
	t.Helper()
	clock := newFixedClock()
	sessions := memory.NewSessionStore()
	sessions.Now = clock.Now
	tickets := memory.NewTicketStore()
	tickets.Now = clock.Now
	audit := memory.NewAuditStore()
	locks := NewLockTable()
	codes := &seqCodes{}

	return &engines{
		sessions: sessions,
		tickets:  tickets,
		audit:    audit,
		clock:    clock,
		locks:    locks,
		session:  NewSessionService(sessions, clock, locks),
		sales:    NewSalesService(sessions, tickets, codes, clock, locks),
		resched:  NewRescheduleService(sessions, tickets, audit, clock, locks),
		validate: NewValidationService(sessions, tickets, audit, clock, locks),
		expiry:   NewExpiryService(sessions, tickets, clock, locks),
	}
}

func (e *engines) mustCreateSession(t *testing.T, capacity int, startsIn time.Duration) *model.Session {
	t.Helper()
	sess, err := e.session.Create(context.Background(), 1, 1, capacity, e.clock.Now().Add(startsIn), 1500)
	require.NoError(t, err)
	return sess
}

func (e *engines) mustBuy(t *testing.T, customerID, sessionID uint64, seatCodes ...string) (*model.Purchase, []*model.Ticket) {
	t.Helper()
	seats := make([]SeatRequest, 0, len(seatCodes))
	for _, code := range seatCodes {
		seats = append(seats, SeatRequest{SeatCode: code, Fare: model.FareFull})
	}
	p, tickets, err := e.sales.CreatePurchase(context.Background(), customerID, sessionID, seats)
	require.NoError(t, err)
	return p, tickets
}

// hookedTickets wraps a TicketStore and fires a one-shot hook after the
// first delegated lookup returns, before its stale copy reaches the
// caller. It opens the window between an engine's pre-lock read and its
// exclusive scope so interleaved work can be injected there.
type hookedTickets struct {
	*memory.TicketStore
	mu             sync.Mutex
	afterGetByID   func()
	afterGetByCode func()
}

func (h *hookedTickets) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	t, err := h.TicketStore.GetByID(ctx, id)
	h.mu.Lock()
	hook := h.afterGetByID
	h.afterGetByID = nil
	h.mu.Unlock()
	if hook != nil {
		hook()
	}
	return t, err
}

func (h *hookedTickets) GetByCode(ctx context.Context, code string) (*model.Ticket, error) {
	t, err := h.TicketStore.GetByCode(ctx, code)
	h.mu.Lock()
	hook := h.afterGetByCode
	h.afterGetByCode = nil
	h.mu.Unlock()
	if hook != nil {
		hook()
	}
	return t, err
}

// failingTickets wraps a TicketStore with switchable write failures.
type failingTickets struct {
	*memory.TicketStore
	failCreate bool
	failSave   bool
}

func (f *failingTickets) CreatePurchase(ctx context.Context, p *model.Purchase, tickets []*model.Ticket) error {
	if f.failCreate {
		f.failCreate = false
		return errors.New("ticket storage offline")
	}
	return f.TicketStore.CreatePurchase(ctx, p, tickets)
}

func (f *failingTickets) Save(ctx context.Context, t *model.Ticket) error {
	if f.failSave {
		f.failSave = false
		return errors.New("ticket storage offline")
	}
	return f.TicketStore.Save(ctx, t)
}

// failingSessions wraps a SessionStore whose Save fails on demand.
type failingSessions struct {
	*memory.SessionStore
	failSave bool
}

func (f *failingSessions) Save(ctx context.Context, s *model.Session) error {
	if f.failSave {
		return errors.New("session storage offline")
	}
	return f.SessionStore.Save(ctx, s)
}
