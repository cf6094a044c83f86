package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// TicketStore holds tickets and purchases behind one mutex so that
// CreatePurchase is atomic the way the MySQL transaction is.
type TicketStore struct {
	mu             sync.RWMutex
	nextTicketID   uint64
	nextPurchaseID uint64
	tickets        map[uint64]*model.Ticket
	byCode         map[string]uint64
	purchases      map[uint64]*model.Purchase

	// Now stamps CreatedAt and UpdatedAt. Tests pin it.
	Now func() time.Time
}

// NewTicketStore returns an empty store stamping wall-clock UTC times.
func NewTicketStore() *TicketStore {
	return &TicketStore{
		tickets:   make(map[uint64]*model.Ticket),
		byCode:    make(map[string]uint64),
		purchases: make(map[uint64]*model.Purchase),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetByID returns a copy of the ticket or ErrTicketNotFound.
func (s *TicketStore) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, model.ErrTicketNotFound
	}
	return t.Clone(), nil
}

// GetByCode resolves a gate code to its ticket. A miss is the signal
// the code generator relies on, so it is always ErrTicketNotFound.
func (s *TicketStore) GetByCode(ctx context.Context, code string) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, model.ErrTicketNotFound
	}
	return s.tickets[id].Clone(), nil
}

// GetByPurchase returns copies of every ticket in the purchase, ordered
// by ID.
func (s *TicketStore) GetByPurchase(ctx context.Context, purchaseID uint64) ([]*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Ticket, 0)
	for _, t := range s.tickets {
		if t.PurchaseID == purchaseID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save updates an existing ticket. Tickets are only ever created
// through CreatePurchase, so an unknown ID is ErrTicketNotFound.
func (s *TicketStore) Save(ctx context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.tickets[t.ID]
	if !ok {
		return model.ErrTicketNotFound
	}
	if prev.Code != t.Code {
		delete(s.byCode, prev.Code)
		s.byCode[t.Code] = t.ID
	}
	t.UpdatedAt = s.Now()
	s.tickets[t.ID] = t.Clone()
	return nil
}

// ListActiveForSession returns copies of the session's ACTIVE tickets,
// ordered by ID.
func (s *TicketStore) ListActiveForSession(ctx context.Context, sessionID uint64) ([]*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Ticket, 0)
	for _, t := range s.tickets {
		if t.SessionID == sessionID && t.Status == model.TicketActive {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreatePurchase stores the purchase and its tickets as one unit,
// assigning IDs and timestamps on the passed structs.
func (s *TicketStore) CreatePurchase(ctx context.Context, p *model.Purchase, tickets []*model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	s.nextPurchaseID++
	p.ID = s.nextPurchaseID
	p.CreatedAt = now
	p.UpdatedAt = now
	s.purchases[p.ID] = p.Clone()
	for _, t := range tickets {
		s.nextTicketID++
		t.ID = s.nextTicketID
		t.PurchaseID = p.ID
		t.CreatedAt = now
		t.UpdatedAt = now
		s.tickets[t.ID] = t.Clone()
		s.byCode[t.Code] = t.ID
	}
	return nil
}

// GetPurchase returns a copy of the purchase or ErrPurchaseNotFound.
func (s *TicketStore) GetPurchase(ctx context.Context, id uint64) (*model.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.purchases[id]
	if !ok {
		return nil, model.ErrPurchaseNotFound
	}
	return p.Clone(), nil
}

// ListPurchasesByCustomer returns copies of the customer's purchases,
// newest first.
func (s *TicketStore) ListPurchasesByCustomer(ctx context.Context, customerID uint64) ([]*model.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Purchase, 0)
	for _, p := range s.purchases {
		if p.CustomerID == customerID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
