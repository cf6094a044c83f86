package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// SeatRequest names one seat of a purchase together with its fare
// category.
type SeatRequest struct {
	SeatCode string
	Fare     model.FareCategory
}

// SalesService sells seats: it reserves them in the session's seat map,
// mints unique ticket codes and persists the purchase with its tickets
// as one unit.
type SalesService struct {
	sessions SessionRepository
	tickets  TicketRepository
	codes    model.CodeSource
	clock    Clock
	locks    *LockTable
}

// NewSalesService constructs a SalesService. All dependencies must be
// non-nil.
func NewSalesService(sessions SessionRepository, tickets TicketRepository, codes model.CodeSource, clock Clock, locks *LockTable) *SalesService {
	if sessions == nil || tickets == nil || codes == nil || clock == nil || locks == nil {
		panic("nil dependency passed to NewSalesService")
	}
	return &SalesService{sessions: sessions, tickets: tickets, codes: codes, clock: clock, locks: locks}
}

// CreatePurchase sells the requested seats of one session to a customer.
// The whole operation runs under the session's exclusive scope: seats
// are checked and flipped against a view no concurrent request can
// invalidate, so of N racing purchases of the same seat exactly one
// succeeds and the rest fail with model.ErrSeatUnavailable. Nothing is
// persisted unless every requested seat could be reserved and every
// ticket received a unique code.
func (s *SalesService) CreatePurchase(ctx context.Context, customerID, sessionID uint64, seats []SeatRequest) (*model.Purchase, []*model.Ticket, error) {
	if len(seats) == 0 {
		return nil, nil, model.ErrInvalidState
	}
	seen := make(map[string]struct{}, len(seats))
	for _, sr := range seats {
		if !sr.Fare.IsValid() {
			return nil, nil, model.ErrInvalidState
		}
		if _, dup := seen[sr.SeatCode]; dup {
			return nil, nil, model.ErrSeatUnavailable
		}
		seen[sr.SeatCode] = struct{}{}
	}

	release := s.locks.AcquireSession(sessionID)
	defer release()

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.Refresh(s.clock.Now()) {
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, nil, err
		}
	}
	switch sess.Status {
	case model.SessionCancelled:
		return nil, nil, model.ErrSessionCancelled
	case model.SessionUnavailable:
		return nil, nil, model.ErrAlreadyPast
	}

	for _, sr := range seats {
		if err := sess.ReserveSeat(sr.SeatCode); err != nil {
			return nil, nil, err
		}
	}

	codes, err := s.mintCodes(ctx, len(seats))
	if err != nil {
		return nil, nil, err
	}

	purchase := &model.Purchase{
		Ref:        uuid.New(),
		CustomerID: customerID,
		Status:     model.PurchaseConfirmed,
	}
	tickets := make([]*model.Ticket, 0, len(seats))
	for i, sr := range seats {
		price := sr.Fare.PriceCents(sess.BasePriceCents)
		purchase.TotalCents += price
		tickets = append(tickets, &model.Ticket{
			Code:       codes[i],
			SessionID:  sess.ID,
			SeatCode:   sr.SeatCode,
			Fare:       sr.Fare,
			PriceCents: price,
			Status:     model.TicketActive,
		})
	}
	// Seat state is persisted before the tickets: a storage fault in
	// between strands held seats, it never sells one twice. When the
	// purchase write fails the seats are put back.
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, nil, err
	}
	if err := s.tickets.CreatePurchase(ctx, purchase, tickets); err != nil {
		for _, sr := range seats {
			_ = sess.ReleaseSeat(sr.SeatCode)
		}
		if rerr := s.sessions.Save(ctx, sess); rerr != nil {
			log.Printf("session %d: release seats after failed purchase: %v", sess.ID, rerr)
		}
		return nil, nil, err
	}
	return purchase, tickets, nil
}

// mintCodes produces n unique ticket codes. Uniqueness is a global
// constraint, so the probe-and-reserve sequence runs under the code
// generation lock; each code gets at most model.MaxCodeAttempts tries
// before the whole purchase fails with ErrCodeGenerationExhausted.
func (s *SalesService) mintCodes(ctx context.Context, n int) ([]string, error) {
	release := s.locks.AcquireCodeGen()
	defer release()

	codes := make([]string, 0, n)
	batch := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		code, err := s.mintOne(ctx, batch)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
		batch[code] = struct{}{}
	}
	return codes, nil
}

func (s *SalesService) mintOne(ctx context.Context, batch map[string]struct{}) (string, error) {
	for attempt := 0; attempt < model.MaxCodeAttempts; attempt++ {
		code, err := s.codes.NewCode()
		if err != nil {
			return "", err
		}
		if _, dup := batch[code]; dup {
			continue
		}
		_, err = s.tickets.GetByCode(ctx, code)
		if errors.Is(err, model.ErrTicketNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		// collision with an existing ticket, try again
	}
	return "", model.ErrCodeGenerationExhausted
}

// GetPurchase returns one purchase with its tickets.
func (s *SalesService) GetPurchase(ctx context.Context, id uint64) (*model.Purchase, []*model.Ticket, error) {
	p, err := s.tickets.GetPurchase(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ts, err := s.tickets.GetByPurchase(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, ts, nil
}

// ListPurchases returns a customer's purchases, each with its tickets,
// newest first.
func (s *SalesService) ListPurchases(ctx context.Context, customerID uint64) ([]*model.Purchase, map[uint64][]*model.Ticket, error) {
	ps, err := s.tickets.ListPurchasesByCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	byPurchase := make(map[uint64][]*model.Ticket, len(ps))
	for _, p := range ps {
		ts, err := s.tickets.GetByPurchase(ctx, p.ID)
		if err != nil {
			return nil, nil, err
		}
		byPurchase[p.ID] = ts
	}
	return ps, byPurchase, nil
}
