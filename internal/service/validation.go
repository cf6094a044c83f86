package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// ValidationResult is the outcome of one gate scan. An invalid ticket
// is a normal result, not an error: gate staff need to see a clear
// reason, so Valid and Message are populated in every case. On success
// Tickets holds every ticket of the purchase (the group is validated
// together) and Seats their seat codes in display order.
type ValidationResult struct {
	Valid    bool
	Message  string
	Ticket   *model.Ticket
	Session  *model.Session
	Purchase *model.Purchase
	Tickets  []*model.Ticket
	Seats    []string
}

// ValidationService performs gate-entry checks. A successful scan
// transitions every ticket of the purchase to VALIDATED and appends one
// ValidationRecord per ticket, all sharing a single timestamp, so the
// trail can be grouped back into "one gate scan, N seats". Failed scans
// append a single record for the scanned ticket.
type ValidationService struct {
	sessions SessionRepository
	tickets  TicketRepository
	audit    AuditRepository
	clock    Clock
	locks    *LockTable
}

// NewValidationService constructs a ValidationService. All dependencies
// must be non-nil.
func NewValidationService(sessions SessionRepository, tickets TicketRepository, audit AuditRepository, clock Clock, locks *LockTable) *ValidationService {
	if sessions == nil || tickets == nil || audit == nil || clock == nil || locks == nil {
		panic("nil dependency passed to NewValidationService")
	}
	return &ValidationService{sessions: sessions, tickets: tickets, audit: audit, clock: clock, locks: locks}
}

// Validate looks up a ticket by its gate code and validates it together
// with its purchase siblings. It returns model.ErrTicketNotFound when
// no ticket carries the code; every other outcome, including a rejected
// ticket, is a normal result. The session's exclusive scope is held for
// the whole check-and-transition so a ticket cannot be validated and
// expired in the same instant.
func (s *ValidationService) Validate(ctx context.Context, code string, staffID uint64) (*ValidationResult, error) {
	ticket, err := s.tickets.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// The pre-lock read only tells us which session to lock. The code
	// is resolved again inside the exclusive scope so the verdict is
	// judged on stored state: a concurrent scan of the same code must
	// come back "ticket already validated", not a second acceptance.
	// A concurrent reschedule can move the ticket to another session,
	// in which case the lock covers the wrong one; chase it.
	var release func()
	for {
		release = s.locks.AcquireSession(ticket.SessionID)
		fresh, err := s.tickets.GetByCode(ctx, code)
		if err != nil {
			release()
			return nil, err
		}
		if fresh.SessionID == ticket.SessionID {
			ticket = fresh
			break
		}
		release()
		ticket = fresh
	}
	defer release()

	now := s.clock.Now()
	sess, err := s.sessions.GetByID(ctx, ticket.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Refresh(now) {
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}
	purchase, err := s.tickets.GetPurchase(ctx, ticket.PurchaseID)
	if err != nil {
		return nil, err
	}

	if msg, ok := rejectionMessage(sess, ticket); !ok {
		rec := &model.ValidationRecord{
			ID:       uuid.New(),
			TicketID: ticket.ID,
			ActorID:  staffID,
			Valid:    false,
			Message:  msg,
			At:       now,
		}
		if err := s.audit.AppendValidation(ctx, rec); err != nil {
			return nil, err
		}
		return &ValidationResult{
			Valid:    false,
			Message:  msg,
			Ticket:   ticket,
			Session:  sess,
			Purchase: purchase,
		}, nil
	}

	siblings, err := s.tickets.GetByPurchase(ctx, ticket.PurchaseID)
	if err != nil {
		return nil, err
	}
	seats := make([]string, 0, len(siblings))
	for _, sib := range siblings {
		seats = append(seats, sib.SeatCode)
		if sib.Status != model.TicketActive {
			continue
		}
		if err := sib.Validate(); err != nil {
			return nil, err
		}
		if err := s.tickets.Save(ctx, sib); err != nil {
			return nil, err
		}
		rec := &model.ValidationRecord{
			ID:       uuid.New(),
			TicketID: sib.ID,
			ActorID:  staffID,
			Valid:    true,
			Message:  "validated at gate",
			At:       now,
		}
		if err := s.audit.AppendValidation(ctx, rec); err != nil {
			return nil, err
		}
	}
	model.SortSeatCodes(seats)

	scanned := ticket
	for _, sib := range siblings {
		if sib.ID == ticket.ID {
			scanned = sib
		}
	}
	return &ValidationResult{
		Valid:    true,
		Message:  "validated at gate",
		Ticket:   scanned,
		Session:  sess,
		Purchase: purchase,
		Tickets:  siblings,
		Seats:    seats,
	}, nil
}

// rejectionMessage composes session and ticket state into a gate
// verdict. The session has already been refreshed, so a past start time
// shows up as UNAVAILABLE here. ok is true when the scan should be
// accepted.
func rejectionMessage(sess *model.Session, t *model.Ticket) (string, bool) {
	if sess.Status == model.SessionCancelled {
		return "session cancelled", false
	}
	if sess.Status == model.SessionUnavailable {
		return "session already started", false
	}
	switch t.Status {
	case model.TicketValidated:
		return "ticket already validated", false
	case model.TicketCancelled:
		return "ticket cancelled", false
	case model.TicketExpired:
		return "ticket expired", false
	}
	return "", true
}
