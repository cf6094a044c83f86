package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// RescheduleCutoff is how close to the original session's start the
// customer self-service path may still reschedule. A request exactly at
// the cutoff instant is already refused; one second earlier is allowed.
const RescheduleCutoff = 2 * time.Hour

// RescheduleService moves tickets between sessions and seats. Every
// move records an append-only RescheduleRecord with the original and
// destination session/seat, the acting caller and the mandatory reason.
type RescheduleService struct {
	sessions SessionRepository
	tickets  TicketRepository
	audit    AuditRepository
	clock    Clock
	locks    *LockTable
}

// NewRescheduleService constructs a RescheduleService. All dependencies
// must be non-nil.
func NewRescheduleService(sessions SessionRepository, tickets TicketRepository, audit AuditRepository, clock Clock, locks *LockTable) *RescheduleService {
	if sessions == nil || tickets == nil || audit == nil || clock == nil || locks == nil {
		panic("nil dependency passed to NewRescheduleService")
	}
	return &RescheduleService{sessions: sessions, tickets: tickets, audit: audit, clock: clock, locks: locks}
}

// RescheduleOneParams carries a single-ticket move request.
//
//	TicketID      - ticket to move.
//	ToSessionID   - destination session.
//	ToSeat        - destination seat code; empty keeps the ticket's
//	                current seat code in the destination session.
//	ActorID       - caller identity, always passed through from the
//	                request context, never a module-level default.
//	Reason        - mandatory technical reason.
//	StaffOverride - true on the staff path used for technical incidents;
//	                it bypasses the customer cutoff.
type RescheduleOneParams struct {
	TicketID      uint64
	ToSessionID   uint64
	ToSeat        string
	ActorID       uint64
	Reason        string
	StaffOverride bool
}

// RescheduleOne moves a single ticket to a new session/seat. The
// self-service path refuses moves within RescheduleCutoff of the
// original session's start; the staff override exists precisely to
// bypass that cutoff when the cinema caused the problem. Seat
// bookkeeping differs between the paths: self-service releases the
// original seat for resale, while the staff path leaves it occupied so
// it is held in case of dispute (the audit record preserves where the
// ticket came from).
func (s *RescheduleService) RescheduleOne(ctx context.Context, p RescheduleOneParams) (*model.RescheduleRecord, error) {
	if strings.TrimSpace(p.Reason) == "" {
		return nil, model.ErrReasonRequired
	}
	ticket, err := s.tickets.GetByID(ctx, p.TicketID)
	if err != nil {
		return nil, err
	}

	// The pre-lock read only establishes which session to lock. The
	// ticket is read again inside the exclusive scope: a gate scan or
	// another move may have landed in between, and the state checks
	// must run on what is actually stored. A ticket that changed
	// sessions while we waited leaves the lock covering the wrong
	// session, so chase it and reacquire.
	var release func()
	for {
		release = s.locks.AcquireSessions(ticket.SessionID, p.ToSessionID)
		fresh, err := s.tickets.GetByID(ctx, p.TicketID)
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

	if ticket.Status != model.TicketActive {
		return nil, model.ErrInvalidState
	}

	now := s.clock.Now()
	orig, err := s.sessions.GetByID(ctx, ticket.SessionID)
	if err != nil {
		return nil, err
	}
	dest := orig
	if p.ToSessionID != orig.ID {
		dest, err = s.sessions.GetByID(ctx, p.ToSessionID)
		if err != nil {
			return nil, err
		}
	}

	if !p.StaffOverride {
		cutoff := orig.StartsAt.Add(-RescheduleCutoff)
		if !now.Before(cutoff) {
			return nil, model.ErrTooLateToReschedule
		}
	}

	if dest.Status == model.SessionCancelled {
		return nil, model.ErrSessionCancelled
	}
	if dest.HasStarted(now) || dest.Status == model.SessionUnavailable {
		return nil, model.ErrAlreadyPast
	}

	fromSeat := ticket.SeatCode
	toSeat := strings.TrimSpace(p.ToSeat)
	if toSeat == "" {
		toSeat = fromSeat
	}
	if err := dest.ReserveSeat(toSeat); err != nil {
		return nil, err
	}
	if !p.StaffOverride {
		if err := orig.ReleaseSeat(fromSeat); err != nil {
			return nil, err
		}
	}

	rec := &model.RescheduleRecord{
		ID:            uuid.New(),
		TicketID:      ticket.ID,
		FromSessionID: orig.ID,
		FromSeat:      fromSeat,
		ToSessionID:   dest.ID,
		ToSeat:        toSeat,
		ActorID:       p.ActorID,
		Reason:        strings.TrimSpace(p.Reason),
		At:            now,
	}

	ticket.MoveTo(dest.ID, toSeat)
	// Persist order matters under a storage fault: the destination
	// seat is held before the ticket moves, and the origin seat is
	// released only after. A fault anywhere in the sequence can only
	// strand a held seat, never leave one sellable twice.
	if err := s.sessions.Save(ctx, dest); err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, err
	}
	if orig.ID != dest.ID {
		if err := s.sessions.Save(ctx, orig); err != nil {
			return nil, err
		}
	}
	if err := s.audit.AppendReschedule(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RescheduleSessionParams carries a mass reschedule request for a
// session in technical trouble.
//
//	SessionID - session whose schedule moves.
//	NewStart  - new start time, must be in the future.
//	SeatCodes - explicit seat list; empty means "all occupied seats".
//	ActorID   - staff member performing the move.
//	Reason    - mandatory technical reason.
type RescheduleSessionParams struct {
	SessionID uint64
	NewStart  time.Time
	SeatCodes []string
	ActorID   uint64
	Reason    string
}

// RescheduleSession moves a session's own start time in place. It is a
// coarser operation than RescheduleOne: tickets stay attached to the
// session and keep their seats, only the time changes. The returned
// count is the number of affected tickets - all occupied seats, or the
// occupied subset of the requested seat list. One RescheduleRecord is
// appended per affected ticket (same timestamp, same reason) so the
// per-ticket history answers "was this ticket ever rescheduled" for the
// mass path too.
func (s *RescheduleService) RescheduleSession(ctx context.Context, p RescheduleSessionParams) (int, error) {
	if strings.TrimSpace(p.Reason) == "" {
		return 0, model.ErrReasonRequired
	}

	release := s.locks.AcquireSession(p.SessionID)
	defer release()

	sess, err := s.sessions.GetByID(ctx, p.SessionID)
	if err != nil {
		return 0, err
	}
	if sess.Status == model.SessionCancelled {
		return 0, model.ErrSessionCancelled
	}
	if sess.Status == model.SessionUnavailable {
		return 0, model.ErrInvalidState
	}
	now := s.clock.Now()
	if !p.NewStart.After(now) {
		return 0, model.ErrTimeMustBeFuture
	}

	affected := make(map[string]struct{})
	if len(p.SeatCodes) == 0 {
		for _, code := range sess.Seats.OccupiedCodes() {
			affected[code] = struct{}{}
		}
	} else {
		for _, code := range p.SeatCodes {
			avail, err := sess.Seats.IsAvailable(code)
			if err != nil || avail {
				continue
			}
			affected[code] = struct{}{}
		}
	}

	sess.StartsAt = p.NewStart.UTC()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return 0, err
	}

	active, err := s.tickets.ListActiveForSession(ctx, sess.ID)
	if err != nil {
		return 0, err
	}
	reason := strings.TrimSpace(p.Reason)
	for _, t := range active {
		if _, hit := affected[t.SeatCode]; !hit {
			continue
		}
		rec := &model.RescheduleRecord{
			ID:            uuid.New(),
			TicketID:      t.ID,
			FromSessionID: sess.ID,
			FromSeat:      t.SeatCode,
			ToSessionID:   sess.ID,
			ToSeat:        t.SeatCode,
			ActorID:       p.ActorID,
			Reason:        reason,
			At:            now,
		}
		if err := s.audit.AppendReschedule(ctx, rec); err != nil {
			return 0, err
		}
	}
	return len(affected), nil
}

// TicketHistory returns both audit streams for one ticket, each
// most-recent-first.
func (s *RescheduleService) TicketHistory(ctx context.Context, ticketID uint64) ([]*model.ValidationRecord, []*model.RescheduleRecord, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, nil, err
	}
	vals, err := s.audit.ListValidationsByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	moves, err := s.audit.ListReschedulesByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	return vals, moves, nil
}
