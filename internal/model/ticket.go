package model

import "time"

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	// TicketActive is the initial state of every sold ticket.
	TicketActive TicketStatus = "ACTIVE"
	// TicketValidated marks a ticket scanned at the entry gate.
	TicketValidated TicketStatus = "VALIDATED"
	// TicketCancelled blocks any further use, including validation.
	TicketCancelled TicketStatus = "CANCELLED"
	// TicketExpired marks a ticket whose session started while the
	// ticket was never used. Set only by the expiry sweep.
	TicketExpired TicketStatus = "EXPIRED"
)

// IsValid reports whether the status is a known enumeration value.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketActive, TicketValidated, TicketCancelled, TicketExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to target. No
// transition leaves EXPIRED or CANCELLED.
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketActive:    {TicketValidated, TicketCancelled, TicketExpired},
		TicketValidated: {TicketExpired},
		TicketCancelled: {},
		TicketExpired:   {},
	}
	for _, st := range transitions[s] {
		if st == target {
			return true
		}
	}
	return false
}

// FareCategory distinguishes full-price from half-price tickets. It is
// used only for price derivation.
type FareCategory string

const (
	FareFull FareCategory = "FULL"
	FareHalf FareCategory = "HALF"
)

// IsValid reports whether the fare is a known enumeration value.
func (f FareCategory) IsValid() bool {
	return f == FareFull || f == FareHalf
}

// PriceCents derives the ticket price from the session base price. Half
// fare pays 50%, rounded down to the cent.
func (f FareCategory) PriceCents(baseCents uint32) uint32 {
	if f == FareHalf {
		return baseCents / 2
	}
	return baseCents
}

// Ticket is one seat-in-session sale. It is identified externally by an
// opaque unique code scanned at the gate; the numeric ID is internal.
//
// Fields:
//
//	ID         - primary key identifier.
//	Code       - opaque unique gate code, sole external lookup key.
//	PurchaseID - owning purchase.
//	SessionID  - session the seat belongs to; changes on reschedule.
//	SeatCode   - reserved seat within the session's seat map.
//	Fare       - fare category used to derive PriceCents.
//	PriceCents - price paid, derived at purchase time.
//	Status     - lifecycle state, see TicketStatus.
//	CreatedAt  - creation timestamp.
//	UpdatedAt  - last update timestamp.
type Ticket struct {
	ID         uint64
	Code       string
	PurchaseID uint64
	SessionID  uint64
	SeatCode   string
	Fare       FareCategory
	PriceCents uint32
	Status     TicketStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate transitions the ticket to VALIDATED. Only ACTIVE tickets may
// pass the gate.
func (t *Ticket) Validate() error {
	if !t.Status.CanTransitionTo(TicketValidated) {
		return ErrInvalidState
	}
	t.Status = TicketValidated
	return nil
}

// Cancel transitions the ticket to CANCELLED.
func (t *Ticket) Cancel() error {
	if !t.Status.CanTransitionTo(TicketCancelled) {
		return ErrInvalidState
	}
	t.Status = TicketCancelled
	return nil
}

// Expire transitions the ticket to EXPIRED and reports whether anything
// changed. Tickets already CANCELLED or EXPIRED are left untouched, so
// repeated sweeps are no-ops rather than failures.
func (t *Ticket) Expire() bool {
	if !t.Status.CanTransitionTo(TicketExpired) {
		return false
	}
	t.Status = TicketExpired
	return true
}

// MoveTo repoints the ticket at a different session and seat. The
// caller is responsible for the seat-map bookkeeping on both sessions.
func (t *Ticket) MoveTo(sessionID uint64, seatCode string) {
	t.SessionID = sessionID
	t.SeatCode = seatCode
}

// Clone returns an independent copy of the ticket.
func (t *Ticket) Clone() *Ticket {
	cp := *t
	return &cp
}
