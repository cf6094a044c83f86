package model

import (
	"time"

	"github.com/google/uuid"
)

// ValidationRecord is one entry of the append-only validation trail.
// Records are written for failed scans too, so the trail reconstructs
// every gate interaction, not only successful ones. Records are never
// mutated or deleted and are queried most-recent-first. All records of
// one successful gate scan share the same timestamp so they can be
// grouped back into "one scan, N seats".
//
// Fields:
//
//	ID       - record identity.
//	TicketID - ticket the record refers to.
//	ActorID  - staff member who performed the scan.
//	Valid    - whether the scan was accepted.
//	Message  - human-readable outcome shown to gate staff.
//	At       - scan timestamp (UTC).
type ValidationRecord struct {
	ID       uuid.UUID
	TicketID uint64
	ActorID  uint64
	Valid    bool
	Message  string
	At       time.Time
}

// RescheduleRecord is one entry of the append-only reschedule trail.
// The most recent record per ticket is authoritative for "has this
// ticket ever been rescheduled" displays. The mandatory Reason captures
// the technical justification; blank reasons are rejected before a
// record is ever created.
//
// Fields:
//
//	ID            - record identity.
//	TicketID      - ticket that moved.
//	FromSessionID - session the ticket was attached to before the move.
//	FromSeat      - seat code before the move.
//	ToSessionID   - destination session.
//	ToSeat        - destination seat code.
//	ActorID       - caller who requested the move: a staff member on the
//	                override and mass paths, the customer on self-service.
//	Reason        - mandatory free-text technical reason.
//	At            - move timestamp (UTC).
type RescheduleRecord struct {
	ID            uuid.UUID
	TicketID      uint64
	FromSessionID uint64
	FromSeat      string
	ToSessionID   uint64
	ToSeat        string
	ActorID       uint64
	Reason        string
	At            time.Time
}
