package model

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseStatus is the lifecycle state of a purchase.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "PENDING"
	PurchaseConfirmed PurchaseStatus = "CONFIRMED"
	PurchaseCancelled PurchaseStatus = "CANCELLED"
)

// IsValid reports whether the status is a known enumeration value.
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchasePending, PurchaseConfirmed, PurchaseCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to target.
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	transitions := map[PurchaseStatus][]PurchaseStatus{
		PurchasePending:   {PurchaseConfirmed, PurchaseCancelled},
		PurchaseConfirmed: {PurchaseCancelled},
		PurchaseCancelled: {},
	}
	for _, st := range transitions[s] {
		if st == target {
			return true
		}
	}
	return false
}

// Purchase groups the tickets bought together in one transaction. Gate
// validation and history queries act on the whole group: scanning one
// ticket validates every sibling as a single event. A purchase's tickets
// usually share a session, but a single-ticket reschedule can move one
// ticket to a different session while its siblings stay behind, so the
// session reference lives on the ticket, not here.
//
// Fields:
//
//	ID         - primary key identifier.
//	Ref        - public purchase reference handed to the customer.
//	CustomerID - user who bought the tickets.
//	Status     - lifecycle state, see PurchaseStatus.
//	TotalCents - sum of the ticket prices at purchase time.
//	CreatedAt  - creation timestamp.
//	UpdatedAt  - last update timestamp.
type Purchase struct {
	ID         uint64
	Ref        uuid.UUID
	CustomerID uint64
	Status     PurchaseStatus
	TotalCents uint32
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns an independent copy of the purchase.
func (p *Purchase) Clone() *Purchase {
	cp := *p
	return &cp
}
