// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketValidatedEvent is published after a successful gate scan. One
// scan validates every sibling ticket of the purchase, so consumers see
// a single event per scan, not one per seat. It contains enough
// information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type TicketValidatedEvent struct {
	PurchaseID  uint64   `json:"purchase_id"`
	PurchaseRef string   `json:"purchase_ref"`
	SessionID   uint64   `json:"session_id"`
	TicketCode  string   `json:"ticket_code"`
	StaffID     uint64   `json:"staff_id"`
	SeatCodes   []string `json:"seats"`
	ValidatedAt string   `json:"validated_at"`
}
