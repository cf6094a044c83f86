// Package model holds the domain aggregates of the ticketing core:
// sessions with their seat maps, tickets, purchases and the append-only
// audit records. This file defines the sentinel errors shared by the
// whole core. Handlers translate these into HTTP status codes; the
// engines in internal/service return them unchanged so callers can use
// errors.Is to distinguish failure kinds.
package model

import "errors"

// ErrSessionNotFound is returned when a session lookup yields no rows.
var ErrSessionNotFound = errors.New("session not found")

// ErrTicketNotFound is returned when a ticket lookup (by ID or by its
// opaque gate code) yields no rows.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrPurchaseNotFound is returned when a purchase lookup yields no rows.
var ErrPurchaseNotFound = errors.New("purchase not found")

// ErrSeatUnavailable is returned by a reservation attempt when the seat
// is already occupied or the seat code was never generated for the
// session. Exactly one of N concurrent attempts on a free seat succeeds;
// the rest receive this error.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrUnknownSeat is returned by pure availability queries for a seat
// code outside the generated range.
var ErrUnknownSeat = errors.New("unknown seat")

// ErrInvalidSeatState is returned when a seat release targets a seat
// that is already available. A release of a free seat signals a logic
// error upstream, so it is not treated as a no-op.
var ErrInvalidSeatState = errors.New("invalid seat state")

// ErrInvalidState is returned when an operation is not allowed in the
// aggregate's current status, e.g. modifying a cancelled session or
// rescheduling a validated ticket.
var ErrInvalidState = errors.New("invalid state")

// ErrAlreadyCancelled is returned when cancelling a session that is
// already cancelled.
var ErrAlreadyCancelled = errors.New("session already cancelled")

// ErrAlreadyPast is returned when an operation requires a session whose
// start time has not passed yet, e.g. cancelling a finished session.
var ErrAlreadyPast = errors.New("session already past")

// ErrSessionCancelled is returned when an operation targets a cancelled
// session, e.g. mass rescheduling or purchasing seats.
var ErrSessionCancelled = errors.New("session cancelled")

// ErrTooLateToReschedule is returned on the customer self-service path
// when the reschedule cutoff before the original session start has been
// breached. The staff override path does not produce this error.
var ErrTooLateToReschedule = errors.New("too late to reschedule")

// ErrReasonRequired is returned when a reschedule is requested without
// the mandatory technical reason.
var ErrReasonRequired = errors.New("reason required")

// ErrCodeGenerationExhausted is returned when the ticket code generator
// could not produce a unique code within its retry budget.
var ErrCodeGenerationExhausted = errors.New("ticket code generation exhausted")

// ErrTimeMustBeFuture is returned when a schedule change or session
// creation targets a start time that is not in the future.
var ErrTimeMustBeFuture = errors.New("start time must be in the future")
