// Package service implements the ticket lifecycle engines: session
// management, seat sales, rescheduling, gate validation and the expiry
// sweep. The engines are storage-agnostic: they operate on the
// repository ports below, take their notion of "now" from an injected
// Clock and their randomness from an injected CodeSource, so every
// time-boundary rule is testable with fixed values.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// Clock supplies the current time. Production code uses SystemClock;
// tests pin a fixed instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// SessionRepository persists sessions together with their seat maps.
// Save is insert-or-update. Implementations return
// model.ErrSessionNotFound for missing IDs and must hand out
// independent copies so concurrent readers never alias one seat map.
type SessionRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	FindByMovie(ctx context.Context, movieID uint64) ([]*model.Session, error)
	ListAll(ctx context.Context) ([]*model.Session, error)
}

// TicketRepository persists tickets and their purchases.
// CreatePurchase stores the purchase and all of its tickets as one
// atomic unit and populates the generated IDs. GetByCode is the gate
// lookup; it returns model.ErrTicketNotFound when no ticket carries the
// code, which also serves as the uniqueness probe during generation.
type TicketRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	GetByCode(ctx context.Context, code string) (*model.Ticket, error)
	GetByPurchase(ctx context.Context, purchaseID uint64) ([]*model.Ticket, error)
	Save(ctx context.Context, t *model.Ticket) error
	ListActiveForSession(ctx context.Context, sessionID uint64) ([]*model.Ticket, error)
	CreatePurchase(ctx context.Context, p *model.Purchase, tickets []*model.Ticket) error
	GetPurchase(ctx context.Context, id uint64) (*model.Purchase, error)
	ListPurchasesByCustomer(ctx context.Context, customerID uint64) ([]*model.Purchase, error)
}

// AuditRepository persists the two independent append-only streams.
// List results are ordered most-recent-first. Records are never updated
// or deleted.
type AuditRepository interface {
	AppendValidation(ctx context.Context, rec *model.ValidationRecord) error
	AppendReschedule(ctx context.Context, rec *model.RescheduleRecord) error
	ListValidationsByTicket(ctx context.Context, ticketID uint64) ([]*model.ValidationRecord, error)
	ListReschedulesByTicket(ctx context.Context, ticketID uint64) ([]*model.RescheduleRecord, error)
	ListValidations(ctx context.Context) ([]*model.ValidationRecord, error)
	ListReschedules(ctx context.Context) ([]*model.RescheduleRecord, error)
}
