package memory

import (
	"context"
	"sync"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// AuditStore keeps the two append-only streams. Records are copied in
// and out and never mutated.
type AuditStore struct {
	mu          sync.RWMutex
	validations []model.ValidationRecord
	reschedules []model.RescheduleRecord
}

// NewAuditStore returns an empty store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// AppendValidation adds a validation record to the stream.
func (s *AuditStore) AppendValidation(ctx context.Context, rec *model.ValidationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validations = append(s.validations, *rec)
	return nil
}

// AppendReschedule adds a reschedule record to the stream.
func (s *AuditStore) AppendReschedule(ctx context.Context, rec *model.RescheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reschedules = append(s.reschedules, *rec)
	return nil
}

// ListValidationsByTicket returns the ticket's validation records,
// most recent first.
func (s *AuditStore) ListValidationsByTicket(ctx context.Context, ticketID uint64) ([]*model.ValidationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.ValidationRecord, 0)
	for i := len(s.validations) - 1; i >= 0; i-- {
		if s.validations[i].TicketID == ticketID {
			rec := s.validations[i]
			out = append(out, &rec)
		}
	}
	return out, nil
}

// ListReschedulesByTicket returns the ticket's reschedule records,
// most recent first.
func (s *AuditStore) ListReschedulesByTicket(ctx context.Context, ticketID uint64) ([]*model.RescheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.RescheduleRecord, 0)
	for i := len(s.reschedules) - 1; i >= 0; i-- {
		if s.reschedules[i].TicketID == ticketID {
			rec := s.reschedules[i]
			out = append(out, &rec)
		}
	}
	return out, nil
}

// ListValidations returns the whole validation stream, most recent
// first.
func (s *AuditStore) ListValidations(ctx context.Context) ([]*model.ValidationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.ValidationRecord, 0, len(s.validations))
	for i := len(s.validations) - 1; i >= 0; i-- {
		rec := s.validations[i]
		out = append(out, &rec)
	}
	return out, nil
}

// ListReschedules returns the whole reschedule stream, most recent
// first.
func (s *AuditStore) ListReschedules(ctx context.Context) ([]*model.RescheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.RescheduleRecord, 0, len(s.reschedules))
	for i := len(s.reschedules) - 1; i >= 0; i-- {
		rec := s.reschedules[i]
		out = append(out, &rec)
	}
	return out, nil
}
