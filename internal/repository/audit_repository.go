package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// AuditRepo persists the two append-only audit streams. Rows are only
// ever inserted; there are no update or delete paths.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo constructs an AuditRepo with the given DB handle.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// AppendValidation inserts one validation record.
func (r *AuditRepo) AppendValidation(ctx context.Context, rec *model.ValidationRecord) error {
	const q = `INSERT INTO validation_records (id, ticket_id, actor_id, valid, message, at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID.String(), rec.TicketID, rec.ActorID, rec.Valid, rec.Message, rec.At.UTC())
	return err
}

// AppendReschedule inserts one reschedule record.
func (r *AuditRepo) AppendReschedule(ctx context.Context, rec *model.RescheduleRecord) error {
	const q = `INSERT INTO reschedule_records (id, ticket_id, from_session_id, from_seat, to_session_id, to_seat, actor_id, reason, at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID.String(), rec.TicketID, rec.FromSessionID, rec.FromSeat,
		rec.ToSessionID, rec.ToSeat, rec.ActorID, rec.Reason, rec.At.UTC())
	return err
}

const validationColumns = `id, ticket_id, actor_id, valid, message, at`

// ListValidationsByTicket returns the ticket's validation records, most
// recent first.
func (r *AuditRepo) ListValidationsByTicket(ctx context.Context, ticketID uint64) ([]*model.ValidationRecord, error) {
	const q = `SELECT ` + validationColumns + ` FROM validation_records WHERE ticket_id = ? ORDER BY at DESC, id DESC`
	return r.queryValidations(ctx, q, ticketID)
}

// ListValidations returns the whole validation stream, most recent
// first.
func (r *AuditRepo) ListValidations(ctx context.Context) ([]*model.ValidationRecord, error) {
	const q = `SELECT ` + validationColumns + ` FROM validation_records ORDER BY at DESC, id DESC`
	return r.queryValidations(ctx, q)
}

const rescheduleColumns = `id, ticket_id, from_session_id, from_seat, to_session_id, to_seat, actor_id, reason, at`

// ListReschedulesByTicket returns the ticket's reschedule records, most
// recent first.
func (r *AuditRepo) ListReschedulesByTicket(ctx context.Context, ticketID uint64) ([]*model.RescheduleRecord, error) {
	const q = `SELECT ` + rescheduleColumns + ` FROM reschedule_records WHERE ticket_id = ? ORDER BY at DESC, id DESC`
	return r.queryReschedules(ctx, q, ticketID)
}

// ListReschedules returns the whole reschedule stream, most recent
// first.
func (r *AuditRepo) ListReschedules(ctx context.Context) ([]*model.RescheduleRecord, error) {
	const q = `SELECT ` + rescheduleColumns + ` FROM reschedule_records ORDER BY at DESC, id DESC`
	return r.queryReschedules(ctx, q)
}

func (r *AuditRepo) queryValidations(ctx context.Context, q string, args ...interface{}) ([]*model.ValidationRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]*model.ValidationRecord, 0)
	for rows.Next() {
		var rec model.ValidationRecord
		var id string
		var at time.Time
		if err := rows.Scan(&id, &rec.TicketID, &rec.ActorID, &rec.Valid, &rec.Message, &at); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		rec.At = at.UTC()
		result = append(result, &rec)
	}
	return result, rows.Err()
}

func (r *AuditRepo) queryReschedules(ctx context.Context, q string, args ...interface{}) ([]*model.RescheduleRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]*model.RescheduleRecord, 0)
	for rows.Next() {
		var rec model.RescheduleRecord
		var id string
		var at time.Time
		if err := rows.Scan(&id, &rec.TicketID, &rec.FromSessionID, &rec.FromSeat,
			&rec.ToSessionID, &rec.ToSeat, &rec.ActorID, &rec.Reason, &at); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		rec.At = at.UTC()
		result = append(result, &rec)
	}
	return result, rows.Err()
}
