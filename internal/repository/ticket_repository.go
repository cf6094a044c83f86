package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// TicketRepo manages persistence for tickets and their purchases.
// Tickets only come into existence through CreatePurchase, so the
// insert path always runs inside the purchase transaction.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// DB exposes the underlying sql.DB.
func (r *TicketRepo) DB() *sql.DB {
	return r.db
}

const ticketColumns = `id, code, purchase_id, session_id, seat_code, fare, price_cents, status, created_at, updated_at`

// GetByID retrieves a ticket by its internal ID. It returns
// model.ErrTicketNotFound when there is no matching row.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	return scanTicket(r.db.QueryRowContext(ctx, q, id))
}

// GetByCode retrieves a ticket by its gate code. A miss returns
// model.ErrTicketNotFound, which the code generator treats as "code is
// free".
func (r *TicketRepo) GetByCode(ctx context.Context, code string) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE code = ?`
	return scanTicket(r.db.QueryRowContext(ctx, q, code))
}

// GetByPurchase returns every ticket of the purchase ordered by ID. An
// unknown purchase yields an empty slice.
func (r *TicketRepo) GetByPurchase(ctx context.Context, purchaseID uint64) ([]*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE purchase_id = ? ORDER BY id ASC`
	return r.queryTickets(ctx, q, purchaseID)
}

// ListActiveForSession returns the session's ACTIVE tickets ordered by
// ID. The expiry sweep and the mass reschedule both drive off this
// query.
func (r *TicketRepo) ListActiveForSession(ctx context.Context, sessionID uint64) ([]*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE session_id = ? AND status = ? ORDER BY id ASC`
	return r.queryTickets(ctx, q, sessionID, string(model.TicketActive))
}

// Save updates an existing ticket. It returns model.ErrTicketNotFound
// when the row does not exist.
func (r *TicketRepo) Save(ctx context.Context, t *model.Ticket) error {
	const q = `UPDATE tickets
               SET code = ?, purchase_id = ?, session_id = ?, seat_code = ?, fare = ?, price_cents = ?, status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		t.Code, t.PurchaseID, t.SessionID, t.SeatCode, string(t.Fare), t.PriceCents, string(t.Status), t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM tickets WHERE id = ? LIMIT 1`, t.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrTicketNotFound
			}
			return err
		}
	}
	return nil
}

// CreatePurchase inserts the purchase row and all of its tickets in one
// transaction. Generated IDs and DB timestamps are populated on the
// passed structs.
func (r *TicketRepo) CreatePurchase(ctx context.Context, p *model.Purchase, tickets []*model.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const insP = `INSERT INTO purchases (ref, customer_id, status, total_cents) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, insP, p.Ref.String(), p.CustomerID, string(p.Status), p.TotalCents)
	if err != nil {
		return err
	}
	pid, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(pid)
	const selP = `SELECT created_at, updated_at FROM purchases WHERE id = ?`
	if err := tx.QueryRowContext(ctx, selP, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}

	const insT = `INSERT INTO tickets (code, purchase_id, session_id, seat_code, fare, price_cents, status)
                  VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, t := range tickets {
		t.PurchaseID = p.ID
		res, err := tx.ExecContext(ctx, insT,
			t.Code, t.PurchaseID, t.SessionID, t.SeatCode, string(t.Fare), t.PriceCents, string(t.Status))
		if err != nil {
			return err
		}
		tid, err := res.LastInsertId()
		if err != nil {
			return err
		}
		t.ID = uint64(tid)
		const selT = `SELECT created_at, updated_at FROM tickets WHERE id = ?`
		if err := tx.QueryRowContext(ctx, selT, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetPurchase retrieves a purchase by ID. It returns
// model.ErrPurchaseNotFound when there is no matching row.
func (r *TicketRepo) GetPurchase(ctx context.Context, id uint64) (*model.Purchase, error) {
	const q = `SELECT id, ref, customer_id, status, total_cents, created_at, updated_at FROM purchases WHERE id = ?`
	return scanPurchase(r.db.QueryRowContext(ctx, q, id))
}

// ListPurchasesByCustomer returns the customer's purchases, newest
// first.
func (r *TicketRepo) ListPurchasesByCustomer(ctx context.Context, customerID uint64) ([]*model.Purchase, error) {
	const q = `SELECT id, ref, customer_id, status, total_cents, created_at, updated_at
               FROM purchases WHERE customer_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]*model.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *TicketRepo) queryTickets(ctx context.Context, q string, args ...interface{}) ([]*model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]*model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
	var t model.Ticket
	var fare, status string
	var createdAt, updatedAt time.Time
	err := row.Scan(&t.ID, &t.Code, &t.PurchaseID, &t.SessionID, &t.SeatCode,
		&fare, &t.PriceCents, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTicketNotFound
		}
		return nil, err
	}
	t.Fare = model.FareCategory(fare)
	t.Status = model.TicketStatus(status)
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updatedAt.UTC()
	return &t, nil
}

func scanPurchase(row rowScanner) (*model.Purchase, error) {
	var p model.Purchase
	var ref, status string
	var createdAt, updatedAt time.Time
	err := row.Scan(&p.ID, &ref, &p.CustomerID, &status, &p.TotalCents, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPurchaseNotFound
		}
		return nil, err
	}
	parsed, err := uuid.Parse(ref)
	if err != nil {
		return nil, err
	}
	p.Ref = parsed
	p.Status = model.PurchaseStatus(status)
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return &p, nil
}
