// Package repository contains the MySQL data access layer. Each repo
// wraps a *sql.DB and maps between the model types and their tables.
// Sessions span two tables: the session row itself and one row per
// seat in session_seats carrying the availability flag.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// SessionRepo manages persistence for sessions and their seat maps.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories.
func (r *SessionRepo) DB() *sql.DB {
	return r.db
}

// GetByID retrieves a session together with its seat map. It returns
// model.ErrSessionNotFound when there is no matching row.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	const q = `SELECT id, movie_id, room_id, capacity, starts_at, base_price_cents, status, created_at, updated_at
               FROM sessions WHERE id = ?`
	sess, err := scanSession(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	sess.Seats, err = r.loadSeats(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Save inserts the session when its ID is zero and updates it
// otherwise. Both paths run in one transaction so the session row and
// its seat rows never diverge. On insert the generated ID and DB
// timestamps are populated on the passed struct.
func (r *SessionRepo) Save(ctx context.Context, sess *model.Session) error {
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

	if sess.ID == 0 {
		err = r.insertTx(ctx, tx, sess)
	} else {
		err = r.updateTx(ctx, tx, sess)
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *SessionRepo) insertTx(ctx context.Context, tx *sql.Tx, sess *model.Session) error {
	const q = `INSERT INTO sessions (movie_id, room_id, capacity, starts_at, base_price_cents, status)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		sess.MovieID, sess.RoomID, sess.Capacity, sess.StartsAt.UTC(), sess.BasePriceCents, string(sess.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sess.ID = uint64(id)
	if err := r.writeSeatsTx(ctx, tx, sess.ID, sess.Seats); err != nil {
		return err
	}
	// Re-read the row so the caller sees the DB timestamps.
	const sel = `SELECT created_at, updated_at FROM sessions WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, sess.ID).Scan(&sess.CreatedAt, &sess.UpdatedAt)
}

func (r *SessionRepo) updateTx(ctx context.Context, tx *sql.Tx, sess *model.Session) error {
	const q = `UPDATE sessions
               SET movie_id = ?, room_id = ?, capacity = ?, starts_at = ?, base_price_cents = ?, status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := tx.ExecContext(ctx, q,
		sess.MovieID, sess.RoomID, sess.Capacity, sess.StartsAt.UTC(), sess.BasePriceCents, string(sess.Status), sess.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also zero when every column already matches,
		// so confirm the row exists before reporting not-found.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ? LIMIT 1`, sess.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrSessionNotFound
			}
			return err
		}
	}
	return r.writeSeatsTx(ctx, tx, sess.ID, sess.Seats)
}

// writeSeatsTx upserts every seat row in one statement. Seat codes are
// fixed at creation, so the set never shrinks and a delete pass is not
// needed.
func (r *SessionRepo) writeSeatsTx(ctx context.Context, tx *sql.Tx, sessionID uint64, seats model.SeatMap) error {
	if len(seats) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO session_seats (session_id, seat_code, available) VALUES `)
	args := make([]interface{}, 0, len(seats)*3)
	first := true
	for _, code := range seats.Codes() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString("(?, ?, ?)")
		args = append(args, sessionID, code, seats[code])
	}
	sb.WriteString(` ON DUPLICATE KEY UPDATE available = VALUES(available)`)
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// FindByMovie returns all sessions for the movie with their seat maps,
// ordered by start time ascending. It returns an empty slice when the
// movie has no sessions.
func (r *SessionRepo) FindByMovie(ctx context.Context, movieID uint64) ([]*model.Session, error) {
	const q = `SELECT id, movie_id, room_id, capacity, starts_at, base_price_cents, status, created_at, updated_at
               FROM sessions WHERE movie_id = ? ORDER BY starts_at ASC, id ASC`
	return r.querySessions(ctx, q, movieID)
}

// ListAll returns every session with its seat map, ordered by start
// time ascending.
func (r *SessionRepo) ListAll(ctx context.Context) ([]*model.Session, error) {
	const q = `SELECT id, movie_id, room_id, capacity, starts_at, base_price_cents, status, created_at, updated_at
               FROM sessions ORDER BY starts_at ASC, id ASC`
	return r.querySessions(ctx, q)
}

func (r *SessionRepo) querySessions(ctx context.Context, q string, args ...interface{}) ([]*model.Session, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]*model.Session, 0)
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, sess := range result {
		if sess.Seats, err = r.loadSeats(ctx, sess.ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *SessionRepo) loadSeats(ctx context.Context, sessionID uint64) (model.SeatMap, error) {
	const q = `SELECT seat_code, available FROM session_seats WHERE session_id = ?`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make(model.SeatMap)
	for rows.Next() {
		var code string
		var available bool
		if err := rows.Scan(&code, &available); err != nil {
			return nil, err
		}
		seats[code] = available
	}
	return seats, rows.Err()
}

// rowScanner lets scanSession accept both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	var sess model.Session
	var status string
	var startsAt, createdAt, updatedAt time.Time
	err := row.Scan(&sess.ID, &sess.MovieID, &sess.RoomID, &sess.Capacity,
		&startsAt, &sess.BasePriceCents, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	sess.StartsAt = startsAt.UTC()
	sess.CreatedAt = createdAt.UTC()
	sess.UpdatedAt = updatedAt.UTC()
	sess.Status = model.SessionStatus(status)
	return &sess, nil
}
