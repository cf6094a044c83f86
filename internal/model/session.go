package model

import "time"

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	// SessionAvailable is the initial state: seats can be sold.
	SessionAvailable SessionStatus = "AVAILABLE"
	// SessionSoldOut is entered implicitly whenever a reservation
	// leaves the seat map with zero available seats.
	SessionSoldOut SessionStatus = "SOLD_OUT"
	// SessionCancelled is the terminal state reached by an explicit
	// cancellation. Cancellation never deletes the session.
	SessionCancelled SessionStatus = "CANCELLED"
	// SessionUnavailable is the terminal state entered automatically
	// once the scheduled start time is in the past.
	SessionUnavailable SessionStatus = "UNAVAILABLE"
)

// IsValid reports whether the status is a known enumeration value.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionAvailable, SessionSoldOut, SessionCancelled, SessionUnavailable:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to target.
// CANCELLED and UNAVAILABLE are terminal: rescheduling targets a
// different session, it never reopens this one.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	transitions := map[SessionStatus][]SessionStatus{
		SessionAvailable:   {SessionSoldOut, SessionCancelled, SessionUnavailable},
		SessionSoldOut:     {SessionAvailable, SessionCancelled, SessionUnavailable},
		SessionCancelled:   {},
		SessionUnavailable: {},
	}
	for _, st := range transitions[s] {
		if st == target {
			return true
		}
	}
	return false
}

// Session is one scheduled screening of a movie in a room at a specific
// time. It owns the seat map and the session status state machine.
//
// Fields:
//
//	ID             - primary key identifier.
//	MovieID        - movie being screened.
//	RoomID         - room in which the screening takes place.
//	Capacity       - number of seats generated at creation time.
//	StartsAt       - scheduled start time (UTC).
//	BasePriceCents - full-fare ticket price in cents.
//	Status         - lifecycle state, see SessionStatus.
//	Seats          - per-seat availability, see SeatMap.
//	CreatedAt      - creation timestamp.
//	UpdatedAt      - last update timestamp.
type Session struct {
	ID             uint64
	MovieID        uint64
	RoomID         uint64
	Capacity       int
	StartsAt       time.Time
	BasePriceCents uint32
	Status         SessionStatus
	Seats          SeatMap
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSession creates an AVAILABLE session with a freshly generated seat
// map. The start time must be strictly in the future relative to now.
func NewSession(movieID, roomID uint64, capacity int, startsAt time.Time, basePriceCents uint32, now time.Time) (*Session, error) {
	if !startsAt.After(now) {
		return nil, ErrTimeMustBeFuture
	}
	return &Session{
		MovieID:        movieID,
		RoomID:         roomID,
		Capacity:       capacity,
		StartsAt:       startsAt.UTC(),
		BasePriceCents: basePriceCents,
		Status:         SessionAvailable,
		Seats:          GenerateSeatMap(capacity),
	}, nil
}

// HasStarted reports whether the scheduled start time has passed.
func (s *Session) HasStarted(now time.Time) bool {
	return !s.StartsAt.After(now)
}

// Refresh applies the automatic AVAILABLE|SOLD_OUT -> UNAVAILABLE
// transition when the start time lies in the past. It is evaluated
// lazily on every read so that a session is reported UNAVAILABLE without
// requiring an explicit sweep. It returns true when the status changed
// and must be persisted.
func (s *Session) Refresh(now time.Time) bool {
	if !s.HasStarted(now) {
		return false
	}
	if s.Status != SessionAvailable && s.Status != SessionSoldOut {
		return false
	}
	s.Status = SessionUnavailable
	return true
}

// Cancel moves the session into the CANCELLED state. It fails with
// ErrAlreadyCancelled when already cancelled and with ErrAlreadyPast
// when the start time has passed (a finished session cannot be
// cancelled).
func (s *Session) Cancel(now time.Time) error {
	if s.Status == SessionCancelled {
		return ErrAlreadyCancelled
	}
	if s.HasStarted(now) || s.Status == SessionUnavailable {
		return ErrAlreadyPast
	}
	s.Status = SessionCancelled
	return nil
}

// ReserveSeat flips one seat to occupied and applies the implicit
// SOLD_OUT transition when the last available seat was taken.
func (s *Session) ReserveSeat(code string) error {
	if err := s.Seats.Reserve(code); err != nil {
		return err
	}
	if s.Status == SessionAvailable && s.Seats.AvailableCount() == 0 {
		s.Status = SessionSoldOut
	}
	return nil
}

// ReleaseSeat flips one seat back to available. A SOLD_OUT session with
// a freed seat becomes AVAILABLE again.
func (s *Session) ReleaseSeat(code string) error {
	if err := s.Seats.Release(code); err != nil {
		return err
	}
	if s.Status == SessionSoldOut {
		s.Status = SessionAvailable
	}
	return nil
}

// ScheduleChange carries a partial schedule update. Nil fields keep the
// session's current value.
type ScheduleChange struct {
	StartsAt *time.Time
	RoomID   *uint64
	Capacity *int
}

// ModifySchedule applies a partial update to time, room and capacity.
// It fails with ErrInvalidState when the session is cancelled and with
// ErrTimeMustBeFuture when the new start time is not in the future.
// Changing capacity does not regenerate already-sold seats: the seat map
// stays untouched once generated, and a mismatch between Capacity and
// the map is visible to callers rather than silently repaired.
func (s *Session) ModifySchedule(ch ScheduleChange, now time.Time) error {
	if s.Status == SessionCancelled {
		return ErrInvalidState
	}
	if ch.StartsAt != nil {
		if !ch.StartsAt.After(now) {
			return ErrTimeMustBeFuture
		}
		s.StartsAt = ch.StartsAt.UTC()
	}
	if ch.RoomID != nil {
		s.RoomID = *ch.RoomID
	}
	if ch.Capacity != nil {
		s.Capacity = *ch.Capacity
	}
	return nil
}

// Clone returns an independent copy of the session, seat map included.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Seats = s.Seats.Clone()
	return &cp
}
