package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, capacity int, startsAt time.Time) *Session {
	t.Helper()
	s, err := NewSession(1, 2, capacity, startsAt, 1500, baseTime)
	require.NoError(t, err)
	return s
}

func TestNewSession(t *testing.T) {
	t.Run("start must be in the future", func(t *testing.T) {
		_, err := NewSession(1, 2, 10, baseTime, 1500, baseTime)
		assert.ErrorIs(t, err, ErrTimeMustBeFuture)

		_, err = NewSession(1, 2, 10, baseTime.Add(-time.Minute), 1500, baseTime)
		assert.ErrorIs(t, err, ErrTimeMustBeFuture)
	})

	t.Run("generates the seat map", func(t *testing.T) {
		s := newTestSession(t, 15, baseTime.Add(3*time.Hour))
		assert.Equal(t, SessionAvailable, s.Status)
		assert.Len(t, s.Seats, 15)
		assert.Equal(t, 15, s.Seats.AvailableCount())
	})
}

func TestSessionRefresh(t *testing.T) {
	s := newTestSession(t, 5, baseTime.Add(time.Hour))

	t.Run("future session is untouched", func(t *testing.T) {
		assert.False(t, s.Refresh(baseTime))
		assert.Equal(t, SessionAvailable, s.Status)
	})

	t.Run("past start flips to UNAVAILABLE", func(t *testing.T) {
		assert.True(t, s.Refresh(baseTime.Add(time.Hour)))
		assert.Equal(t, SessionUnavailable, s.Status)
	})

	t.Run("flip happens once", func(t *testing.T) {
		assert.False(t, s.Refresh(baseTime.Add(2*time.Hour)))
	})

	t.Run("cancelled sessions never flip", func(t *testing.T) {
		c := newTestSession(t, 5, baseTime.Add(time.Hour))
		require.NoError(t, c.Cancel(baseTime))
		assert.False(t, c.Refresh(baseTime.Add(2*time.Hour)))
		assert.Equal(t, SessionCancelled, c.Status)
	})
}

func TestSessionCancel(t *testing.T) {
	s := newTestSession(t, 5, baseTime.Add(time.Hour))
	require.NoError(t, s.Cancel(baseTime))
	assert.Equal(t, SessionCancelled, s.Status)

	assert.ErrorIs(t, s.Cancel(baseTime), ErrAlreadyCancelled)

	past := newTestSession(t, 5, baseTime.Add(time.Hour))
	assert.ErrorIs(t, past.Cancel(baseTime.Add(time.Hour)), ErrAlreadyPast)
}

func TestSessionSeatTransitions(t *testing.T) {
	s := newTestSession(t, 2, baseTime.Add(time.Hour))

	require.NoError(t, s.ReserveSeat("A1"))
	assert.Equal(t, SessionAvailable, s.Status)

	t.Run("last seat sells out the session", func(t *testing.T) {
		require.NoError(t, s.ReserveSeat("A2"))
		assert.Equal(t, SessionSoldOut, s.Status)
	})

	t.Run("freed seat reopens the session", func(t *testing.T) {
		require.NoError(t, s.ReleaseSeat("A1"))
		assert.Equal(t, SessionAvailable, s.Status)
	})
}

func TestSessionModifySchedule(t *testing.T) {
	newStart := baseTime.Add(48 * time.Hour)
	room := uint64(7)
	capacity := 90

	t.Run("partial update", func(t *testing.T) {
		s := newTestSession(t, 20, baseTime.Add(time.Hour))
		require.NoError(t, s.ReserveSeat("A1"))

		err := s.ModifySchedule(ScheduleChange{StartsAt: &newStart, RoomID: &room, Capacity: &capacity}, baseTime)
		require.NoError(t, err)
		assert.Equal(t, newStart, s.StartsAt)
		assert.Equal(t, room, s.RoomID)
		assert.Equal(t, capacity, s.Capacity)
		// The generated seats stay as they are; capacity changes never
		// regenerate or free sold seats.
		assert.Len(t, s.Seats, 20)
		assert.Equal(t, 1, s.Seats.OccupiedCount())
	})

	t.Run("cancelled session rejects changes", func(t *testing.T) {
		s := newTestSession(t, 20, baseTime.Add(time.Hour))
		require.NoError(t, s.Cancel(baseTime))
		err := s.ModifySchedule(ScheduleChange{StartsAt: &newStart}, baseTime)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("new start must be in the future", func(t *testing.T) {
		s := newTestSession(t, 20, baseTime.Add(time.Hour))
		past := baseTime.Add(-time.Minute)
		err := s.ModifySchedule(ScheduleChange{StartsAt: &past}, baseTime)
		assert.ErrorIs(t, err, ErrTimeMustBeFuture)
	})
}

func TestSessionStatusTransitions(t *testing.T) {
	assert.True(t, SessionAvailable.CanTransitionTo(SessionSoldOut))
	assert.True(t, SessionSoldOut.CanTransitionTo(SessionAvailable))
	assert.True(t, SessionAvailable.CanTransitionTo(SessionCancelled))
	assert.False(t, SessionCancelled.CanTransitionTo(SessionAvailable))
	assert.False(t, SessionUnavailable.CanTransitionTo(SessionAvailable))
	assert.False(t, SessionStatus("BOGUS").IsValid())
}
