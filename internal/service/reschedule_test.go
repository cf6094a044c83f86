package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

func TestRescheduleOneAcrossSessions(t *testing.T) {
	e := newEngines(t)
	from := e.mustCreateSession(t, 10, 24*time.Hour)
	to := e.mustCreateSession(t, 10, 48*time.Hour)
	_, tickets := e.mustBuy(t, 42, from.ID, "A3")
	ctx := context.Background()

	rec, err := e.resched.RescheduleOne(ctx, RescheduleOneParams{
		TicketID:    tickets[0].ID,
		ToSessionID: to.ID,
		ToSeat:      "B7",
		ActorID:     42,
		Reason:      "customer request",
	})
	require.NoError(t, err)

	assert.Equal(t, from.ID, rec.FromSessionID)
	assert.Equal(t, "A3", rec.FromSeat)
	assert.Equal(t, to.ID, rec.ToSessionID)
	assert.Equal(t, "B7", rec.ToSeat)
	assert.Equal(t, testNow, rec.At)

	moved, err := e.tickets.GetByID(ctx, tickets[0].ID)
	require.NoError(t, err)
	assert.Equal(t, to.ID, moved.SessionID)
	assert.Equal(t, "B7", moved.SeatCode)
	assert.Equal(t, model.TicketActive, moved.Status)

	// Self-service releases the original seat and takes the new one.
	origStored, err := e.sessions.GetByID(ctx, from.ID)
	require.NoError(t, err)
	avail, err := origStored.Seats.IsAvailable("A3")
	require.NoError(t, err)
	assert.True(t, avail)

	destStored, err := e.sessions.GetByID(ctx, to.ID)
	require.NoError(t, err)
	avail, err = destStored.Seats.IsAvailable("B7")
	require.NoError(t, err)
	assert.False(t, avail)
}

func TestRescheduleOneKeepsSeatByDefault(t *testing.T) {
	e := newEngines(t)
	from := e.mustCreateSession(t, 10, 24*time.Hour)
	to := e.mustCreateSession(t, 10, 48*time.Hour)
	_, tickets := e.mustBuy(t, 42, from.ID, "A3")

	rec, err := e.resched.RescheduleOne(context.Background(), RescheduleOneParams{
		TicketID:    tickets[0].ID,
		ToSessionID: to.ID,
		ActorID:     42,
		Reason:      "customer request",
	})
	require.NoError(t, err)
	assert.Equal(t, "A3", rec.ToSeat, "empty seat keeps the current code")
}

func TestRescheduleOneStaffKeepsOriginalSeat(t *testing.T) {
	e := newEngines(t)
	from := e.mustCreateSession(t, 10, 24*time.Hour)
	to := e.mustCreateSession(t, 10, 48*time.Hour)
	_, tickets := e.mustBuy(t, 42, from.ID, "A3")
	ctx := context.Background()

	_, err := e.resched.RescheduleOne(ctx, RescheduleOneParams{
		TicketID:      tickets[0].ID,
		ToSessionID:   to.ID,
		ActorID:       7,
		Reason:        "projector failure",
		StaffOverride: true,
	})
	require.NoError(t, err)

	// The staff path holds the original seat in case of dispute.
	origStored, err := e.sessions.GetByID(ctx, from.ID)
	require.NoError(t, err)
	avail, err := origStored.Seats.IsAvailable("A3")
	require.NoError(t, err)
	assert.False(t, avail)
}

func TestRescheduleOneCutoff(t *testing.T) {
	e := newEngines(t)
	from := e.mustCreateSession(t, 10, 24*time.Hour)
	to := e.mustCreateSession(t, 10, 48*time.Hour)
	_, tickets := e.mustBuy(t, 42, from.ID, "A1", "A2")
	ctx := context.Background()

	params := func(id uint64) RescheduleOneParams {
		return RescheduleOneParams{TicketID: id, ToSessionID: to.ID, ActorID: 42, Reason: "customer request"}
	}

	t.Run("one second before the cutoff is allowed", func(t *testing.T) {
		e.clock.Set(from.StartsAt.Add(-RescheduleCutoff - time.Second))
		_, err := e.resched.RescheduleOne(ctx, params(tickets[0].ID))
		assert.NoError(t, err)
	})

	t.Run("exactly at the cutoff is refused", func(t *testing.T) {
		e.clock.Set(from.StartsAt.Add(-RescheduleCutoff))
		_, err := e.resched.RescheduleOne(ctx, params(tickets[1].ID))
		assert.ErrorIs(t, err, model.ErrTooLateToReschedule)
	})

	t.Run("staff override ignores the cutoff", func(t *testing.T) {
		p := params(tickets[1].ID)
		p.StaffOverride = true
		p.Reason = "screen defect"
		_, err := e.resched.RescheduleOne(ctx, p)
		assert.NoError(t, err)
	})
}

func TestRescheduleOneRejections(t *testing.T) {
	e := newEngines(t)
	from := e.mustCreateSession(t, 10, 24*time.Hour)
	_, tickets := e.mustBuy(t, 42, from.ID, "A1", "A2")
	ctx := context.Background()

	t.Run("blank reason", func(t *testing.T) {
		_, err := e.resched.RescheduleOne(ctx, RescheduleOneParams{
			TicketID: tickets[0].ID, ToSessionID: from.ID, ActorID: 42, Reason: "   ",
		})
		assert.ErrorIs(t, err, model.ErrReasonRequired)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		_, err := e.resched.RescheduleOne(ctx, RescheduleOneParams{
			TicketID: 9999, ToSessionID: from.ID, ActorID: 42, Reason: "customer request",
		})
		assert.ErrorIs(t, err, model.ErrTicketNotFound)
	})

	t.Run("validated ticket cannot move", func(t *testing.T) {
		_, err := e.validate.Validate(ctx, tickets[0].Code, 7)
		require.NoError(t, err)
		_, err = e.resched.RescheduleOne(ctx, RescheduleOneParams{
			TicketID: tickets[0].ID, ToSessionID: from.ID, ActorID: 42, Reason: "customer request",
		})
		assert.ErrorIs(t, err, model.ErrInvalidState)
	})
}

func TestRescheduleOneDestinationChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelled destination", func(t *testing.T) {
		e := newEngines(t)
		from := e.mustCreateSession(t, 10, 24*time.Hour)
		to := e.mustCreateSession(t, 10, 48*time.Hour)
		_, tickets := e.mustBuy(t, 42, from.ID, "A1")
		_, err := e.session.Cancel(ctx, to.ID)
		require.NoError(t, err)

		_, err = e.resched.RescheduleOne(ctx, RescheduleOneParams{
			TicketID: tickets[0].ID, ToSessionID: to.ID, ActorID: 42, Reason: "customer request",
		})
		assert.ErrorIs(t, err, model.ErrSessionCancelled)
	})

	t.Run("started destination", func(t *testing.T) {
		e := newEngines(t)
		from := e.mustCreateSession(t, 10, 48*time.Hour)
		to := e.mustCreateSession(t, 10, time.Hour)
		_, tickets := e.mustBuy(t, 42, from.ID, "A1")

		e.clock.Advance(2 * time.Hour)
		_, err := e.resched.RescheduleOne(ctx, RescheduleOneParams{
			TicketID: tickets[0].ID, ToSessionID: to.ID, ActorID: 42, Reason: "customer request",
		})
		assert.ErrorIs(t, err, model.ErrAlreadyPast)
	})

	t.Run("occupied destination seat", func(t *testing.T) {
		e := newEngines(t)
		from := e.mustCreateSession(t, 10, 24*time.Hour)
		to := e.mustCreateSession(t, 10, 48*time.Hour)
		_, tickets := e.mustBuy(t, 42, from.ID, "A1")
		e.mustBuy(t, 43, to.ID, "B4")

		_, err := e.resched.RescheduleOne(ctx, RescheduleOneParams{
			TicketID: tickets[0].ID, ToSessionID: to.ID, ToSeat: "B4", ActorID: 42, Reason: "customer request",
		})
		assert.ErrorIs(t, err, model.ErrSeatUnavailable)
	})
}

func TestRescheduleSession(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)
	_, tickets := e.mustBuy(t, 42, sess.ID, "A1", "A2", "B3")
	ctx := context.Background()

	newStart := testNow.Add(72 * time.Hour)
	n, err := e.resched.RescheduleSession(ctx, RescheduleSessionParams{
		SessionID: sess.ID,
		NewStart:  newStart,
		ActorID:   7,
		Reason:    "hall maintenance",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	stored, err := e.sessions.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartsAt.Equal(newStart))

	recs, err := e.audit.ListReschedules(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, sess.ID, rec.FromSessionID)
		assert.Equal(t, sess.ID, rec.ToSessionID)
		assert.Equal(t, rec.FromSeat, rec.ToSeat, "a time move keeps every seat in place")
		assert.Equal(t, "hall maintenance", rec.Reason)
		assert.Equal(t, recs[0].At, rec.At)
	}

	t.Run("tickets keep session and seat", func(t *testing.T) {
		for _, tk := range tickets {
			stored, err := e.tickets.GetByID(ctx, tk.ID)
			require.NoError(t, err)
			assert.Equal(t, sess.ID, stored.SessionID)
			assert.Equal(t, tk.SeatCode, stored.SeatCode)
		}
	})
}

func TestRescheduleSessionSeatSubset(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)
	e.mustBuy(t, 42, sess.ID, "A1", "A2", "B3")
	ctx := context.Background()

	// Requested list mixes an occupied seat, a free seat and an unknown
	// code; only the occupied one counts.
	n, err := e.resched.RescheduleSession(ctx, RescheduleSessionParams{
		SessionID: sess.ID,
		NewStart:  testNow.Add(72 * time.Hour),
		SeatCodes: []string{"A2", "B9", "Z99"},
		ActorID:   7,
		Reason:    "hall maintenance",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs, err := e.audit.ListReschedules(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A2", recs[0].FromSeat)
}

func TestRescheduleSessionRejections(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)
	ctx := context.Background()

	t.Run("past start time", func(t *testing.T) {
		_, err := e.resched.RescheduleSession(ctx, RescheduleSessionParams{
			SessionID: sess.ID, NewStart: testNow.Add(-time.Hour), ActorID: 7, Reason: "hall maintenance",
		})
		assert.ErrorIs(t, err, model.ErrTimeMustBeFuture)
	})

	t.Run("blank reason", func(t *testing.T) {
		_, err := e.resched.RescheduleSession(ctx, RescheduleSessionParams{
			SessionID: sess.ID, NewStart: testNow.Add(72 * time.Hour), ActorID: 7,
		})
		assert.ErrorIs(t, err, model.ErrReasonRequired)
	})

	t.Run("cancelled session", func(t *testing.T) {
		cancelled := e.mustCreateSession(t, 10, 24*time.Hour)
		_, err := e.session.Cancel(ctx, cancelled.ID)
		require.NoError(t, err)
		_, err = e.resched.RescheduleSession(ctx, RescheduleSessionParams{
			SessionID: cancelled.ID, NewStart: testNow.Add(72 * time.Hour), ActorID: 7, Reason: "hall maintenance",
		})
		assert.ErrorIs(t, err, model.ErrSessionCancelled)
	})
}

func TestTicketHistory(t *testing.T) {
	e := newEngines(t)
	from := e.mustCreateSession(t, 10, 24*time.Hour)
	to := e.mustCreateSession(t, 10, 48*time.Hour)
	_, tickets := e.mustBuy(t, 42, from.ID, "A1")
	ctx := context.Background()

	_, err := e.resched.RescheduleOne(ctx, RescheduleOneParams{
		TicketID: tickets[0].ID, ToSessionID: to.ID, ActorID: 42, Reason: "customer request",
	})
	require.NoError(t, err)
	_, err = e.validate.Validate(ctx, tickets[0].Code, 7)
	require.NoError(t, err)

	vals, moves, err := e.resched.TicketHistory(ctx, tickets[0].ID)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	require.Len(t, moves, 1)
	assert.True(t, vals[0].Valid)
	assert.Equal(t, "customer request", moves[0].Reason)

	_, _, err = e.resched.TicketHistory(ctx, 9999)
	assert.ErrorIs(t, err, model.ErrTicketNotFound)
}

func TestRescheduleOneSeesConcurrentValidation(t *testing.T) {
	e := newEngines(t)
	ht := &hookedTickets{TicketStore: e.tickets}
	resched := NewRescheduleService(e.sessions, ht, e.audit, e.clock, e.locks)

	from := e.mustCreateSession(t, 10, 3*time.Hour)
	to := e.mustCreateSession(t, 10, 5*time.Hour)
	_, tickets := e.mustBuy(t, 7, from.ID, "A1")
	tk := tickets[0]

	// A gate scan lands after the move's first ticket read but before
	// it takes the session locks.
	ht.afterGetByID = func() {
		res, err := e.validate.Validate(context.Background(), tk.Code, 99)
		require.NoError(t, err)
		require.True(t, res.Valid)
	}

	_, err := resched.RescheduleOne(context.Background(), RescheduleOneParams{
		TicketID:    tk.ID,
		ToSessionID: to.ID,
		ActorID:     7,
		Reason:      "projector fault",
	})
	require.ErrorIs(t, err, model.ErrInvalidState)

	stored, err := e.tickets.GetByID(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TicketValidated, stored.Status)
	assert.Equal(t, from.ID, stored.SessionID)
	assert.Equal(t, "A1", stored.SeatCode)
}

func TestRescheduleOneStorageFaultKeepsTicketInPlace(t *testing.T) {
	e := newEngines(t)
	ft := &failingTickets{TicketStore: e.tickets}
	resched := NewRescheduleService(e.sessions, ft, e.audit, e.clock, e.locks)

	from := e.mustCreateSession(t, 10, 3*time.Hour)
	to := e.mustCreateSession(t, 10, 5*time.Hour)
	_, tickets := e.mustBuy(t, 7, from.ID, "A1")

	ft.failSave = true
	_, err := resched.RescheduleOne(context.Background(), RescheduleOneParams{
		TicketID:    tickets[0].ID,
		ToSessionID: to.ID,
		ActorID:     7,
		Reason:      "projector fault",
	})
	require.Error(t, err)

	// The ticket never moved; the destination seat stays held rather
	// than sellable twice.
	stored, err := e.tickets.GetByID(context.Background(), tickets[0].ID)
	require.NoError(t, err)
	assert.Equal(t, from.ID, stored.SessionID)
	assert.Equal(t, model.TicketActive, stored.Status)

	dest, err := e.sessions.GetByID(context.Background(), to.ID)
	require.NoError(t, err)
	avail, err := dest.Seats.IsAvailable("A1")
	require.NoError(t, err)
	assert.False(t, avail)
}
