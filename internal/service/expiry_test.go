package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

func TestExpirySweep(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, time.Hour)
	_, tickets := e.mustBuy(t, 42, sess.ID, "A1", "A2", "A3")
	ctx := context.Background()

	// Cancel one ticket before the session starts.
	cancelled, err := e.tickets.GetByID(ctx, tickets[2].ID)
	require.NoError(t, err)
	require.NoError(t, cancelled.Cancel())
	require.NoError(t, e.tickets.Save(ctx, cancelled))

	t.Run("future session is untouched", func(t *testing.T) {
		n, err := e.expiry.ForSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	e.clock.Advance(2 * time.Hour)

	n, err := e.expiry.ForSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "only ACTIVE tickets expire")

	stored, err := e.sessions.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionUnavailable, stored.Status)

	for _, tk := range tickets[:2] {
		got, err := e.tickets.GetByID(ctx, tk.ID)
		require.NoError(t, err)
		assert.Equal(t, model.TicketExpired, got.Status)
	}
	got, err := e.tickets.GetByID(ctx, tickets[2].ID)
	require.NoError(t, err)
	assert.Equal(t, model.TicketCancelled, got.Status, "cancelled is a terminal state of its own")

	t.Run("second pass is a no-op", func(t *testing.T) {
		n, err := e.expiry.ForSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestExpirySweepAllSessions(t *testing.T) {
	e := newEngines(t)
	past1 := e.mustCreateSession(t, 10, time.Hour)
	past2 := e.mustCreateSession(t, 10, 2*time.Hour)
	future := e.mustCreateSession(t, 10, 100*time.Hour)
	e.mustBuy(t, 42, past1.ID, "A1", "A2")
	e.mustBuy(t, 43, past2.ID, "B1")
	e.mustBuy(t, 44, future.ID, "C1")
	ctx := context.Background()

	e.clock.Advance(3 * time.Hour)

	total, err := e.expiry.ForAllPastSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	stored, err := e.sessions.GetByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAvailable, stored.Status)
}

func TestExpirySweepUnknownSession(t *testing.T) {
	e := newEngines(t)
	_, err := e.expiry.ForSession(context.Background(), 9999)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}
