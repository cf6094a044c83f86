package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

func TestSessionServiceCreate(t *testing.T) {
	e := newEngines(t)
	ctx := context.Background()

	sess, err := e.session.Create(ctx, 5, 2, 25, testNow.Add(24*time.Hour), 1500)
	require.NoError(t, err)
	assert.NotZero(t, sess.ID)
	assert.Equal(t, model.SessionAvailable, sess.Status)
	assert.Len(t, sess.Seats, 25)

	t.Run("past start time", func(t *testing.T) {
		_, err := e.session.Create(ctx, 5, 2, 25, testNow.Add(-time.Minute), 1500)
		assert.ErrorIs(t, err, model.ErrTimeMustBeFuture)
	})
}

func TestSessionServiceGetPersistsLazyFlip(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, time.Hour)
	ctx := context.Background()

	e.clock.Advance(90 * time.Minute)

	got, err := e.session.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionUnavailable, got.Status)

	// The flip reached the store, not just the returned copy.
	stored, err := e.sessions.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionUnavailable, stored.Status)

	t.Run("unknown id", func(t *testing.T) {
		_, err := e.session.Get(ctx, 9999)
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
	})
}

func TestSessionServiceListRefreshesAll(t *testing.T) {
	e := newEngines(t)
	past := e.mustCreateSession(t, 10, time.Hour)
	future := e.mustCreateSession(t, 10, 100*time.Hour)
	ctx := context.Background()

	e.clock.Advance(2 * time.Hour)

	all, err := e.session.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byID := map[uint64]*model.Session{all[0].ID: all[0], all[1].ID: all[1]}
	assert.Equal(t, model.SessionUnavailable, byID[past.ID].Status)
	assert.Equal(t, model.SessionAvailable, byID[future.ID].Status)
}

func TestSessionServiceFindByMovie(t *testing.T) {
	e := newEngines(t)
	ctx := context.Background()
	_, err := e.session.Create(ctx, 5, 1, 10, testNow.Add(24*time.Hour), 1500)
	require.NoError(t, err)
	_, err = e.session.Create(ctx, 5, 2, 10, testNow.Add(48*time.Hour), 1500)
	require.NoError(t, err)
	_, err = e.session.Create(ctx, 6, 1, 10, testNow.Add(24*time.Hour), 1500)
	require.NoError(t, err)

	found, err := e.session.FindByMovie(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, found, 2)
	for _, sess := range found {
		assert.Equal(t, uint64(5), sess.MovieID)
	}
}

func TestSessionServiceModifySchedule(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)
	ctx := context.Background()

	newStart := testNow.Add(48 * time.Hour)
	newRoom := uint64(9)
	got, err := e.session.ModifySchedule(ctx, sess.ID, model.ScheduleChange{
		StartsAt: &newStart,
		RoomID:   &newRoom,
	})
	require.NoError(t, err)
	assert.True(t, got.StartsAt.Equal(newStart))
	assert.Equal(t, uint64(9), got.RoomID)

	stored, err := e.sessions.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartsAt.Equal(newStart))

	t.Run("past time rejected", func(t *testing.T) {
		past := testNow.Add(-time.Hour)
		_, err := e.session.ModifySchedule(ctx, sess.ID, model.ScheduleChange{StartsAt: &past})
		assert.ErrorIs(t, err, model.ErrTimeMustBeFuture)
	})

	t.Run("cancelled session rejected", func(t *testing.T) {
		other := e.mustCreateSession(t, 10, 24*time.Hour)
		_, err := e.session.Cancel(ctx, other.ID)
		require.NoError(t, err)
		_, err = e.session.ModifySchedule(ctx, other.ID, model.ScheduleChange{StartsAt: &newStart})
		assert.ErrorIs(t, err, model.ErrInvalidState)
	})
}

func TestSessionServiceCancel(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)
	ctx := context.Background()

	got, err := e.session.Cancel(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCancelled, got.Status)

	t.Run("cancel twice", func(t *testing.T) {
		_, err := e.session.Cancel(ctx, sess.ID)
		assert.ErrorIs(t, err, model.ErrAlreadyCancelled)
	})

	t.Run("cancel after start", func(t *testing.T) {
		other := e.mustCreateSession(t, 10, time.Hour)
		e.clock.Advance(2 * time.Hour)
		_, err := e.session.Cancel(ctx, other.ID)
		assert.ErrorIs(t, err, model.ErrAlreadyPast)
	})
}

func TestSessionServiceListKeepsRefreshedViewOnPersistFailure(t *testing.T) {
	e := newEngines(t)
	fs := &failingSessions{SessionStore: e.sessions}
	svc := NewSessionService(fs, e.clock, e.locks)

	sess := e.mustCreateSession(t, 5, time.Hour)
	e.clock.Advance(2 * time.Hour)

	fs.failSave = true
	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, model.SessionUnavailable, all[0].Status)

	// The flip did not reach storage; the next pass persists it.
	fs.failSave = false
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	stored, err := e.sessions.GetByID(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionUnavailable, stored.Status)
}
