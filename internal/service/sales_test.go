package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

func TestCreatePurchase(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)
	ctx := context.Background()

	p, tickets, err := e.sales.CreatePurchase(ctx, 42, sess.ID, []SeatRequest{
		{SeatCode: "A1", Fare: model.FareFull},
		{SeatCode: "A2", Fare: model.FareHalf},
	})
	require.NoError(t, err)

	assert.Equal(t, model.PurchaseConfirmed, p.Status)
	assert.Equal(t, uint64(42), p.CustomerID)
	assert.NotZero(t, p.ID)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", p.Ref.String())
	assert.Equal(t, uint32(1500+750), p.TotalCents)

	require.Len(t, tickets, 2)
	assert.NotEqual(t, tickets[0].Code, tickets[1].Code)
	for _, tk := range tickets {
		assert.Equal(t, model.TicketActive, tk.Status)
		assert.Equal(t, p.ID, tk.PurchaseID)
		assert.Equal(t, sess.ID, tk.SessionID)
	}
	assert.Equal(t, uint32(1500), tickets[0].PriceCents)
	assert.Equal(t, uint32(750), tickets[1].PriceCents)

	stored, err := e.sessions.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Seats.AvailableCount())
}

func TestCreatePurchaseRejections(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 4, 24*time.Hour)
	ctx := context.Background()

	t.Run("no seats", func(t *testing.T) {
		_, _, err := e.sales.CreatePurchase(ctx, 1, sess.ID, nil)
		assert.ErrorIs(t, err, model.ErrInvalidState)
	})

	t.Run("invalid fare", func(t *testing.T) {
		_, _, err := e.sales.CreatePurchase(ctx, 1, sess.ID, []SeatRequest{{SeatCode: "A1", Fare: "QUARTER"}})
		assert.ErrorIs(t, err, model.ErrInvalidState)
	})

	t.Run("duplicate seat in one request", func(t *testing.T) {
		_, _, err := e.sales.CreatePurchase(ctx, 1, sess.ID, []SeatRequest{
			{SeatCode: "A1", Fare: model.FareFull},
			{SeatCode: "A1", Fare: model.FareFull},
		})
		assert.ErrorIs(t, err, model.ErrSeatUnavailable)
	})

	t.Run("occupied seat", func(t *testing.T) {
		e.mustBuy(t, 1, sess.ID, "A1")
		_, _, err := e.sales.CreatePurchase(ctx, 2, sess.ID, []SeatRequest{{SeatCode: "A1", Fare: model.FareFull}})
		assert.ErrorIs(t, err, model.ErrSeatUnavailable)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, _, err := e.sales.CreatePurchase(ctx, 1, 999, []SeatRequest{{SeatCode: "A1", Fare: model.FareFull}})
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
	})

	t.Run("cancelled session", func(t *testing.T) {
		cancelled := e.mustCreateSession(t, 4, 24*time.Hour)
		_, err := e.session.Cancel(ctx, cancelled.ID)
		require.NoError(t, err)
		_, _, err = e.sales.CreatePurchase(ctx, 1, cancelled.ID, []SeatRequest{{SeatCode: "A1", Fare: model.FareFull}})
		assert.ErrorIs(t, err, model.ErrSessionCancelled)
	})

	t.Run("started session", func(t *testing.T) {
		started := e.mustCreateSession(t, 4, time.Minute)
		e.clock.Advance(2 * time.Minute)
		_, _, err := e.sales.CreatePurchase(ctx, 1, started.ID, []SeatRequest{{SeatCode: "A1", Fare: model.FareFull}})
		assert.ErrorIs(t, err, model.ErrAlreadyPast)
		e.clock.Set(testNow)
	})
}

func TestCreatePurchaseAtomicity(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)
	ctx := context.Background()
	e.mustBuy(t, 1, sess.ID, "A3")

	// Second seat collides, so the first seat must not stay reserved.
	_, _, err := e.sales.CreatePurchase(ctx, 2, sess.ID, []SeatRequest{
		{SeatCode: "A2", Fare: model.FareFull},
		{SeatCode: "A3", Fare: model.FareFull},
	})
	require.ErrorIs(t, err, model.ErrSeatUnavailable)

	stored, err := e.sessions.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	avail, err := stored.Seats.IsAvailable("A2")
	require.NoError(t, err)
	assert.True(t, avail, "partial reservation must be rolled back")
}

func TestCreatePurchaseSoldOut(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 2, 24*time.Hour)
	ctx := context.Background()

	e.mustBuy(t, 1, sess.ID, "A1", "A2")

	stored, err := e.sessions.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionSoldOut, stored.Status)

	_, _, err = e.sales.CreatePurchase(ctx, 2, sess.ID, []SeatRequest{{SeatCode: "A1", Fare: model.FareFull}})
	assert.ErrorIs(t, err, model.ErrSeatUnavailable)
}

func TestCreatePurchaseConcurrentOneWinner(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)

	const racers = 20
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = e.sales.CreatePurchase(context.Background(), uint64(i+1), sess.ID,
				[]SeatRequest{{SeatCode: "B5", Fare: model.FareFull}})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, model.ErrSeatUnavailable)
		}
	}
	assert.Equal(t, 1, winners, "exactly one racing purchase may win the seat")

	stored, err := e.sessions.GetByID(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.Seats.AvailableCount())
}

func TestCodeGenerationExhaustion(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)
	ctx := context.Background()

	// A source that only ever produces one code: the first purchase
	// takes it, the second burns through every attempt.
	e.sales = NewSalesService(e.sessions, e.tickets, stuckCodes{code: "SAME"}, e.clock, e.locks)

	_, tickets, err := e.sales.CreatePurchase(ctx, 1, sess.ID, []SeatRequest{{SeatCode: "A1", Fare: model.FareFull}})
	require.NoError(t, err)
	require.Equal(t, "SAME", tickets[0].Code)

	_, _, err = e.sales.CreatePurchase(ctx, 2, sess.ID, []SeatRequest{{SeatCode: "A2", Fare: model.FareFull}})
	assert.ErrorIs(t, err, model.ErrCodeGenerationExhausted)

	stored, err := e.sessions.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	avail, err := stored.Seats.IsAvailable("A2")
	require.NoError(t, err)
	assert.True(t, avail, "failed purchase must not keep the seat")
}

func TestListPurchases(t *testing.T) {
	e := newEngines(t)
	sess := e.mustCreateSession(t, 10, 24*time.Hour)

	p1, _ := e.mustBuy(t, 7, sess.ID, "A1")
	p2, _ := e.mustBuy(t, 7, sess.ID, "A2", "A3")
	e.mustBuy(t, 8, sess.ID, "A4")

	purchases, ticketsByPurchase, err := e.sales.ListPurchases(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	// Newest first.
	assert.Equal(t, p2.ID, purchases[0].ID)
	assert.Equal(t, p1.ID, purchases[1].ID)
	assert.Len(t, ticketsByPurchase[p2.ID], 2)
	assert.Len(t, ticketsByPurchase[p1.ID], 1)
}

func TestCreatePurchaseReleasesSeatsOnStorageFault(t *testing.T) {
	e := newEngines(t)
	ft := &failingTickets{TicketStore: e.tickets, failCreate: true}
	sales := NewSalesService(e.sessions, ft, &seqCodes{}, e.clock, e.locks)

	sess := e.mustCreateSession(t, 10, time.Hour)
	_, _, err := sales.CreatePurchase(context.Background(), 7, sess.ID,
		[]SeatRequest{{SeatCode: "A1", Fare: model.FareFull}})
	require.Error(t, err)

	stored, err := e.sessions.GetByID(context.Background(), sess.ID)
	require.NoError(t, err)
	avail, err := stored.Seats.IsAvailable("A1")
	require.NoError(t, err)
	assert.True(t, avail, "seat must be sellable again after the fault")

	_, tickets, err := sales.CreatePurchase(context.Background(), 7, sess.ID,
		[]SeatRequest{{SeatCode: "A1", Fare: model.FareFull}})
	require.NoError(t, err)
	assert.Equal(t, "A1", tickets[0].SeatCode)
}
