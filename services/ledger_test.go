package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"washcenter-backend/events"
	"washcenter-backend/models"
	"washcenter-backend/services"
	"washcenter-backend/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	store   *store.PebbleStore
	catalog *services.CenterCatalog
	ledger  *services.BookingLedger
	pub     *mockPublisher
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	s := openStore(t)
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	catalog := services.NewCenterCatalog(s, nil)
	return &ledgerFixture{
		store:   s,
		catalog: catalog,
		ledger:  services.NewBookingLedger(s, catalog, pub),
		pub:     pub,
	}
}

func (f *ledgerFixture) center(t *testing.T, name, svc string, price float64) *models.Center {
	t.Helper()
	c, err := f.catalog.UpsertCenter(context.Background(), services.CenterInput{
		Name:     str(name),
		Location: str("Main St"),
		Services: str(svc),
		Price:    num(price),
	}, uuid.Nil)
	require.NoError(t, err)
	return c
}

func (f *ledgerFixture) booking(t *testing.T, center *models.Center) *models.Booking {
	t.Helper()
	b, err := f.ledger.CreateBooking(context.Background(), services.CreateBookingInput{
		CustomerName: "Alice",
		CenterID:     center.ID,
		Service:      center.OfferedServices()[0],
		Date:         time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestCreateBookingPending(t *testing.T) {
	f := newLedgerFixture(t)
	center := f.center(t, "Fresh Threads", "Dry Clean, Wash", 15)
	date := time.Date(2024, 6, 1, 10, 0, 0, 0, time.FixedZone("EST", -5*3600))

	b, err := f.ledger.CreateBooking(context.Background(), services.CreateBookingInput{
		CustomerName: "Alice",
		CenterID:     center.ID,
		Service:      "dry clean",
		Date:         date,
		CreatedBy:    "Alice (u1)",
	})
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, "Dry Clean", b.Service)
	assert.Equal(t, "Fresh Threads", b.CenterName)
	assert.Equal(t, 15.0, b.Price)
	assert.True(t, b.Date.Equal(date))
	assert.Equal(t, time.UTC, b.Date.Location())

	stored, err := f.ledger.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, stored.ID)
	assert.Equal(t, models.BookingStatusPending, stored.Status)

	f.pub.AssertCalled(t, "Publish", mock.Anything, events.KeyBookingCreated, mock.AnythingOfType("events.BookingCreated"))
}

func TestCreateBookingUnknownCenter(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.ledger.CreateBooking(context.Background(), services.CreateBookingInput{
		CustomerName: "Alice",
		CenterID:     uuid.New(),
		Service:      "Wash",
		Date:         time.Now(),
	})

	var nf *services.NotFoundError
	assert.ErrorAs(t, err, &nf)
	f.pub.AssertNotCalled(t, "Publish", mock.Anything, events.KeyBookingCreated, mock.Anything)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newLedgerFixture(t)
	center := f.center(t, "Fresh Threads", "Dry Clean", 15)
	ctx := context.Background()

	cases := []struct {
		field string
		in    services.CreateBookingInput
	}{
		{"customerName", services.CreateBookingInput{CustomerName: " ", CenterID: center.ID, Service: "Dry Clean", Date: time.Now()}},
		{"service", services.CreateBookingInput{CustomerName: "Alice", CenterID: center.ID, Date: time.Now()}},
		{"date", services.CreateBookingInput{CustomerName: "Alice", CenterID: center.ID, Service: "Dry Clean"}},
		{"centerId", services.CreateBookingInput{CustomerName: "Alice", Service: "Dry Clean", Date: time.Now()}},
		{"service", services.CreateBookingInput{CustomerName: "Alice", CenterID: center.ID, Service: "Ironing", Date: time.Now()}},
	}
	for _, tc := range cases {
		_, err := f.ledger.CreateBooking(ctx, tc.in)
		var ve *services.ValidationError
		if assert.ErrorAs(t, err, &ve, tc.field) {
			assert.Equal(t, tc.field, ve.Field)
		}
	}

	list, err := f.ledger.ListBookings(ctx, services.BookingQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateBookingByCenterName(t *testing.T) {
	f := newLedgerFixture(t)
	center := f.center(t, "Fresh Threads", "Wash", 10)
	ctx := context.Background()

	b, err := f.ledger.CreateBooking(ctx, services.CreateBookingInput{
		CustomerName: "Bob",
		CenterName:   "fresh threads",
		Service:      "Wash",
		Date:         time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, center.ID, b.CenterID)

	_, err = f.ledger.CreateBooking(ctx, services.CreateBookingInput{
		CustomerName: "Bob",
		CenterName:   "Nowhere",
		Service:      "Wash",
		Date:         time.Now(),
	})
	var nf *services.NotFoundError
	assert.ErrorAs(t, err, &nf)

	f.center(t, "FRESH THREADS", "Wash", 12)
	_, err = f.ledger.CreateBooking(ctx, services.CreateBookingInput{
		CustomerName: "Bob",
		CenterName:   "Fresh Threads",
		Service:      "Wash",
		Date:         time.Now(),
	})
	var ve *services.ValidationError
	if assert.ErrorAs(t, err, &ve) {
		assert.Equal(t, "centerName", ve.Field)
	}
}

func TestCreateBookingDefaultService(t *testing.T) {
	f := newLedgerFixture(t)
	center := f.center(t, "Plain", "", 8)

	b, err := f.ledger.CreateBooking(context.Background(), services.CreateBookingInput{
		CustomerName: "Alice",
		CenterID:     center.ID,
		Service:      models.DefaultService,
		Date:         time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultService, b.Service)
}

func TestTransitionBookingTerminal(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.booking(t, f.center(t, "Sparkle", "Wash", 10))
	ctx := context.Background()

	done, err := f.ledger.TransitionBooking(ctx, b.ID, "Completed", "operator")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, done.Status)

	_, err = f.ledger.TransitionBooking(ctx, b.ID, "Pending", "operator")
	var te *services.TerminalStateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.BookingStatusCompleted, te.Status)

	stored, err := f.ledger.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, stored.Status)
}

func TestTransitionBookingFreeMovesBeforeTerminal(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.booking(t, f.center(t, "Sparkle", "Wash", 10))
	ctx := context.Background()

	for _, s := range []string{"In Progress", "Pending", "In Progress", "Cancelled"} {
		_, err := f.ledger.TransitionBooking(ctx, b.ID, s, "op")
		require.NoError(t, err, s)
	}

	history, err := f.ledger.History(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, models.BookingStatusPending, history[0].From)
	assert.Equal(t, models.BookingStatusInProgress, history[0].To)
	assert.Equal(t, models.BookingStatusCancelled, history[3].To)
	assert.Equal(t, "op", history[3].ChangedBy)

	f.pub.AssertNumberOfCalls(t, "Publish", 5)
}

func TestTransitionBookingInvalidStatus(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.booking(t, f.center(t, "Sparkle", "Wash", 10))
	ctx := context.Background()

	_, err := f.ledger.TransitionBooking(ctx, b.ID, "Done", "op")
	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.ledger.TransitionBooking(ctx, b.ID, "completed", "op")
	assert.ErrorAs(t, err, &ve, "status names are case sensitive")

	stored, err := f.ledger.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, stored.Status)

	history, err := f.ledger.History(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTransitionBookingUnknownID(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.ledger.TransitionBooking(context.Background(), uuid.New(), "Bogus", "op")

	var nf *services.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestTransitionBookingConcurrentTerminal(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.booking(t, f.center(t, "Sparkle", "Wash", 10))
	ctx := context.Background()

	targets := []string{"Completed", "Cancelled", "Completed", "Cancelled"}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, to := range targets {
		wg.Add(1)
		go func(i int, to string) {
			defer wg.Done()
			_, errs[i] = f.ledger.TransitionBooking(ctx, b.ID, to, "op")
		}(i, to)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var te *services.TerminalStateError
		assert.ErrorAs(t, err, &te)
	}
	assert.Equal(t, 1, succeeded)

	history, err := f.ledger.History(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestBookingsSurviveCenterRemoval(t *testing.T) {
	f := newLedgerFixture(t)
	center := f.center(t, "Sparkle", "Wash", 10)
	b := f.booking(t, center)
	ctx := context.Background()

	require.NoError(t, f.catalog.RemoveCenter(ctx, center.ID))

	stored, err := f.ledger.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sparkle", stored.CenterName)

	_, err = f.ledger.TransitionBooking(ctx, b.ID, "Completed", "op")
	assert.NoError(t, err)
}

func TestListBookingsFilters(t *testing.T) {
	f := newLedgerFixture(t)
	a := f.center(t, "A", "Wash", 10)
	c := f.center(t, "C", "Wash", 20)
	ctx := context.Background()

	b1 := f.booking(t, a)
	f.booking(t, c)
	_, err := f.ledger.TransitionBooking(ctx, b1.ID, "In Progress", "op")
	require.NoError(t, err)

	all, err := f.ledger.ListBookings(ctx, services.BookingQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inProgress, err := f.ledger.ListBookings(ctx, services.BookingQuery{Status: "In Progress"})
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, b1.ID, inProgress[0].ID)

	atC, err := f.ledger.ListBookings(ctx, services.BookingQuery{CenterID: c.ID})
	require.NoError(t, err)
	require.Len(t, atC, 1)
	assert.Equal(t, "C", atC[0].CenterName)

	_, err = f.ledger.ListBookings(ctx, services.BookingQuery{Status: "Archived"})
	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestHistoryUnknownBooking(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.ledger.History(context.Background(), uuid.New())

	var nf *services.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestStats(t *testing.T) {
	f := newLedgerFixture(t)
	cheap := f.center(t, "Cheap", "Wash", 10)
	pricey := f.center(t, "Pricey", "Wash", 25)
	ctx := context.Background()

	done1 := f.booking(t, cheap)
	done2 := f.booking(t, pricey)
	cancelled := f.booking(t, pricey)
	f.booking(t, cheap)

	for id, to := range map[uuid.UUID]string{done1.ID: "Completed", done2.ID: "Completed", cancelled.ID: "Cancelled"} {
		_, err := f.ledger.TransitionBooking(ctx, id, to, "op")
		require.NoError(t, err)
	}

	// later price changes do not touch the snapshot
	_, err := f.catalog.UpsertCenter(ctx, services.CenterInput{Price: num(99)}, pricey.ID)
	require.NoError(t, err)

	stats, err := f.ledger.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, services.BookingStats{
		TotalOrders:     4,
		ActiveOrders:    1,
		CompletedOrders: 2,
		CancelledOrders: 1,
		TotalEarnings:   35,
	}, stats)
}

func TestPublishFailureDoesNotFailBooking(t *testing.T) {
	s := openStore(t)
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	catalog := services.NewCenterCatalog(s, nil)
	ledger := services.NewBookingLedger(s, catalog, pub)

	center, err := catalog.UpsertCenter(context.Background(), services.CenterInput{
		Name: str("Sparkle"), Location: str("Main St"), Services: str("Wash"),
	}, uuid.Nil)
	require.NoError(t, err)

	_, err = ledger.CreateBooking(context.Background(), services.CreateBookingInput{
		CustomerName: "Alice", CenterID: center.ID, Service: "Wash", Date: time.Now(),
	})
	assert.NoError(t, err)
	pub.AssertExpectations(t)
}
