package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"washcenter-backend/events"
	"washcenter-backend/models"
	"washcenter-backend/obs"
	"washcenter-backend/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CenterLookup resolves the center a booking refers to.
type CenterLookup interface {
	GetCenter(ctx context.Context, id uuid.UUID) (*models.Center, error)
	FindByName(ctx context.Context, name string) ([]models.Center, error)
}

type CreateBookingInput struct {
	CustomerName string
	CenterID     uuid.UUID // takes precedence over CenterName
	CenterName   string
	Service      string
	Date         time.Time
	CreatedBy    string
}

type BookingQuery struct {
	Status   string
	CenterID uuid.UUID
}

type BookingStats struct {
	TotalOrders     int     `json:"totalOrders"`
	ActiveOrders    int     `json:"activeOrders"`
	CompletedOrders int     `json:"completedOrders"`
	CancelledOrders int     `json:"cancelledOrders"`
	TotalEarnings   float64 `json:"totalEarnings"`
}

// BookingLedger is the source of truth for bookings and owns the status
// state machine: Pending and In Progress may move to any status, Completed
// and Cancelled never move again.
type BookingLedger struct {
	store     store.BookingStore
	centers   CenterLookup
	publisher events.Publisher
	now       func() time.Time
}

func NewBookingLedger(s store.BookingStore, centers CenterLookup, pub events.Publisher) *BookingLedger {
	if pub == nil {
		pub = events.Noop{}
	}
	return &BookingLedger{store: s, centers: centers, publisher: pub, now: time.Now}
}

func (l *BookingLedger) CreateBooking(ctx context.Context, in CreateBookingInput) (booking *models.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingLedger.CreateBooking")
	defer func() { obs.Fail(span, err); span.End() }()

	customer := strings.TrimSpace(in.CustomerName)
	if customer == "" {
		return nil, invalid("customerName", "is required")
	}
	if strings.TrimSpace(in.Service) == "" {
		return nil, invalid("service", "is required")
	}
	if in.Date.IsZero() {
		return nil, invalid("date", "is required")
	}

	center, err := l.resolveCenter(ctx, in)
	if err != nil {
		return nil, err
	}
	service, ok := center.OfferedServices().Find(in.Service)
	if !ok {
		return nil, invalid("service", fmt.Sprintf("%q is not offered by %s", in.Service, center.Name))
	}

	now := l.now()
	b := &models.Booking{
		ID:           uuid.New(),
		CustomerName: customer,
		CenterID:     center.ID,
		CenterName:   center.Name,
		Service:      service,
		Price:        center.Price,
		Date:         in.Date.UTC(),
		Status:       models.BookingStatusPending,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	span.SetAttributes(attribute.String("booking.id", b.ID.String()))

	if err := l.store.CreateBooking(ctx, b); err != nil {
		return nil, &StorageError{Op: "create booking", Err: err}
	}
	log.Printf("[ledger] booking %s created for %s at %s", b.ID, b.CustomerName, b.CenterName)

	l.publish(ctx, events.KeyBookingCreated, events.BookingCreated{
		BookingID:    b.ID,
		CenterID:     b.CenterID,
		CenterName:   b.CenterName,
		CustomerName: b.CustomerName,
		Service:      b.Service,
		Date:         b.Date,
		Status:       b.Status.String(),
	})
	return b, nil
}

func (l *BookingLedger) resolveCenter(ctx context.Context, in CreateBookingInput) (*models.Center, error) {
	if in.CenterID != uuid.Nil {
		return l.centers.GetCenter(ctx, in.CenterID)
	}
	name := strings.TrimSpace(in.CenterName)
	if name == "" {
		return nil, invalid("centerId", "centerId or centerName is required")
	}
	matches, err := l.centers.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Resource: "center", ID: name}
	case 1:
		return &matches[0], nil
	default:
		return nil, invalid("centerName", "matches more than one center, use centerId")
	}
}

// TransitionBooking moves a booking to newStatus. The check against the
// current status and the write happen atomically in the store, so of two
// racing transitions at most one can leave a non-terminal state.
func (l *BookingLedger) TransitionBooking(ctx context.Context, id uuid.UUID, newStatus, changedBy string) (booking *models.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingLedger.TransitionBooking",
		traceAttr("booking.id", id.String()),
		traceAttr("booking.to", newStatus))
	defer func() { obs.Fail(span, err); span.End() }()

	to := models.BookingStatus(newStatus)
	var from models.BookingStatus
	now := l.now()

	updated, err := l.store.UpdateBooking(ctx, id, func(b *models.Booking) (*models.BookingStatusEvent, error) {
		if !to.IsValid() {
			return nil, invalid("status", fmt.Sprintf("%q is not a recognized status", newStatus))
		}
		if b.Status.IsTerminal() {
			return nil, &TerminalStateError{BookingID: b.ID, Status: b.Status}
		}
		from = b.Status
		b.Status = to
		b.UpdatedAt = now
		return &models.BookingStatusEvent{
			ID:        uuid.New(),
			BookingID: b.ID,
			From:      from,
			To:        to,
			ChangedBy: changedBy,
			CreatedAt: now,
		}, nil
	})
	if err != nil {
		return nil, fromStore("transition booking", "booking", id, err)
	}
	log.Printf("[ledger] booking %s: %s -> %s by %s", id, from, to, changedBy)

	l.publish(ctx, events.KeyBookingStatusChanged, events.BookingStatusChanged{
		BookingID: id,
		From:      from.String(),
		To:        to.String(),
		ChangedBy: changedBy,
		At:        now,
	})
	return updated, nil
}

func (l *BookingLedger) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, err := l.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fromStore("get booking", "booking", id, err)
	}
	return b, nil
}

// ListBookings returns bookings newest date first.
func (l *BookingLedger) ListBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error) {
	var f store.BookingFilter
	if q.Status != "" {
		s := models.BookingStatus(q.Status)
		if !s.IsValid() {
			return nil, invalid("status", fmt.Sprintf("%q is not a recognized status", q.Status))
		}
		f.Statuses = []models.BookingStatus{s}
	}
	f.CenterID = q.CenterID

	list, err := l.store.ListBookings(ctx, f)
	if err != nil {
		return nil, &StorageError{Op: "list bookings", Err: err}
	}
	if list == nil {
		list = []models.Booking{}
	}
	return list, nil
}

// History returns the status transitions of one booking, oldest first.
func (l *BookingLedger) History(ctx context.Context, id uuid.UUID) ([]models.BookingStatusEvent, error) {
	if _, err := l.GetBooking(ctx, id); err != nil {
		return nil, err
	}
	list, err := l.store.ListStatusEvents(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "list status events", Err: err}
	}
	if list == nil {
		list = []models.BookingStatusEvent{}
	}
	return list, nil
}

// Stats summarizes all bookings for the operator dashboard. Earnings count
// the price snapshot of completed bookings only.
func (l *BookingLedger) Stats(ctx context.Context) (BookingStats, error) {
	list, err := l.store.ListBookings(ctx, store.BookingFilter{})
	if err != nil {
		return BookingStats{}, &StorageError{Op: "list bookings", Err: err}
	}
	var st BookingStats
	for _, b := range list {
		st.TotalOrders++
		switch {
		case b.Status.IsActive():
			st.ActiveOrders++
		case b.Status == models.BookingStatusCompleted:
			st.CompletedOrders++
			st.TotalEarnings += b.Price
		case b.Status == models.BookingStatusCancelled:
			st.CancelledOrders++
		}
	}
	return st, nil
}

func (l *BookingLedger) publish(ctx context.Context, key string, payload any) {
	if err := l.publisher.Publish(ctx, key, payload); err != nil {
		log.Printf("[events] publish %s failed: %v", key, err)
	}
}

func traceAttr(k, v string) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String(k, v))
}
