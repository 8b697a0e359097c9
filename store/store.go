// Package store persists centers, bookings and reminder logs.
//
// Implementations must run the apply callbacks of UpdateCenter and
// UpdateBooking atomically against the current record: two concurrent
// updates of the same id never observe the same prior state.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"washcenter-backend/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// CenterUpdate mutates c in place. Returning an error aborts the update.
type CenterUpdate func(c *models.Center) error

// BookingUpdate mutates b in place and may return a status event that is
// persisted together with the booking. Returning an error aborts the update.
type BookingUpdate func(b *models.Booking) (*models.BookingStatusEvent, error)

type BookingFilter struct {
	Statuses []models.BookingStatus
	CenterID uuid.UUID
	// DateFrom and DateTo bound Booking.Date as [DateFrom, DateTo).
	DateFrom *time.Time
	DateTo   *time.Time
}

type CenterStore interface {
	CreateCenter(ctx context.Context, c *models.Center) error
	GetCenter(ctx context.Context, id uuid.UUID) (*models.Center, error)
	// ListCenters returns centers in creation order.
	ListCenters(ctx context.Context) ([]models.Center, error)
	UpdateCenter(ctx context.Context, id uuid.UUID, apply CenterUpdate) (*models.Center, error)
	DeleteCenter(ctx context.Context, id uuid.UUID) error
}

type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// ListBookings returns bookings by date descending, id ascending on ties.
	ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, apply BookingUpdate) (*models.Booking, error)
	// ListStatusEvents returns the events of one booking oldest first.
	ListStatusEvents(ctx context.Context, bookingID uuid.UUID) ([]models.BookingStatusEvent, error)
}

type ReminderStore interface {
	CreateReminderLog(ctx context.Context, r *models.ReminderLog) error
	// ListReminderLogs returns logs newest first.
	ListReminderLogs(ctx context.Context) ([]models.ReminderLog, error)
}

type Store interface {
	CenterStore
	BookingStore
	ReminderStore
	Close() error
}

func (f BookingFilter) matches(b *models.Booking) bool {
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if b.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.CenterID != uuid.Nil && b.CenterID != f.CenterID {
		return false
	}
	if f.DateFrom != nil && b.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && !b.Date.Before(*f.DateTo) {
		return false
	}
	return true
}

func sortBookings(list []models.Booking) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
}
