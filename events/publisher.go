// Package events publishes booking lifecycle events to a message broker.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	KeyBookingCreated       = "booking.created"
	KeyBookingStatusChanged = "booking.status_changed"
)

type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

type BookingCreated struct {
	BookingID    uuid.UUID `json:"booking_id"`
	CenterID     uuid.UUID `json:"center_id"`
	CenterName   string    `json:"center_name"`
	CustomerName string    `json:"customer_name"`
	Service      string    `json:"service"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
}

type BookingStatusChanged struct {
	BookingID uuid.UUID `json:"booking_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedBy string    `json:"changed_by"`
	At        time.Time `json:"at"`
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, key string, payload any) error { return nil }
func (Noop) Close() error                                               { return nil }
