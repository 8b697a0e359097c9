package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "Pending"
	BookingStatusInProgress BookingStatus = "In Progress"
	BookingStatusCompleted  BookingStatus = "Completed"
	BookingStatusCancelled  BookingStatus = "Cancelled"
)

func (bs BookingStatus) String() string {
	return string(bs)
}

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusPending, BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (bs BookingStatus) IsTerminal() bool {
	return bs == BookingStatusCompleted || bs == BookingStatusCancelled
}

// IsActive reports whether the booking still needs work from the center.
func (bs BookingStatus) IsActive() bool {
	return bs == BookingStatusPending || bs == BookingStatusInProgress
}

func GetAllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusInProgress,
		BookingStatusCompleted,
		BookingStatusCancelled,
	}
}

// Booking keeps a snapshot of the center name and price taken at creation.
// CenterID is a weak reference: removing the center leaves bookings intact.
type Booking struct {
	ID           uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	CustomerName string        `gorm:"not null" json:"customerName"`
	CenterID     uuid.UUID     `gorm:"type:uuid;index" json:"centerId"`
	CenterName   string        `json:"centerName"`
	Service      string        `gorm:"not null" json:"service"`
	Price        float64       `json:"price"`
	Date         time.Time     `gorm:"index;not null" json:"date"`
	Status       BookingStatus `gorm:"type:varchar(20);index;not null" json:"status"`
	CreatedBy    string        `gorm:"type:varchar(255)" json:"createdBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingStatusEvent records one status transition.
type BookingStatusEvent struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	BookingID uuid.UUID     `gorm:"type:uuid;index;not null" json:"bookingId"`
	From      BookingStatus `gorm:"column:from_status;type:varchar(20);not null" json:"from"`
	To        BookingStatus `gorm:"column:to_status;type:varchar(20);not null" json:"to"`
	ChangedBy string        `gorm:"type:varchar(255)" json:"changedBy"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
}

func (BookingStatusEvent) TableName() string {
	return "booking_status_events"
}
