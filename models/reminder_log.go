// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CenterID     uuid.UUID `gorm:"type:uuid;index;not null" json:"centerId"`
	CenterName   string    `json:"centerName"`
	ServiceDate  time.Time `gorm:"index" json:"serviceDate"` // day the bookings are scheduled for
	BookingCount int       `json:"bookingCount"`
	To           string    `gorm:"type:varchar(32)" json:"to"`
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"errorMessage,omitempty"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // sms
	SentAt       time.Time `gorm:"index" json:"sentAt"`
}

const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
