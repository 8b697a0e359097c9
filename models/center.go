package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultCenterRating = 4.5

// DefaultService is the only service a center without a services list accepts.
const DefaultService = "General Wash"

type Center struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Location    string     `gorm:"not null;index" json:"location"`
	Services    StringList `gorm:"type:jsonb;not null" json:"services"`
	Description string     `json:"description"`
	Contact     string     `json:"contact"` // phone
	Price       float64    `gorm:"not null" json:"price"`
	Rating      float64    `gorm:"not null" json:"rating"`
	DistanceKm  *float64   `json:"distanceKm,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OfferedServices returns the services a booking may request at this center.
func (c *Center) OfferedServices() StringList {
	if len(c.Services) == 0 {
		return StringList{DefaultService}
	}
	return c.Services
}
