package gateway

import "time"

type ListCentersRequest struct {
	Query string `form:"q" json:"q"`
	Sort  string `form:"sort" json:"sort" binding:"omitempty,oneof=recommended rating distance name-asc"`
}

type CreateCenterRequest struct {
	Name        string   `json:"name" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	Services    string   `json:"services"` // comma separated
	Description string   `json:"description"`
	Contact     string   `json:"contact"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Rating      *float64 `json:"rating" binding:"omitempty,min=0,max=5"`
	DistanceKm  *float64 `json:"distanceKm" binding:"omitempty,min=0"`
}

// UpdateCenterRequest carries only the fields to change.
type UpdateCenterRequest struct {
	Name        *string  `json:"name"`
	Location    *string  `json:"location"`
	Services    *string  `json:"services"`
	Description *string  `json:"description"`
	Contact     *string  `json:"contact"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Rating      *float64 `json:"rating" binding:"omitempty,min=0,max=5"`
	DistanceKm  *float64 `json:"distanceKm" binding:"omitempty,min=0"`

	// ClearDistanceKm sets the distance back to unknown.
	ClearDistanceKm bool `json:"clearDistanceKm" binding:"excluded_with=DistanceKm"`
}

type CreateBookingRequest struct {
	CustomerName string     `json:"customerName" binding:"required"`
	CenterID     string     `json:"centerId" binding:"required_without=CenterName,omitempty,uuid"`
	CenterName   string     `json:"centerName"`
	Service      string     `json:"service" binding:"required"`
	Date         *time.Time `json:"date" binding:"required"`
	// Status may be sent by clients but a new booking always starts Pending.
	Status string `json:"status" binding:"omitempty,eq=Pending"`
}

type ListBookingsRequest struct {
	Status   string `form:"status" json:"status"`
	CenterID string `form:"centerId" json:"centerId" binding:"omitempty,uuid"`
}

type TransitionBookingRequest struct {
	Status string `json:"status" binding:"required"`
}
