// controllers/booking.go
package controllers

import (
	"net/http"

	"washcenter-backend/gateway"
	"washcenter-backend/utils"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	Gateway *gateway.Gateway
}

func (bc *BookingController) CreateBooking(c *gin.Context) {
	var input gateway.CreateBookingRequest
	if err := decodeJSON(c, &input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	utils.Respond(c, bc.Gateway.CreateBooking(c.Request.Context(), utils.CallerFrom(c), input))
}

// GetBookings supports ?status= and ?centerId= filters
func (bc *BookingController) GetBookings(c *gin.Context) {
	var input gateway.ListBookingsRequest
	if err := decodeQuery(c, &input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	utils.Respond(c, bc.Gateway.ListBookings(c.Request.Context(), utils.CallerFrom(c), input))
}

func (bc *BookingController) GetBooking(c *gin.Context) {
	utils.Respond(c, bc.Gateway.GetBooking(c.Request.Context(), utils.CallerFrom(c), c.Param("id")))
}

func (bc *BookingController) UpdateBookingStatus(c *gin.Context) {
	var input gateway.TransitionBookingRequest
	if err := decodeJSON(c, &input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	utils.Respond(c, bc.Gateway.TransitionBooking(c.Request.Context(), utils.CallerFrom(c), c.Param("id"), input))
}

func (bc *BookingController) GetBookingEvents(c *gin.Context) {
	utils.Respond(c, bc.Gateway.BookingHistory(c.Request.Context(), utils.CallerFrom(c), c.Param("id")))
}
