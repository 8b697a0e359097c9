// Package gateway is the only surface the presentation layer talks to. Each
// operation maps onto one catalog or ledger call and turns the outcome into
// an ApiResponse envelope.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"

	"washcenter-backend/models"
	"washcenter-backend/services"
	"washcenter-backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ForbiddenError is returned when the caller's role may not run an operation.
type ForbiddenError struct {
	Op   string
	Role models.Role
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s is not allowed for role %s", e.Op, e.Role)
}

type Gateway struct {
	catalog   *services.CenterCatalog
	ledger    *services.BookingLedger
	reminders *services.ReminderService
	validate  *validator.Validate
}

// New builds a gateway. reminders may be nil when the reminder job is off.
func New(catalog *services.CenterCatalog, ledger *services.BookingLedger, reminders *services.ReminderService) *Gateway {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return &Gateway{catalog: catalog, ledger: ledger, reminders: reminders, validate: v}
}

func (g *Gateway) ListCenters(ctx context.Context, caller models.Caller, req ListCentersRequest) utils.ApiResponse {
	if err := g.check(req); err != nil {
		return g.failure("list centers", err)
	}
	sortKey, err := services.ParseSortKey(req.Sort)
	if err != nil {
		return g.failure("list centers", err)
	}
	centers, err := g.catalog.ListCenters(ctx, req.Query, sortKey)
	if err != nil {
		return g.failure("list centers", err)
	}
	return ok(http.StatusOK, "Centers fetched", centers)
}

func (g *Gateway) GetCenter(ctx context.Context, caller models.Caller, id string) utils.ApiResponse {
	centerID, err := parseID("center", id)
	if err != nil {
		return g.failure("get center", err)
	}
	center, err := g.catalog.GetCenter(ctx, centerID)
	if err != nil {
		return g.failure("get center", err)
	}
	return ok(http.StatusOK, "Center fetched", center)
}

// CreateCenter is upsertCenter without an existing id.
func (g *Gateway) CreateCenter(ctx context.Context, caller models.Caller, req CreateCenterRequest) utils.ApiResponse {
	if err := requireOperator("create center", caller); err != nil {
		return g.failure("create center", err)
	}
	if err := g.check(req); err != nil {
		return g.failure("create center", err)
	}
	in := services.CenterInput{
		Name:        &req.Name,
		Location:    &req.Location,
		Services:    &req.Services,
		Description: &req.Description,
		Contact:     &req.Contact,
		Price:       req.Price,
		Rating:      req.Rating,
		DistanceKm:  req.DistanceKm,
	}
	center, err := g.catalog.UpsertCenter(ctx, in, uuid.Nil)
	if err != nil {
		return g.failure("create center", err)
	}
	return ok(http.StatusCreated, "Center added successfully", center)
}

// UpdateCenter is upsertCenter with an existing id.
func (g *Gateway) UpdateCenter(ctx context.Context, caller models.Caller, id string, req UpdateCenterRequest) utils.ApiResponse {
	if err := requireOperator("update center", caller); err != nil {
		return g.failure("update center", err)
	}
	centerID, err := parseID("center", id)
	if err != nil {
		return g.failure("update center", err)
	}
	if err := g.check(req); err != nil {
		return g.failure("update center", err)
	}
	in := services.CenterInput{
		Name:        req.Name,
		Location:    req.Location,
		Services:    req.Services,
		Description: req.Description,
		Contact:     req.Contact,
		Price:       req.Price,
		Rating:      req.Rating,
		DistanceKm:  req.DistanceKm,

		ClearDistanceKm: req.ClearDistanceKm,
	}
	center, err := g.catalog.UpsertCenter(ctx, in, centerID)
	if err != nil {
		return g.failure("update center", err)
	}
	return ok(http.StatusOK, "Center updated successfully", center)
}

func (g *Gateway) RemoveCenter(ctx context.Context, caller models.Caller, id string) utils.ApiResponse {
	if err := requireOperator("remove center", caller); err != nil {
		return g.failure("remove center", err)
	}
	centerID, err := parseID("center", id)
	if err != nil {
		return g.failure("remove center", err)
	}
	if err := g.catalog.RemoveCenter(ctx, centerID); err != nil {
		return g.failure("remove center", err)
	}
	return ok(http.StatusOK, "Center deleted", nil)
}

func (g *Gateway) CreateBooking(ctx context.Context, caller models.Caller, req CreateBookingRequest) utils.ApiResponse {
	if !caller.CanBook() {
		return g.failure("create booking", &ForbiddenError{Op: "create booking", Role: caller.Role})
	}
	if err := g.check(req); err != nil {
		return g.failure("create booking", err)
	}
	in := services.CreateBookingInput{
		CustomerName: req.CustomerName,
		CenterName:   req.CenterName,
		Service:      req.Service,
		CreatedBy:    caller.Label(),
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	if req.CenterID != "" {
		id, err := parseID("center", req.CenterID)
		if err != nil {
			return g.failure("create booking", err)
		}
		in.CenterID = id
	}
	booking, err := g.ledger.CreateBooking(ctx, in)
	if err != nil {
		return g.failure("create booking", err)
	}
	return ok(http.StatusCreated, "Booking successful!", booking)
}

func (g *Gateway) ListBookings(ctx context.Context, caller models.Caller, req ListBookingsRequest) utils.ApiResponse {
	if err := requireOperator("list bookings", caller); err != nil {
		return g.failure("list bookings", err)
	}
	if err := g.check(req); err != nil {
		return g.failure("list bookings", err)
	}
	q := services.BookingQuery{Status: req.Status}
	if req.CenterID != "" {
		id, err := parseID("center", req.CenterID)
		if err != nil {
			return g.failure("list bookings", err)
		}
		q.CenterID = id
	}
	bookings, err := g.ledger.ListBookings(ctx, q)
	if err != nil {
		return g.failure("list bookings", err)
	}
	return ok(http.StatusOK, "Bookings fetched", bookings)
}

func (g *Gateway) GetBooking(ctx context.Context, caller models.Caller, id string) utils.ApiResponse {
	if err := requireOperator("get booking", caller); err != nil {
		return g.failure("get booking", err)
	}
	bookingID, err := parseID("booking", id)
	if err != nil {
		return g.failure("get booking", err)
	}
	booking, err := g.ledger.GetBooking(ctx, bookingID)
	if err != nil {
		return g.failure("get booking", err)
	}
	return ok(http.StatusOK, "Booking fetched", booking)
}

func (g *Gateway) BookingHistory(ctx context.Context, caller models.Caller, id string) utils.ApiResponse {
	if err := requireOperator("booking history", caller); err != nil {
		return g.failure("booking history", err)
	}
	bookingID, err := parseID("booking", id)
	if err != nil {
		return g.failure("booking history", err)
	}
	history, err := g.ledger.History(ctx, bookingID)
	if err != nil {
		return g.failure("booking history", err)
	}
	return ok(http.StatusOK, "Booking history fetched", history)
}

func (g *Gateway) TransitionBooking(ctx context.Context, caller models.Caller, id string, req TransitionBookingRequest) utils.ApiResponse {
	if err := requireOperator("transition booking", caller); err != nil {
		return g.failure("transition booking", err)
	}
	bookingID, err := parseID("booking", id)
	if err != nil {
		return g.failure("transition booking", err)
	}
	if err := g.check(req); err != nil {
		return g.failure("transition booking", err)
	}
	booking, err := g.ledger.TransitionBooking(ctx, bookingID, req.Status, caller.Label())
	if err != nil {
		return g.failure("transition booking", err)
	}
	return ok(http.StatusOK, "Status updated", booking)
}

func (g *Gateway) Dashboard(ctx context.Context, caller models.Caller) utils.ApiResponse {
	if err := requireOperator("dashboard", caller); err != nil {
		return g.failure("dashboard", err)
	}
	stats, err := g.ledger.Stats(ctx)
	if err != nil {
		return g.failure("dashboard", err)
	}
	return ok(http.StatusOK, "Dashboard overview", stats)
}

func (g *Gateway) ReminderLogs(ctx context.Context, caller models.Caller) utils.ApiResponse {
	if err := requireOperator("reminder logs", caller); err != nil {
		return g.failure("reminder logs", err)
	}
	if g.reminders == nil {
		return ok(http.StatusOK, "Reminders are disabled", []models.ReminderLog{})
	}
	logs, err := g.reminders.ReminderLogs(ctx)
	if err != nil {
		return g.failure("reminder logs", err)
	}
	return ok(http.StatusOK, "Reminder logs fetched", logs)
}

func ok(status int, message string, data interface{}) utils.ApiResponse {
	return utils.ApiResponse{Success: true, Status: status, Message: message, Data: data}
}

func fail(status int, message string) utils.ApiResponse {
	return utils.ApiResponse{Success: false, Status: status, Message: message}
}

// failure maps a domain error onto the envelope. Storage and unexpected
// errors are logged here and reach the caller only as a generic message.
func (g *Gateway) failure(op string, err error) utils.ApiResponse {
	var (
		ve *services.ValidationError
		nf *services.NotFoundError
		te *services.TerminalStateError
		fe *ForbiddenError
	)
	switch {
	case errors.As(err, &ve):
		return fail(http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		return fail(http.StatusNotFound, nf.Error())
	case errors.As(err, &te):
		return fail(http.StatusConflict, te.Error())
	case errors.As(err, &fe):
		return fail(http.StatusForbidden, fe.Error())
	default:
		log.Printf("[gateway] %s failed: %v", op, err)
		return fail(http.StatusInternalServerError, "internal server error")
	}
}

func (g *Gateway) check(req interface{}) error {
	err := g.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &services.ValidationError{Field: fe.Field(), Message: describe(fe)}
	}
	return &services.ValidationError{Message: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + strings.ToLower(fe.Param()[:1]) + fe.Param()[1:] + " is empty"
	case "uuid":
		return "must be a valid id"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "eq":
		return "must be " + fe.Param()
	case "excluded_with":
		return "cannot be combined with " + strings.ToLower(fe.Param()[:1]) + fe.Param()[1:]
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// Ids are opaque: anything that is not a well-formed id cannot exist.
func parseID(resource, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &services.NotFoundError{Resource: resource, ID: raw}
	}
	return id, nil
}

func requireOperator(op string, caller models.Caller) error {
	if !caller.IsOperator() {
		return &ForbiddenError{Op: op, Role: caller.Role}
	}
	return nil
}
