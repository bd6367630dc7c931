package controller

import (
	"io"
	"strings"

	"booking-gateway/core/constants"
	"booking-gateway/core/controller"
	"booking-gateway/core/errors"
	"booking-gateway/modules/booking/service"

	"github.com/labstack/echo/v4"
)

type BookingController struct {
	controller.BaseController
	BookingService service.BookingService
}

func NewBookingController(bookingService service.BookingService) *BookingController {
	return &BookingController{
		BaseController: controller.NewBaseController(),
		BookingService: bookingService,
	}
}

// CreateBooking books a slot on the configured calendar.
// POST /api/v1/bookings
func (b *BookingController) CreateBooking(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return b.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "failed to read request body", err))
	}

	identity, _ := c.Get(constants.ContextIdentity).(string)

	resp, err := b.BookingService.Create(c.Request().Context(), raw, identity)
	if err != nil {
		return b.ErrorResponse(c, err)
	}
	return b.CreatedResponse(c, resp, "booking created")
}

// GetBooking returns a ledger entry.
// GET /api/v1/bookings/:reference
func (b *BookingController) GetBooking(c echo.Context) error {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		return b.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "reference is required", nil))
	}

	resp, err := b.BookingService.GetByReference(c.Request().Context(), reference)
	if err != nil {
		return b.ErrorResponse(c, err)
	}
	return b.SuccessResponse(c, resp, "booking found")
}
