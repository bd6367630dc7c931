package controller

import (
	"strconv"
	"time"

	"booking-gateway/core/controller"
	"booking-gateway/core/errors"
	"booking-gateway/modules/calendar/dto"
	"booking-gateway/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	controller.BaseController
	service service.CalendarService
}

func NewCalendarController(service service.CalendarService) *CalendarController {
	return &CalendarController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

// GetFreeBusy returns busy periods
// GET /api/v1/calendar/free-busy?start_time=...&end_time=...
func (c *CalendarController) GetFreeBusy(ctx echo.Context) error {
	start, end, err := parseRange(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	busy, err := c.service.GetFreeBusy(ctx.Request().Context(), start, end)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, dto.FreeBusyResponse{Busy: busy}, "free/busy retrieved")
}

// GetFreeSlots returns bookable slots
// GET /api/v1/calendar/free-slots?start_time=...&end_time=...&interval=30
func (c *CalendarController) GetFreeSlots(ctx echo.Context) error {
	start, end, err := parseRange(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	interval := service.DefaultSlotInterval
	if s := ctx.QueryParam("interval"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n <= 0 || n > 24*60 {
			return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidInput, "interval must be between 1 and 1440 minutes", nil))
		}
		interval = n
	}

	slots, err := c.service.GetFreeSlots(ctx.Request().Context(), start, end, interval)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, dto.FreeSlotsResponse{Interval: interval, Slots: slots}, "free slots retrieved")
}

// GetStatus reports the provider client cache
// GET /api/v1/calendar/status
func (c *CalendarController) GetStatus(ctx echo.Context) error {
	return c.SuccessResponse(ctx, c.service.Status(), "calendar status")
}

// RefreshClient drops the cached provider client
// POST /api/v1/calendar/refresh
func (c *CalendarController) RefreshClient(ctx echo.Context) error {
	c.service.Refresh()
	return c.SuccessResponse(ctx, c.service.Status(), "calendar client invalidated")
}

func parseRange(ctx echo.Context) (time.Time, time.Time, error) {
	startStr := ctx.QueryParam("start_time")
	endStr := ctx.QueryParam("end_time")
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "start_time and end_time are required", nil)
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid start_time format", nil)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid end_time format", nil)
	}
	return start, end, nil
}
