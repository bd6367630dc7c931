package router

import (
	"booking-gateway/core/middleware"
	"booking-gateway/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		controller: controller,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	calendarRoutes := v1.Group("/calendar")

	// Queries hit the provider, so they share the booking limiter.
	calendarRoutes.GET("/free-busy", r.controller.GetFreeBusy, mw.RateLimitMiddleware())
	calendarRoutes.GET("/free-slots", r.controller.GetFreeSlots, mw.RateLimitMiddleware())

	// Refresh drops the shared client, so only operators may call it.
	calendarRoutes.GET("/status", r.controller.GetStatus, mw.RateLimitMiddleware(), mw.AdminMiddleware())
	calendarRoutes.POST("/refresh", r.controller.RefreshClient, mw.RateLimitMiddleware(), mw.AdminMiddleware())
}
