package router

import (
	"booking-gateway/core/middleware"
	"booking-gateway/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	Controller *controller.BookingController
}

func NewBookingRouter(ctrl *controller.BookingController) *BookingRouter {
	return &BookingRouter{Controller: ctrl}
}

func (r *BookingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	bookings := v1.Group("/bookings")

	// Only creation is rate limited; lookups never reach the provider.
	bookings.POST("", r.Controller.CreateBooking, mw.RateLimitMiddleware())
	bookings.GET("/:reference", r.Controller.GetBooking)
}
