package booking

import (
	"booking-gateway/core/config"
	"booking-gateway/core/constants"
	"booking-gateway/core/database"
	"booking-gateway/core/logger"
	"booking-gateway/core/middleware"
	"booking-gateway/core/queue"
	"booking-gateway/modules/booking/controller"
	"booking-gateway/modules/booking/repository"
	"booking-gateway/modules/booking/router"
	"booking-gateway/modules/booking/service"
	"booking-gateway/modules/booking/worker"
	calService "booking-gateway/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Init mounts the booking endpoints. db, enq and w are optional; without db
// the ledger is off, and without enq ledger writes go straight to db.
func Init(e *echo.Echo, mw *middleware.Middleware, gateway calService.CalendarGateway, cfg config.CalendarConfig,
	db *database.Database, enq queue.Enqueuer, w *queue.Worker) service.BookingService {
	var (
		repo     repository.BookingRepository
		recorder worker.Recorder
	)
	if db != nil {
		repo = repository.NewBookingRepository(db)
		recorder = worker.NewDirectRecorder(repo)
		if enq != nil {
			recorder = worker.NewQueueRecorder(enq)
		}
		if w != nil {
			w.Handle(constants.TaskBookingRecord, worker.HandleRecordBooking(repo))
		}
	}
	logger.Info("Booking:Init", "provider", cfg.Provider, "ledger", repo != nil, "queued", enq != nil && repo != nil)

	pipeline := service.NewRequestPipeline(service.NewParser(cfg.DefaultTimezone), gateway)
	bookingSvc := service.NewBookingService(pipeline, cfg.Provider, recorder, repo)

	ctrl := controller.NewBookingController(bookingSvc)
	router.NewBookingRouter(ctrl).Setup(e, mw)
	return bookingSvc
}
