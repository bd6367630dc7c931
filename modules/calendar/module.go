package calendar

import (
	"fmt"

	"booking-gateway/core/config"
	"booking-gateway/core/constants"
	"booking-gateway/core/logger"
	"booking-gateway/core/middleware"
	"booking-gateway/core/scheduler"
	"booking-gateway/modules/calendar/controller"
	"booking-gateway/modules/calendar/provider"
	"booking-gateway/modules/calendar/router"
	"booking-gateway/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Factory provider.Factory
	Cache   *service.AuthClientCache
	Gateway service.CalendarGateway
}

// NewFactory picks the provider named in config.
func NewFactory(cfg *config.Config) (provider.Factory, error) {
	switch cfg.Calendar.Provider {
	case constants.ProviderGoogle:
		return provider.NewGoogleCalendar(cfg.GoogleAPI, cfg.Calendar.CalendarID), nil
	case constants.ProviderCalDAV:
		return provider.NewCalDAVCalendar(cfg.CalDAV), nil
	case constants.ProviderMemory, "":
		return provider.NewMemoryCalendar(), nil
	default:
		return nil, fmt.Errorf("unknown calendar provider %q", cfg.Calendar.Provider)
	}
}

// Init builds the gateway around factory and mounts the calendar routes.
// When calendar.refresh_cron is set the cached client is dropped on that
// schedule.
func Init(e *echo.Echo, mw *middleware.Middleware, cfg config.CalendarConfig, factory provider.Factory, sched *scheduler.Scheduler) (*Module, error) {
	cache := service.NewAuthClientCache(factory, cfg.InitTimeout)
	gateway := service.NewCalendarGateway(cache, service.Budgets{
		Auth:         cfg.AuthTimeout,
		Availability: cfg.AvailabilityTimeout,
		Creation:     cfg.CreationTimeout,
	})

	if cfg.RefreshCron != "" {
		if err := sched.Add("calendar-client-refresh", cfg.RefreshCron, cache.Invalidate); err != nil {
			return nil, err
		}
	}

	calendarSvc := service.NewCalendarService(gateway, cache, factory.Name())
	router.NewCalendarRouter(controller.NewCalendarController(calendarSvc)).Setup(e, mw)

	logger.Info("Calendar:Init", "provider", factory.Name(), "refresh_cron", cfg.RefreshCron)
	return &Module{Factory: factory, Cache: cache, Gateway: gateway}, nil
}
