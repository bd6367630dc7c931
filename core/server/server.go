package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-gateway/core/cache"
	"booking-gateway/core/config"
	"booking-gateway/core/constants"
	"booking-gateway/core/database"
	"booking-gateway/core/logger"
	"booking-gateway/core/middleware"
	"booking-gateway/core/queue"
	"booking-gateway/core/scheduler"
	"booking-gateway/core/utils"
	"booking-gateway/modules/booking"
	bookingService "booking-gateway/modules/booking/service"
	"booking-gateway/modules/calendar"
	"booking-gateway/modules/calendar/provider"
	"booking-gateway/modules/ratelimit"
	rlService "booking-gateway/modules/ratelimit/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	cfg      *config.Config
	echo     *echo.Echo
	sched    *scheduler.Scheduler
	cache    cache.Cache
	db       *database.Database
	enqueuer queue.Enqueuer
	worker   *queue.Worker
	calendar *calendar.Module
	bookings bookingService.BookingService
}

// New wires every module. factory overrides the configured calendar
// provider when non-nil.
func New(cfg *config.Config, factory provider.Factory) (*Server, error) {
	s := &Server{cfg: cfg, sched: scheduler.New()}

	if cfg.Redis.Addr != "" {
		s.cache = cache.NewRedisCache(cfg.Redis)
		if err := s.cache.Ping(context.Background()); err != nil {
			// The limiter degrades per its fail policy; do not refuse to start.
			logger.Warn("Server:New:RedisUnavailable", "error", err)
		}
	}

	if cfg.Database.Enabled {
		db, err := database.InitDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		s.db = db
		if cfg.Queue.Enabled {
			s.enqueuer = queue.NewEnqueuer(cfg.Redis)
			s.worker = queue.NewWorker(cfg.Redis, cfg.Queue.Concurrency)
		}
	}

	var limiter rlService.RateLimiter
	if cfg.RateLimit.Enabled {
		l, err := ratelimit.Init(cfg.RateLimit, s.cache, s.sched)
		if err != nil {
			return nil, err
		}
		limiter = l
	}
	mw := middleware.NewMiddleware(limiter, utils.IdentityResolver{
		KeyHeader: cfg.RateLimit.KeyHeader,
		TrustXFF:  cfg.RateLimit.TrustXFF,
		JWTSecret: []byte(cfg.RateLimit.JWTSecret),
	}).WithAdmin(middleware.AdminPolicy{
		Key:      cfg.Server.AdminKey,
		Subjects: cfg.Server.AdminSubjects,
	})

	if factory == nil {
		f, err := calendar.NewFactory(cfg)
		if err != nil {
			return nil, err
		}
		factory = f
	}

	s.echo = newEcho(cfg)
	s.echo.GET("/healthz", s.health)

	calModule, err := calendar.Init(s.echo, mw, cfg.Calendar, factory, s.sched)
	if err != nil {
		return nil, err
	}
	s.calendar = calModule

	s.bookings = booking.Init(s.echo, mw, calModule.Gateway, cfg.Calendar, s.db, s.enqueuer, s.worker)

	return s, nil
}

func newEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator:    uuid.NewString,
		TargetHeader: constants.HeaderRequestID,
	}))
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			logger.Info("HTTP:Request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	if cfg.Server.BodyLimit != "" {
		e.Use(echoMiddleware.BodyLimit(cfg.Server.BodyLimit))
	}
	e.Use(echoMiddleware.ContextTimeout(constants.DefaultRequestTimeout))
	return e
}

func (s *Server) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
	defer cancel()

	status := map[string]string{
		"status":   "ok",
		"provider": s.calendar.Factory.Name(),
		"client":   s.calendar.Cache.State().String(),
	}
	if s.cache != nil {
		status["redis"] = "ok"
		if err := s.cache.Client().Ping(ctx).Err(); err != nil {
			status["redis"] = "unavailable"
		}
	}
	if s.db != nil {
		status["database"] = "ok"
		if err := s.db.PingContext(ctx); err != nil {
			status["database"] = "unavailable"
			status["status"] = "degraded"
		}
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) Calendar() *calendar.Module { return s.calendar }

// Start runs background jobs and blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.sched.Start()
	if s.worker != nil {
		if err := s.worker.Start(); err != nil {
			return err
		}
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	logger.Info("Server:Start", "addr", addr, "provider", s.calendar.Factory.Name())
	if err := s.echo.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.sched.Stop()
	// Ledger writes still need the queue and the database.
	if s.bookings != nil {
		if derr := s.bookings.Drain(ctx); derr != nil && err == nil {
			err = derr
		}
	}
	if s.worker != nil {
		s.worker.Shutdown()
	}
	if s.enqueuer != nil {
		_ = s.enqueuer.Close()
	}
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	logger.Info("Server:Shutdown:Complete")
	return err
}

// Run starts the server and stops it on SIGINT or SIGTERM.
func Run(cfg *config.Config) error {
	s, err := New(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
