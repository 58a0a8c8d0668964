/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the restaurant reservation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Build the logger
  3. Open the store (SQLite, Postgres or memory)
  4. Connect the event sink (RabbitMQ, or log only)
  5. Install the floor plan, if configured
  6. Configure the HTTP router and rate limiter (Redis-backed when available)
  7. Start the reminder scheduler, if enabled
  8. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port        HTTP server port (default: 8080)
  -db          SQLite database path (default: reservations.db)
               Use ":memory:" for in-memory database
  -driver      sqlite | postgres | memory
  -floor-plan  JSON floor plan to install at start-up

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, close broker, Redis and database connections
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/bistro.db"

  # Run against Postgres with RabbitMQ events
  DB_DRIVER=postgres DATABASE_URL=postgres://... AMQP_URL=amqp://... ./server

  # Demo instance with a floor plan
  ./server -driver=memory -floor-plan=floorplan.json

SEE ALSO:
  - config/config.go: All configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go, store/postgres/postgres.go: Database implementations
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/reservation-engine/api"
	"github.com/warp/reservation-engine/booking"
	"github.com/warp/reservation-engine/booking/store"
	"github.com/warp/reservation-engine/config"
	"github.com/warp/reservation-engine/events"
	"github.com/warp/reservation-engine/factory"
	"github.com/warp/reservation-engine/logging"
	"github.com/warp/reservation-engine/store/postgres"
	"github.com/warp/reservation-engine/store/sqlite"
)

type closableStore interface {
	api.ResettableStore
	Close() error
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(2)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()

	// Initialize store
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer st.Close()
	log.WithField("driver", cfg.DBDriver).Info("store ready")

	// Event sink
	sink, closeSink := openEventSink(cfg, log)
	defer closeSink()

	handler := api.NewHandler(st, api.Options{
		Events:   sink,
		Logger:   log,
		Location: cfg.Location,
	})

	if cfg.FloorPlan != "" {
		if err := installFloorPlan(ctx, cfg.FloorPlan, handler, log); err != nil {
			log.WithError(err).Fatal("failed to install floor plan")
		}
	}

	// Rate limiting
	var limiter *api.RateLimiter
	if cfg.RateLimit.Enabled {
		rdb := config.NewRedisClient(ctx, cfg.Redis)
		if rdb != nil {
			defer rdb.Close()
			log.WithField("addr", cfg.Redis.Addr).Info("rate limiter using redis")
		} else if cfg.Redis.Addr != "" {
			log.WithField("addr", cfg.Redis.Addr).Warn("redis unreachable, rate limiting per process")
		}
		limiter = api.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillInterval, rdb, log)
	}

	router := api.NewRouter(handler, api.RouterOptions{RateLimiter: limiter})

	scheduler := api.NewReminderScheduler(handler.Reservations, log)
	scheduler.Enabled = cfg.Reminders.Enabled
	scheduler.Lead = cfg.Reminders.Lead
	scheduler.CheckInterval = cfg.Reminders.Interval
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("server starting on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (closableStore, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.New(ctx, cfg.DatabaseURL)
	case "memory":
		return store.NewMemory(), nil
	default:
		return sqlite.New(cfg.DBPath)
	}
}

// openEventSink connects to RabbitMQ when configured. Without a broker, or
// when it cannot be reached, events are only logged.
func openEventSink(cfg config.Config, log *logrus.Logger) (booking.EventSink, func()) {
	logSink := events.LogSink{Log: log}
	if cfg.AMQPURL == "" {
		return logSink, func() {}
	}

	pub, err := events.DialAMQP(cfg.AMQPURL, cfg.EventsQueue)
	if err != nil {
		log.WithError(err).Warn("event broker unreachable, events will only be logged")
		return logSink, func() {}
	}
	log.WithField("queue", cfg.EventsQueue).Info("publishing events to rabbitmq")
	return pub, func() {
		if err := pub.Close(); err != nil {
			log.WithError(err).Warn("closing event publisher")
		}
	}
}

func installFloorPlan(ctx context.Context, path string, h *api.Handler, log logrus.FieldLogger) error {
	plan, err := factory.LoadFile(path)
	if err != nil {
		return err
	}
	res, err := plan.Install(ctx, h.Tables, h.Customers)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"plan":              plan.Name,
		"tables_created":    len(res.Tables),
		"tables_skipped":    res.TablesSkipped,
		"customers_created": len(res.Customers),
	}).Info("floor plan installed")
	return nil
}
