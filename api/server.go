/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from X-Forwarded-For / X-Real-IP
  3. Logger:     One logrus line per request
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for a front desk UI
  6. RateLimit:  Per-client token bucket (optional, not on /api/health)

ROUTE GROUPS:
  /api/tables/*         Table management and availability
  /api/customers/*      Customers
  /api/reservations/*   Booking lifecycle
  /api/reports/*        Occupancy
  /api/scenarios/*      Demo scenarios

SEE ALSO:
  - handlers.go: Handler implementations
  - ratelimit.go: Token bucket
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	AllowedOrigins []string     // default: local dev front-ends
	RateLimiter    *RateLimiter // nil disables rate limiting
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
	}))

	r.Get("/api/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", h.ListTables)
			r.Post("/", h.CreateTable)
			r.Get("/available", h.AvailableTables)
			r.Get("/number/{number}", h.GetTableByNumber)
			r.Get("/{id}", h.GetTable)
			r.Put("/{id}", h.UpdateTable)
			r.Delete("/{id}", h.DeleteTable)
			r.Get("/{id}/availability", h.TableAvailability)
			r.Get("/{id}/schedule", h.TableSchedule)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/{id}", h.GetCustomer)
			r.Get("/{id}/reservations", h.CustomerReservations)
			r.Put("/{id}/blacklist", h.SetBlacklisted)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", h.ListReservations)
			r.Post("/", h.CreateReservation)
			r.Get("/availability", h.CheckAvailability)
			r.Get("/upcoming", h.UpcomingReservations)
			r.Get("/code/{code}", h.GetReservationByCode)
			r.Get("/{id}", h.GetReservation)
			r.Get("/{id}/history", h.ReservationHistory)
			r.Put("/{id}", h.UpdateReservation)
			r.Delete("/{id}", h.CancelReservation)
			r.Post("/{id}/confirm", h.ConfirmReservation)
			r.Post("/{id}/seat", h.SeatReservation)
			r.Post("/{id}/complete", h.CompleteReservation)
			r.Post("/{id}/no-show", h.MarkNoShow)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/occupancy", h.OccupancyReport)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// requestLogger logs method, path, status, size, latency and request id.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				entry := log.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"latency":    time.Since(start).String(),
					"remote":     r.RemoteAddr,
					"request_id": middleware.GetReqID(r.Context()),
				})
				switch {
				case ww.Status() >= 500:
					entry.Warn("request")
				default:
					entry.Info("request")
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
