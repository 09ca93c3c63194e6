// Package v1 wires the HTTP surface of the room booking service.
// It keeps handlers thin, delegating business rules to the service layer.
package v1

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tinoosan/roombook/internal/service/account"
	"github.com/tinoosan/roombook/internal/service/booking"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	accounts account.Service
	bookings booking.Service
	sessions SessionResolver
	ready    []ReadyChecker
	log      *slog.Logger
	rt       *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
// The logger is used by basic request/response logging and panic recovery.
// corsOrigins enables CORS for the listed origins; nil disables it.
func New(accounts account.Service, bookings booking.Service, sessions SessionResolver, ready []ReadyChecker, corsOrigins []string, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	s := &Server{
		accounts: accounts,
		bookings: bookings,
		sessions: sessions,
		ready:    ready,
		log:      logger,
		rt:       r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Accounts
	s.rt.With(s.validateCredentials(redirectSignup)).Post("/signup", s.signUp)
	s.rt.With(s.validateCredentials(redirectLogin)).Post("/login", s.login)
	s.rt.With(s.requireSession(redirectLogin)).Post("/logout", s.logout)
	// Reservations
	s.rt.With(s.requireSession(redirectLogin), s.validatePostReservation()).Post("/reservation", s.postReservation)
	s.rt.With(s.requireSession(redirectLogin)).Get("/reservation_check", s.reservationCheck)
	// Catalogue
	s.rt.Get("/rooms", s.listRooms)
	// Health and metrics (unauthenticated)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
