package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"meepleden/internal/config"
	"meepleden/internal/database"
	"meepleden/internal/domain"
	"meepleden/internal/metrics"

	"github.com/rs/zerolog"
)

// HTTPServer serves the LIFF-facing API and the back-office admin API
// from one mux. Admin routes live under /api/v1/admin/ and go through
// API-key auth.
type HTTPServer struct {
	cfg       *config.Config
	db        *database.DB
	members   domain.MemberService
	bookings  domain.BookingService
	inventory domain.InventoryService
	news      domain.NewsService
	sessions  domain.SessionStore
	exporter  *Exporter
	server    *http.Server
	auth      *HTTPAuth
	logger    zerolog.Logger
}

func NewHTTPServer(
	cfg *config.Config,
	db *database.DB,
	members domain.MemberService,
	bookings domain.BookingService,
	inventory domain.InventoryService,
	news domain.NewsService,
	sessions domain.SessionStore,
	logger *zerolog.Logger,
) *HTTPServer {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "api").Logger()
	}

	srv := &HTTPServer{
		cfg:       cfg,
		db:        db,
		members:   members,
		bookings:  bookings,
		inventory: inventory,
		news:      news,
		sessions:  sessions,
		exporter:  NewExporter(bookings, members, cfg.Exports.Path, &base),
		auth:      NewHTTPAuth(cfg.API),
		logger:    base,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", srv.handleHealthz)
	mux.HandleFunc("/readyz", srv.handleReadyz)

	mux.HandleFunc("/api/v1/members/identify", srv.handleIdentify)
	mux.HandleFunc("/api/v1/members/me", srv.handleMemberMe)
	mux.HandleFunc("/api/v1/members/award-exp", srv.handleAwardExp)
	mux.HandleFunc("/api/v1/members/exp-history", srv.handleExpHistory)

	mux.HandleFunc("/api/v1/bookings/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/bookings/my", srv.handleMyBookings)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)

	mux.HandleFunc("/api/v1/session", srv.handleSession)

	mux.HandleFunc("/api/v1/news", srv.handleNewsFeed)
	mux.HandleFunc("/api/v1/games", srv.handleGames)

	mux.HandleFunc("/api/v1/admin/bookings/check-in", srv.handleCheckIn)
	mux.HandleFunc("/api/v1/admin/bookings/cancel", srv.handleCancel)
	mux.HandleFunc("/api/v1/admin/bookings", srv.handleAdminBookings)
	mux.HandleFunc("/api/v1/admin/day-config", srv.handleDayConfig)
	mux.HandleFunc("/api/v1/admin/members", srv.handleAdminMembers)
	mux.HandleFunc("/api/v1/admin/games/deactivate", srv.handleDeactivateGame)
	mux.HandleFunc("/api/v1/admin/games", srv.handleAdminGames)
	mux.HandleFunc("/api/v1/admin/rentals/checkout", srv.handleRentalCheckout)
	mux.HandleFunc("/api/v1/admin/rentals/return", srv.handleRentalReturn)
	mux.HandleFunc("/api/v1/admin/rentals", srv.handleAdminRentals)
	mux.HandleFunc("/api/v1/admin/news", srv.handleAdminNews)
	mux.HandleFunc("/api/v1/admin/exports/bookings", srv.handleExportBookings)
	mux.HandleFunc("/api/v1/admin/exports/members", srv.handleExportMembers)
	mux.HandleFunc("/api/v1/admin/sync/failed", srv.handleFailedSync)

	handler := srv.loggingMiddleware(corsMiddleware(srv.auth.Wrap(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		metrics.IncHTTP(r.URL.Path, strconv.Itoa(recorder.status))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

// corsMiddleware allows the LIFF frontend, served from LINE's domain,
// to call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Api-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps sentinel errors from the storage and service
// layers onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrCapacityExceeded),
		errors.Is(err, database.ErrDateDisabled),
		errors.Is(err, database.ErrConcurrentModification),
		errors.Is(err, database.ErrInvalidStatusChange),
		errors.Is(err, database.ErrOutOfStock):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar),
		errors.Is(err, database.ErrInvalidPartySize),
		errors.Is(err, database.ErrInvalidTimeSlot),
		errors.Is(err, database.ErrInvalidAward):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
