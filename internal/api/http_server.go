package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"familybooking/internal/config"
	"familybooking/internal/domain"
	"familybooking/internal/export"
	"familybooking/internal/family"
	"familybooking/internal/logging"
	"familybooking/internal/metrics"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking store as a JSON API.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings domain.BookingService
	registry *family.Registry
	exporter *export.Exporter
	logger   *zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookings domain.BookingService,
	registry *family.Registry,
	exporter *export.Exporter,
	logger *zerolog.Logger,
) *HTTPServer {
	if registry == nil {
		registry = family.Default()
	}
	logger = logging.Component(logger, "http")
	if exporter == nil {
		exporter = export.NewExporter("", registry, logger)
	}

	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		registry: registry,
		exporter: exporter,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/bookings", srv.handleListBookings)
	mux.HandleFunc("POST /api/v1/bookings", srv.handleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/{id}", srv.handleGetBooking)
	mux.HandleFunc("PUT /api/v1/bookings/{id}", srv.handleUpdateBooking)
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", srv.handleDeleteBooking)
	mux.HandleFunc("GET /api/v1/family-members", srv.handleFamilyMembers)
	mux.HandleFunc("GET /api/v1/time-slots", srv.handleTimeSlots)
	mux.HandleFunc("GET /api/v1/calendar/events", srv.handleCalendarEvents)
	mux.HandleFunc("GET /api/v1/calendar.ics", srv.handleCalendarICS)
	mux.HandleFunc("GET /api/v1/export.xlsx", srv.handleExport)
	mux.HandleFunc("GET /healthz", srv.handleHealth)

	limiter := newRateLimiter(cfg.RateLimit)
	handler := loggingMiddleware(logger, limiter.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint, recorder.status)

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
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

// writeServiceError maps store errors onto status codes.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	var perr *domain.PersistenceError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": verr.Message,
			"field": verr.Field,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.As(err, &perr):
		s.logger.Error().Err(err).Msg("storage failure")
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		s.logger.Error().Err(err).Msg("unexpected error")
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
