package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/vbonduro/mealcal/internal/service"
)

// pinger reports database health.
type pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	meals    *service.MealService
	calories *service.CalorieService
	db       pinger
	mux      *http.ServeMux
	handler  http.Handler
	logger   *slog.Logger
}

func NewServer(meals *service.MealService, calories *service.CalorieService, db pinger, allowedOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		meals:    meals,
		calories: calories,
		db:       db,
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	s.registerRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	s.handler = requestLogger(logger, securityHeaders(c.Handler(s.mux)))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/meals", s.handleListMeals)
	s.mux.HandleFunc("POST /api/meals", s.handleCreateMeal)
	s.mux.HandleFunc("GET /api/meals/search", s.handleSearchMeals)
	s.mux.HandleFunc("GET /api/meals/categories", s.handleCategories)
	s.mux.HandleFunc("GET /api/meals/areas", s.handleAreas)
	s.mux.HandleFunc("GET /api/meals/ingredients", s.handleIngredients)
	s.mux.HandleFunc("GET /api/meals/{id}", s.handleGetMeal)
	s.mux.HandleFunc("DELETE /api/meals/{id}", s.handleDeleteMeal)

	s.mux.HandleFunc("POST /api/meals/import/{externalId}", s.handleImportMeal)
	s.mux.HandleFunc("GET /api/meals/external/search", s.handleExternalSearch)
	s.mux.HandleFunc("GET /api/meals/external/least-ingredients", s.handleLeastIngredients)
	s.mux.HandleFunc("GET /api/meals/external/{externalId}/calories", s.handleMealCalories)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with an id, taken from the client when it
// sent a valid UUID, and logs it once the handler returns.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
