package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"reelmatch/internal/api"
	"reelmatch/internal/catalog"
	"reelmatch/internal/logging"
	"reelmatch/internal/services"
)

// maxK bounds the k query parameter.
const maxK = 100

// RequestIDHeader carries the correlation id on requests and responses.
const RequestIDHeader = "X-Request-ID"

// Service is the recommendation surface the server exposes.
type Service interface {
	Recommend(ctx context.Context, title string, k int) (*api.RecommendationSet, error)
	Titles(query string) []string
	Poster(ctx context.Context, movieID int64) api.PosterView
}

// Server hosts the JSON API.
type Server struct {
	bind    string
	service Service
	logger  *slog.Logger
	server  *http.Server
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// TitlesResponse lists matching titles.
type TitlesResponse struct {
	Titles []string `json:"titles"`
}

// New builds a server bound to bind.
func New(bind string, service Service, logger *slog.Logger) *Server {
	s := &Server{
		bind:    strings.TrimSpace(bind),
		service: service,
		logger:  logging.NewComponentLogger(logger, "api-server"),
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.accessLog)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/titles", s.handleTitles)
		r.Get("/recommendations", s.handleRecommendations)
		r.Get("/posters/{movieID}", s.handlePoster)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	})
	return r
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	titles := s.service.Titles(r.URL.Query().Get("q"))
	if titles == nil {
		titles = []string{}
	}
	s.writeJSON(w, http.StatusOK, TitlesResponse{Titles: titles})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	title := query.Get("title")
	if strings.TrimSpace(title) == "" {
		s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "title parameter required"})
		return
	}
	k := 0
	if raw := strings.TrimSpace(query.Get("k")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxK {
			s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("k must be an integer between 1 and %d", maxK)})
			return
		}
		k = parsed
	}

	set, err := s.service.Recommend(r.Context(), title, k)
	if err != nil {
		var notFound *catalog.NotFoundError
		if errors.As(err, &notFound) {
			s.writeError(w, http.StatusNotFound, ErrorResponse{Error: notFound.Error(), Suggestions: notFound.Suggestions})
			return
		}
		if errors.Is(err, services.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "recommendation failed", "recommend_failed",
			logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
	s.writeJSON(w, http.StatusOK, set)
}

func (s *Server) handlePoster(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid movie id"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.service.Poster(r.Context(), id))
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.WithContext(r.Context(), s.logger).Debug("request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("latency", time.Since(start)))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	s.writeJSON(w, status, body)
}
