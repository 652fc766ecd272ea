// Package httpapi exposes the task store over a small JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sandeepkv93/everyframe/internal/model"
	"github.com/sandeepkv93/everyframe/internal/tracker"
)

const shutdownTimeout = 5 * time.Second

// Saver persists a snapshot after each mutation.
type Saver interface {
	Save(ctx context.Context, snap tracker.Snapshot) error
}

type Server struct {
	mu     sync.Mutex
	store  *tracker.Store
	saver  Saver
	logger *log.Logger
	now    func() time.Time
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(store *tracker.Store, saver Saver, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		store:  store,
		saver:  saver,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.Health)
	r.Get("/api/tasks", s.ListTasks)
	r.Post("/api/tasks", s.CreateTask)
	r.Post("/api/tasks/{id}/toggle", s.ToggleTask)
	r.Delete("/api/tasks/{id}", s.DeleteTask)
	return r
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func parseID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondServerError(w http.ResponseWriter, err error) {
	s.logger.Error("internal server error", "err", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// persist must be called with s.mu held. The save outlives a client
// that disconnects mid-request.
func (s *Server) persist(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Save(context.WithoutCancel(ctx), s.store.Snapshot())
}

// commit persists a mutation made after before was taken. When the save
// fails the store is reset to before, so memory never holds a change the
// client was told failed.
func (s *Server) commit(ctx context.Context, before tracker.Snapshot) error {
	err := s.persist(ctx)
	if err == nil {
		return nil
	}
	if resetErr := s.store.Reset(before); resetErr != nil {
		return errors.Join(err, resetErr)
	}
	return err
}

// TaskView is the wire form of a stored task.
type TaskView struct {
	ID      uint64        `json:"id"`
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Done    bool          `json:"done"`
	Cadence model.Cadence `json:"cadence"`
	Marker  uint8         `json:"marker"`
}

func newTaskView(id uint64, task model.Task) TaskView {
	return TaskView{
		ID:      id,
		Name:    task.Name,
		Label:   task.Label(),
		Done:    task.Done,
		Cadence: task.Period.Cadence(),
		Marker:  task.Period.Marker(),
	}
}
