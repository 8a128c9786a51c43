package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pbaille/tasks/internal/domain"
	"github.com/pbaille/tasks/internal/taskstore"
)

// Server exposes a task store over JSON HTTP
type Server struct {
	// mu serializes store access; the store itself is single-goroutine.
	mu    sync.Mutex
	store *taskstore.Store
	addr  string
	log   *slog.Logger
}

// New creates a new API server
func New(s *taskstore.Store, addr string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{store: s, addr: addr, log: log}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Tasks
	mux.HandleFunc("GET /tasks", s.listTasks)
	mux.HandleFunc("POST /tasks", s.addTask)
	mux.HandleFunc("POST /tasks/{id}/toggle", s.toggleTask)
	mux.HandleFunc("PATCH /tasks/{id}", s.editTask)
	mux.HandleFunc("DELETE /tasks/{id}", s.removeTask)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return s.withLogging(withCORS(mux))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.log.Info("starting server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for browser front ends
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		s.log.Info("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TasksResponse is returned by every task endpoint
type TasksResponse struct {
	Tasks domain.Collection `json:"tasks"`
	Total int               `json:"total"`
	Done  int               `json:"done"`
	Query string            `json:"query,omitempty"`
}

// TextRequest is the body for adding or editing a task
type TextRequest struct {
	Text string `json:"text"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	s.mu.Lock()
	all := s.store.Tasks()
	view := taskstore.Filter(all, query, s.store.MinSearchLen())
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, TasksResponse{
		Tasks: view,
		Total: len(all),
		Done:  all.Done(),
		Query: query,
	})
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mutate(w, http.StatusCreated, func() error { return s.store.Add(req.Text) })
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	id := domain.TaskID(r.PathValue("id"))
	s.mutate(w, http.StatusOK, func() error { return s.store.Toggle(id) })
}

func (s *Server) editTask(w http.ResponseWriter, r *http.Request) {
	id := domain.TaskID(r.PathValue("id"))

	var req TextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mutate(w, http.StatusOK, func() error { return s.store.Edit(id, req.Text) })
}

func (s *Server) removeTask(w http.ResponseWriter, r *http.Request) {
	id := domain.TaskID(r.PathValue("id"))
	s.mutate(w, http.StatusOK, func() error { return s.store.Remove(id) })
}

// mutate applies op and answers with the full collection. Store no-ops
// (blank text, unknown id) are not errors.
func (s *Server) mutate(w http.ResponseWriter, status int, op func() error) {
	s.mu.Lock()
	err := op()
	all := s.store.Tasks()
	s.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, status, TasksResponse{Tasks: all, Total: len(all), Done: all.Done()})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("multiple JSON values")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
