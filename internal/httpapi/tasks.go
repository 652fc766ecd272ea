package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/sandeepkv93/everyframe/internal/model"
)

type createTaskRequest struct {
	Name    string `json:"name"`
	Cadence string `json:"cadence"`
}

type createTaskResponse struct {
	ID uint64 `json:"id"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListTasks runs a refresh pass before listing, so a read never reports
// a task completed in an earlier period.
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rolled := s.store.Refresh(s.now()); rolled > 0 {
		s.logger.Debug("tasks rolled over", "count", rolled)
		if err := s.persist(r.Context()); err != nil {
			s.respondServerError(w, err)
			return
		}
	}

	out := make([]TaskView, 0, s.store.Len())
	for id, task := range s.store.All() {
		out = append(out, newTaskView(id, task))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cadence, err := model.ParseCadence(req.Cadence)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Snapshot()
	id := s.store.Insert(req.Name, cadence, s.now())
	if err := s.commit(r.Context(), before); err != nil {
		s.respondServerError(w, err)
		return
	}
	s.logger.Info("task created", "id", id, "cadence", cadence)
	respondJSON(w, http.StatusCreated, createTaskResponse{ID: id})
}

func (s *Server) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Refresh(s.now())
	if _, ok := s.store.Get(id); !ok {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	before := s.store.Snapshot()
	s.store.ToggleDone(id)
	if err := s.commit(r.Context(), before); err != nil {
		s.respondServerError(w, err)
		return
	}
	task, _ := s.store.Get(id)
	respondJSON(w, http.StatusOK, newTaskView(id, task))
}

// DeleteTask answers 204 whether or not the id exists.
func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.Get(id); ok {
		before := s.store.Snapshot()
		s.store.Remove(id)
		if err := s.commit(r.Context(), before); err != nil {
			s.respondServerError(w, err)
			return
		}
		s.logger.Info("task removed", "id", id)
	}
	w.WriteHeader(http.StatusNoContent)
}
