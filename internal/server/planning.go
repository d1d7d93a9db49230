package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/pokrok/internal/models"
)

type reviewRequest struct {
	Date string `json:"date"`
	Note string `json:"note" validate:"max=2000"`
}

func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.svc.ListAreas()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(areas))
}

func (s *Server) handleCreateArea(w http.ResponseWriter, r *http.Request) {
	var req models.Area
	if !decodeJSON(w, r, &req) {
		return
	}
	area, err := s.svc.CreateArea(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, area)
}

func (s *Server) handleUpdateArea(w http.ResponseWriter, r *http.Request) {
	var req models.Area
	if !decodeJSON(w, r, &req) {
		return
	}
	area, err := s.svc.UpdateArea(chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, area)
}

func (s *Server) handleDeleteArea(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteArea(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.ListGoals()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(goals))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req models.Goal
	if !decodeJSON(w, r, &req) {
		return
	}
	goal, err := s.svc.CreateGoal(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req models.Goal
	if !decodeJSON(w, r, &req) {
		return
	}
	goal, err := s.svc.UpdateGoal(chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteGoal(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	agenda, err := s.svc.Agenda(r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agenda)
}

func (s *Server) handlePendingWorkflows(w http.ResponseWriter, r *http.Request) {
	pending, err := s.svc.PendingWorkflows()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(pending))
}

func (s *Server) handleDailyReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "note is too long")
		return
	}
	review, err := s.svc.RecordDailyReview(req.Date, req.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}
