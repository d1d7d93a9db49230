package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/pokrok/internal/models"
)

type calendarRequest struct {
	HabitID   string `json:"habitId" validate:"required"`
	Date      string `json:"date"`
	Completed *bool  `json:"completed,omitempty"`
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := s.svc.ListHabits()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(habits))
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req models.Habit
	if !decodeJSON(w, r, &req) {
		return
	}
	habit, err := s.svc.CreateHabit(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req models.Habit
	if !decodeJSON(w, r, &req) {
		return
	}
	habit, err := s.svc.UpdateHabit(chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteHabit(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHabitCalendar toggles one day and answers with every habit.
func (s *Server) handleHabitCalendar(w http.ResponseWriter, r *http.Request) {
	var req calendarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "habitId is required")
		return
	}
	habits, err := s.svc.ToggleHabit(req.HabitID, req.Date, req.Completed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(habits))
}

func (s *Server) handleHabitStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.HabitStats(chi.URLParam(r, "id"), r.URL.Query().Get("today"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
