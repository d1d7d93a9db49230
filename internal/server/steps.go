package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/service"
	"github.com/julianstephens/pokrok/internal/storage"
)

type completeRequest struct {
	Date      string `json:"date"`
	Completed *bool  `json:"completed,omitempty"`
}

type nextResponse struct {
	Date    string `json:"date,omitempty"`
	HasNext bool   `json:"hasNext"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeTemplates, _ := strconv.ParseBool(q.Get("includeTemplates"))
	steps, err := s.svc.ListSteps(storage.StepFilter{
		Date:             q.Get("date"),
		From:             q.Get("from"),
		To:               q.Get("to"),
		AreaID:           q.Get("areaId"),
		GoalID:           q.Get("goalId"),
		IncludeTemplates: includeTemplates,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(steps))
}

func (s *Server) handleCreateStep(w http.ResponseWriter, r *http.Request) {
	var req models.Step
	if !decodeJSON(w, r, &req) {
		return
	}
	step, err := s.svc.CreateStep(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, step)
}

func (s *Server) handleUpdateStep(w http.ResponseWriter, r *http.Request) {
	var patch service.StepPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	step, err := s.svc.UpdateStep(chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, step)
}

func (s *Server) handleDeleteStep(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.DeleteStep(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: n})
}

// handleCompleteStep defaults to completed=true when the body omits it.
func (s *Server) handleCompleteStep(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}
	step, err := s.svc.CompleteStep(chi.URLParam(r, "id"), req.Date, completed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, step)
}

func (s *Server) handleNextOccurrence(w http.ResponseWriter, r *http.Request) {
	date, ok, err := s.svc.NextOccurrence(chi.URLParam(r, "id"), r.URL.Query().Get("from"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nextResponse{Date: date, HasNext: ok})
}
