// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/store"
)

// createRequest is the payload for new sessions.
type createRequest struct {
	Owner              string              `json:"owner"`
	DisplayName        string              `json:"display_name"`
	HibernationCapable bool                `json:"hibernation_capable"`
	Schedule           *model.WeekSchedule `json:"schedule,omitempty"`
}

// batchRequest references the sessions of one batch operation.
type batchRequest struct {
	Sessions []model.SessionRef `json:"sessions"`
}

// batchResponse splits the ordered result into its two views.
type batchResponse struct {
	Succeeded []model.Session `json:"succeeded"`
	Failed    []model.Session `json:"failed"`
}

func toBatchResponse(results model.BatchResult) batchResponse {
	resp := batchResponse{
		Succeeded: results.Succeeded(),
		Failed:    results.Failed(),
	}
	if resp.Succeeded == nil {
		resp.Succeeded = []model.Session{}
	}
	if resp.Failed == nil {
		resp.Failed = []model.Session{}
	}
	return resp
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Owner == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "owner and display_name are required")
		return
	}

	result := s.orc.CreateSession(r.Context(), model.Session{
		Owner:              req.Owner,
		DisplayName:        req.DisplayName,
		HibernationCapable: req.HibernationCapable,
		Schedule:           req.Schedule,
	})
	if result.Failed() {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.stores.Sessions.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	week, err := s.stores.Schedules.Week(r.Context(), id)
	if err == nil {
		sess.Schedule = week
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var req struct {
		Owner    string              `json:"owner"`
		Schedule *model.WeekSchedule `json:"schedule"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Schedule == nil {
		writeError(w, http.StatusBadRequest, "schedule is required")
		return
	}
	result := s.orc.UpdateSchedule(r.Context(), model.SessionRef{ID: id, Owner: req.Owner}, req.Schedule)
	if result.Failed() {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.handleBatch(w, r, s.orc.StopSessions)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.handleBatch(w, r, s.orc.ResumeSessions)
}

func (s *Server) handleReboot(w http.ResponseWriter, r *http.Request) {
	s.handleBatch(w, r, s.orc.RebootSessions)
}

func (s *Server) handleTerminate(w http.ResponseWriter, r *http.Request) {
	s.handleBatch(w, r, s.orc.TerminateSessions)
}

type batchOp func(ctx context.Context, refs []model.SessionRef) model.BatchResult

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request, op batchOp) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Sessions) == 0 {
		writeError(w, http.StatusBadRequest, "sessions must not be empty")
		return
	}
	results := op(r.Context(), req.Sessions)
	writeJSON(w, http.StatusOK, toBatchResponse(results))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
