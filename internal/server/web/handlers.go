package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/inovacc/gitboard/internal/application"
	"github.com/inovacc/gitboard/internal/model"
	"github.com/inovacc/gitboard/internal/service"
)

// postRequest is the POST /messages body.
type postRequest struct {
	Message    string `json:"message"`
	Author     string `json:"author,omitempty"`
	Repository string `json:"repository,omitempty"`
}

// postResponse is the POST /messages success envelope.
type postResponse struct {
	Status string         `json:"status"`
	Data   *model.Message `json:"data"`
}

// handleIndex serves the embedded front page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, staticFS, "static/index.html")
}

// handleListMessages returns the merged feed, newest first.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultListLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}

		limit = n
	}

	messages, err := s.svc.List(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if messages == nil {
		messages = []model.Message{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleCreateMessage stores a message and mirrors it best effort.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	msg, err := s.svc.Post(r.Context(), req.Message, req.Author, req.Repository)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, postResponse{Status: "success", Data: msg})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports process information.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     application.AppName,
		"version": application.Version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

// writeServiceError maps service errors onto HTTP codes: validation failures
// are the caller's fault, everything else is ours.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	if model.IsValidation(err) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Error("request failed", slog.String("error", err.Error()))
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{
		"status": "error",
		"error":  msg,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response", slog.String("error", err.Error()))
	}
}
