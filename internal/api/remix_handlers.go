package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type remixRequest struct {
	Owner   string `json:"owner"`
	BoardID string `json:"boardId"`
	Goal    string `json:"goal"`
}

func (s *Server) handleRemix(w http.ResponseWriter, r *http.Request) {
	var req remixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed remix body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Owner) == "" || strings.TrimSpace(req.BoardID) == "" {
		http.Error(w, "owner and boardId are required", http.StatusBadRequest)
		return
	}
	progress := func(message string) {
		s.hub.publish(req.Owner, req.BoardID, message)
	}
	g, err := s.service.Remix(r.Context(), req.Owner, req.BoardID, req.Goal, progress)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type videoRequest struct {
	Owner     string `json:"owner"`
	BoardID   string `json:"boardId"`
	ElementID string `json:"elementId,omitempty"`
	Prompt    string `json:"prompt"`
}

func (s *Server) handleRemixVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed video body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Owner) == "" || strings.TrimSpace(req.BoardID) == "" {
		http.Error(w, "owner and boardId are required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}
	progress := func(message string) {
		s.hub.publish(req.Owner, req.BoardID, message)
	}
	g, err := s.service.RemixVideo(r.Context(), req.Owner, req.BoardID, req.ElementID, req.Prompt, progress)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
