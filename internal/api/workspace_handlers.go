package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"remixcanvas/internal/remix"
	"remixcanvas/internal/workspace"
)

func ownerFrom(r *http.Request) (string, bool) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	return owner, owner != ""
}

// loadOrEmpty returns the owner's graph, or a fresh empty one for first
// mount.
func (s *Server) loadOrEmpty(r *http.Request, owner string) (*workspace.Graph, error) {
	g, ok, err := s.workspaces.Load(r.Context(), owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &workspace.Graph{}, nil
	}
	return g, nil
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	g, err := s.loadOrEmpty(r, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handlePutWorkspace(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	var g workspace.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		http.Error(w, "malformed workspace body", http.StatusBadRequest)
		return
	}
	g.Normalize()
	if err := s.workspaces.Save(r.Context(), owner, &g); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &g)
}

func (s *Server) handleUpsertBoard(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	var board workspace.Board
	if err := json.NewDecoder(r.Body).Decode(&board); err != nil {
		http.Error(w, "malformed board body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(board.ID) == "" {
		board.ID = workspace.NewBoardID()
	}
	g, err := s.loadOrEmpty(r, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := g.UpsertBoard(board); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.workspaces.Save(r.Context(), owner, g); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	boardID := r.PathValue("id")
	g, err := s.loadOrEmpty(r, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	g.DeleteBoard(boardID)
	if err := s.workspaces.Save(r.Context(), owner, g); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpsertConnector(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	var conn workspace.Connector
	if err := json.NewDecoder(r.Body).Decode(&conn); err != nil {
		http.Error(w, "malformed connector body", http.StatusBadRequest)
		return
	}
	g, err := s.loadOrEmpty(r, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := g.UpsertConnector(conn); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.workspaces.Save(r.Context(), owner, g); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteConnector(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		http.Error(w, "from and to are required", http.StatusBadRequest)
		return
	}
	g, err := s.loadOrEmpty(r, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	g.DeleteConnector(from, to)
	if err := s.workspaces.Save(r.Context(), owner, g); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMentions serves the @-token suggestions for a remix board's prompt
// box. Called on every keystroke, so it leans on Resolve being cheap.
func (s *Server) handleMentions(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	boardID := strings.TrimSpace(r.URL.Query().Get("board"))
	g, err := s.loadOrEmpty(r, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	rc := remix.Resolve(g, boardID)
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens": remix.MentionCandidates(rc),
	})
}
