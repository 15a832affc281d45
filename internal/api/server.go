package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"remixcanvas/internal/remix"
	workspacestore "remixcanvas/internal/store/workspace"
)

// Server exposes the workspace and remix operations over HTTP plus a
// websocket progress channel.
type Server struct {
	workspaces workspacestore.Store
	service    *remix.Service
	hub        *progressHub
	httpServer *http.Server
}

func NewServer(addr string, workspaces workspacestore.Store, service *remix.Service) *Server {
	s := &Server{
		workspaces: workspaces,
		service:    service,
		hub:        newProgressHub(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/workspace", s.handleGetWorkspace)
	mux.HandleFunc("PUT /v1/workspace", s.handlePutWorkspace)
	mux.HandleFunc("POST /v1/boards", s.handleUpsertBoard)
	mux.HandleFunc("DELETE /v1/boards/{id}", s.handleDeleteBoard)
	mux.HandleFunc("POST /v1/connectors", s.handleUpsertConnector)
	mux.HandleFunc("DELETE /v1/connectors", s.handleDeleteConnector)
	mux.HandleFunc("GET /v1/mentions", s.handleMentions)
	mux.HandleFunc("POST /v1/remix", s.handleRemix)
	mux.HandleFunc("POST /v1/remix/video", s.handleRemixVideo)
	mux.HandleFunc("GET /v1/progress/ws", s.handleProgressWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           cors(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	log.Printf("api: listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps the error taxonomy onto HTTP statuses and stable codes the
// UI can branch on.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := ""
	var plannerErr *remix.PlannerError
	var assemblyErr *remix.AssemblyError
	var safetyErr *remix.SafetyError
	var rateErr *remix.RateLimitError
	var configErr *remix.ConfigError
	switch {
	case errors.Is(err, remix.ErrBoardBusy):
		status, code = http.StatusConflict, "board_busy"
	case errors.Is(err, remix.ErrEmptyContext):
		status, code = http.StatusBadRequest, "empty_context"
	case errors.Is(err, remix.ErrNotRemixBoard):
		status, code = http.StatusBadRequest, "not_remix_board"
	case errors.Is(err, workspacestore.ErrNotFound):
		status, code = http.StatusNotFound, "workspace_not_found"
	case errors.As(err, &safetyErr):
		status, code = http.StatusUnprocessableEntity, "safety_block"
	case errors.As(err, &rateErr):
		status, code = http.StatusTooManyRequests, "rate_limited"
	case errors.As(err, &plannerErr):
		status, code = http.StatusBadGateway, "planner_failure"
	case errors.As(err, &assemblyErr):
		status, code = http.StatusBadGateway, "assembly_failure"
	case errors.As(err, &configErr):
		status, code = http.StatusServiceUnavailable, "configuration"
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}
