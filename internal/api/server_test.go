package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"remixcanvas/internal/llm"
	"remixcanvas/internal/remix"
	mediastore "remixcanvas/internal/store/media"
	workspacestore "remixcanvas/internal/store/workspace"
	"remixcanvas/internal/workspace"
)

func testServer(t *testing.T, fake *llm.Fake) (*Server, workspacestore.Store) {
	t.Helper()
	ws := workspacestore.NewMemoryStore()
	svc := remix.NewService(fake, ws, mediastore.NewMemoryStore())
	return NewServer(":0", ws, svc), ws
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func pngDataURL(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func seedRemixWorkspace(t *testing.T, ws workspacestore.Store, owner string) {
	t.Helper()
	g := &workspace.Graph{}
	require.NoError(t, g.UpsertBoard(workspace.Board{
		ID: "img", Kind: workspace.BoardImage,
		Elements: []workspace.Element{
			{ID: "e1", Kind: workspace.ElementImage, Label: "hero", Src: pngDataURL("hero"),
				Analysis: &workspace.Analysis{Style: "bold"}},
		},
	}))
	require.NoError(t, g.UpsertBoard(workspace.Board{ID: "mix", Kind: workspace.BoardRemix}))
	require.NoError(t, g.UpsertConnector(workspace.Connector{From: "img", To: "mix"}))
	require.NoError(t, ws.Save(context.Background(), owner, g))
}

func TestGetWorkspaceRequiresOwner(t *testing.T) {
	s, _ := testServer(t, &llm.Fake{})
	rec := do(t, s, http.MethodGet, "/v1/workspace", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetWorkspaceEmptyForNewOwner(t *testing.T) {
	s, _ := testServer(t, &llm.Fake{})
	rec := do(t, s, http.MethodGet, "/v1/workspace?owner=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var g workspace.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	require.Empty(t, g.Boards)
}

func TestBoardLifecycle(t *testing.T) {
	s, _ := testServer(t, &llm.Fake{})

	rec := do(t, s, http.MethodPost, "/v1/boards?owner=alice", workspace.Board{
		Kind: workspace.BoardImage, Title: "Shots",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created workspace.Board
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID, "blank board ids are minted server-side")

	rec = do(t, s, http.MethodGet, "/v1/workspace?owner=alice", nil)
	var g workspace.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	require.Len(t, g.Boards, 1)

	rec = do(t, s, http.MethodDelete, "/v1/boards/"+created.ID+"?owner=alice", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/workspace?owner=alice", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	require.Empty(t, g.Boards)
}

func TestConnectorLifecycle(t *testing.T) {
	s, ws := testServer(t, &llm.Fake{})
	seedRemixWorkspace(t, ws, "alice")

	// Replacing the edge for the same pair keeps a single connector.
	rec := do(t, s, http.MethodPost, "/v1/connectors?owner=alice", workspace.Connector{
		From: "img", To: "mix", ElementIDs: []string{"e1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var g workspace.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	require.Len(t, g.Connectors, 1)
	require.Equal(t, []string{"e1"}, g.Connectors[0].ElementIDs)

	rec = do(t, s, http.MethodPost, "/v1/connectors?owner=alice", workspace.Connector{
		From: "img", To: "ghost",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/v1/connectors?owner=alice&from=img&to=mix", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMentionsEndpoint(t *testing.T) {
	s, ws := testServer(t, &llm.Fake{})
	seedRemixWorkspace(t, ws, "alice")

	rec := do(t, s, http.MethodGet, "/v1/mentions?owner=alice&board=mix", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tokens []string `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Tokens, "hero")
}

func TestRemixEndpointHappyPath(t *testing.T) {
	plan, _ := json.Marshal(map[string]any{"tasks": []map[string]any{
		{"id": "t1", "type": "socialMediaTemplate", "prompt": "p1"},
		{"id": "t2", "type": "socialMediaTemplate", "prompt": "p2"},
		{"id": "t3", "type": "socialMediaTemplate", "prompt": "p3"},
		{"id": "t4", "type": "socialMediaTemplate", "prompt": "p4"},
	}})
	fake := &llm.Fake{JSONResponses: []json.RawMessage{plan}}
	s, ws := testServer(t, fake)
	seedRemixWorkspace(t, ws, "alice")

	rec := do(t, s, http.MethodPost, "/v1/remix", remixRequest{
		Owner: "alice", BoardID: "mix", Goal: "summer launch",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var g workspace.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	board, ok := g.Board("mix")
	require.True(t, ok)
	require.Len(t, board.Elements, 4)
}

func TestRemixEndpointErrorMapping(t *testing.T) {
	fake := &llm.Fake{}
	s, ws := testServer(t, fake)
	seedRemixWorkspace(t, ws, "alice")

	// Unknown owner.
	rec := do(t, s, http.MethodPost, "/v1/remix", remixRequest{Owner: "ghost", BoardID: "mix", Goal: "g"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "workspace_not_found")

	// A remix board with no inbound boards.
	g, _, err := ws.Load(context.Background(), "alice")
	require.NoError(t, err)
	require.NoError(t, g.UpsertBoard(workspace.Board{ID: "lonely", Kind: workspace.BoardRemix}))
	require.NoError(t, ws.Save(context.Background(), "alice", g))
	rec = do(t, s, http.MethodPost, "/v1/remix", remixRequest{Owner: "alice", BoardID: "lonely", Goal: "g"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "empty_context")

	// A board already mid-generation.
	release, err := s.service.Locks.Acquire("mix")
	require.NoError(t, err)
	defer release()
	rec = do(t, s, http.MethodPost, "/v1/remix", remixRequest{Owner: "alice", BoardID: "mix", Goal: "g"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "board_busy")
}

func TestWriteErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&remix.SafetyError{}, http.StatusUnprocessableEntity, "safety_block"},
		{&remix.RateLimitError{}, http.StatusTooManyRequests, "rate_limited"},
		{&remix.PlannerError{Reason: "empty"}, http.StatusBadGateway, "planner_failure"},
		{&remix.AssemblyError{TaskID: "t1"}, http.StatusBadGateway, "assembly_failure"},
		{&remix.ConfigError{Missing: "key"}, http.StatusServiceUnavailable, "configuration"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code)
		require.Contains(t, rec.Body.String(), tc.code)
	}
}

func TestProgressHubFanout(t *testing.T) {
	hub := newProgressHub()
	ch := hub.subscribe("alice", "mix")
	defer hub.unsubscribe("alice", "mix", ch)

	hub.publish("alice", "mix", "working...")
	hub.publish("alice", "other", "not for us")

	select {
	case msg := <-ch:
		require.Equal(t, "working...", msg)
	default:
		t.Fatal("subscriber must receive its board's messages")
	}
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %q", msg)
	default:
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := testServer(t, &llm.Fake{})
	req := httptest.NewRequest(http.MethodOptions, "/v1/workspace", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST"))
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t, &llm.Fake{})
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
