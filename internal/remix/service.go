package remix

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"remixcanvas/internal/llm"
	mediastore "remixcanvas/internal/store/media"
	workspacestore "remixcanvas/internal/store/workspace"
	"remixcanvas/internal/workspace"
)

// Service wires the full remix flow: load, lock, resolve, enrich, summarize,
// plan, execute, merge, save.
type Service struct {
	Client       llm.Client
	Workspaces   workspacestore.Store
	Media        mediastore.Store
	Locks        *BoardLocks
	PollInterval time.Duration
}

func NewService(client llm.Client, workspaces workspacestore.Store, media mediastore.Store) *Service {
	return &Service{
		Client:     client,
		Workspaces: workspaces,
		Media:      media,
		Locks:      NewBoardLocks(),
	}
}

// Remix runs the two-phase pipeline against the given remix board and
// replaces the board's elements with the generated results. The returned
// graph is the post-merge state, already persisted.
func (s *Service) Remix(ctx context.Context, ownerID, boardID, userGoal string, progress ProgressFunc) (*workspace.Graph, error) {
	if s == nil || s.Client == nil {
		return nil, &ConfigError{Missing: "model client"}
	}
	userGoal = strings.TrimSpace(userGoal)
	if userGoal == "" {
		return nil, fmt.Errorf("remix: a goal prompt is required")
	}

	release, err := s.Locks.Acquire(boardID)
	if err != nil {
		return nil, err
	}
	defer release()

	g, ok, err := s.Workspaces.Load(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("remix: load workspace: %w", err)
	}
	if !ok {
		return nil, workspacestore.ErrNotFound
	}

	rc := Resolve(g, boardID)
	if rc == nil {
		return nil, ErrNotRemixBoard
	}
	if rc.IsEmpty() {
		return nil, ErrEmptyContext
	}

	report(progress, "Reading your boards...")
	source := &mediaSource{store: s.Media}
	analyzer := &Analyzer{Client: s.Client, Images: source}
	if n := analyzer.EnrichMissing(ctx, rc.ContentBoards); n > 0 {
		log.Printf("remix: enriched %d elements for board %s", n, boardID)
	}

	summary := Summarize(rc.ContentBoards, rc.Brand)
	allElements := rc.AllElements()
	tokens := imageTokensFrom(allElements, rc.Brand)

	report(progress, "Planning creative directions...")
	director := &Director{Client: s.Client}
	plan, err := director.Plan(ctx, userGoal, summary, tokens)
	if err != nil {
		return nil, err
	}
	tasks := plan.TemplateTasks()

	report(progress, fmt.Sprintf("Generating %d variations...", len(tasks)))
	executor := &Executor{Client: s.Client, Images: source}
	results, err := executor.Execute(ctx, tasks, allElements, rc.Brand)
	if err != nil {
		return nil, err
	}

	report(progress, "Assembling results...")
	elements, err := s.storeResults(ctx, ownerID, boardID, results)
	if err != nil {
		return nil, err
	}
	if err := g.ReplaceElements(boardID, elements); err != nil {
		return nil, err
	}
	if board, ok := g.Board(boardID); ok {
		board.RemixPrompt = userGoal
	}
	if err := s.Workspaces.Save(ctx, ownerID, g); err != nil {
		return nil, fmt.Errorf("remix: save workspace: %w", err)
	}
	report(progress, "Done.")
	return g, nil
}

// storeResults persists each generated image and lays the new elements out in
// a row on the target board.
func (s *Service) storeResults(ctx context.Context, ownerID, boardID string, results []TaskResult) ([]workspace.Element, error) {
	const tileWidth, tileHeight, gap = 512.0, 512.0, 24.0
	elements := make([]workspace.Element, 0, len(results))
	for i, res := range results {
		name := fmt.Sprintf("%s-%d", res.Task.ID, time.Now().UnixMilli())
		key, err := s.Media.Put(ctx, ownerID, boardID, name, mediastore.Object{
			MIMEType: res.Image.MIMEType,
			Data:     res.Image.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("remix: store result for task %s: %w", res.Task.ID, err)
		}
		elements = append(elements, workspace.Element{
			ID:       workspace.NewElementID(),
			Kind:     workspace.ElementImage,
			X:        float64(i) * (tileWidth + gap),
			Y:        0,
			Width:    tileWidth,
			Height:   tileHeight,
			Label:    fmt.Sprintf("variation%d", i+1),
			Src:      key,
			MIMEType: res.Image.MIMEType,
		})
	}
	return elements, nil
}

// RemixVideo animates one source element into a video via the poll-based
// long-running-operation protocol, appending the result to the board.
func (s *Service) RemixVideo(ctx context.Context, ownerID, boardID, elementID, prompt string, progress ProgressFunc) (*workspace.Graph, error) {
	if s == nil || s.Client == nil {
		return nil, &ConfigError{Missing: "model client"}
	}
	release, err := s.Locks.Acquire(boardID)
	if err != nil {
		return nil, err
	}
	defer release()

	g, ok, err := s.Workspaces.Load(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("remix: load workspace: %w", err)
	}
	if !ok {
		return nil, workspacestore.ErrNotFound
	}
	board, ok := g.Board(boardID)
	if !ok {
		return nil, fmt.Errorf("remix: board %q not found", boardID)
	}

	var seed *llm.Blob
	if strings.TrimSpace(elementID) != "" {
		el, ok := workspace.FindElement(board.Elements, elementID)
		if !ok {
			return nil, fmt.Errorf("remix: element %q not found on board %q", elementID, boardID)
		}
		source := &mediaSource{store: s.Media}
		seed, err = source.Fetch(ctx, *el)
		if err != nil {
			return nil, fmt.Errorf("remix: fetch seed image: %w", err)
		}
	}

	op, err := s.Client.StartVideo(ctx, prompt, seed)
	if err != nil {
		return nil, ClassifyModelError(err)
	}
	poller := &Poller{Interval: s.PollInterval, Progress: progress}
	video, err := poller.Wait(ctx, op)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("video-%d", time.Now().UnixMilli())
	key, err := s.Media.Put(ctx, ownerID, boardID, name, mediastore.Object{
		MIMEType: video.MIMEType,
		Data:     video.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("remix: store video: %w", err)
	}
	box, _ := workspace.BoundingBox(board.Elements)
	board.Elements = append(board.Elements, workspace.Element{
		ID:       workspace.NewElementID(),
		Kind:     workspace.ElementVideo,
		X:        box.X,
		Y:        box.Y + box.Height + 24,
		Width:    512,
		Height:   512,
		Src:      key,
		MIMEType: video.MIMEType,
	})
	if err := s.Workspaces.Save(ctx, ownerID, g); err != nil {
		return nil, fmt.Errorf("remix: save workspace: %w", err)
	}
	return g, nil
}

// mediaSource resolves element image payloads: data URLs inline, everything
// else through the media store.
type mediaSource struct {
	store mediastore.Store
}

func (m *mediaSource) Fetch(ctx context.Context, el workspace.Element) (*llm.Blob, error) {
	src := strings.TrimSpace(el.Src)
	if src == "" {
		return nil, nil
	}
	if strings.HasPrefix(src, "data:") {
		return decodeDataURL(src)
	}
	if m == nil || m.store == nil {
		return nil, fmt.Errorf("no media store configured")
	}
	obj, err := m.store.Get(ctx, src)
	if err != nil {
		return nil, err
	}
	mime := obj.MIMEType
	if mime == "" {
		mime = el.MIMEType
	}
	return &llm.Blob{MIMEType: mime, Data: obj.Data}, nil
}

func decodeDataURL(src string) (*llm.Blob, error) {
	rest := strings.TrimPrefix(src, "data:")
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta, payload := rest[:comma], rest[comma+1:]
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "application/octet-stream"
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := llm.DecodeInlineBase64(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URL: %w", err)
		}
		return &llm.Blob{MIMEType: mime, Data: data}, nil
	}
	return &llm.Blob{MIMEType: mime, Data: []byte(payload)}, nil
}
