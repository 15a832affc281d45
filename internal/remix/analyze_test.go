package remix

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"remixcanvas/internal/llm"
	"remixcanvas/internal/workspace"
)

func TestEnrichMissingFillsOnlyUnanalyzedElements(t *testing.T) {
	fake := &llm.Fake{JSONResponses: []json.RawMessage{
		json.RawMessage(`{"style":"retro","mood":"warm"}`),
		json.RawMessage(`{"style":"punchy","sentiment":"upbeat","keywords":"sale"}`),
	}}
	boards := []workspace.Board{{
		ID: "b1", Kind: workspace.BoardImage,
		Elements: []workspace.Element{
			{ID: "done", Kind: workspace.ElementImage, Src: dataURL("x"),
				Analysis: &workspace.Analysis{Style: "existing"}},
			{ID: "img", Kind: workspace.ElementImage, Src: dataURL("y")},
			{ID: "txt", Kind: workspace.ElementText, Content: "summer sale"},
		},
	}}
	a := &Analyzer{Client: fake, Images: stubImages{}}
	n := a.EnrichMissing(context.Background(), boards)
	if n != 2 {
		t.Fatalf("enriched %d, want 2", n)
	}
	if boards[0].Elements[0].Analysis.Style != "existing" {
		t.Fatal("already-analyzed elements must not be re-analyzed")
	}
	if boards[0].Elements[1].Analysis.Style != "retro" {
		t.Fatalf("image analysis not applied: %+v", boards[0].Elements[1].Analysis)
	}
	if boards[0].Elements[2].Analysis.Sentiment != "upbeat" {
		t.Fatalf("text analysis not applied: %+v", boards[0].Elements[2].Analysis)
	}
	if len(fake.JSONPrompts) != 2 {
		t.Fatalf("got %d model calls, want 2", len(fake.JSONPrompts))
	}
}

func TestEnrichMissingDegradesOnFailure(t *testing.T) {
	fake := &llm.Fake{JSONErr: errors.New("model down")}
	boards := []workspace.Board{{
		ID: "b1", Kind: workspace.BoardText,
		Elements: []workspace.Element{
			{ID: "t1", Kind: workspace.ElementText, Content: "copy"},
		},
	}}
	a := &Analyzer{Client: fake, Images: stubImages{}}
	if n := a.EnrichMissing(context.Background(), boards); n != 0 {
		t.Fatalf("enriched %d, want 0", n)
	}
	// The element gets an empty analysis so it is not retried downstream, and
	// the flow never errors.
	if boards[0].Elements[0].Analysis == nil {
		t.Fatal("failed analysis must leave an empty analysis in place")
	}
	if !boards[0].Elements[0].Analysis.IsZero() {
		t.Fatal("failed analysis must be empty")
	}
}

func TestEnrichMissingSkipsGroupsAndVideos(t *testing.T) {
	fake := &llm.Fake{}
	boards := []workspace.Board{{
		ID: "b1", Kind: workspace.BoardImage,
		Elements: []workspace.Element{
			{ID: "g1", Kind: workspace.ElementGroup},
			{ID: "v1", Kind: workspace.ElementVideo, Src: dataURL("v")},
		},
	}}
	a := &Analyzer{Client: fake, Images: stubImages{}}
	if n := a.EnrichMissing(context.Background(), boards); n != 0 {
		t.Fatalf("enriched %d, want 0", n)
	}
	if len(fake.JSONPrompts) != 0 {
		t.Fatal("non-analyzable kinds must not hit the model")
	}
}
