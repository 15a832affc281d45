package remix

import (
	"testing"

	"remixcanvas/internal/workspace"
)

func buildGraph(t *testing.T, boards []workspace.Board, conns []workspace.Connector) *workspace.Graph {
	t.Helper()
	g := &workspace.Graph{}
	for _, b := range boards {
		if err := g.UpsertBoard(b); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range conns {
		if err := g.UpsertConnector(c); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestResolveNilForMissingOrNonRemixTargets(t *testing.T) {
	g := buildGraph(t, []workspace.Board{
		{ID: "img", Kind: workspace.BoardImage},
	}, nil)
	if Resolve(g, "ghost") != nil {
		t.Fatal("missing target must resolve to nil")
	}
	if Resolve(g, "img") != nil {
		t.Fatal("non-remix target must resolve to nil")
	}
}

func TestResolveEmptyGraph(t *testing.T) {
	g := buildGraph(t, []workspace.Board{
		{ID: "mix", Kind: workspace.BoardRemix},
	}, nil)
	rc := Resolve(g, "mix")
	if rc == nil {
		t.Fatal("remix board with no connectors must still resolve")
	}
	if len(rc.ContentBoards) != 0 || rc.BrandBoard != nil || rc.Brand != nil {
		t.Fatalf("expected an empty context, got %+v", rc)
	}
	if !rc.IsEmpty() {
		t.Fatal("context must report empty")
	}
}

func TestResolveBrandAndContentBoard(t *testing.T) {
	g := buildGraph(t, []workspace.Board{
		{ID: "img", Kind: workspace.BoardImage, Elements: []workspace.Element{
			{ID: "e1", Kind: workspace.ElementImage, Label: "hero"},
			{ID: "e2", Kind: workspace.ElementImage, Label: "detail"},
		}},
		{ID: "brand", Kind: workspace.BoardBrand, Colors: []string{"#ff0000", "#00ff00"}, Elements: []workspace.Element{
			{ID: "logo1", Kind: workspace.ElementImage, Label: "logo"},
		}},
		{ID: "mix", Kind: workspace.BoardRemix},
	}, []workspace.Connector{
		{From: "img", To: "mix"},
		{From: "brand", To: "mix"},
	})

	rc := Resolve(g, "mix")
	if rc == nil {
		t.Fatal("expected a context")
	}
	if len(rc.ContentBoards) != 1 || rc.ContentBoards[0].ID != "img" {
		t.Fatalf("contentBoards=%+v, want just img", rc.ContentBoards)
	}
	if rc.BrandBoard == nil || rc.BrandBoard.ID != "brand" {
		t.Fatal("brand board must be separated out")
	}
	if rc.Brand == nil || rc.Brand.Logo == nil || rc.Brand.Logo.ID != "logo1" {
		t.Fatal("brand logo must be the first image element")
	}
	if len(rc.Brand.Colors) != 2 {
		t.Fatalf("brand colors=%v, want two", rc.Brand.Colors)
	}
}

func TestResolvePartialConnectorFiltersElements(t *testing.T) {
	g := buildGraph(t, []workspace.Board{
		{ID: "img", Kind: workspace.BoardImage, Elements: []workspace.Element{
			{ID: "e1", Kind: workspace.ElementImage},
			{ID: "e2", Kind: workspace.ElementImage},
			{ID: "e3", Kind: workspace.ElementImage},
		}},
		{ID: "mix", Kind: workspace.BoardRemix},
	}, []workspace.Connector{
		{From: "img", To: "mix", ElementIDs: []string{"e2"}},
	})

	rc := Resolve(g, "mix")
	if len(rc.ContentBoards) != 1 {
		t.Fatalf("want one content board, got %d", len(rc.ContentBoards))
	}
	els := rc.ContentBoards[0].Elements
	if len(els) != 1 || els[0].ID != "e2" {
		t.Fatalf("effective elements=%+v, want just e2", els)
	}
}

func TestResolveStaleIDsFallBackToFullInclusion(t *testing.T) {
	// The connector references an element that has since been deleted: the
	// source must degrade to full inclusion, never contribute nothing.
	g := buildGraph(t, []workspace.Board{
		{ID: "img", Kind: workspace.BoardImage, Elements: []workspace.Element{
			{ID: "e1", Kind: workspace.ElementImage},
			{ID: "e2", Kind: workspace.ElementImage},
		}},
		{ID: "mix", Kind: workspace.BoardRemix},
	}, []workspace.Connector{
		{From: "img", To: "mix", ElementIDs: []string{"e3"}},
	})

	rc := Resolve(g, "mix")
	if len(rc.ContentBoards) != 1 {
		t.Fatalf("want one content board, got %d", len(rc.ContentBoards))
	}
	if len(rc.ContentBoards[0].Elements) != 2 {
		t.Fatalf("stale ids must fall back to all elements, got %+v", rc.ContentBoards[0].Elements)
	}
}

func TestResolveAllConnectorSupersedesPartial(t *testing.T) {
	g := buildGraph(t, []workspace.Board{
		{ID: "img", Kind: workspace.BoardImage, Elements: []workspace.Element{
			{ID: "e1", Kind: workspace.ElementImage},
			{ID: "e2", Kind: workspace.ElementImage},
		}},
		{ID: "mix", Kind: workspace.BoardRemix},
	}, nil)
	// First a partial edge, then an update to "all assets" for the same pair.
	mustUpsert(t, g, workspace.Connector{From: "img", To: "mix", ElementIDs: []string{"e1"}})
	mustUpsert(t, g, workspace.Connector{From: "img", To: "mix"})

	rc := Resolve(g, "mix")
	if len(rc.ContentBoards) != 1 || len(rc.ContentBoards[0].Elements) != 2 {
		t.Fatalf("the all-assets update must win, got %+v", rc.ContentBoards)
	}
}

func TestResolveDropsEmptyBoards(t *testing.T) {
	g := buildGraph(t, []workspace.Board{
		{ID: "empty", Kind: workspace.BoardImage},
		{ID: "mix", Kind: workspace.BoardRemix},
	}, []workspace.Connector{
		{From: "empty", To: "mix"},
	})
	rc := Resolve(g, "mix")
	if len(rc.ContentBoards) != 0 {
		t.Fatalf("boards with zero effective elements must be dropped, got %+v", rc.ContentBoards)
	}
}

func TestResolveIsPure(t *testing.T) {
	g := buildGraph(t, []workspace.Board{
		{ID: "img", Kind: workspace.BoardImage, Elements: []workspace.Element{
			{ID: "e1", Kind: workspace.ElementImage},
		}},
		{ID: "mix", Kind: workspace.BoardRemix},
	}, []workspace.Connector{
		{From: "img", To: "mix", ElementIDs: []string{"e1"}},
	})
	first := Resolve(g, "mix")
	second := Resolve(g, "mix")
	if len(first.ContentBoards) != len(second.ContentBoards) {
		t.Fatal("repeated resolution must not drift")
	}
	if len(g.Connectors[0].ElementIDs) != 1 {
		t.Fatal("resolution must not mutate the graph")
	}
}

func TestMentionCandidatesLabeledImagesFirst(t *testing.T) {
	rc := &Context{
		ContentBoards: []workspace.Board{{
			ID: "img", Kind: workspace.BoardImage,
			Elements: []workspace.Element{
				{ID: "el-text1", Kind: workspace.ElementText},
				{ID: "el-img1", Kind: workspace.ElementImage, Label: "hero"},
			},
		}},
		Brand: &BrandInfo{Logo: &workspace.Element{ID: "el-logo", Kind: workspace.ElementImage, Label: "logo"}},
	}
	tokens := MentionCandidates(rc)
	if len(tokens) != 3 {
		t.Fatalf("tokens=%v, want 3", tokens)
	}
	if tokens[0] != "hero" || tokens[1] != "logo" {
		t.Fatalf("labeled images must lead: %v", tokens)
	}
}

func mustUpsert(t *testing.T, g *workspace.Graph, c workspace.Connector) {
	t.Helper()
	if err := g.UpsertConnector(c); err != nil {
		t.Fatal(err)
	}
}
