package remix

import (
	"sort"

	"remixcanvas/internal/workspace"
)

// BrandInfo is the identity extracted from a brand board: its palette and the
// first image element, treated as the logo.
type BrandInfo struct {
	Colors []string
	Logo   *workspace.Element
}

// Context is the resolved, concrete asset set feeding one synthesis request.
// Derived from the connector graph on demand; never persisted.
type Context struct {
	// ContentBoards holds each contributing board reduced to its effective
	// element subset, in graph order.
	ContentBoards []workspace.Board
	BrandBoard    *workspace.Board
	Brand         *BrandInfo
}

// IsEmpty reports whether nothing feeds the target board.
func (c *Context) IsEmpty() bool {
	return c == nil || (len(c.ContentBoards) == 0 && c.BrandBoard == nil)
}

// AllElements returns every effective element across content boards, in board
// order. Brand board elements are excluded; the logo travels via Brand.
func (c *Context) AllElements() []workspace.Element {
	if c == nil {
		return nil
	}
	var out []workspace.Element
	for _, b := range c.ContentBoards {
		out = append(out, b.Elements...)
	}
	return out
}

// sourceRecord accumulates per-source-board connector scoping. An
// all-assets connector supersedes any partial scoping for the same source.
type sourceRecord struct {
	useAll bool
	ids    map[string]struct{}
	order  int
}

// Resolve walks the inbound connectors of the target board and produces the
// concrete Context. Returns nil when the target does not exist or is not a
// remix board.
//
// Resolve is a pure function of graph state: no side effects, cheap enough to
// recompute on every keystroke.
func Resolve(g *workspace.Graph, targetBoardID string) *Context {
	target, ok := g.Board(targetBoardID)
	if !ok || target.Kind != workspace.BoardRemix {
		return nil
	}

	records := make(map[string]*sourceRecord)
	for _, conn := range g.InboundConnectors(target.ID) {
		src, ok := g.Board(conn.From)
		if !ok {
			continue
		}
		rec := records[src.ID]
		if rec == nil {
			rec = &sourceRecord{order: len(records)}
			records[src.ID] = rec
		}
		if len(conn.ElementIDs) == 0 {
			// An "all assets" connector wins over a partial one.
			rec.useAll = true
			rec.ids = nil
			continue
		}
		if rec.useAll {
			continue
		}
		if rec.ids == nil {
			rec.ids = make(map[string]struct{}, len(conn.ElementIDs))
		}
		for _, id := range conn.ElementIDs {
			rec.ids[id] = struct{}{}
		}
	}

	type contribution struct {
		board workspace.Board
		order int
	}
	var contribs []contribution
	for srcID, rec := range records {
		src, ok := g.Board(srcID)
		if !ok {
			continue
		}
		effective := effectiveElements(src, rec)
		if len(effective) == 0 {
			// Boards contributing nothing are dropped entirely.
			continue
		}
		reduced := *src
		reduced.Elements = effective
		contribs = append(contribs, contribution{board: reduced, order: rec.order})
	}
	sort.Slice(contribs, func(i, j int) bool { return contribs[i].order < contribs[j].order })

	ctx := &Context{}
	brandIdx := -1
	for i, c := range contribs {
		if c.board.Kind == workspace.BoardBrand && brandIdx < 0 {
			brandIdx = i
		}
	}
	for i, c := range contribs {
		if i == brandIdx {
			b := c.board
			ctx.BrandBoard = &b
			continue
		}
		ctx.ContentBoards = append(ctx.ContentBoards, c.board)
	}

	// A brand board whose connector resolved to nothing still supplies brand
	// identity: fall back to any connected brand board.
	if ctx.BrandBoard == nil {
		for srcID := range records {
			if src, ok := g.Board(srcID); ok && src.Kind == workspace.BoardBrand {
				b := *src
				ctx.BrandBoard = &b
				break
			}
		}
	}

	if ctx.BrandBoard != nil {
		info := &BrandInfo{Colors: append([]string(nil), ctx.BrandBoard.Colors...)}
		if logo, ok := ctx.BrandBoard.FirstImage(); ok {
			info.Logo = logo
		}
		ctx.Brand = info
	}
	return ctx
}

// effectiveElements applies the connector scoping rules: useAll takes every
// top-level element; a partial set filters by id, and an entirely stale set
// (all referenced ids deleted) degrades to full inclusion rather than silent
// exclusion.
func effectiveElements(src *workspace.Board, rec *sourceRecord) []workspace.Element {
	if rec.useAll || len(rec.ids) == 0 {
		return src.Elements
	}
	var out []workspace.Element
	for _, el := range src.Elements {
		if _, ok := rec.ids[el.ID]; ok {
			out = append(out, el)
		}
	}
	if len(out) == 0 {
		return src.Elements
	}
	return out
}

// MentionCandidates returns the @-addressable tokens available in a context,
// deduplicated, labeled images first. Recomputed from Resolve output on every
// prompt keystroke, so it must stay allocation-light.
func MentionCandidates(ctx *Context) []string {
	if ctx == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var labeled, rest []string
	add := func(el workspace.Element) {
		token := el.MentionToken()
		if token == "" {
			return
		}
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		if el.Label != "" && el.Kind == workspace.ElementImage {
			labeled = append(labeled, token)
		} else {
			rest = append(rest, token)
		}
	}
	for _, el := range ctx.AllElements() {
		add(el)
	}
	if ctx.Brand != nil && ctx.Brand.Logo != nil {
		add(*ctx.Brand.Logo)
	}
	return append(labeled, rest...)
}
