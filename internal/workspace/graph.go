package workspace

import (
	"fmt"
	"strings"
)

// Graph is the in-memory workspace: boards plus the connectors between them.
// It assumes a single active editor; mutations are whole-field replacements,
// never in-place patches.
type Graph struct {
	Boards     []Board     `json:"boards"`
	Connectors []Connector `json:"connectors"`
}

// Board returns the board with the given id.
func (g *Graph) Board(id string) (*Board, bool) {
	if g == nil {
		return nil, false
	}
	id = normalizeID(id)
	for i := range g.Boards {
		if g.Boards[i].ID == id {
			return &g.Boards[i], true
		}
	}
	return nil, false
}

// UpsertBoard inserts the board or replaces the board with the same id.
func (g *Graph) UpsertBoard(b Board) error {
	if g == nil {
		return fmt.Errorf("graph is nil")
	}
	b.ID = normalizeID(b.ID)
	if b.ID == "" {
		return fmt.Errorf("board id is required")
	}
	if b.Kind == "" {
		return fmt.Errorf("board kind is required")
	}
	for i := range g.Boards {
		if g.Boards[i].ID == b.ID {
			g.Boards[i] = b
			return nil
		}
	}
	g.Boards = append(g.Boards, b)
	return nil
}

// DeleteBoard removes the board and every connector touching it. Deleting an
// absent board is a no-op.
func (g *Graph) DeleteBoard(id string) {
	if g == nil {
		return
	}
	id = normalizeID(id)
	if id == "" {
		return
	}
	boards := g.Boards[:0]
	for _, b := range g.Boards {
		if b.ID != id {
			boards = append(boards, b)
		}
	}
	g.Boards = boards

	conns := g.Connectors[:0]
	for _, c := range g.Connectors {
		if c.From != id && c.To != id {
			conns = append(conns, c)
		}
	}
	g.Connectors = conns
}

// ReplaceElements swaps a board's element slice wholesale.
func (g *Graph) ReplaceElements(boardID string, elements []Element) error {
	b, ok := g.Board(boardID)
	if !ok {
		return fmt.Errorf("board %q not found", strings.TrimSpace(boardID))
	}
	b.Elements = elements
	return nil
}

// UpsertConnector adds the edge or, when a connector for the same ordered
// (From, To) pair exists, replaces it in place. The incoming ElementIDs
// replace the previous scoping entirely.
func (g *Graph) UpsertConnector(c Connector) error {
	if g == nil {
		return fmt.Errorf("graph is nil")
	}
	c.From = normalizeID(c.From)
	c.To = normalizeID(c.To)
	if c.From == "" || c.To == "" {
		return fmt.Errorf("connector endpoints are required")
	}
	if c.From == c.To {
		return fmt.Errorf("connector cannot loop board %q to itself", c.From)
	}
	if _, ok := g.Board(c.From); !ok {
		return fmt.Errorf("source board %q not found", c.From)
	}
	if _, ok := g.Board(c.To); !ok {
		return fmt.Errorf("target board %q not found", c.To)
	}
	if normalizeID(c.ID) == "" {
		c.ID = NewConnectorID()
	}
	for i := range g.Connectors {
		if g.Connectors[i].From == c.From && g.Connectors[i].To == c.To {
			c.ID = g.Connectors[i].ID
			g.Connectors[i] = c
			return nil
		}
	}
	g.Connectors = append(g.Connectors, c)
	return nil
}

// DeleteConnector removes the edge for the ordered (from, to) pair.
func (g *Graph) DeleteConnector(from, to string) {
	if g == nil {
		return
	}
	from = normalizeID(from)
	to = normalizeID(to)
	conns := g.Connectors[:0]
	for _, c := range g.Connectors {
		if c.From == from && c.To == to {
			continue
		}
		conns = append(conns, c)
	}
	g.Connectors = conns
}

// InboundConnectors returns all connectors whose target is the given board,
// in insertion order.
func (g *Graph) InboundConnectors(boardID string) []Connector {
	if g == nil {
		return nil
	}
	boardID = normalizeID(boardID)
	var out []Connector
	for _, c := range g.Connectors {
		if c.To == boardID {
			out = append(out, c)
		}
	}
	return out
}

// Normalize drops boards without ids and connectors whose endpoints no longer
// exist. Persisted snapshots pass through here on load so a stale save can
// never resurrect a dangling edge.
func (g *Graph) Normalize() {
	if g == nil {
		return
	}
	boards := g.Boards[:0]
	known := make(map[string]struct{}, len(g.Boards))
	for _, b := range g.Boards {
		b.ID = normalizeID(b.ID)
		if b.ID == "" {
			continue
		}
		if _, dup := known[b.ID]; dup {
			continue
		}
		known[b.ID] = struct{}{}
		boards = append(boards, b)
	}
	g.Boards = boards

	conns := g.Connectors[:0]
	seen := make(map[string]struct{}, len(g.Connectors))
	for _, c := range g.Connectors {
		c.From = normalizeID(c.From)
		c.To = normalizeID(c.To)
		if _, ok := known[c.From]; !ok {
			continue
		}
		if _, ok := known[c.To]; !ok {
			continue
		}
		pair := c.From + "\x00" + c.To
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		conns = append(conns, c)
	}
	g.Connectors = conns
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := &Graph{
		Boards:     make([]Board, len(g.Boards)),
		Connectors: make([]Connector, len(g.Connectors)),
	}
	for i, b := range g.Boards {
		b.Elements = cloneElements(b.Elements)
		b.Colors = append([]string(nil), b.Colors...)
		out.Boards[i] = b
	}
	for i, c := range g.Connectors {
		c.ElementIDs = append([]string(nil), c.ElementIDs...)
		out.Connectors[i] = c
	}
	return out
}

func cloneElements(els []Element) []Element {
	if els == nil {
		return nil
	}
	out := make([]Element, len(els))
	for i, el := range els {
		el.Children = cloneElements(el.Children)
		if el.Analysis != nil {
			a := *el.Analysis
			a.Features = append([]string(nil), a.Features...)
			el.Analysis = &a
		}
		out[i] = el
	}
	return out
}
