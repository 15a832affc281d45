package workspace

import (
	"strings"

	"github.com/google/uuid"
)

// BoardKind governs how a board participates in orchestration.
type BoardKind string

const (
	BoardImage   BoardKind = "image"
	BoardText    BoardKind = "text"
	BoardRemix   BoardKind = "remix"
	BoardBrand   BoardKind = "brand"
	BoardProduct BoardKind = "product"
)

// Board is a titled container of elements. A board owns its elements
// exclusively; on regeneration the element slice is replaced wholesale.
type Board struct {
	ID          string    `json:"id"`
	Kind        BoardKind `json:"kind"`
	Title       string    `json:"title"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Elements    []Element `json:"elements,omitempty"`
	Colors      []string  `json:"colors,omitempty"`      // brand palette
	RemixPrompt string    `json:"remixPrompt,omitempty"` // last prompt, remix boards only
}

// NewBoardID returns a fresh board id.
func NewBoardID() string { return "brd-" + uuid.NewString() }

// ElementIDSet returns the set of top-level element ids.
func (b *Board) ElementIDSet() map[string]struct{} {
	if b == nil {
		return nil
	}
	out := make(map[string]struct{}, len(b.Elements))
	for _, el := range b.Elements {
		out[el.ID] = struct{}{}
	}
	return out
}

// FirstImage returns the first top-level image element, if any.
func (b *Board) FirstImage() (*Element, bool) {
	if b == nil {
		return nil, false
	}
	for i := range b.Elements {
		if b.Elements[i].Kind == ElementImage {
			return &b.Elements[i], true
		}
	}
	return nil, false
}

// Connector is a directed edge fromBoard -> toBoard. ElementIDs, when set,
// scopes the contribution to a subset of the source board's top-level
// elements. The list is not pruned when elements are deleted; consumers must
// treat unknown ids as absent.
//
// Edge identity is the ordered (From, To) pair, not the connector id: a second
// connector for the same pair replaces the first.
type Connector struct {
	ID         string   `json:"id"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	ElementIDs []string `json:"elementIds,omitempty"`
}

// NewConnectorID returns a fresh connector id.
func NewConnectorID() string { return "con-" + uuid.NewString() }

func normalizeID(v string) string { return strings.TrimSpace(v) }
