package workspace

import (
	"strings"

	"github.com/google/uuid"
)

// ElementKind discriminates the element union. Every consumer switches on it
// explicitly; an unknown kind is skipped, never duck-typed.
type ElementKind string

const (
	ElementImage ElementKind = "image"
	ElementText  ElementKind = "text"
	ElementGroup ElementKind = "group"
	ElementVideo ElementKind = "video"
)

// TextSyntheticHeight is the height assumed for text elements in bounding-box
// math. Text is laid out dynamically and stores no height of its own.
const TextSyntheticHeight = 160.0

// Analysis is the structured metadata an upstream enrichment step attaches to
// an element. Which fields are populated depends on the element kind; a zero
// Analysis is valid and renders as "No analysis available.".
type Analysis struct {
	ProductName  string   `json:"productName,omitempty"`
	ProductType  string   `json:"productType,omitempty"`
	Features     []string `json:"features,omitempty"`
	Style        string   `json:"style,omitempty"`
	Mood         string   `json:"mood,omitempty"`
	ColorPalette string   `json:"colorPalette,omitempty"`
	Typography   string   `json:"typography,omitempty"`
	Sentiment    string   `json:"sentiment,omitempty"`
	Keywords     string   `json:"keywords,omitempty"`
}

// IsZero reports whether no analysis field is populated.
func (a *Analysis) IsZero() bool {
	if a == nil {
		return true
	}
	return a.ProductName == "" && a.ProductType == "" && len(a.Features) == 0 &&
		a.Style == "" && a.Mood == "" && a.ColorPalette == "" &&
		a.Typography == "" && a.Sentiment == "" && a.Keywords == ""
}

// Element is one node on a board. Groups own their children exclusively:
// deleting a group deletes the subtree.
type Element struct {
	ID       string      `json:"id"`
	Kind     ElementKind `json:"kind"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height,omitempty"` // image/video/group only
	Rotation float64     `json:"rotation,omitempty"`
	Label    string      `json:"label,omitempty"`
	Src      string      `json:"src,omitempty"`     // image/video media key or URL
	MIMEType string      `json:"mimeType,omitempty"`
	Content  string      `json:"content,omitempty"` // text only
	Children []Element   `json:"children,omitempty"` // group only
	Analysis *Analysis   `json:"analysis,omitempty"`
}

// NewElementID returns a fresh element id.
func NewElementID() string { return "el-" + uuid.NewString() }

// MentionToken is the @-addressable token for an element: its label when set,
// else the first four characters of its id.
func (e Element) MentionToken() string {
	if label := strings.TrimSpace(e.Label); label != "" {
		return label
	}
	id := e.ID
	if len(id) > 4 {
		id = id[:4]
	}
	return id
}

// EffectiveHeight returns the height used for layout math, substituting the
// synthetic height for text.
func (e Element) EffectiveHeight() float64 {
	switch e.Kind {
	case ElementText:
		return TextSyntheticHeight
	default:
		return e.Height
	}
}

// Walk visits e and, where descend returns true, its children depth-first.
// It stops early when visit returns false.
func (e *Element) Walk(visit func(*Element) bool, descend func(*Element) bool) bool {
	if e == nil {
		return true
	}
	if !visit(e) {
		return false
	}
	if e.Kind != ElementGroup || (descend != nil && !descend(e)) {
		return true
	}
	for i := range e.Children {
		if !e.Children[i].Walk(visit, descend) {
			return false
		}
	}
	return true
}

// FindElement returns the element with the given id, searching groups
// recursively.
func FindElement(elements []Element, id string) (*Element, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	var found *Element
	for i := range elements {
		elements[i].Walk(func(el *Element) bool {
			if el.ID == id {
				found = el
				return false
			}
			return true
		}, nil)
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X, Y, Width, Height float64
}

// BoundingBox computes the box enclosing all elements. Positions of nested
// children are relative to their group, so group boxes use the group's own
// geometry and do not descend.
func BoundingBox(elements []Element) (Rect, bool) {
	if len(elements) == 0 {
		return Rect{}, false
	}
	minX, minY := elements[0].X, elements[0].Y
	maxX := elements[0].X + elements[0].Width
	maxY := elements[0].Y + elements[0].EffectiveHeight()
	for _, el := range elements[1:] {
		if el.X < minX {
			minX = el.X
		}
		if el.Y < minY {
			minY = el.Y
		}
		if r := el.X + el.Width; r > maxX {
			maxX = r
		}
		if b := el.Y + el.EffectiveHeight(); b > maxY {
			maxY = b
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// AbsolutePosition resolves the workspace-relative position of the element
// with the given id, accumulating group offsets along the path.
func AbsolutePosition(elements []Element, id string) (x, y float64, ok bool) {
	id = strings.TrimSpace(id)
	for i := range elements {
		el := &elements[i]
		if el.ID == id {
			return el.X, el.Y, true
		}
		if el.Kind != ElementGroup {
			continue
		}
		if cx, cy, found := AbsolutePosition(el.Children, id); found {
			return el.X + cx, el.Y + cy, true
		}
	}
	return 0, 0, false
}
