package remix

import (
	"fmt"
	"strings"

	"remixcanvas/internal/workspace"
)

// Summary is the free-text brief fed to the director. Two plain strings by
// design: the consumer is a prompt builder, not a structured parser.
type Summary struct {
	BoardsText string
	BrandText  string
}

// Summarize renders the resolved context into the director brief. The output
// is a pure function of its input: the same context always yields
// byte-identical text.
func Summarize(contentBoards []workspace.Board, brand *BrandInfo) Summary {
	var boards strings.Builder
	for _, b := range contentBoards {
		title := strings.TrimSpace(b.Title)
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&boards, "Board [%s] %q:\n", b.Kind, title)
		for _, el := range b.Elements {
			fmt.Fprintf(&boards, "  @%s: %s\n", el.MentionToken(), summarizeAnalysis(el))
		}
	}

	var brandText strings.Builder
	if brand != nil {
		if brand.Logo != nil && strings.TrimSpace(brand.Logo.Label) != "" {
			fmt.Fprintf(&brandText, "Brand logo available as @%s.\n", brand.Logo.Label)
		}
		if len(brand.Colors) > 0 {
			fmt.Fprintf(&brandText, "Brand colors: %s.\n", strings.Join(brand.Colors, ", "))
		}
	}
	return Summary{
		BoardsText: boards.String(),
		BrandText:  brandText.String(),
	}
}

// summarizeAnalysis renders the per-element line. Missing fields render as
// explicit placeholders, never blank: the brief must not contain values that
// look like truncation.
func summarizeAnalysis(el workspace.Element) string {
	a := el.Analysis
	if a.IsZero() {
		return "No analysis available."
	}
	switch el.Kind {
	case workspace.ElementText:
		return fmt.Sprintf("Style: %s, Sentiment: %s, Keywords: %s",
			orPlaceholder(a.Style, "Style not identified"),
			orPlaceholder(a.Sentiment, "Sentiment not identified"),
			orPlaceholder(a.Keywords, "No keywords"))
	default:
		if a.ProductName != "" {
			return fmt.Sprintf("Product: %s (%s), Features: %s",
				a.ProductName,
				orPlaceholder(a.ProductType, "type not identified"),
				orPlaceholder(strings.Join(a.Features, ", "), "no notable features"))
		}
		return fmt.Sprintf("Style: %s, Mood: %s, Colors: %s, Typography: %s",
			orPlaceholder(a.Style, "Style not identified"),
			orPlaceholder(a.Mood, "Mood not identified"),
			orPlaceholder(a.ColorPalette, "Colors not identified"),
			orPlaceholder(a.Typography, "Typography not identified"))
	}
}

func orPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}
