package remix

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"remixcanvas/internal/llm"
	"remixcanvas/internal/workspace"
)

// Analyzer enriches elements with structured analysis ahead of summarization.
// Enrichment is best-effort: any failure substitutes an empty analysis and
// never blocks the downstream flow.
type Analyzer struct {
	Client llm.Client
	Images ImageSource
}

const analyzeImagePrompt = `Describe this asset for a creative brief. Return JSON:
{"productName":string,"productType":string,"features":[string],
 "style":string,"mood":string,"colorPalette":string,"typography":string}
Populate product fields only when the image clearly shows a product; otherwise
populate the style fields. Use empty strings for anything you cannot tell.`

const analyzeTextPrompt = `Describe this copy for a creative brief. Return JSON:
{"style":string,"sentiment":string,"keywords":string}
Use empty strings for anything you cannot tell.`

// EnrichMissing fills in analysis for every effective element that lacks one,
// mutating the boards in place. Returns the count of elements enriched.
func (a *Analyzer) EnrichMissing(ctx context.Context, boards []workspace.Board) int {
	if a == nil || a.Client == nil {
		return 0
	}
	enriched := 0
	for bi := range boards {
		for ei := range boards[bi].Elements {
			el := &boards[bi].Elements[ei]
			if !el.Analysis.IsZero() {
				continue
			}
			analysis := a.analyzeOne(ctx, *el)
			el.Analysis = analysis
			if !analysis.IsZero() {
				enriched++
			}
		}
	}
	return enriched
}

// analyzeOne never returns nil; failures degrade to the empty analysis.
func (a *Analyzer) analyzeOne(ctx context.Context, el workspace.Element) *workspace.Analysis {
	empty := &workspace.Analysis{}
	var raw json.RawMessage
	var err error
	switch el.Kind {
	case workspace.ElementText:
		raw, err = a.Client.GenerateJSON(ctx, analyzeTextPrompt, map[string]string{"text": el.Content})
	case workspace.ElementImage:
		raw, err = a.analyzeImage(ctx, el)
	default:
		return empty
	}
	if err != nil {
		log.Printf("remix: analysis of %s failed, continuing without: %v", el.ID, err)
		return empty
	}
	var analysis workspace.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		log.Printf("remix: analysis of %s unparseable, continuing without: %v", el.ID, err)
		return empty
	}
	return &analysis
}

func (a *Analyzer) analyzeImage(ctx context.Context, el workspace.Element) (json.RawMessage, error) {
	if a.Images == nil {
		return nil, fmt.Errorf("no image source configured")
	}
	blob, err := a.Images.Fetch(ctx, el)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, fmt.Errorf("image %s has no payload", el.ID)
	}
	return a.Client.DescribeJSON(ctx, analyzeImagePrompt, *blob)
}
