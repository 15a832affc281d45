package remix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"remixcanvas/internal/llm"
	"remixcanvas/internal/workspace"
)

// Director runs the planning phase: one structured round-trip that turns the
// summarized context into an ordered task plan.
type Director struct {
	Client llm.Client
}

// styleAxes are the enumerated creative directions the director must spread
// the four briefs across, so the outputs are not near-duplicates.
var styleAxes = []string{
	"bold and minimal: one dominant asset, generous negative space, a single accent color",
	"vibrant collage: layered assets, energetic composition, saturated palette",
	"editorial and typographic: copy-led layout, restrained imagery, strong grid",
	"atmospheric and photographic: full-bleed imagery, soft gradients, mood-first",
}

// Plan sends the brief to the model and parses the task plan. At least one
// task of the template type must survive parsing; anything less is a
// PlannerError.
func (d *Director) Plan(ctx context.Context, userGoal string, summary Summary, imageTokens []string) (*Plan, error) {
	if d == nil || d.Client == nil {
		return nil, &PlannerError{Reason: "no model client configured"}
	}
	prompt := buildDirectorPrompt(userGoal, summary, imageTokens)

	raw, err := d.Client.GenerateJSON(ctx, prompt, nil)
	if err != nil {
		return nil, classifyPlannerError(err)
	}
	plan, err := parsePlan(raw)
	if err != nil {
		return nil, &PlannerError{Reason: "malformed plan JSON", Err: err}
	}
	if len(plan.TemplateTasks()) == 0 {
		return nil, &PlannerError{Reason: "plan contained no template tasks"}
	}
	return plan, nil
}

func classifyPlannerError(err error) error {
	classified := ClassifyModelError(err)
	switch classified.(type) {
	case *SafetyError, *RateLimitError:
		return classified
	}
	return &PlannerError{Reason: "model call failed", Err: err}
}

func buildDirectorPrompt(userGoal string, summary Summary, imageTokens []string) string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE",
		"You are a creative director. Plan social media template variations that remix the provided assets toward the user's goal.")
	writeSection(&buf, "GOAL", strings.TrimSpace(userGoal))
	writeSection(&buf, "BOARDS", summary.BoardsText)
	writeSection(&buf, "BRAND", summary.BrandText)
	if len(imageTokens) > 0 {
		writeSection(&buf, "IMAGE_ASSETS", "Available image assets, addressable as @token:\n"+strings.Join(imageTokens, ", "))
	}
	writeSection(&buf, "RULES", strings.Join([]string{
		fmt.Sprintf("- Produce exactly %d tasks, every one with type %q.", PlanTaskCount, TaskTypeSocialTemplate),
		"- Each prompt must be a complete, self-contained brief: a designer reading only that prompt can produce the creative.",
		"- Reference assets inside the prompt by their @token and spell out any brand colors as explicit hex values.",
		"- Each task must follow a distinct creative direction:",
		"  1. " + styleAxes[0],
		"  2. " + styleAxes[1],
		"  3. " + styleAxes[2],
		"  4. " + styleAxes[3],
		"- The dependencies array is metadata only; leave it empty.",
	}, "\n"))
	writeSection(&buf, "OUTPUT_FORMAT",
		`JSON only, matching: {"tasks":[{"id":string,"type":string,"description":string,"prompt":string,"dependencies":[string]}]}`)
	return strings.TrimSpace(buf.String()) + "\n"
}

func writeSection(buf *bytes.Buffer, name, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(buf, "[%s]\n%s\n\n", name, body)
}

// parsePlan tolerates the fenced-code and stray-prose wrappers models attach
// to JSON bodies.
func parsePlan(raw json.RawMessage) (*Plan, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}
	text = stripFences(text)
	var plan Plan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		// Fall back to the outermost object in the text.
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, err
		}
		if err2 := json.Unmarshal([]byte(text[start:end+1]), &plan); err2 != nil {
			return nil, err
		}
	}
	for i := range plan.Tasks {
		if strings.TrimSpace(plan.Tasks[i].ID) == "" {
			plan.Tasks[i].ID = fmt.Sprintf("task-%d", i+1)
		}
	}
	return &plan, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// imageTokensFrom lists the @tokens of labeled images, for the director's
// asset roster.
func imageTokensFrom(elements []workspace.Element, brand *BrandInfo) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(el workspace.Element) {
		if el.Kind != workspace.ElementImage {
			return
		}
		token := el.MentionToken()
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		out = append(out, "@"+token)
	}
	for _, el := range elements {
		add(el)
	}
	if brand != nil && brand.Logo != nil {
		add(*brand.Logo)
	}
	return out
}
