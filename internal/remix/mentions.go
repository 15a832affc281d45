package remix

import (
	"regexp"

	"remixcanvas/internal/workspace"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns the deduplicated @tokens in a free-text prompt, in
// first-appearance order. Matching is exact and case-sensitive as stored.
func ExtractMentions(prompt string) []string {
	matches := mentionPattern.FindAllStringSubmatch(prompt, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		token := m[1]
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// ScopeImages applies the mention policy to the available image elements:
// inclusive by default, exclusive on match. When any mentioned token matches
// a labeled image, only the matching images are returned; otherwise every
// image is. The executor never runs with zero images while images exist.
func ScopeImages(prompt string, elements []workspace.Element) []workspace.Element {
	var images []workspace.Element
	for _, el := range elements {
		if el.Kind == workspace.ElementImage {
			images = append(images, el)
		}
	}
	mentions := ExtractMentions(prompt)
	if len(mentions) == 0 {
		return images
	}
	mentioned := make(map[string]struct{}, len(mentions))
	for _, m := range mentions {
		mentioned[m] = struct{}{}
	}
	var scoped []workspace.Element
	for _, img := range images {
		if img.Label == "" {
			continue
		}
		if _, ok := mentioned[img.Label]; ok {
			scoped = append(scoped, img)
		}
	}
	if len(scoped) == 0 {
		// Mentions that resolve to nothing degrade to the full set.
		return images
	}
	return scoped
}
