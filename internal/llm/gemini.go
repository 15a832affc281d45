package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// Models used per operation shape. The image model must support interleaved
// image+text responses; the video model is poll-based.
type GeminiModels struct {
	Text  string
	Image string
	Video string
}

func DefaultGeminiModels() GeminiModels {
	return GeminiModels{
		Text:  "gemini-2.5-flash",
		Image: "gemini-2.5-flash-image-preview",
		Video: "veo-3.0-generate-001",
	}
}

// GeminiClient is a thin wrapper around the official genai client. It focuses
// on the API calls themselves; retries, rate limiting and logging are applied
// via Middleware.
type GeminiClient struct {
	cli    *genai.Client
	models GeminiModels
}

func NewGeminiClient(ctx context.Context, models GeminiModels) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if models.Text == "" || models.Image == "" || models.Video == "" {
		models = DefaultGeminiModels()
	}
	return &GeminiClient{cli: cli, models: models}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.models.Text }
func (g *GeminiClient) Close() error { return nil }

// GenerateJSON concatenates prompt and input, asks for application/json, and
// returns the model's JSON as json.RawMessage.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	full := prompt
	if input != nil {
		in, _ := json.MarshalIndent(input, "", "  ")
		full = prompt + "\n\n[INPUT JSON]\n" + string(in)
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.models.Text,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrInvalidJSON
	}
	txt := resp.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(txt) == "" {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(txt), nil
}

// DescribeJSON sends the inline payload plus prompt to the text model and
// requests a JSON body.
func (g *GeminiClient) DescribeJSON(ctx context.Context, prompt string, inline Blob) (json.RawMessage, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.models.Text,
		[]*genai.Content{{Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: inline.MIMEType, Data: inline.Data}},
			{Text: prompt},
		}, Role: genai.RoleUser}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrInvalidJSON
	}
	txt := resp.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(txt) == "" {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(txt), nil
}

// GenerateImages sends one multimodal request and collects every inline image
// in the response.
func (g *GeminiClient) GenerateImages(ctx context.Context, parts []Part) (*ImageResult, error) {
	if len(parts) == 0 {
		return nil, NewPermanentError(fmt.Errorf("gemini: empty request"))
	}
	gp := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch {
		case p.Inline != nil:
			gp = append(gp, &genai.Part{InlineData: &genai.Blob{
				MIMEType: p.Inline.MIMEType,
				Data:     p.Inline.Data,
			}})
		case p.Text != "":
			gp = append(gp, &genai.Part{Text: p.Text})
		}
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.models.Image,
		[]*genai.Content{{Parts: gp, Role: genai.RoleUser}},
		&genai.GenerateContentConfig{ResponseModalities: []string{"IMAGE", "TEXT"}},
	)
	if err != nil {
		return nil, err
	}
	out := &ImageResult{}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out.Images = append(out.Images, Blob{
					MIMEType: part.InlineData.MIMEType,
					Data:     part.InlineData.Data,
				})
				continue
			}
			if part.Text != "" {
				out.Text += part.Text
			}
		}
	}
	return out, nil
}

// StartVideo submits a video generation job and returns a pollable handle.
func (g *GeminiClient) StartVideo(ctx context.Context, prompt string, seed *Blob) (VideoOperation, error) {
	var image *genai.Image
	if seed != nil {
		image = &genai.Image{ImageBytes: seed.Data, MIMEType: seed.MIMEType}
	}
	op, err := g.cli.Models.GenerateVideos(ctx, g.models.Video, prompt, image, nil)
	if err != nil {
		return nil, err
	}
	return &geminiVideoOp{cli: g.cli, op: op}, nil
}

type geminiVideoOp struct {
	cli *genai.Client
	op  *genai.GenerateVideosOperation
}

func (v *geminiVideoOp) Poll(ctx context.Context) (*VideoStatus, error) {
	op, err := v.cli.Operations.GetVideosOperation(ctx, v.op, nil)
	if err != nil {
		return nil, err
	}
	v.op = op
	status := &VideoStatus{Done: op.Done}
	if !op.Done {
		return status, nil
	}
	if len(op.Error) > 0 {
		status.Error = formatOperationError(op.Error)
		return status, nil
	}
	if op.Response != nil && len(op.Response.GeneratedVideos) > 0 {
		if vid := op.Response.GeneratedVideos[0].Video; vid != nil {
			status.Video = &Blob{MIMEType: vid.MIMEType, Data: vid.VideoBytes}
			if status.Video.MIMEType == "" {
				status.Video.MIMEType = "video/mp4"
			}
		}
	}
	return status, nil
}

// formatOperationError flattens the LRO error map into one line.
func formatOperationError(errMap map[string]any) string {
	if msg, ok := errMap["message"].(string); ok && strings.TrimSpace(msg) != "" {
		return msg
	}
	b, err := json.Marshal(errMap)
	if err != nil {
		return "video generation failed"
	}
	return string(b)
}

// DecodeInlineBase64 decodes a base64 payload the way inline data arrives on
// the REST wire. Kept here so callers do not re-implement padding handling.
func DecodeInlineBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty inline payload")
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
