package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrInvalidJSON = errors.New("llm: invalid JSON from model")

// Blob is an inline binary payload (image bytes, video bytes).
type Blob struct {
	MIMEType string
	Data     []byte
}

// Part is one piece of a multimodal request: either text or inline data.
type Part struct {
	Text   string
	Inline *Blob
}

// TextPart and ImagePart are small constructors for request assembly.
func TextPart(text string) Part           { return Part{Text: text} }
func ImagePart(mime string, b []byte) Part { return Part{Inline: &Blob{MIMEType: mime, Data: b}} }

// ImageResult is the outcome of one image generation call. Images holds every
// inline image in the response, in order; Text is any accompanying prose.
type ImageResult struct {
	Images []Blob
	Text   string
}

// VideoStatus is one observation of a long-running video operation.
type VideoStatus struct {
	Done  bool
	Error string // non-empty only when the operation finished in failure
	Video *Blob
}

// VideoOperation is a handle to a long-running video generation job.
type VideoOperation interface {
	// Poll re-queries the operation once. Callers own the polling cadence.
	Poll(ctx context.Context) (*VideoStatus, error)
}

// Client is the generative model surface the engine depends on. Gemini is the
// production implementation; Fake serves tests.
type Client interface {
	Name() string
	Close() error

	// GenerateJSON concatenates prompt and input and requests a JSON body.
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)

	// DescribeJSON sends one inline payload alongside the prompt and requests
	// a JSON body. Used for per-asset analysis.
	DescribeJSON(ctx context.Context, prompt string, inline Blob) (json.RawMessage, error)

	// GenerateImages sends one multimodal request and returns every inline
	// image plus any text in the response.
	GenerateImages(ctx context.Context, parts []Part) (*ImageResult, error)

	// StartVideo kicks off a video generation job. seed, when non-nil, is the
	// source image the video animates.
	StartVideo(ctx context.Context, prompt string, seed *Blob) (VideoOperation, error)
}

// PermanentError marks a failure that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error { return &PermanentError{Err: err} }

// Middleware wraps a Client with a cross-cutting concern.
type Middleware func(Client) Client

// Chain applies middlewares outermost-first.
func Chain(c Client, mws ...Middleware) Client {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}
