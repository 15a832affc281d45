package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// Fake is a deterministic Client for offline use and tests. Responses are
// queued per operation; when a queue is empty the zero response is returned.
type Fake struct {
	mu sync.Mutex

	JSONResponses  []json.RawMessage
	JSONErr        error
	ImageResponses []*ImageResult
	ImageErr       error
	VideoStatuses  []*VideoStatus
	VideoStartErr  error

	// Recorded calls, in order.
	JSONPrompts   []string
	ImageRequests [][]Part
	VideoPrompts  []string

	// ImageHook, when set, overrides the queue and computes the response per
	// request. Used to control completion timing in ordering tests.
	ImageHook func(ctx context.Context, parts []Part) (*ImageResult, error)
}

func (f *Fake) Name() string { return "FakeLLM" }
func (f *Fake) Close() error { return nil }

func (f *Fake) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.JSONPrompts = append(f.JSONPrompts, prompt)
	if f.JSONErr != nil {
		return nil, f.JSONErr
	}
	if len(f.JSONResponses) == 0 {
		return json.RawMessage(`{}`), nil
	}
	resp := f.JSONResponses[0]
	f.JSONResponses = f.JSONResponses[1:]
	return resp, nil
}

func (f *Fake) DescribeJSON(ctx context.Context, prompt string, inline Blob) (json.RawMessage, error) {
	return f.GenerateJSON(ctx, prompt, nil)
}

func (f *Fake) GenerateImages(ctx context.Context, parts []Part) (*ImageResult, error) {
	f.mu.Lock()
	f.ImageRequests = append(f.ImageRequests, parts)
	hook := f.ImageHook
	var queued *ImageResult
	var err error
	if hook == nil {
		if f.ImageErr != nil {
			err = f.ImageErr
		} else if len(f.ImageResponses) > 0 {
			queued = f.ImageResponses[0]
			f.ImageResponses = f.ImageResponses[1:]
		}
	}
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, parts)
	}
	if err != nil {
		return nil, err
	}
	if queued == nil {
		queued = &ImageResult{Images: []Blob{{MIMEType: "image/png", Data: []byte("fake")}}}
	}
	return queued, nil
}

func (f *Fake) StartVideo(ctx context.Context, prompt string, seed *Blob) (VideoOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VideoPrompts = append(f.VideoPrompts, prompt)
	if f.VideoStartErr != nil {
		return nil, f.VideoStartErr
	}
	statuses := f.VideoStatuses
	f.VideoStatuses = nil
	return &fakeVideoOp{statuses: statuses}, nil
}

type fakeVideoOp struct {
	mu       sync.Mutex
	statuses []*VideoStatus
}

func (v *fakeVideoOp) Poll(ctx context.Context) (*VideoStatus, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.statuses) == 0 {
		return &VideoStatus{Done: true, Video: &Blob{MIMEType: "video/mp4", Data: []byte("fake")}}, nil
	}
	next := v.statuses[0]
	if len(v.statuses) > 1 {
		v.statuses = v.statuses[1:]
	}
	return next, nil
}
