package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Retry retries GenerateJSON and GenerateImages up to maxAttempts with
// exponential backoff starting at baseDelay. PermanentError stops retries
// immediately, as does context cancellation. StartVideo is not retried; the
// caller owns the long-running operation lifecycle.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.attempt(ctx, func() error {
		resp, err := r.next.GenerateJSON(ctx, prompt, input)
		if err == nil {
			out = resp
		}
		return err
	})
	return out, err
}

func (r *retrying) DescribeJSON(ctx context.Context, prompt string, inline Blob) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.attempt(ctx, func() error {
		resp, err := r.next.DescribeJSON(ctx, prompt, inline)
		if err == nil {
			out = resp
		}
		return err
	})
	return out, err
}

func (r *retrying) GenerateImages(ctx context.Context, parts []Part) (*ImageResult, error) {
	var out *ImageResult
	err := r.attempt(ctx, func() error {
		resp, err := r.next.GenerateImages(ctx, parts)
		if err == nil {
			out = resp
		}
		return err
	})
	return out, err
}

func (r *retrying) StartVideo(ctx context.Context, prompt string, seed *Blob) (VideoOperation, error) {
	return r.next.StartVideo(ctx, prompt, seed)
}

func (r *retrying) attempt(ctx context.Context, call func() error) error {
	var last error
	for i := 0; i < r.max; i++ {
		err := call()
		if err == nil {
			return nil
		}
		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return err
		}
		last = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		time.Sleep(r.base * time.Duration(1<<i))
	}
	return last
}
