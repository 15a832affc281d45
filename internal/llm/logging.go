package llm

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Logging logs one line per model call with size and latency.
func Logging() Middleware {
	return func(next Client) Client {
		return &logged{next: next}
	}
}

type logged struct {
	next Client
}

func (l *logged) Name() string { return l.next.Name() }
func (l *logged) Close() error { return l.next.Close() }

func (l *logged) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	start := time.Now()
	resp, err := l.next.GenerateJSON(ctx, prompt, input)
	if err != nil {
		log.Printf("llm %s json error after %s: %v", l.next.Name(), time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}
	log.Printf("llm %s json: prompt=%dB response=%dB in %s", l.next.Name(), len(prompt), len(resp), time.Since(start).Round(time.Millisecond))
	return resp, nil
}

func (l *logged) DescribeJSON(ctx context.Context, prompt string, inline Blob) (json.RawMessage, error) {
	start := time.Now()
	resp, err := l.next.DescribeJSON(ctx, prompt, inline)
	if err != nil {
		log.Printf("llm %s describe error after %s: %v", l.next.Name(), time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}
	log.Printf("llm %s describe: inline=%dB response=%dB in %s", l.next.Name(), len(inline.Data), len(resp), time.Since(start).Round(time.Millisecond))
	return resp, nil
}

func (l *logged) GenerateImages(ctx context.Context, parts []Part) (*ImageResult, error) {
	start := time.Now()
	resp, err := l.next.GenerateImages(ctx, parts)
	if err != nil {
		log.Printf("llm %s image error after %s: %v", l.next.Name(), time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}
	log.Printf("llm %s image: parts=%d images=%d in %s", l.next.Name(), len(parts), len(resp.Images), time.Since(start).Round(time.Millisecond))
	return resp, nil
}

func (l *logged) StartVideo(ctx context.Context, prompt string, seed *Blob) (VideoOperation, error) {
	op, err := l.next.StartVideo(ctx, prompt, seed)
	if err != nil {
		log.Printf("llm %s video start error: %v", l.next.Name(), err)
		return nil, err
	}
	log.Printf("llm %s video started: prompt=%dB seeded=%t", l.next.Name(), len(prompt), seed != nil)
	return op, nil
}
