package llm

import (
	"context"
	"encoding/json"
	"time"
)

// tokenBucket throttles to at most rps requests per second with an optional
// burst capacity. A nil bucket never blocks.
type tokenBucket struct {
	tokens chan struct{}
	stopCh chan struct{}
}

func newTokenBucket(rps float64, burst int) *tokenBucket {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	b := &tokenBucket{
		tokens: make(chan struct{}, burst),
		stopCh: make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		b.tokens <- struct{}{}
	}
	period := time.Duration(float64(time.Second) / rps)
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case b.tokens <- struct{}{}:
				default:
					// bucket full
				}
			case <-b.stopCh:
				return
			}
		}
	}()
	return b
}

func (b *tokenBucket) acquire(ctx context.Context) error {
	if b == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stopCh:
		return context.Canceled
	case <-b.tokens:
		return nil
	}
}

func (b *tokenBucket) stop() {
	if b == nil {
		return
	}
	close(b.stopCh)
}

// RateLimit throttles every outbound model call through one shared bucket.
func RateLimit(rps float64, burst int) Middleware {
	bucket := newTokenBucket(rps, burst)
	return func(next Client) Client {
		return &limited{next: next, bucket: bucket}
	}
}

type limited struct {
	next   Client
	bucket *tokenBucket
}

func (l *limited) Name() string { return l.next.Name() }
func (l *limited) Close() error {
	l.bucket.stop()
	return l.next.Close()
}

func (l *limited) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if err := l.bucket.acquire(ctx); err != nil {
		return nil, err
	}
	return l.next.GenerateJSON(ctx, prompt, input)
}

func (l *limited) DescribeJSON(ctx context.Context, prompt string, inline Blob) (json.RawMessage, error) {
	if err := l.bucket.acquire(ctx); err != nil {
		return nil, err
	}
	return l.next.DescribeJSON(ctx, prompt, inline)
}

func (l *limited) GenerateImages(ctx context.Context, parts []Part) (*ImageResult, error) {
	if err := l.bucket.acquire(ctx); err != nil {
		return nil, err
	}
	return l.next.GenerateImages(ctx, parts)
}

func (l *limited) StartVideo(ctx context.Context, prompt string, seed *Blob) (VideoOperation, error) {
	if err := l.bucket.acquire(ctx); err != nil {
		return nil, err
	}
	return l.next.StartVideo(ctx, prompt, seed)
}
