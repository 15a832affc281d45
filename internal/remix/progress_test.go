package remix

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"remixcanvas/internal/llm"
)

func startOp(t *testing.T, statuses ...*llm.VideoStatus) llm.VideoOperation {
	t.Helper()
	fake := &llm.Fake{VideoStatuses: statuses}
	op, err := fake.StartVideo(context.Background(), "prompt", nil)
	if err != nil {
		t.Fatal(err)
	}
	return op
}

func TestPollerRotatesMessagesInOrder(t *testing.T) {
	op := startOp(t,
		&llm.VideoStatus{}, &llm.VideoStatus{}, &llm.VideoStatus{},
		&llm.VideoStatus{Done: true, Video: &llm.Blob{MIMEType: "video/mp4", Data: []byte("v")}},
	)
	var seen []string
	p := &Poller{Interval: time.Millisecond, Progress: func(m string) { seen = append(seen, m) }}
	blob, err := p.Wait(context.Background(), op)
	if err != nil {
		t.Fatal(err)
	}
	if blob == nil || string(blob.Data) != "v" {
		t.Fatalf("blob=%+v, want the operation's payload", blob)
	}
	want := []string{"Starting generation...", pollMessages[0], pollMessages[1], pollMessages[2], "Done."}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("messages=%v, want %v", seen, want)
	}
}

func TestPollerMessagesCycle(t *testing.T) {
	statuses := make([]*llm.VideoStatus, len(pollMessages)+1)
	for i := range statuses {
		statuses[i] = &llm.VideoStatus{}
	}
	statuses = append(statuses, &llm.VideoStatus{Done: true, Video: &llm.Blob{Data: []byte("v")}})
	op := startOp(t, statuses...)

	var seen []string
	p := &Poller{Interval: time.Millisecond, Progress: func(m string) { seen = append(seen, m) }}
	if _, err := p.Wait(context.Background(), op); err != nil {
		t.Fatal(err)
	}
	// After exhausting the rotation the messages wrap around.
	if seen[1] != pollMessages[0] || seen[1+len(pollMessages)] != pollMessages[0] {
		t.Fatalf("rotation did not wrap: %v", seen)
	}
}

func TestPollerDoneWithErrorIsClassified(t *testing.T) {
	op := startOp(t, &llm.VideoStatus{Done: true, Error: "quota exceeded for this project"})
	p := &Poller{Interval: time.Millisecond}
	_, err := p.Wait(context.Background(), op)
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("got %v, want RateLimitError", err)
	}
}

func TestPollerDoneWithoutVideoIsAssemblyError(t *testing.T) {
	op := startOp(t, &llm.VideoStatus{Done: true})
	p := &Poller{Interval: time.Millisecond}
	_, err := p.Wait(context.Background(), op)
	var aErr *AssemblyError
	if !errors.As(err, &aErr) {
		t.Fatalf("got %v, want AssemblyError", err)
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	op := startOp(t, &llm.VideoStatus{}) // never finishes
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	p := &Poller{Interval: time.Hour}
	go func() {
		_, err := p.Wait(ctx, op)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancellation must end the wait without another tick")
	}
}
