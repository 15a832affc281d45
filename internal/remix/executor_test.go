package remix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"remixcanvas/internal/llm"
	"remixcanvas/internal/workspace"
)

// stubImages serves each element's id as its pixel payload so tests can
// assert exactly which images reached the model.
type stubImages struct{}

func (stubImages) Fetch(_ context.Context, el workspace.Element) (*llm.Blob, error) {
	return &llm.Blob{MIMEType: "image/png", Data: []byte(el.ID)}, nil
}

func executorFixture() []workspace.Element {
	return []workspace.Element{
		{ID: "i1", Kind: workspace.ElementImage, Label: "hero"},
		{ID: "i2", Kind: workspace.ElementImage, Label: "detail"},
		{ID: "i3", Kind: workspace.ElementImage, Label: "texture"},
	}
}

func fourTasks(prompts ...string) []Task {
	tasks := make([]Task, len(prompts))
	for i, p := range prompts {
		tasks[i] = Task{ID: fmt.Sprintf("task-%d", i+1), Type: TaskTypeSocialTemplate, Prompt: p}
	}
	return tasks
}

func TestExecutePreservesSubmissionOrder(t *testing.T) {
	var calls atomic.Int32
	fake := &llm.Fake{
		ImageHook: func(ctx context.Context, parts []llm.Part) (*llm.ImageResult, error) {
			n := calls.Add(1)
			// Make an early task finish last: completion timing must not
			// leak into result ordering.
			if n == 1 {
				time.Sleep(50 * time.Millisecond)
			}
			prompt := parts[len(parts)-1].Text
			return &llm.ImageResult{Images: []llm.Blob{{MIMEType: "image/png", Data: []byte(prompt)}}}, nil
		},
	}
	e := &Executor{Client: fake, Images: stubImages{}}
	tasks := fourTasks("p0", "p1", "p2", "p3")
	results, err := e.Execute(context.Background(), tasks, executorFixture(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i, res := range results {
		if string(res.Image.Data) != tasks[i].Prompt {
			t.Fatalf("result %d carries %q, want %q", i, res.Image.Data, tasks[i].Prompt)
		}
	}
}

func TestExecuteMentionRestriction(t *testing.T) {
	fake := &llm.Fake{}
	brand := &BrandInfo{Logo: &workspace.Element{ID: "logo-el", Kind: workspace.ElementImage, Label: "logo"}}
	e := &Executor{Client: fake, Images: stubImages{}}
	_, err := e.Execute(context.Background(),
		fourTasks("Feature @hero on a gradient"),
		executorFixture(), brand)
	if err != nil {
		t.Fatal(err)
	}
	if len(fake.ImageRequests) != 1 {
		t.Fatalf("got %d requests, want 1", len(fake.ImageRequests))
	}
	var inline [][]byte
	var text string
	for _, p := range fake.ImageRequests[0] {
		if p.Inline != nil {
			inline = append(inline, p.Inline.Data)
		} else {
			text = p.Text
		}
	}
	// Brand logo first, then only the mentioned image, then the prompt.
	if len(inline) != 2 {
		t.Fatalf("got %d inline payloads, want logo + hero only", len(inline))
	}
	if !bytes.Equal(inline[0], []byte("logo-el")) || !bytes.Equal(inline[1], []byte("i1")) {
		t.Fatalf("inline payloads=%q, want [logo-el i1]", inline)
	}
	if !strings.Contains(text, "@hero") {
		t.Fatal("prompt must be passed literally")
	}
}

func TestExecuteNoMentionsPassesAllImages(t *testing.T) {
	fake := &llm.Fake{}
	e := &Executor{Client: fake, Images: stubImages{}}
	_, err := e.Execute(context.Background(), fourTasks("plain prompt"), executorFixture(), nil)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, p := range fake.ImageRequests[0] {
		if p.Inline != nil {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("got %d inline payloads, want all 3", count)
	}
}

func TestExecuteZeroImagesIsAssemblyError(t *testing.T) {
	fake := &llm.Fake{ImageResponses: []*llm.ImageResult{{Text: "prose but no pixels"}}}
	e := &Executor{Client: fake, Images: stubImages{}}
	_, err := e.Execute(context.Background(), fourTasks("p"), executorFixture(), nil)
	var aErr *AssemblyError
	if !errors.As(err, &aErr) {
		t.Fatalf("got %v, want AssemblyError", err)
	}
}

func TestExecuteSingleFailureAbortsBatch(t *testing.T) {
	var calls atomic.Int32
	fake := &llm.Fake{
		ImageHook: func(ctx context.Context, parts []llm.Part) (*llm.ImageResult, error) {
			if calls.Add(1) == 2 {
				return nil, errors.New("boom")
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return &llm.ImageResult{Images: []llm.Blob{{Data: []byte("x")}}}, nil
			}
		},
	}
	e := &Executor{Client: fake, Images: stubImages{}}
	start := time.Now()
	_, err := e.Execute(context.Background(), fourTasks("a", "b", "c", "d"), executorFixture(), nil)
	if err == nil {
		t.Fatal("batch must fail when one task fails")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("the triggering error must win over sibling cancellations, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("a failing task must cancel its siblings promptly")
	}
}

func TestExecuteSafetyBlockIsDistinct(t *testing.T) {
	fake := &llm.Fake{ImageErr: errors.New("violates Responsible AI practices")}
	e := &Executor{Client: fake, Images: stubImages{}}
	_, err := e.Execute(context.Background(), fourTasks("p"), executorFixture(), nil)
	var sErr *SafetyError
	if !errors.As(err, &sErr) {
		t.Fatalf("got %v, want SafetyError", err)
	}
}
