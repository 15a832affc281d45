package remix

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"remixcanvas/internal/llm"
	"remixcanvas/internal/workspace"
)

// ImageSource fetches the pixel payload behind an image element's Src key.
type ImageSource interface {
	Fetch(ctx context.Context, el workspace.Element) (*llm.Blob, error)
}

// Executor runs the execution phase: one generation call per planned task,
// fanned out concurrently, results collected in submission order.
type Executor struct {
	Client llm.Client
	Images ImageSource
}

// TaskResult pairs a task with its generated image.
type TaskResult struct {
	Task  Task
	Image llm.Blob
	Text  string
}

// Execute runs every task concurrently and returns one result per task, index
// i of the output always corresponding to tasks[i] regardless of completion
// timing. A single task failure fails the whole batch; there is no
// partial-success return path. (A per-slot result alternative was considered
// and deliberately not built; the product semantics are all-or-nothing.)
func (e *Executor) Execute(ctx context.Context, tasks []Task, allElements []workspace.Element, brand *BrandInfo) ([]TaskResult, error) {
	if e == nil || e.Client == nil {
		return nil, fmt.Errorf("remix: executor has no model client")
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("remix: no tasks to execute")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]TaskResult, len(tasks))
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			res, err := e.runTask(ctx, task, allElements, brand)
			if err != nil {
				errs[i] = err
				cancel() // abort the siblings; the batch is already lost
				return
			}
			results[i] = *res
		}(i, task)
	}
	wg.Wait()

	// Prefer the error that triggered the abort over the cancellations it
	// caused in sibling tasks.
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
		if !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (e *Executor) runTask(ctx context.Context, task Task, allElements []workspace.Element, brand *BrandInfo) (*TaskResult, error) {
	parts, err := e.buildParts(ctx, task, allElements, brand)
	if err != nil {
		return nil, err
	}
	res, err := e.Client.GenerateImages(ctx, parts)
	if err != nil {
		classified := ClassifyModelError(err)
		switch classified.(type) {
		case *SafetyError, *RateLimitError:
			return nil, classified
		}
		return nil, &AssemblyError{TaskID: task.ID, Err: err}
	}
	if len(res.Images) == 0 {
		return nil, &AssemblyError{TaskID: task.ID}
	}
	return &TaskResult{Task: task, Image: res.Images[0], Text: res.Text}, nil
}

// buildParts assembles the multimodal request: optional brand logo first, then
// the mention-scoped image subset, then the literal task prompt.
func (e *Executor) buildParts(ctx context.Context, task Task, allElements []workspace.Element, brand *BrandInfo) ([]llm.Part, error) {
	var parts []llm.Part
	if brand != nil && brand.Logo != nil {
		blob, err := e.fetch(ctx, *brand.Logo)
		if err != nil {
			return nil, fmt.Errorf("remix: fetch brand logo: %w", err)
		}
		if blob != nil {
			parts = append(parts, llm.ImagePart(blob.MIMEType, blob.Data))
		}
	}
	for _, img := range ScopeImages(task.Prompt, allElements) {
		blob, err := e.fetch(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("remix: fetch image %s: %w", img.ID, err)
		}
		if blob != nil {
			parts = append(parts, llm.ImagePart(blob.MIMEType, blob.Data))
		}
	}
	parts = append(parts, llm.TextPart(task.Prompt))
	return parts, nil
}

func (e *Executor) fetch(ctx context.Context, el workspace.Element) (*llm.Blob, error) {
	if e.Images == nil {
		return nil, fmt.Errorf("no image source configured")
	}
	return e.Images.Fetch(ctx, el)
}
