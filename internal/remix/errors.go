package remix

import (
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

var (
	// ErrNotRemixBoard is returned when the target exists but cannot host a
	// remix.
	ErrNotRemixBoard = errors.New("remix: target board is not a remix board")

	// ErrEmptyContext rejects starting a remix with no inbound contribution.
	ErrEmptyContext = errors.New("remix: connect at least one board before remixing")

	// ErrBoardBusy rejects an overlapping remix of the same board. Requests
	// are rejected, not queued.
	ErrBoardBusy = errors.New("remix: board is busy with another generation")
)

// PlannerError means the planning phase produced nothing usable: empty text,
// malformed JSON, or zero tasks of the expected type.
type PlannerError struct {
	Reason string
	Err    error
}

func (e *PlannerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remix: planner failed (%s): %v — try a different prompt", e.Reason, e.Err)
	}
	return fmt.Sprintf("remix: planner failed (%s) — try a different prompt", e.Reason)
}
func (e *PlannerError) Unwrap() error { return e.Err }

// AssemblyError means an execution-phase task returned zero images.
type AssemblyError struct {
	TaskID string
	Err    error
}

func (e *AssemblyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remix: task %s produced no image: %v", e.TaskID, e.Err)
	}
	return fmt.Sprintf("remix: task %s produced no image", e.TaskID)
}
func (e *AssemblyError) Unwrap() error { return e.Err }

// SafetyError is a model-issued safety rejection. Not transient; retrying the
// same request will be rejected again.
type SafetyError struct {
	Err error
}

func (e *SafetyError) Error() string {
	return "remix: the request was declined by the model's safety policy; adjust the prompt or source images"
}
func (e *SafetyError) Unwrap() error { return e.Err }

// RateLimitError means the model service is throttling; wait and retry.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return "remix: the model is rate limited right now; wait a moment and retry"
}
func (e *RateLimitError) Unwrap() error { return e.Err }

// ConfigError means required external credentials are absent. Checked eagerly
// before any network call.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("remix: missing required configuration: %s", e.Missing)
}

var safetyPhrases = []string{
	"safety",
	"responsible ai",
	"blocked",
	"prohibited content",
}

var rateLimitPhrases = []string{
	"rate limit",
	"resource_exhausted",
	"quota",
	"429",
}

// ClassifyModelError maps a raw model-service failure onto the error
// taxonomy. Structured codes are consulted first; substring matching is the
// last-resort fallback for services that only surface prose.
func ClassifyModelError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return &RateLimitError{Err: err}
		case 400:
			if containsAny(strings.ToLower(apiErr.Message), safetyPhrases) {
				return &SafetyError{Err: err}
			}
		}
	}
	msg := strings.ToLower(err.Error())
	if containsAny(msg, safetyPhrases) {
		return &SafetyError{Err: err}
	}
	if containsAny(msg, rateLimitPhrases) {
		return &RateLimitError{Err: err}
	}
	return err
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
