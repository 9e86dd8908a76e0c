package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Input errors
	ErrEmptyTranscript = errors.New("transcript contains no messages")
	ErrInvalidRole     = errors.New("invalid message role")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// PayloadShape declares the top-level structure a caller expects a backend
// response to contain.
type PayloadShape string

const (
	ShapeEpicList  PayloadShape = "epic_list"
	ShapeStoryList PayloadShape = "story_list"
	ShapeEpic      PayloadShape = "epic"
	ShapeStory     PayloadShape = "story"
)

// List reports whether the shape's outer delimiter is a JSON array.
func (s PayloadShape) List() bool {
	return s == ShapeEpicList || s == ShapeStoryList
}

// BackendUnavailableError means a generative backend could not be reached:
// network failure, timeout, or rejected credentials. Retryable by the
// caller with backoff; triggers fallback substitution during expansion.
type BackendUnavailableError struct {
	Backend string
	Timeout bool
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("backend %s unavailable: timeout: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("backend %s unavailable: %v", e.Backend, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// BackendRejectedError means the backend was reachable but declined the
// request (rate limit, content policy, malformed request). Retryable
// after a delay; triggers fallback substitution during expansion.
type BackendRejectedError struct {
	Backend    string
	StatusCode int
	Message    string
}

func (e *BackendRejectedError) Error() string {
	return fmt.Sprintf("backend %s rejected request (status %d): %s", e.Backend, e.StatusCode, e.Message)
}

// UnparsableResponseError means the backend responded but no structured
// payload of the expected shape could be recovered. RawExcerpt is bounded
// and safe to log.
type UnparsableResponseError struct {
	ExpectedShape PayloadShape
	RawExcerpt    string
}

func (e *UnparsableResponseError) Error() string {
	return fmt.Sprintf("no %s payload recoverable from backend response: %q", e.ExpectedShape, e.RawExcerpt)
}

// EmptyBatchError means a payload was parsed but every record in it failed
// minimum-field validation. This is a generation failure, not an empty
// success.
type EmptyBatchError struct {
	ExpectedShape PayloadShape
	Dropped       int
}

func (e *EmptyBatchError) Error() string {
	return fmt.Sprintf("all %d parsed %s records failed minimum-field validation", e.Dropped, e.ExpectedShape)
}

// GenerationFailedError wraps a backend or parse failure surfaced from the
// planning, expansion, or regeneration stage. Always carries the cause.
type GenerationFailedError struct {
	Stage string
	Err   error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Stage, e.Err)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }
