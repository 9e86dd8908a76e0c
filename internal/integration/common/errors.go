package common

import (
	"errors"
	"net/http"

	"github.com/vishkar/storycrafter/internal/entity"
	"github.com/vishkar/storycrafter/internal/pkg/metrics"
	pkgHTTP "github.com/vishkar/storycrafter/pkg/http"
)

// MapCompletionError translates transport-level failures into the domain
// error taxonomy. Transport failures, auth failures, and provider 5xx all
// count as "unavailable" (the provider could not serve); remaining non-2xx
// statuses count as "rejected" (the provider declined this request).
func MapCompletionError(backend string, err error) error {
	if err == nil {
		return nil
	}

	var netErr *pkgHTTP.NetworkError
	if errors.As(err, &netErr) {
		return &entity.BackendUnavailableError{Backend: backend, Timeout: netErr.Timeout, Err: err}
	}

	var httpErr *pkgHTTP.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusUnauthorized,
			httpErr.StatusCode == http.StatusForbidden,
			httpErr.StatusCode >= 500:
			return &entity.BackendUnavailableError{Backend: backend, Err: err}
		default:
			return &entity.BackendRejectedError{Backend: backend, StatusCode: httpErr.StatusCode, Message: httpErr.Message}
		}
	}

	return err
}

// ErrEmptyCompletion marks a 2xx response that carried no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// EmptyCompletionError classes an empty completion as unavailable, so it
// shares retry and fallback policy with transport failures.
func EmptyCompletionError(backend string) error {
	return &entity.BackendUnavailableError{Backend: backend, Err: ErrEmptyCompletion}
}

// RetryIfUnavailable is the retry predicate for completion calls. Rejected
// requests are not retried locally; the expansion fallback handles them.
func RetryIfUnavailable(err error) bool {
	var unavailable *entity.BackendUnavailableError
	return errors.As(err, &unavailable)
}

// Outcome maps a (mapped) completion error onto a metrics outcome label.
func Outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	var unavailable *entity.BackendUnavailableError
	if errors.As(err, &unavailable) {
		return metrics.OutcomeUnavailable
	}
	var rejected *entity.BackendRejectedError
	if errors.As(err, &rejected) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}
