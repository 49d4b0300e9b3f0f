package github

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates the requested resource does not exist on the remote
// side (missing user, missing README). Callers that can tolerate absence
// recover it as an empty value; callers that require existence surface it.
var ErrNotFound = errors.New("resource not found")

// RateLimitedError indicates the API quota is exhausted. ResetAt is the
// instant the quota recovers. Requests are never retried automatically;
// callers defer to the Gate's countdown instead.
type RateLimitedError struct {
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// RemoteError is any other non-success outcome from the API: the message is
// taken from the error response body when parseable, otherwise a generic
// transport description.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote error: %s", e.Message)
}

// IsRateLimited reports whether err is (or wraps) a RateLimitedError.
func IsRateLimited(err error) bool {
	var rle *RateLimitedError
	return errors.As(err, &rle)
}
