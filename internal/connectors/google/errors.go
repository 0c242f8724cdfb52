package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// Sentinels for Google API status codes.
var (
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")
	ErrForbidden    = errors.New("google: forbidden (insufficient permissions)")
	ErrNotFound     = errors.New("google: resource not found")
	ErrRateLimited  = errors.New("google: rate limit exceeded")
	ErrGone         = errors.New("google: resource gone")
)

var statusSentinels = map[int]error{
	http.StatusUnauthorized:    ErrUnauthorized,
	http.StatusForbidden:       ErrForbidden,
	http.StatusNotFound:        ErrNotFound,
	http.StatusTooManyRequests: ErrRateLimited,
	http.StatusGone:            ErrGone,
}

// hasStatus reports whether err is the sentinel for code or a
// *googleapi.Error carrying code.
func hasStatus(err error, code int) bool {
	if errors.Is(err, statusSentinels[code]) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == code
}

// IsUnauthorized reports a 401.
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// IsForbidden reports a 403.
func IsForbidden(err error) bool { return hasStatus(err, http.StatusForbidden) }

// IsNotFound reports a 404.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsRateLimited reports a 429.
func IsRateLimited(err error) bool { return hasStatus(err, http.StatusTooManyRequests) }

// IsAuthFailure returns true if the error means the caller's credential was
// rejected or is missing, so the source cannot be reached.
func IsAuthFailure(err error) bool {
	return IsUnauthorized(err) || IsForbidden(err) ||
		errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrTokenRefreshFailed)
}

// RetryAfter returns the Retry-After seconds of a 429 response, or 0.
func RetryAfter(err error) int {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	n, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || n < 0 {
		return 0
	}
	return n
}

// WrapError prefixes a Google API error with its status sentinel so callers
// can match it with errors.Is. Other errors are returned unchanged.
func WrapError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	sentinel, ok := statusSentinels[gerr.Code]
	if !ok {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
