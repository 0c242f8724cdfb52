package postgrest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a PostgREST error response.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Hint       string `json:"hint,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("postgrest: %d %s: %s (%s)", e.StatusCode, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("postgrest: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsUnauthorized returns true for a rejected key.
func IsUnauthorized(err error) bool {
	var e *APIError
	return errors.As(err, &e) && (e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// IsTableMissing returns true when the target table does not exist.
// PostgREST reports this as 404 with code 42P01 or PGRST205.
func IsTableMissing(err error) bool {
	var e *APIError
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == "42P01" || e.Code == "PGRST205" || (e.StatusCode == http.StatusNotFound && e.Code == "unknown")
}

// IsConflict returns true for a duplicate key violation.
func IsConflict(err error) bool {
	var e *APIError
	return errors.As(err, &e) && (e.StatusCode == http.StatusConflict || e.Code == "23505")
}

// parseAPIError decodes a JSON error body, falling back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}
