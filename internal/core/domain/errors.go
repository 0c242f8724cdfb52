package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownSource indicates no adapter is registered for a source name.
	ErrUnknownSource = errors.New("unknown source")

	// Extraction Errors.

	// ErrSourceUnreachable indicates the source file or credential is absent.
	// The run stops before any persistence is attempted.
	ErrSourceUnreachable = errors.New("source unreachable")

	// ErrAuthRequired indicates a delegated-access token is missing.
	ErrAuthRequired = errors.New("authentication required")

	// ErrTokenRefreshFailed indicates token refresh operation failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Persistence Errors.

	// ErrRemoteNotConfigured indicates the remote store URL or key is absent.
	// This is an expected condition that selects local-only persistence.
	ErrRemoteNotConfigured = errors.New("remote store not configured")

	// ErrRemoteUnavailable indicates the remote store could not be reached.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrPartialWrite indicates the remote store accepted fewer rows than submitted.
	ErrPartialWrite = errors.New("remote store accepted a partial batch")

	// ErrMissingKey indicates an upsert row has no natural identifier.
	ErrMissingKey = errors.New("record has no key")
)
