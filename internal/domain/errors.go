package domain

import "errors"

// Error taxonomy surfaced to the user. Components wrap these with %w so
// callers can classify failures with errors.Is.
var (
	// ErrStoreUnavailable marks a missing or malformed on-disk index.
	// Treated as a fatal configuration error: reported, never retried.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrRetrieval marks a failed similarity query. The user may resubmit.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration marks a failed hosted-model call (network, credential,
	// or provider error). The user may resubmit; nothing retries for them.
	ErrGeneration = errors.New("answer generation failed")
)
