package rag

import "errors"

// Error taxonomy of the question answering pipeline. Callers classify with errors.Is.
var (
	// ErrIndexUnavailable means a corpus could not be loaded. A single missing
	// corpus only degrades retrieval; all three missing is reported to the operator.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrNoGroundedAnswer means no source produced a usable passage.
	ErrNoGroundedAnswer = errors.New("no grounded answer")

	// ErrSynthesisUnavailable means the completion model (or the request budget) failed.
	ErrSynthesisUnavailable = errors.New("synthesis unavailable")

	// ErrStorage means an unanswered question could not be persisted.
	ErrStorage = errors.New("unanswered question storage failed")
)
