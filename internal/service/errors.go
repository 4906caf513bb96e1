package service

import "errors"

// Failure categories the pipeline distinguishes. Callers branch with
// errors.Is; everything else carries wrapped context (case id, stage).
var (
	// ErrAccessDenied means the model backend rejected our credentials or
	// permissions. Not retryable; surfaced with remediation guidance.
	ErrAccessDenied = errors.New("model backend denied access")

	// ErrRetrievalUnavailable means the vector index or document store could
	// not serve the request. Retryable by the caller.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrGenerationFailed covers any other completion-backend failure.
	ErrGenerationFailed = errors.New("generation failed")
)

// AccessDeniedGuidance is the operator remediation hint attached to
// access-denied responses.
const AccessDeniedGuidance = "verify the configured API key and that it has access to the chat and embedding models; see your model provider's IAM / API key documentation"
