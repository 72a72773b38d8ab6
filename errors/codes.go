package errors

// ErrorCategory classifies errors by their nature and retry semantics.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates temporary failures where retry may succeed.
	// Examples: embedding backend timeout, provider temporarily unavailable.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where retry will not help.
	// Examples: invalid input, posting not found, empty catalog.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryResource indicates quota or rate-limit exhaustion at a backend.
	CategoryResource ErrorCategory = "resource"

	// CategoryInternal indicates bugs or corrupted state.
	// Examples: index/catalog mismatch, malformed embedding output.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	switch c {
	case CategoryTransient, CategoryResource:
		return true
	default:
		return false
	}
}

// ErrorCode identifies specific failure types within categories.
type ErrorCode string

// Error codes for the matching engine.
const (
	// Transient errors
	ErrCodeTimeout     ErrorCode = "TIMEOUT"     // Operation timed out
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE" // Backend temporarily unavailable
	ErrCodeNetworkErr  ErrorCode = "NETWORK_ERR" // Network connectivity issue

	// Permanent errors
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"     // Posting or resource does not exist
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Malformed or empty input
	ErrCodeCanceled     ErrorCode = "CANCELED"      // Operation was canceled

	// Resource errors
	ErrCodeRateLimit ErrorCode = "RATE_LIMITED" // Backend rate limit exceeded

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL" // Unexpected internal error

	// Engine-specific errors
	ErrCodeEmbedding        ErrorCode = "EMBEDDING_FAILED"   // Embedding call failed or returned malformed output
	ErrCodeIndexBuild       ErrorCode = "INDEX_BUILD_FAILED" // Semantic index could not be built
	ErrCodeIndexCorrupt     ErrorCode = "INDEX_CORRUPT"      // Persisted index inconsistent with the catalog
	ErrCodeEmptyIndex       ErrorCode = "EMPTY_INDEX"        // Search attempted against an index with no entries
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"  // Skill extraction collaborator failed
	ErrCodeReportFailed     ErrorCode = "REPORT_FAILED"      // Report generation collaborator failed
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeTimeout, ErrCodeUnavailable, ErrCodeNetworkErr:
		return CategoryTransient

	case ErrCodeNotFound, ErrCodeInvalidInput, ErrCodeCanceled:
		return CategoryPermanent

	case ErrCodeRateLimit:
		return CategoryResource

	case ErrCodeInternal, ErrCodeIndexCorrupt, ErrCodeEmptyIndex:
		return CategoryInternal

	// Collaborator failures surface as request failures; a retry against
	// the same backend may succeed.
	case ErrCodeEmbedding, ErrCodeExtractionFailed, ErrCodeReportFailed:
		return CategoryTransient

	// A failed build is fatal until the catalog or backend changes.
	case ErrCodeIndexBuild:
		return CategoryPermanent

	default:
		return CategoryInternal
	}
}

// DefaultRetryable returns whether this error code is typically retryable.
func (c ErrorCode) DefaultRetryable() bool {
	return c.DefaultCategory().IsRetryable()
}

// codeDescriptions provides human-readable descriptions for error codes.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeTimeout:          "operation timed out",
	ErrCodeUnavailable:      "backend temporarily unavailable",
	ErrCodeNetworkErr:       "network connectivity error",
	ErrCodeNotFound:         "resource not found",
	ErrCodeInvalidInput:     "invalid input provided",
	ErrCodeCanceled:         "operation canceled",
	ErrCodeRateLimit:        "rate limit exceeded",
	ErrCodeInternal:         "internal error",
	ErrCodeEmbedding:        "embedding failed",
	ErrCodeIndexBuild:       "index build failed",
	ErrCodeIndexCorrupt:     "index inconsistent with catalog",
	ErrCodeEmptyIndex:       "semantic index has no entries",
	ErrCodeExtractionFailed: "skill extraction failed",
	ErrCodeReportFailed:     "report generation failed",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
