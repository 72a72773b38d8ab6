// Package errors provides structured errors for the matching engine.
//
// Every failure carries an ErrorCode identifying what went wrong and an
// ErrorCategory that drives propagation policy: construction-time failures
// (index build, corrupt index) are fatal and must keep the system from
// accepting traffic, while request-scoped failures (embedding a resume,
// extracting skills) fail only the request that hit them. Retryable() tells
// callers whether trying again can ever help; the engine itself never
// retries.
//
//	if err := idx.Load(path); err != nil {
//	    if errors.Is(err, errors.ErrCodeIndexCorrupt) {
//	        // rebuild from the catalog instead of serving a partial index
//	    }
//	}
package errors
