package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already a MatchError, its code, category and metadata survive.
// Otherwise a new Internal error wraps the original.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var matchErr *Error
	if errors.As(err, &matchErr) {
		wrapped := &Error{
			code:      matchErr.code,
			category:  matchErr.category,
			message:   message,
			cause:     err,
			metadata:  matchErr.Metadata(),
			retryable: matchErr.retryable,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	// Map context errors onto the taxonomy
	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// AsMatchError attempts to extract a MatchError from an error chain.
// Returns nil if none is found.
func AsMatchError(err error) MatchError {
	var matchErr *Error
	if errors.As(err, &matchErr) {
		return matchErr
	}
	return nil
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	var matchErr *Error
	if errors.As(err, &matchErr) {
		return matchErr.code == code
	}
	return false
}
