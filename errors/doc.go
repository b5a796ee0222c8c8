// Package errors provides the unified error type used across stagekit.
// AppError carries a machine-readable code, an HTTP status mapping and a
// retryable flag so callers can tell a failed stage from a cancelled or
// timed-out run and decide on the follow-up.
package errors
