package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Run outcome errors
const (
	// ErrCodeStageFailed indicates a pipeline stage returned an error.
	ErrCodeStageFailed ErrorCode = "STAGE_FAILED"
	// ErrCodeCancelled indicates the run was cancelled by its caller.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeTimeout indicates the run lost the race against its timer.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StatusClientClosedRequest is the non-standard status used when the caller
// cancels before a response is produced.
const StatusClientClosedRequest = 499

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:     true,
	ErrCodeStageFailed: false,
	ErrCodeCancelled:   false,
	ErrCodeInternal:    false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
