package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Client input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeUnsupportedFormat indicates the upload could not be decoded as audio.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeNoSpeechDetected indicates the audio contained no recognizable speech.
	ErrCodeNoSpeechDetected ErrorCode = "NO_SPEECH_DETECTED"
)

// Configuration errors
const (
	// ErrCodeNotConfigured indicates a required dependency was never set up.
	ErrCodeNotConfigured ErrorCode = "NOT_CONFIGURED"
	// ErrCodeEndpointUnresolved indicates no inference endpoint name could be resolved.
	ErrCodeEndpointUnresolved ErrorCode = "ENDPOINT_UNRESOLVED"
)

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a backend is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeExternalService:    true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
