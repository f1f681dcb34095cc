package services

import "net/http"

// AIErrorCode classifies gateway failures for the caller. The codes
// are deliberately coarse: anything diagnostic stays in the server
// logs, never in the response body.
type AIErrorCode string

const (
	CodeUnauthenticated    AIErrorCode = "unauthenticated"
	CodeInvalidArgument    AIErrorCode = "invalid-argument"
	CodePermissionDenied   AIErrorCode = "permission-denied"
	CodeResourceExhausted  AIErrorCode = "resource-exhausted"
	CodeFailedPrecondition AIErrorCode = "failed-precondition"
	CodeInternal           AIErrorCode = "internal"
)

// AIError is the error type the orchestrator returns. Message is safe
// to show to the caller; the wrapped cause (if any) is for logs only.
type AIError struct {
	Code    AIErrorCode
	Message string
	cause   error
}

func (e *AIError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Unwrap exposes the internal cause for errors.Is/As in tests and
// logging. It is never serialized to the caller.
func (e *AIError) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error code to the status the API layer responds
// with.
func (e *AIError) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeResourceExhausted:
		return http.StatusTooManyRequests
	case CodeFailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func newAIError(code AIErrorCode, message string, cause error) *AIError {
	return &AIError{Code: code, Message: message, cause: cause}
}
