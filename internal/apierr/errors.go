package apierr

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/onnwee/optimize-kit/backend/internal/logger"
)

// ErrorCode identifies a failure kind. It is used for logs and metric labels
// and is never part of the response body.
type ErrorCode string

const (
	// RATE_LIMIT_ - Rate limiting errors
	ErrRateLimitGlobal ErrorCode = "RATE_LIMIT_GLOBAL"
	ErrRateLimitClient ErrorCode = "RATE_LIMIT_CLIENT"

	// REQUEST_ - Request shape errors
	ErrMethodNotAllowed ErrorCode = "REQUEST_METHOD_NOT_ALLOWED"
	ErrPayloadTooLarge  ErrorCode = "REQUEST_PAYLOAD_TOO_LARGE"
	ErrNotFound         ErrorCode = "REQUEST_NOT_FOUND"

	// VALIDATION_ - Request validation errors
	ErrValidationBody    ErrorCode = "VALIDATION_BODY"
	ErrValidationQuery   ErrorCode = "VALIDATION_QUERY"
	ErrValidationHeaders ErrorCode = "VALIDATION_HEADERS"
	ErrValidationFailed  ErrorCode = "VALIDATION_FAILED"

	// SYSTEM_ - System and server errors
	ErrSystemInternal ErrorCode = "SYSTEM_INTERNAL"
	ErrSystemTimeout  ErrorCode = "SYSTEM_TIMEOUT"
	ErrBadRequest     ErrorCode = "REQUEST_BAD"
)

// Error is a client-facing API error. It serializes as a flat object whose
// "error" member is the message, followed by any extra fields:
//
//	{"error": "Method not allowed", "allowed": ["GET"]}
type Error struct {
	Code    ErrorCode
	Message string
	Fields  map[string]any
	status  int
}

// New creates a new API error
func New(code ErrorCode, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		status:  status,
	}
}

// WithField adds an extra member to the serialized body. "error" is reserved.
func (e *Error) WithField(key string, value any) *Error {
	if key == "error" {
		return e
	}
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Status returns the HTTP status code
func (e *Error) Status() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

// MarshalJSON flattens Message and Fields into one object.
func (e *Error) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		body[k] = v
	}
	body["error"] = e.Message
	return json.Marshal(body)
}

// WriteError writes the error as a JSON response.
func WriteError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	_ = json.NewEncoder(w).Encode(err)
}

// WriteErrorWithContext writes the error and logs it with the request ID
// carried by the request context.
func WriteErrorWithContext(w http.ResponseWriter, r *http.Request, err *Error) {
	logger.DebugContext(r.Context(), "request rejected",
		"code", string(err.Code),
		"status", err.Status(),
		"method", r.Method,
		"path", r.URL.Path,
	)
	WriteError(w, err)
}

// RateLimited creates a per-client rate limit error with the configured message.
func RateLimited(message string) *Error {
	if message == "" {
		message = "Too many requests, please try again later."
	}
	return New(ErrRateLimitClient, message, http.StatusTooManyRequests)
}

// RateLimitGlobal creates a global rate limit error
func RateLimitGlobal() *Error {
	return New(ErrRateLimitGlobal, "Too many requests, please try again later.", http.StatusTooManyRequests)
}

// MethodNotAllowed lists the methods the route accepts.
func MethodNotAllowed(allowed []string) *Error {
	return New(ErrMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed).
		WithField("allowed", allowed)
}

// PayloadTooLarge reports the configured maximum body size.
func PayloadTooLarge(maxSize int64) *Error {
	return New(ErrPayloadTooLarge, "Payload too large", http.StatusRequestEntityTooLarge).
		WithField("maxSize", strconv.FormatInt(maxSize, 10)+" bytes")
}

// InvalidBody creates an invalid request body error
func InvalidBody() *Error {
	return New(ErrValidationBody, "Invalid request body", http.StatusBadRequest)
}

// InvalidQuery creates an invalid query parameters error
func InvalidQuery() *Error {
	return New(ErrValidationQuery, "Invalid query parameters", http.StatusBadRequest)
}

// InvalidHeaders creates an invalid headers error
func InvalidHeaders() *Error {
	return New(ErrValidationHeaders, "Invalid headers", http.StatusBadRequest)
}

// ValidationFailed is returned when a validator itself fails.
func ValidationFailed() *Error {
	return New(ErrValidationFailed, "Validation error", http.StatusBadRequest)
}

// BadRequest creates a generic client error with a custom message.
func BadRequest(message string) *Error {
	if message == "" {
		message = "Bad request"
	}
	return New(ErrBadRequest, message, http.StatusBadRequest)
}

// NotFound creates a 404 for a missing resource.
func NotFound(message string) *Error {
	if message == "" {
		message = "Not found"
	}
	return New(ErrNotFound, message, http.StatusNotFound)
}

// Timeout creates a request timeout error. detail becomes the "message" member.
func Timeout(detail string) *Error {
	e := New(ErrSystemTimeout, "Request timeout", http.StatusRequestTimeout)
	if detail != "" {
		e.WithField("message", detail)
	}
	return e
}

// Internal creates an internal server error
func Internal() *Error {
	return New(ErrSystemInternal, "Internal server error", http.StatusInternalServerError)
}
