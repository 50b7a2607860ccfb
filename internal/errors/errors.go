package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUsernameTaken is returned when registering an already used username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	// The same error covers both causes so callers cannot enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionCreate is returned when a session row could not be persisted.
	ErrSessionCreate = errors.New("session creation failed")
	// ErrFeedNotFound is returned when a feed is not found.
	ErrFeedNotFound = errors.New("feed not found")
	// ErrInvalidFeed is returned when feed form data fails validation.
	ErrInvalidFeed = errors.New("invalid feed data")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, "Username already exists", "USERNAME_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Invalid username or password", "INVALID_CREDENTIALS")
	case errors.Is(err, ErrSessionCreate):
		return NewHTTPError(http.StatusInternalServerError, "could not start a session, please retry", "SESSION_CREATE_FAILED")
	case errors.Is(err, ErrFeedNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "FEED_NOT_FOUND")
	case errors.Is(err, ErrInvalidFeed):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_FEED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
