package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// WithMessage keeps the code but replaces the message, for cases where
// the caller has a more specific description than the sentinel.
func WithMessage(domainErr *DomainError, message string) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: message,
	}
}

// Error codes. Every error the API surfaces carries exactly one of these.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeUpstream       = "UPSTREAM_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
)

// Predefined domain errors
var (
	// Validation errors
	ErrInvalidInput     = NewDomainError(CodeValidation, "invalid input")
	ErrPasswordMismatch = NewDomainError(CodeValidation, "new password and confirmation do not match")
	ErrMissingFile      = NewDomainError(CodeValidation, "required file is missing")

	// Authentication errors. All token failures share one message so a
	// caller cannot distinguish a bad token from an expired or absent one.
	ErrUnauthorized        = NewDomainError(CodeAuthentication, "unauthorized")
	ErrInvalidCredentials  = NewDomainError(CodeAuthentication, "invalid credentials")
	ErrInvalidToken        = NewDomainError(CodeAuthentication, "invalid or expired token")
	ErrInvalidRefreshToken = NewDomainError(CodeAuthentication, "invalid refresh token")
	ErrIncorrectPassword   = NewDomainError(CodeAuthentication, "current password is incorrect")

	// Authorization errors
	ErrNotOwner = NewDomainError(CodeAuthorization, "caller does not own this resource")

	// Not found errors
	ErrUserNotFound     = NewDomainError(CodeNotFound, "user not found")
	ErrVideoNotFound    = NewDomainError(CodeNotFound, "video not found")
	ErrCommentNotFound  = NewDomainError(CodeNotFound, "comment not found")
	ErrTweetNotFound    = NewDomainError(CodeNotFound, "tweet not found")
	ErrPlaylistNotFound = NewDomainError(CodeNotFound, "playlist not found")

	// Conflict errors
	ErrUserExists = NewDomainError(CodeConflict, "username or email already exists")

	// Upstream errors
	ErrMediaUpload = NewDomainError(CodeUpstream, "media storage rejected the upload")
	ErrMediaDelete = NewDomainError(CodeUpstream, "media storage rejected the delete")

	// System errors
	ErrInternal           = NewDomainError(CodeInternal, "internal server error")
	ErrServiceUnavailable = NewDomainError(CodeUnavailable, "service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError
}

// domainErrorToHTTPStatus maps error codes to HTTP status codes
func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeAuthentication:
		return http.StatusUnauthorized
	case CodeAuthorization:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
