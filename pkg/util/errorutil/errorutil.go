package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Body is the JSON payload written for every failed request.
func (e *DomainError) Body() map[string]string {
	return map[string]string{"error": e.Code}
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidationError(code, message string) *DomainError {
	return NewDomainError(code, message, http.StatusBadRequest)
}

func NewUnauthorized(code, message string) *DomainError {
	return NewDomainError(code, message, http.StatusUnauthorized)
}

func NewNotFound(resource string) *DomainError {
	return NewDomainError("not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewConflict(code, message string) *DomainError {
	return NewDomainError(code, message, http.StatusConflict)
}

func NewRateLimited() *DomainError {
	return NewDomainError("rate_limited", "too many requests", http.StatusTooManyRequests)
}

func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:       "internal_error",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Unknown errors are
// treated as internal faults.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err)
}

// FromStatus maps a bare HTTP status raised outside the domain (router misses,
// oversized bodies) onto the same taxonomy.
func FromStatus(status int, cause error) *DomainError {
	switch {
	case status == http.StatusNotFound:
		return NewNotFound("route")
	case status == http.StatusUnauthorized:
		return NewUnauthorized("unauthorized", "unauthorized")
	case status == http.StatusTooManyRequests:
		return NewRateLimited()
	case status >= 400 && status < 500:
		code := "bad_request"
		if status == http.StatusMethodNotAllowed {
			code = "method_not_allowed"
		}
		return &DomainError{Code: code, Message: http.StatusText(status), HTTPStatus: status, Err: cause}
	default:
		return NewInternalError(cause)
	}
}
