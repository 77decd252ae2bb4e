package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by every layer of the storefront.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("authentication required")
	ErrInvalidPromoCode = errors.New("invalid promo code")
	ErrConflict         = errors.New("conflict")
	ErrInternal         = errors.New("internal error")
	ErrServiceUnavail   = errors.New("service unavailable")
)

// Kind describes how a class of failure is reported to API callers.
type Kind struct {
	Code   string
	Status int
	// Detailed kinds may echo the wrapped error text to the caller. The rest
	// only ever show the sentinel text.
	Detailed bool

	sentinel error
}

var kinds = []Kind{
	{Code: "NOT_FOUND", Status: http.StatusNotFound, sentinel: ErrNotFound},
	{Code: "INVALID_INPUT", Status: http.StatusBadRequest, Detailed: true, sentinel: ErrInvalidInput},
	{Code: "AUTH_REQUIRED", Status: http.StatusUnauthorized, sentinel: ErrUnauthorized},
	{Code: "INVALID_PROMO_CODE", Status: http.StatusUnprocessableEntity, Detailed: true, sentinel: ErrInvalidPromoCode},
	{Code: "CONFLICT", Status: http.StatusConflict, Detailed: true, sentinel: ErrConflict},
	{Code: "SERVICE_UNAVAILABLE", Status: http.StatusServiceUnavailable, sentinel: ErrServiceUnavail},
}

var internalKind = Kind{Code: "INTERNAL_ERROR", Status: http.StatusInternalServerError, sentinel: ErrInternal}

// Message returns the text a caller may see for err under this kind.
func (k Kind) Message(err error) string {
	if k.Detailed {
		return err.Error()
	}
	if k.Status == http.StatusInternalServerError {
		return "an internal error occurred"
	}
	return k.sentinel.Error()
}

// KindOf finds the kind of the first sentinel err wraps. Unknown errors are
// internal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k
		}
	}
	return internalKind
}

func kindFor(sentinel error) Kind {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return k
		}
	}
	return internalKind
}

// AppError is a structured error carrying a machine code, a user-facing
// message and the HTTP status it maps to.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(sentinel error, message string) *AppError {
	k := kindFor(sentinel)
	return &AppError{Code: k.Code, Message: message, Status: k.Status, Err: sentinel}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return newAppError(ErrNotFound, fmt.Sprintf("%s with id %s not found", resource, id))
}

// InvalidInput creates a 400 error for malformed caller input.
func InvalidInput(message string) *AppError {
	return newAppError(ErrInvalidInput, message)
}

// AuthRequired creates a 401 error asking the caller to sign in first.
func AuthRequired(message string) *AppError {
	return newAppError(ErrUnauthorized, message)
}

// InvalidPromoCode creates a 422 error for a rejected promo code.
func InvalidPromoCode(message string) *AppError {
	return newAppError(ErrInvalidPromoCode, message)
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return newAppError(ErrConflict, message)
}

// Unavailable creates a 503 error for an unreachable dependency.
func Unavailable(message string) *AppError {
	return newAppError(ErrServiceUnavail, message)
}

// Internal creates a 500 error around cause.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    internalKind.Code,
		Message: internalKind.Message(cause),
		Status:  internalKind.Status,
		Err:     cause,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return KindOf(err).Status
}
