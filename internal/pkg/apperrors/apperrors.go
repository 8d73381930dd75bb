package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError is the error type returned by services and repositories for
// conditions the API maps to a specific HTTP status. Anything else is
// treated as an internal error.
type AppError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
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

const (
	CodeValidation     = "validation_error"
	CodeAuthentication = "authentication_error"
	CodeAuthorization  = "authorization_error"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeRateLimit      = "rate_limit_exceeded"
	CodeBusinessLogic  = "business_logic_error"
	CodePayment        = "payment_error"
	CodeInternal       = "internal_error"
)

func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Status: fiber.StatusUnprocessableEntity, Message: message}
}

func Authentication(message string) *AppError {
	return &AppError{Code: CodeAuthentication, Status: fiber.StatusUnauthorized, Message: message}
}

func Authorization(message string) *AppError {
	return &AppError{Code: CodeAuthorization, Status: fiber.StatusForbidden, Message: message}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: resource + " not found"}
}

func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Status: fiber.StatusConflict, Message: message}
}

func RateLimit(message string) *AppError {
	return &AppError{Code: CodeRateLimit, Status: fiber.StatusTooManyRequests, Message: message}
}

func BusinessLogic(message string) *AppError {
	return &AppError{Code: CodeBusinessLogic, Status: fiber.StatusBadRequest, Message: message}
}

func Payment(message string) *AppError {
	return &AppError{Code: CodePayment, Status: fiber.StatusBadRequest, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Status: fiber.StatusInternalServerError, Message: "internal server error", Err: err}
}

// Wrap adds context while keeping the original code and status.
func Wrap(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{Code: appErr.Code, Status: appErr.Status, Message: message, Err: err}
	}
	return &AppError{Code: CodeInternal, Status: fiber.StatusInternalServerError, Message: message, Err: err}
}

// Common domain errors.
var (
	ErrPhoneAlreadyExists = Conflict("phone number already registered")
	ErrEmailAlreadyExists = Conflict("email already registered")
	ErrInvalidCredentials = Authentication("invalid phone/email or password")
	ErrTokenExpired       = Authentication("token expired")
	ErrTokenRevoked       = Authentication("token revoked")
)

// As extracts an AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
