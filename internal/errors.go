package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeTransient    ErrorType = "TRANSIENT_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodePasswordMismatch ErrorCode = "PASSWORD_MISMATCH"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"

	ErrCodeDuplicateUser    ErrorCode = "DUPLICATE_USER"
	ErrCodeInvalidLogin     ErrorCode = "INVALID_LOGIN"
	ErrCodeAdminRequired    ErrorCode = "ADMIN_REQUIRED"
	ErrCodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	ErrCodeAccountNotActive ErrorCode = "ACCOUNT_NOT_ACTIVE"

	ErrCodeBookNotFound    ErrorCode = "BOOK_NOT_FOUND"
	ErrCodeNoCopiesLeft    ErrorCode = "NO_COPIES_AVAILABLE"
	ErrCodeAlreadyBorrowed ErrorCode = "ALREADY_BORROWED"
	ErrCodeLoanNotFound    ErrorCode = "LOAN_NOT_FOUND"
	ErrCodeBookAvailable   ErrorCode = "BOOK_FULLY_AVAILABLE"
	ErrCodeNotStudent      ErrorCode = "BORROWER_NOT_STUDENT"
	ErrCodeCopiesOnLoan    ErrorCode = "COPIES_ON_LOAN"

	ErrCodeInvalidToken  ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired  ErrorCode = "TOKEN_EXPIRED"
	ErrCodeStoreTimeout  ErrorCode = "STORE_TIMEOUT"
	ErrCodeStoreConflict ErrorCode = "STORE_CONFLICT"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// Retryable reports whether the caller may safely retry the failed operation.
func (e *AppError) Retryable() bool {
	return e.Type == ErrorTypeTransient
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewTransientError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeTransient,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

func NewStoreError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	// ErrInvalidCredentials covers unknown user, wrong password, wrong role and
	// inactive account; callers cannot tell which check failed.
	ErrInvalidCredentials = NewUnauthorizedError("invalid credentials or account not activated", ErrCodeInvalidLogin)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrAdminRequired      = NewForbiddenError("admin role required", ErrCodeAdminRequired)

	ErrDuplicateUser = NewConflictError("username or email already registered", ErrCodeDuplicateUser)
	ErrUserNotFound  = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrNotApproved   = NewForbiddenError("account has not been approved", ErrCodeAccountNotActive)

	ErrBookNotFound       = NewNotFoundError("book not found", ErrCodeBookNotFound)
	ErrNoCopiesAvailable  = NewConflictError("no copies available", ErrCodeNoCopiesLeft)
	ErrAlreadyBorrowed    = NewConflictError("book already borrowed by this user", ErrCodeAlreadyBorrowed)
	ErrLoanNotFound       = NewNotFoundError("borrowing not found or already returned", ErrCodeLoanNotFound)
	ErrBookFullyAvailable = NewValidationError("book is fully available, borrow it instead", ErrCodeBookAvailable)
	ErrBorrowerNotStudent = NewValidationError("borrower must be a student account", ErrCodeNotStudent)
	ErrCopiesBelowOnLoan  = NewValidationError("total_copies cannot be lower than the number of copies on loan", ErrCodeCopiesOnLoan)

	ErrStoreTimeout  = NewTransientError("store operation timed out", ErrCodeStoreTimeout)
	ErrStoreConflict = NewTransientError("store transaction conflict", ErrCodeStoreConflict)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
