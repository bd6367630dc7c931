package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorCode string

const (
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrForbidden          ErrorCode = "FORBIDDEN"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrCreateFailed       ErrorCode = "CREATE_FAILED"

	ErrConflict             ErrorCode = "SLOT_CONFLICT"
	ErrRateLimited          ErrorCode = "RATE_LIMITED"
	ErrRateLimitUnavailable ErrorCode = "RATE_LIMIT_UNAVAILABLE"
	ErrAuthTimeout          ErrorCode = "AUTH_TIMEOUT"
	ErrAvailabilityTimeout  ErrorCode = "AVAILABILITY_TIMEOUT"
	ErrCreationTimeout      ErrorCode = "CREATION_TIMEOUT"
	ErrProviderUnavailable  ErrorCode = "PROVIDER_UNAVAILABLE"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Stage   string    `json:"stage,omitempty"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Stage != "" {
		msg = fmt.Sprintf("[%s] %s", e.Stage, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// WithStage tags the error with the pipeline stage it was raised in.
func (e *AppError) WithStage(stage string) *AppError {
	e.Stage = stage
	return e
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an *AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func New(message string) error { return stderrors.New(message) }

func Is(err, target error) bool { return stderrors.Is(err, target) }
