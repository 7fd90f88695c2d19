package utils

import (
	"errors"
	"fmt"
)

// Error codes returned to client in the "code" field of an error response.
const (
	ErrorInternal       = 1000
	ErrorValidation     = 1001
	ErrorConflict       = 1002
	ErrorNotFound       = 1003
	ErrorAuthFail       = 1004
	ErrorForbidden      = 1005
	ErrorTokenAuthFail  = 1006
	ErrorTokenNotExists = 1007
)

// Kinds of failure every service reports. Callers test with errors.Is, the
// http layer maps each kind to a status code.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("authentication failed")
	ErrForbidden  = errors.New("forbidden")
	ErrInternal   = errors.New("internal error")
)

var errorKinds = []error{
	ErrValidation,
	ErrConflict,
	ErrNotFound,
	ErrAuth,
	ErrForbidden,
	ErrInternal,
}

// AppError carries a client facing message together with its kind.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// NewError creates an error of the given kind, kind must be one of the Err*
// sentinels above.
func NewError(kind error, format string, args ...interface{}) error {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the sentinel kind of err, anything not classified is
// ErrInternal.
func KindOf(err error) error {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// ClientMessage returns the message that is safe to show to the client.
// Internal errors never leak their details.
func ClientMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != ErrInternal {
		return appErr.Message
	}
	if KindOf(err) == ErrInternal {
		return "internal server error"
	}
	return err.Error()
}
