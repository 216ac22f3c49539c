package callable

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/meinhoongagan/doctor-appointment/identity"
	"github.com/meinhoongagan/doctor-appointment/store"
)

// Code is the canonical error code returned to callable clients.
type Code string

const (
	Unauthenticated  Code = "unauthenticated"
	PermissionDenied Code = "permission-denied"
	InvalidArgument  Code = "invalid-argument"
	NotFound         Code = "not-found"
	AlreadyExists    Code = "already-exists"
	Internal         Code = "internal"
)

// Status is the wire form, e.g. PERMISSION_DENIED.
func (c Code) Status() string {
	return strings.ToUpper(strings.ReplaceAll(string(c), "-", "_"))
}

func (c Code) HTTPStatus() int {
	switch c {
	case Unauthenticated:
		return http.StatusUnauthorized
	case PermissionDenied:
		return http.StatusForbidden
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case AlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Code    Code
	Message string
}

func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a callable error with the given code.
func IsCode(err error, code Code) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == code
}

// FromError maps provider errors to callable errors. Anything unrecognised
// becomes INTERNAL with a generic message.
func FromError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, identity.ErrUserNotFound):
		return NewError(NotFound, "%s", err.Error())
	case errors.Is(err, identity.ErrEmailExists):
		return NewError(AlreadyExists, "%s", err.Error())
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrInvalidPassword),
		errors.Is(err, identity.ErrReservedClaim):
		return NewError(InvalidArgument, "%s", err.Error())
	case errors.Is(err, identity.ErrInvalidCredentials):
		return NewError(Unauthenticated, "%s", err.Error())
	case errors.Is(err, identity.ErrUserDisabled):
		return NewError(PermissionDenied, "%s", err.Error())
	}
	return NewError(Internal, "INTERNAL")
}
