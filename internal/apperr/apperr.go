package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can decide how to present it.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindGateway
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindAuthorization:
		return "FORBIDDEN"
	case KindGateway:
		return "GATEWAY_ERROR"
	default:
		return "INTERNAL"
	}
}

// Status maps the kind onto the HTTP status the API server answers with.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is propagated unchanged from the engine up to whoever renders it.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Body is the JSON error envelope.
type Body struct {
	Error BodyError `json:"error"`
}

type BodyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response serialises the error into the JSON envelope.
func (e *Error) Response() Body {
	return Body{Error: BodyError{Code: e.Kind.String(), Message: e.Message}}
}

// Kind-only sentinels for errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrGateway       = &Error{Kind: KindGateway}
)

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Gateway wraps a collaborator failure whose detail is opaque to the core.
func Gateway(err error, format string, args ...any) *Error {
	return &Error{Kind: KindGateway, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// FromStatus rebuilds an error from an HTTP status and envelope message.
func FromStatus(status int, message string) *Error {
	var k Kind
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		k = KindValidation
	case http.StatusNotFound:
		k = KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		k = KindAuthorization
	default:
		k = KindGateway
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Kind: k, Message: message}
}
