package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindMethodNotAllowed
	KindBusiness
	KindStorage
	KindDecoding
	KindValidation
	KindPasswordHashing
	KindAuthentication
)

var kindNames = map[Kind]string{
	KindInternal:         "internal",
	KindNotFound:         "not_found",
	KindMethodNotAllowed: "method_not_allowed",
	KindBusiness:         "business",
	KindStorage:          "storage",
	KindDecoding:         "decoding",
	KindValidation:       "validation",
	KindPasswordHashing:  "password_hashing",
	KindAuthentication:   "authentication",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Status() int {
	switch k {
	case KindBusiness, KindDecoding, KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error type rendered at the HTTP boundary.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	// Field is the first failing field of a validation error.
	Field string
	// Details holds every failing rule of a validation error, in struct order.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int { return e.Kind.Status() }

// ResponseCode is the envelope code: the business code for business errors,
// the HTTP status for everything else.
func (e *Error) ResponseCode() int {
	if e.Kind == KindBusiness && e.Code != 0 {
		return e.Code
	}
	return e.Status()
}

// PublicMessage never leaks the cause of server-side failures.
func (e *Error) PublicMessage() string {
	switch e.Kind {
	case KindStorage:
		return "database error"
	case KindPasswordHashing:
		return "password hashing error"
	case KindInternal:
		return "internal server error"
	case KindAuthentication:
		return "unauthenticated"
	default:
		return e.Message
	}
}

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func MethodNotAllowed(message string) *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: message}
}

func Business(c Code) *Error {
	return &Error{Kind: KindBusiness, Code: int(c), Message: c.Message()}
}

func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "unexpected failure", Err: err}
}

func Decoding(part string, err error) *Error {
	return &Error{Kind: KindDecoding, Message: fmt.Sprintf("%s param error: %v", part, err), Err: err}
}

func Validation(field, message string, details []string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message, Details: details}
}

func PasswordHashing(err error) *Error {
	return &Error{Kind: KindPasswordHashing, Message: "password hashing failed", Err: err}
}

func Authentication(err error) *Error {
	return &Error{Kind: KindAuthentication, Message: "unauthenticated", Err: err}
}
