// Package gatewayerr defines the error kinds the gateway surfaces to HTTP
// clients, independent of any particular transport.
package gatewayerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one of the gateway's documented error categories.
type Kind string

const (
	InvalidRequest Kind = "invalid_request"
	Unauthorized   Kind = "unauthorized"
	BudgetExceeded Kind = "budget_exceeded"
	NotFound       Kind = "not_found"
	UpstreamError  Kind = "upstream_error"
	Internal       Kind = "internal_error"
)

// Status returns the HTTP status code associated with a Kind.
func (k Kind) Status() int {
	switch k {
	case InvalidRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case BudgetExceeded:
		return http.StatusPaymentRequired
	case NotFound:
		return http.StatusNotFound
	case UpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error wraps a cause with the Kind that should be reported to the client.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a Kind-tagged error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags an existing error with a Kind, preserving it as the cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// As extracts a *Error from err, if present in its chain.
func As(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
