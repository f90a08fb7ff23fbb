// Package apierror classifies every failure surfaced by the backend bridge.
// Rejection messages travel verbatim to the operator; only the kind drives
// control flow (an invalid session forces logout, everything else is a
// transient notification).
package apierror

import (
	"errors"
	"strings"
)

type Kind int

const (
	// KindValidation: caught client-side before any call is sent.
	KindValidation Kind = iota
	// KindRejected: the backend refused a precondition (duplicate open,
	// already-closed shift, ...). Message is shown verbatim.
	KindRejected
	// KindSessionInvalid: the session expired or was revoked. Local session
	// state is cleared and the operator is sent back to login.
	KindSessionInvalid
	// KindTransport: network or unknown failure, surfaced generically.
	KindTransport
)

// APIError is the canonical error for everything crossing the bridge.
type APIError struct {
	Kind   Kind
	Detail string
	// Fields holds per-field validation tags, when Kind is KindValidation.
	Fields map[string]string
}

func (e *APIError) Error() string { return e.Detail }

func New(kind Kind, detail string) *APIError {
	return &APIError{Kind: kind, Detail: detail}
}

func Validation(detail string, fields map[string]string) *APIError {
	return &APIError{Kind: KindValidation, Detail: detail, Fields: fields}
}

func Rejected(detail string) *APIError { return New(KindRejected, detail) }

func SessionInvalid(detail string) *APIError { return New(KindSessionInvalid, detail) }

func Transport(detail string) *APIError { return New(KindTransport, detail) }

// KindOf extracts the taxonomy kind; unclassified errors count as transport.
func KindOf(err error) Kind {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransport
}

func IsSessionInvalid(err error) bool { return KindOf(err) == KindSessionInvalid }

func IsRejected(err error) bool { return KindOf(err) == KindRejected }

// sessionMsgs are the session-rejection messages the backend is known to emit.
var sessionMsgs = []string{
	"sesión inválida",
	"sesion invalida",
	"sesión expirada",
	"invalid session",
	"session expired",
}

// Classify maps a raw backend rejection message onto the taxonomy, keeping
// the message text untouched.
func Classify(msg string) *APIError {
	lower := strings.ToLower(msg)
	for _, m := range sessionMsgs {
		if strings.Contains(lower, m) {
			return SessionInvalid(msg)
		}
	}
	return Rejected(msg)
}
