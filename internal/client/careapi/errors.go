package careapi

import (
	"fmt"
	"strings"
)

// SignInHint accompanies a duplicate-signup conflict.
const SignInHint = "Already have an account? Sign in instead."

// Problem is one failed field rule.
type Problem struct {
	Field string
	Msg   string
}

// ValidationError is raised on the client before any network call.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Msg)
	}
	return strings.Join(msgs, " ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

// ConflictError is a 409 from the server. Hint is only set where the
// conflict has an obvious next step, such as signing in after a signup
// with a registered email.
type ConflictError struct {
	Detail string
	Hint   string
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return "conflict"
	}
	return e.Detail
}

// APIError is any other non-2xx response. Detail is empty when the body
// carried no usable detail.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// TransportError means the server could not be reached or the exchange
// broke off.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
