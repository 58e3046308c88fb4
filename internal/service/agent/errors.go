package agent

import (
	"errors"
	"fmt"
)

// ValidationError is returned for input rejected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// TransportError covers timeouts, connection failures, non-2xx replies and
// undecodable bodies.
type TransportError struct {
	StatusCode int
	// ServerMessage is the "message" field of the error body, if any.
	ServerMessage string
	Timeout       bool
	Err           error
}

func (e *TransportError) Error() string {
	switch {
	case e.ServerMessage != "":
		return e.ServerMessage
	case e.Timeout:
		return "agent request timed out"
	case e.StatusCode != 0:
		return fmt.Sprintf("agent returned status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("agent request failed: %v", e.Err)
	default:
		return "agent request failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
