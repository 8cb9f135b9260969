package errors

import (
	stderrors "errors"
	"fmt"
)

// Is and As forward to the standard library so callers import a single errors package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Wire level
var (
	ErrMalformedFrame = fmt.Errorf("malformed frame")
	ErrNonObjectFrame = fmt.Errorf("frame is not an object")
	ErrInvalidField   = fmt.Errorf("invalid field")
	ErrFrameTooLarge  = fmt.Errorf("frame exceeds maximum size")
)

// Registry and routing
var (
	ErrDuplicateName      = fmt.Errorf("name taken")
	ErrUnknownDestination = fmt.Errorf("unknown destination")
)

// Transport
var (
	ErrConnectionFailed = fmt.Errorf("connection failed")
	ErrServerRejected   = fmt.Errorf("server rejected request")
	ErrConnectionLost   = fmt.Errorf("connection lost")
	ErrNotConnected     = fmt.Errorf("not connected")
	ErrInvalidRequest   = fmt.Errorf("invalid request")
)

var (
	ErrStorage     = fmt.Errorf("storage error")
	ErrInvalidPort = fmt.Errorf("port out of range")
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrGaveUp      = fmt.Errorf("worker gave up")
)

// ServerRejectedError carries the text the server sent with a 400 response.
type ServerRejectedError struct {
	Code   int
	Reason string
}

func (e *ServerRejectedError) Error() string {
	return fmt.Sprintf("%d : %s", e.Code, e.Reason)
}

func (e *ServerRejectedError) Unwrap() error {
	return ErrServerRejected
}
