package domain

import (
	"chat-relay/errors"
	"fmt"
)

const (
	DefaultPort    = 7777
	DefaultAddress = "127.0.0.1"
	MinPort        = 1024
	MaxPort        = 65535
)

type Port int

// NewPort rejects ports outside the unprivileged range.
func NewPort(port int) (Port, error) {
	if port < MinPort || port > MaxPort {
		return 0, fmt.Errorf("%w: %d is not in %d-%d", errors.ErrInvalidPort, port, MinPort, MaxPort)
	}
	return Port(port), nil
}
