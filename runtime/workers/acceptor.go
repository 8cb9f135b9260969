package workers

import (
	"chat-relay/codec"
	"chat-relay/contract"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"net"
)

// Admitter takes ownership of an accepted connection.
type Admitter interface {
	Admit(ctx context.Context, conn codec.Conn) error
}

// Acceptor hands every connection accepted on a listener to the reactor.
// The listener is closed when the context ends, which unblocks Accept.
type Acceptor struct {
	log      *slog.Logger
	listener contract.Listener
	admitter Admitter
}

func NewAcceptor(log *slog.Logger, listener contract.Listener, admitter Admitter) *Acceptor {
	return &Acceptor{
		log:      log.With("listener", listener.Addr().String()),
		listener: listener,
		admitter: admitter,
	}
}

func (a *Acceptor) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = a.listener.Close()
	})
	defer stop()

	a.log.Info("Accepting connections")
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				a.log.Info("Listener closed")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		if err := a.admitter.Admit(ctx, conn); err != nil {
			_ = conn.Close()
			return nil
		}
	}
}
