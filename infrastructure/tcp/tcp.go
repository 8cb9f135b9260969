// Package tcp provides the TCP roles of the relay: a listener for the server and a
// dialer for the client. Both expose connections through codec.Conn only.
package tcp

import (
	"chat-relay/codec"
	"context"
	"net"
)

type Listener struct {
	listener net.Listener
}

// Listen binds address, for instance "127.0.0.1:7777".
func Listen(address string) (*Listener, error) {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return &Listener{listener: l}, nil
}

func (l *Listener) Accept() (codec.Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	return codec.NewStreamConn(conn), nil
}

func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

func (l *Listener) Close() error {
	return l.listener.Close()
}

type Dialer struct {
	dialer net.Dialer
}

func NewDialer() *Dialer {
	return &Dialer{}
}

func (d *Dialer) Dial(ctx context.Context, address string) (codec.Conn, error) {
	conn, err := d.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return codec.NewStreamConn(conn), nil
}
