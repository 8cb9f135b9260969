// Package websocket accepts relay clients over WebSocket. Each text message carries
// exactly one frame, so no delimiter is needed.
package websocket

import (
	"chat-relay/codec"
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const Path = "/ws"

// Listener upgrades HTTP requests on Path and hands the resulting connections out
// through Accept.
type Listener struct {
	log       *slog.Logger
	listener  net.Listener
	server    *http.Server
	upgrader  websocket.Upgrader
	conns     chan codec.Conn
	closed    chan struct{}
	closeOnce sync.Once
}

func Listen(log *slog.Logger, address string) (*Listener, error) {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	listener := &Listener{
		log:      log,
		listener: l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  domain.MaxFrameSize,
			WriteBufferSize: domain.MaxFrameSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		conns:  make(chan codec.Conn),
		closed: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(Path, listener.upgrade)
	listener.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := listener.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("WebSocket server stopped", "error", err)
		}
	}()
	return listener, nil
}

func (l *Listener) upgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Debug("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	conn := NewConn(ws)
	select {
	case l.conns <- conn:
	case <-l.closed:
		_ = conn.Close()
	}
}

func (l *Listener) Accept() (codec.Conn, error) {
	select {
	case conn := <-l.conns:
		return conn, nil
	case <-l.closed:
		return nil, net.ErrClosed
	}
}

func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		err = l.server.Close()
	})
	return err
}

// Conn adapts a WebSocket connection to codec.Conn.
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func NewConn(ws *websocket.Conn) *Conn {
	ws.SetReadLimit(domain.MaxFrameSize)
	return &Conn{ws: ws}
}

func (c *Conn) Send(frame domain.Frame) error {
	data, err := codec.Encode(frame)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Receive reads one message. A peer close is reported as io.EOF and a message over
// domain.MaxFrameSize as errors.ErrMalformedFrame.
func (c *Conn) Receive() (domain.Frame, error) {
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		switch {
		case errors.Is(err, websocket.ErrReadLimit):
			return domain.Frame{}, fmt.Errorf("%w: message over %d bytes", errors.ErrMalformedFrame, domain.MaxFrameSize)
		case errors.As(err, &closeErr):
			return domain.Frame{}, io.EOF
		default:
			return domain.Frame{}, err
		}
	}
	if kind != websocket.TextMessage {
		return domain.Frame{}, fmt.Errorf("%w: binary message", errors.ErrMalformedFrame)
	}
	return codec.Decode(data)
}

// SetReadDeadline is supported for completeness; gorilla connections cannot be read
// again after a deadline expires.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
