package runtime

import (
	"chat-relay/codec"
	"chat-relay/domain"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
	Closed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// inbound is one receive result handed from the reader goroutine to the reactor.
type inbound struct {
	frame domain.Frame
	err   error
}

// Session is the server side of one connection.
//
// Two goroutines do the blocking I/O: the reader decodes frames into a one-slot
// inbox, the writer drains the outbox onto the socket. Everything else (state, name,
// activity) belongs to the reactor goroutine and must not be touched elsewhere.
type Session struct {
	ID           uuid.UUID
	IP           string
	Port         int
	name         string
	state        State
	lastActivity time.Time

	conn      codec.Conn
	log       *slog.Logger
	inbox     chan inbound
	outbox    chan domain.Frame
	done      chan struct{}
	flushed   chan struct{}
	closeOnce sync.Once
	released  bool

	flushTimeout time.Duration
}

func NewSession(log *slog.Logger, conn codec.Conn, outboxSize int, flushTimeout time.Duration) *Session {
	ip, port := peer(conn.RemoteAddr())
	id := uuid.New()
	if flushTimeout <= 0 {
		flushTimeout = DefaultFlushTimeout
	}
	return &Session{
		ID:           id,
		IP:           ip,
		Port:         port,
		state:        Unauthenticated,
		lastActivity: time.Now(),
		conn:         conn,
		log:          log.With("session", id.String(), "peer", conn.RemoteAddr().String()),
		inbox:        make(chan inbound, 1),
		outbox:       make(chan domain.Frame, outboxSize),
		done:         make(chan struct{}),
		flushed:      make(chan struct{}),
		flushTimeout: flushTimeout,
	}
}

func (s *Session) Name() string            { return s.name }
func (s *Session) State() State            { return s.state }
func (s *Session) LastActivity() time.Time { return s.lastActivity }

// start launches the I/O goroutines. wake is signalled, without blocking, each time
// a receive result lands in the inbox.
func (s *Session) start(wake chan<- struct{}) {
	go s.readLoop(wake)
	go s.writeLoop(s.log)
}

func (s *Session) readLoop(wake chan<- struct{}) {
	for {
		frame, err := s.conn.Receive()
		if err != nil && codec.IsTimeout(err) {
			continue
		}
		select {
		case s.inbox <- inbound{frame: frame, err: err}:
		case <-s.done:
			return
		}
		select {
		case wake <- struct{}{}:
		default:
		}
		if codec.IsFatal(err) {
			return
		}
	}
}

// writeLoop sends queued frames until the outbox is closed, then closes the socket.
// After a write error the socket is closed right away and remaining frames are
// discarded.
func (s *Session) writeLoop(log *slog.Logger) {
	defer close(s.flushed)
	defer func() { _ = s.conn.Close() }()
	for frame := range s.outbox {
		if err := s.conn.Send(frame); err != nil {
			log.Debug("Write failed", "error", err)
			_ = s.conn.Close()
			for range s.outbox {
			}
			return
		}
	}
}

// poll returns the pending receive result, if any, without waiting.
func (s *Session) poll() (inbound, bool) {
	select {
	case in := <-s.inbox:
		return in, true
	default:
		return inbound{}, false
	}
}

// trySend hands frame to the writer if the outbox has room. A full outbox means the
// session is not writable this tick.
func (s *Session) trySend(frame domain.Frame) bool {
	if s.released {
		return false
	}
	select {
	case s.outbox <- frame:
		return true
	default:
		return false
	}
}

// release stops the reader and lets the writer flush what is already queued before
// closing the socket. A peer that does not read within flushTimeout gets its socket
// closed under the writer.
func (s *Session) release() {
	s.closeOnce.Do(func() {
		s.state = Closed
		s.released = true
		close(s.done)
		close(s.outbox)
		go s.closeAfterFlush(s.log)
	})
}

func (s *Session) closeAfterFlush(log *slog.Logger) {
	timer := time.NewTimer(s.flushTimeout)
	defer timer.Stop()
	select {
	case <-s.flushed:
	case <-timer.C:
		log.Debug("Flush timed out, closing socket", "timeout", s.flushTimeout)
		_ = s.conn.Close()
	}
}

func peer(addr net.Addr) (string, int) {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.IP.String(), a.Port
	case nil:
		return "", 0
	default:
		host, port, err := net.SplitHostPort(a.String())
		if err != nil {
			return a.String(), 0
		}
		p, _ := net.LookupPort("tcp", port)
		return host, p
	}
}
