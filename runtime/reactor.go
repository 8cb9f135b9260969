package runtime

import (
	"chat-relay/codec"
	"chat-relay/contract"
	"chat-relay/errors"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

const (
	DefaultAcceptTimeout   = 500 * time.Millisecond
	DefaultRequeueInterval = 50 * time.Millisecond
	DefaultOutboxSize      = 16
	DefaultFlushTimeout    = 2 * time.Second
	acceptBacklog          = 64
)

type Config struct {
	// AcceptTimeout bounds how long one tick waits for a connection or a frame.
	AcceptTimeout time.Duration
	// RequeueInterval caps that wait while deliveries are pending.
	RequeueInterval time.Duration
	// OutboxSize is the number of frames a session buffers before it stops being
	// writable.
	OutboxSize int
	// FlushTimeout bounds how long a released session may take to write its last
	// frames before its socket is closed.
	FlushTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		AcceptTimeout:   DefaultAcceptTimeout,
		RequeueInterval: DefaultRequeueInterval,
		OutboxSize:      DefaultOutboxSize,
		FlushTimeout:    DefaultFlushTimeout,
	}
}

// Reactor is the server event loop. One goroutine, the one calling Run, owns the
// live sessions, the registry writes, the protocol and the outbound queue.
//
// Each tick:
//  1. waits up to AcceptTimeout for a new connection or a received frame and admits
//     every accepted connection,
//  2. takes at most one frame from every live session and feeds it to the protocol,
//  3. drains the outbound queue; a destination whose outbox is full keeps its
//     deliveries for the next tick.
type Reactor struct {
	log      *slog.Logger
	cfg      Config
	registry *Registry
	queue    *OutboundQueue
	protocol *Protocol
	metrics  *Metrics
	accepted chan codec.Conn
	wake     chan struct{}
	sessions []*Session
}

func NewReactor(
	log *slog.Logger,
	cfg Config,
	storage contract.IServerStorage,
	metrics *Metrics,
) *Reactor {
	registry := NewRegistry()
	queue := NewOutboundQueue()
	return &Reactor{
		log:      log,
		cfg:      cfg,
		registry: registry,
		queue:    queue,
		protocol: NewProtocol(log, registry, queue, storage, metrics),
		metrics:  metrics,
		accepted: make(chan codec.Conn, acceptBacklog),
		wake:     make(chan struct{}, 1),
	}
}

func (r *Reactor) Registry() *Registry {
	return r.registry
}

// Admit hands an accepted connection over to the reactor. It blocks while the
// backlog is full.
func (r *Reactor) Admit(ctx context.Context, conn codec.Conn) error {
	select {
	case r.accepted <- conn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reactor) Run(ctx context.Context) error {
	r.log.Info("Reactor started", "accept_timeout", r.cfg.AcceptTimeout, "outbox_size", r.cfg.OutboxSize)
	defer r.shutdown()

	for {
		if err := r.wait(ctx); err != nil {
			r.log.Info("Reactor stopping", "sessions", len(r.sessions))
			return nil
		}
		r.tick()
	}
}

// wait blocks until something may be ready, then admits pending connections.
func (r *Reactor) wait(ctx context.Context) error {
	timeout := r.cfg.AcceptTimeout
	if r.queue.Len() > 0 && r.cfg.RequeueInterval < timeout {
		timeout = r.cfg.RequeueInterval
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case conn := <-r.accepted:
		r.admit(conn)
	case <-r.wake:
	case <-timer.C:
	}

	for {
		select {
		case conn := <-r.accepted:
			r.admit(conn)
		default:
			return nil
		}
	}
}

// tick processes every frame already received, then every pending delivery.
func (r *Reactor) tick() {
	for _, s := range r.sessions {
		if s.state == Closed {
			continue
		}
		in, ok := s.poll()
		if !ok {
			continue
		}
		if errors.Is(in.err, errors.ErrInvalidField) {
			r.protocol.Invalid(s, in.err)
			continue
		}
		if in.err != nil {
			r.evict(s, in.err)
			continue
		}
		if !r.protocol.Handle(s, in.frame) {
			s.release()
		}
	}

	r.drain()

	r.sessions = lo.Filter(r.sessions, func(s *Session, _ int) bool {
		return !s.released
	})
	r.metrics.connections.Set(float64(len(r.sessions)))
	r.metrics.queueDepth.Set(float64(r.queue.Len()))
}

func (r *Reactor) drain() {
	blocked := make(map[*Session]struct{})
	unknown := 0

	stats := r.queue.Drain(func(env envelope) outcome {
		target := env.session
		if env.routed() {
			s, ok := r.registry.Lookup(env.to)
			if !ok {
				unknown++
				r.log.Warn("Message not routed",
					"from", env.frame.From,
					"error", fmt.Errorf("%w: %s", errors.ErrUnknownDestination, env.to))
				return dropped
			}
			target = s
		}
		if target.released {
			return dropped
		}
		// Later frames for a full outbox wait too, so per-destination order holds.
		if _, ok := blocked[target]; ok {
			return retry
		}
		if !target.trySend(env.frame) {
			blocked[target] = struct{}{}
			return retry
		}
		if env.routed() {
			r.protocol.Delivered(env.frame)
		}
		if env.closeAfter {
			target.release()
		}
		return delivered
	})

	r.metrics.droppedMessages.Add(float64(unknown))
	r.metrics.requeued.Add(float64(stats.Requeued))
	if stats.Requeued > 0 {
		r.log.Debug("Deliveries postponed", "count", stats.Requeued)
	}
}

func (r *Reactor) admit(conn codec.Conn) {
	s := NewSession(r.log, conn, r.cfg.OutboxSize, r.cfg.FlushTimeout)
	s.start(r.wake)
	r.sessions = append(r.sessions, s)
	r.metrics.accepted.Inc()
	s.log.Info("Connection accepted")
}

// evict removes a session after a receive error.
func (r *Reactor) evict(s *Session, err error) {
	cause := "socket"
	switch {
	case errors.Is(err, errors.ErrMalformedFrame), errors.Is(err, errors.ErrNonObjectFrame):
		cause = "decode"
		s.log.Warn("Dropping connection, undecodable frame", "error", err)
	case errors.Is(err, io.EOF):
		cause = "closed"
		s.log.Info("Connection closed by peer")
	default:
		s.log.Warn("Dropping connection, socket error", "error", err)
	}
	r.metrics.evictions.WithLabelValues(cause).Inc()
	r.protocol.Disconnect(s)
	s.release()
}

// shutdown logs every user out and closes every connection.
func (r *Reactor) shutdown() {
	for _, s := range r.sessions {
		r.protocol.Disconnect(s)
		s.release()
	}
	r.sessions = nil
	for {
		select {
		case conn := <-r.accepted:
			_ = conn.Close()
		default:
			r.metrics.connections.Set(0)
			return
		}
	}
}
