// Package transport is the client side of the relay: one socket shared by the
// foreground commands of the user and a background reader receiving messages.
//
// Every exchange holds the socket lock for one send and its matching response, the
// reader holds it for one bounded poll. Messages arriving while a command waits for
// its response are handled exactly as the reader would.
package transport

import (
	"chat-relay/codec"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultConnectAttempts = 5
	DefaultConnectBackoff  = time.Second
	DefaultPollTimeout     = time.Second
	DefaultShutdownGrace   = 500 * time.Millisecond
	DefaultResponseTimeout = 5 * time.Second

	messagesBuffer = 64
)

type Config struct {
	Address         string
	Name            string
	ConnectAttempts int
	ConnectBackoff  time.Duration
	PollTimeout     time.Duration
	ShutdownGrace   time.Duration
	ResponseTimeout time.Duration
}

func DefaultConfig(address, name string) Config {
	return Config{
		Address:         address,
		Name:            name,
		ConnectAttempts: DefaultConnectAttempts,
		ConnectBackoff:  DefaultConnectBackoff,
		PollTimeout:     DefaultPollTimeout,
		ShutdownGrace:   DefaultShutdownGrace,
		ResponseTimeout: DefaultResponseTimeout,
	}
}

type Transport struct {
	log     *slog.Logger
	cfg     Config
	storage contract.IClientStorage

	mu   sync.Mutex
	conn codec.Conn

	dbMu sync.Mutex

	running  atomic.Bool
	messages chan domain.Frame
	lost     chan struct{}
	lostOnce sync.Once
	done     chan struct{}
}

// New connects to the server, registers cfg.Name and refreshes the local caches of
// known users and contacts. The reader is running when New returns.
func New(ctx context.Context, log *slog.Logger, dialer contract.Dialer, storage contract.IClientStorage, cfg Config) (*Transport, error) {
	t := &Transport{
		log:      log.With("name", cfg.Name),
		cfg:      cfg,
		storage:  storage,
		messages: make(chan domain.Frame, messagesBuffer),
		lost:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	conn, err := t.dial(ctx, dialer)
	if err != nil {
		return nil, err
	}
	t.conn = conn

	if err := t.presence(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := t.UsersRequest(); err != nil {
		t.log.Warn("Unable to refresh known users", "error", err)
	}
	if _, err := t.ContactsRequest(); err != nil {
		t.log.Warn("Unable to refresh contacts", "error", err)
	}

	t.running.Store(true)
	go t.readLoop()
	return t, nil
}

func (t *Transport) dial(ctx context.Context, dialer contract.Dialer) (codec.Conn, error) {
	attempts := max(t.cfg.ConnectAttempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := dialer.Dial(ctx, t.cfg.Address)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		t.log.Warn("Connection attempt failed", "address", t.cfg.Address, "attempt", attempt, "error", err)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", errors.ErrConnectionFailed, t.cfg.Address, ctx.Err())
		case <-time.After(t.cfg.ConnectBackoff):
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %w", errors.ErrConnectionFailed, t.cfg.Address, attempts, lastErr)
}

func (t *Transport) presence() error {
	response, err := t.roundTrip(domain.NewPresence(t.cfg.Name))
	if err != nil {
		return err
	}
	if err := expect(response, domain.StatusOK); err != nil {
		return err
	}
	t.log.Info("Connected", "address", t.cfg.Address)
	return nil
}

func (t *Transport) Name() string {
	return t.cfg.Name
}

// Messages delivers the messages received for this user, once saved to the history.
func (t *Transport) Messages() <-chan domain.Frame {
	return t.messages
}

// ConnectionLost is closed when the reader stops on a socket or decode error.
func (t *Transport) ConnectionLost() <-chan struct{} {
	return t.lost
}

func (t *Transport) AddContact(contact string) error {
	response, err := t.roundTrip(domain.NewAddContact(t.cfg.Name, contact))
	if err != nil {
		return err
	}
	if err := expect(response, domain.StatusOK); err != nil {
		return err
	}
	return t.store(func() error { return t.storage.AddContact(contact) })
}

func (t *Transport) RemoveContact(contact string) error {
	response, err := t.roundTrip(domain.NewRemoveContact(t.cfg.Name, contact))
	if err != nil {
		return err
	}
	if err := expect(response, domain.StatusOK); err != nil {
		return err
	}
	return t.store(func() error { return t.storage.DelContact(contact) })
}

// UsersRequest returns the users known by the server and replaces the local list.
func (t *Transport) UsersRequest() ([]string, error) {
	response, err := t.roundTrip(domain.NewUsersRequest(t.cfg.Name))
	if err != nil {
		return nil, err
	}
	if err := expect(response, domain.StatusAccepted); err != nil {
		return nil, err
	}
	return response.ListInfo, t.store(func() error { return t.storage.AddUsers(response.ListInfo) })
}

// ContactsRequest returns the contacts kept by the server and adds them locally.
func (t *Transport) ContactsRequest() ([]string, error) {
	response, err := t.roundTrip(domain.NewGetContacts(t.cfg.Name))
	if err != nil {
		return nil, err
	}
	if err := expect(response, domain.StatusAccepted); err != nil {
		return nil, err
	}
	return response.ListInfo, t.store(func() error {
		for _, contact := range response.ListInfo {
			if err := t.storage.AddContact(contact); err != nil {
				return err
			}
		}
		return nil
	})
}

// SendMessage sends text to another user. The server does not acknowledge messages,
// so nothing is read back: a message the server would answer with 400 is refused here.
func (t *Transport) SendMessage(to, text string) error {
	frame := domain.NewMessage(t.cfg.Name, to, text)
	if err := frame.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidRequest, err)
	}
	if err := t.send(frame); err != nil {
		return err
	}
	return t.store(func() error { return t.storage.SaveMessage(t.cfg.Name, to, text) })
}

// Shutdown stops the reader, says goodbye to the server and closes the socket.
func (t *Transport) Shutdown() {
	if !t.running.CompareAndSwap(true, false) {
		return
	}
	if err := t.send(domain.NewExit(t.cfg.Name)); err != nil {
		t.log.Debug("Exit not sent", "error", err)
	}
	select {
	case <-t.done:
	case <-time.After(t.cfg.ShutdownGrace):
		t.log.Debug("Reader still polling, closing anyway")
	}
	_ = t.conn.Close()
	t.log.Info("Disconnected")
}

func (t *Transport) send(frame domain.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.conn.Send(frame); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrConnectionLost, err)
	}
	return nil
}

// roundTrip sends request and waits for the first response frame.
func (t *Transport) roundTrip(request domain.Frame) (domain.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.conn.Send(request); err != nil {
		return domain.Frame{}, fmt.Errorf("%w: %w", errors.ErrConnectionLost, err)
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(t.cfg.ResponseTimeout)); err != nil {
		return domain.Frame{}, fmt.Errorf("%w: %w", errors.ErrConnectionLost, err)
	}
	for {
		frame, err := t.conn.Receive()
		if errors.Is(err, errors.ErrInvalidField) {
			t.log.Warn("Ignoring unreadable frame", "error", err)
			continue
		}
		if err != nil {
			return domain.Frame{}, fmt.Errorf("%w: waiting for %s response: %w", errors.ErrConnectionLost, request.Action, err)
		}
		if frame.IsResponse() {
			return frame, nil
		}
		t.dispatch(frame)
	}
}

func (t *Transport) readLoop() {
	defer close(t.done)
	for t.running.Load() {
		frame, err := t.poll()
		switch {
		case err == nil:
			t.dispatch(frame)
		case codec.IsTimeout(err):
		case !codec.IsFatal(err):
			t.log.Warn("Ignoring unreadable frame", "error", err)
		case !t.running.Load():
			return
		default:
			t.log.Warn("Connection lost", "error", err)
			t.lostOnce.Do(func() { close(t.lost) })
			return
		}
	}
}

func (t *Transport) poll() (domain.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.conn.SetReadDeadline(time.Now().Add(t.cfg.PollTimeout)); err != nil {
		return domain.Frame{}, err
	}
	return t.conn.Receive()
}

// dispatch saves and publishes a message addressed to this user. Anything else is a
// late response or a stray frame.
func (t *Transport) dispatch(frame domain.Frame) {
	if frame.Action != domain.ActionMessage || frame.To != t.cfg.Name {
		t.log.Debug("Ignoring frame", "action", frame.Action, "response", frame.Response)
		return
	}
	if err := t.store(func() error { return t.storage.SaveMessage(frame.From, frame.To, frame.Text) }); err != nil {
		t.log.Warn("Message not saved", "from", frame.From, "error", err)
	}
	select {
	case t.messages <- frame:
	default:
		t.log.Warn("Message buffer full, message only kept in history", "from", frame.From)
	}
}

func (t *Transport) store(fn func() error) error {
	t.dbMu.Lock()
	defer t.dbMu.Unlock()
	return fn()
}

func expect(response domain.Frame, code int) error {
	if response.Response == domain.StatusBadRequest {
		return &errors.ServerRejectedError{Code: response.Response, Reason: response.Error}
	}
	if response.Response != code {
		return fmt.Errorf("%w: unexpected response %d", errors.ErrServerRejected, response.Response)
	}
	return nil
}
