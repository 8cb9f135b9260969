package main

import (
	"bytes"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeSession struct {
	sent     []domain.Frame
	contacts []string
	users    []string
	err      error
	messages chan domain.Frame
	lost     chan struct{}
}

func newFakeSession() *fakeSession {
	return &fakeSession{messages: make(chan domain.Frame, 1), lost: make(chan struct{})}
}

func (f *fakeSession) Name() string { return "alice" }

func (f *fakeSession) SendMessage(to, text string) error {
	f.sent = append(f.sent, domain.NewMessage("alice", to, text))
	return f.err
}

func (f *fakeSession) AddContact(contact string) error {
	if f.err == nil {
		f.contacts = append(f.contacts, contact)
	}
	return f.err
}

func (f *fakeSession) RemoveContact(contact string) error {
	f.contacts = lo.Without(f.contacts, contact)
	return f.err
}

func (f *fakeSession) UsersRequest() ([]string, error)    { return f.users, f.err }
func (f *fakeSession) ContactsRequest() ([]string, error) { return f.contacts, f.err }
func (f *fakeSession) Messages() <-chan domain.Frame      { return f.messages }
func (f *fakeSession) ConnectionLost() <-chan struct{}    { return f.lost }

func newTestConsole(t *testing.T) (*console, *fakeSession, *mocks.MockIClientStorage, *bytes.Buffer) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockIClientStorage(ctrl)
	session := newFakeSession()
	out := &bytes.Buffer{}
	return newConsole(out, session, storage), session, storage, out
}

func TestConsole_Message(t *testing.T) {
	req := require.New(t)
	c, session, storage, out := newTestConsole(t)
	ctx := context.Background()

	// Given bob is known
	storage.EXPECT().CheckUser("bob").Return(true, nil)
	req.True(c.Execute(ctx, "message bob hello there"))
	req.Len(session.sent, 1)
	req.Equal("bob", session.sent[0].To)
	req.Equal("hello there", session.sent[0].Text)

	// Given ghost is not
	storage.EXPECT().CheckUser("ghost").Return(false, nil)
	req.True(c.Execute(ctx, "message ghost hi"))
	req.Len(session.sent, 1)
	req.Contains(out.String(), "ghost is not a known user")

	// Missing text
	req.True(c.Execute(ctx, "message bob"))
	req.Contains(out.String(), "Usage: message")
}

func TestConsole_Contacts(t *testing.T) {
	req := require.New(t)
	c, session, storage, out := newTestConsole(t)
	ctx := context.Background()

	req.True(c.Execute(ctx, "contacts"))
	req.Contains(out.String(), "No contacts")

	req.True(c.Execute(ctx, "add bob"))
	req.Equal([]string{"bob"}, session.contacts)
	req.Contains(out.String(), "bob added")

	storage.EXPECT().CheckContact("clara").Return(false, nil)
	req.True(c.Execute(ctx, "del clara"))
	req.Contains(out.String(), "clara is not a contact")

	storage.EXPECT().CheckContact("bob").Return(true, nil)
	req.True(c.Execute(ctx, "del bob"))
	req.Empty(session.contacts)
}

func TestConsole_Reports_Rejections(t *testing.T) {
	req := require.New(t)
	c, session, _, out := newTestConsole(t)
	session.err = &errors.ServerRejectedError{Code: domain.StatusBadRequest, Reason: domain.ReasonBadRequest}

	req.True(c.Execute(context.Background(), "add bob"))

	req.Contains(out.String(), "400 : bad request")
	req.Empty(session.contacts)
}

func TestConsole_Users(t *testing.T) {
	req := require.New(t)
	c, session, _, out := newTestConsole(t)
	session.users = []string{"alice", "bob"}

	req.True(c.Execute(context.Background(), "users"))

	req.Contains(out.String(), "alice\nbob\n")
}

func TestConsole_History_With_One_User(t *testing.T) {
	req := require.New(t)
	c, _, storage, out := newTestConsole(t)
	at := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	bob := "bob"
	sent := domain.HistoryMessage{ID: uuid.New(), From: "alice", To: "bob", Text: "first", At: at}
	received := domain.HistoryMessage{ID: uuid.New(), From: "bob", To: "alice", Text: "second", At: at.Add(time.Second)}

	storage.EXPECT().GetHistory(nil, &bob).Return([]domain.HistoryMessage{sent}, nil)
	storage.EXPECT().GetHistory(&bob, nil).Return([]domain.HistoryMessage{received}, nil)

	req.True(c.Execute(context.Background(), "history bob"))

	// Then both directions are shown oldest first
	req.Less(strings.Index(out.String(), "first"), strings.Index(out.String(), "second"))
}

func TestConsole_Search(t *testing.T) {
	req := require.New(t)
	c, _, storage, out := newTestConsole(t)
	ctx := context.Background()

	storage.EXPECT().SearchHistory(ctx, "lunch", 0).Return([]domain.HistoryMessage{
		{ID: uuid.New(), From: "bob", To: "alice", Text: "lunch at noon", At: time.Now()},
	}, nil)
	req.True(c.Execute(ctx, "search lunch"))
	req.Contains(out.String(), "lunch at noon")

	storage.EXPECT().SearchHistory(ctx, "nothing", 0).Return(nil, nil)
	req.True(c.Execute(ctx, "search nothing"))
	req.Contains(out.String(), "No messages")
}

func TestConsole_Run(t *testing.T) {
	req := require.New(t)
	c, session, _, out := newTestConsole(t)
	session.messages <- domain.NewMessage("bob", "alice", "incoming")
	reader, writer := io.Pipe()

	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), reader)
		close(done)
	}()

	// When the connection drops, the console stops
	time.Sleep(50 * time.Millisecond)
	close(session.lost)
	<-done
	_ = writer.Close()

	req.Contains(out.String(), "incoming")
	req.Contains(out.String(), "Connection to the server lost")
}

func TestConsole_Run_Exit(t *testing.T) {
	c, _, _, _ := newTestConsole(t)

	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), strings.NewReader("help\nexit\n"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "console did not stop on exit")
	}
}
