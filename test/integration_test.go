package test

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/infrastructure/tcp"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/transport"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type relay struct {
	address    string
	repository *repositories.ServerRepository
	reactor    *runtime.Reactor
}

func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	// Reduced to 16 Mo for testing
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	return db
}

func startRelay(t *testing.T, log *slog.Logger) relay {
	t.Helper()
	req := require.New(t)
	db := openBadger(t)

	repository, err := repositories.NewServerRepository(db, log)
	req.NoError(err)
	cfg := runtime.DefaultConfig()
	cfg.AcceptTimeout = 20 * time.Millisecond
	cfg.RequeueInterval = 5 * time.Millisecond
	reactor := runtime.NewReactor(log, cfg, repository, runtime.NewMetrics(prometheus.NewRegistry()))

	listener, err := tcp.Listen("127.0.0.1:0")
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	supervisor := workers.NewSupervisor(log)
	supervisor.Add(reactor, workers.NewAcceptor(log, listener, reactor))
	stopped := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(stopped)
	}()

	t.Cleanup(func() {
		cancel()
		<-stopped
		_ = db.Close()
	})
	return relay{address: listener.Addr().String(), repository: repository, reactor: reactor}
}

func connect(t *testing.T, log *slog.Logger, address, name string) (*transport.Transport, *repositories.ClientRepository, error) {
	t.Helper()
	db := openBadger(t)
	index, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = index.Close()
		_ = db.Close()
	})
	storage, err := repositories.NewClientRepository(db, index, log)
	require.NoError(t, err)

	cfg := transport.DefaultConfig(address, name)
	cfg.ConnectAttempts = 2
	cfg.ConnectBackoff = 10 * time.Millisecond
	cfg.PollTimeout = 20 * time.Millisecond
	cfg.ShutdownGrace = 200 * time.Millisecond
	tr, err := transport.New(context.Background(), log, tcp.NewDialer(), storage, cfg)
	if err == nil {
		t.Cleanup(tr.Shutdown)
	}
	return tr, storage, err
}

func receive(t *testing.T, tr *transport.Transport) domain.Frame {
	t.Helper()
	select {
	case frame := <-tr.Messages():
		return frame
	case <-time.After(3 * time.Second):
		require.Fail(t, "no message received", tr.Name())
		return domain.Frame{}
	}
}

func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	server := startRelay(t, log)

	// 1. alice and bob log in
	alice, aliceStorage, err := connect(t, log, server.address, "alice")
	req.NoError(err)
	bob, bobStorage, err := connect(t, log, server.address, "bob")
	req.NoError(err)

	// 2. A second alice is turned away with the server's reason
	_, _, err = connect(t, log, server.address, "alice")
	req.ErrorIs(err, errors.ErrServerRejected)
	var rejected *errors.ServerRejectedError
	req.True(errors.As(err, &rejected))
	req.Equal(domain.ReasonNameTaken, rejected.Reason)

	// 3. alice sees bob and adds him
	users, err := alice.UsersRequest()
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, users)
	req.NoError(alice.AddContact("bob"))
	contacts, err := alice.ContactsRequest()
	req.NoError(err)
	req.Equal([]string{"bob"}, contacts)
	found, err := aliceStorage.CheckContact("bob")
	req.NoError(err)
	req.True(found)

	// 4. Messages go both ways
	req.NoError(alice.SendMessage("bob", "hi bob"))
	frame := receive(t, bob)
	req.Equal("alice", frame.From)
	req.Equal("hi bob", frame.Text)

	req.NoError(bob.SendMessage("alice", "hi alice"))
	frame = receive(t, alice)
	req.Equal("bob", frame.From)
	req.Equal("hi alice", frame.Text)

	// 5. Both histories hold the conversation and can be searched
	history, err := bobStorage.GetHistory(lo.ToPtr("alice"), nil)
	req.NoError(err)
	req.Len(history, 1)
	matches, err := aliceStorage.SearchHistory(ctx, "alice", 10)
	req.NoError(err)
	req.Len(matches, 1)
	req.Equal("bob", matches[0].From)

	// 6. The server counted the deliveries
	req.Eventually(func() bool {
		stats, err := server.repository.MessageHistory()
		if err != nil {
			return false
		}
		byName := lo.KeyBy(stats, func(s domain.MessageStat) string { return s.Name })
		return byName["alice"].Sent == 1 && byName["alice"].Accepted == 1 &&
			byName["bob"].Sent == 1 && byName["bob"].Accepted == 1
	}, 3*time.Second, 20*time.Millisecond)

	// 7. bob leaves: he is no longer online, a message to him is dropped
	bob.Shutdown()
	req.Eventually(func() bool {
		active, err := server.repository.ActiveUsersList()
		return err == nil && len(active) == 1 && active[0].Name == "alice"
	}, 3*time.Second, 20*time.Millisecond)
	_, online := server.reactor.Registry().Lookup("bob")
	req.False(online)
	req.NoError(alice.SendMessage("bob", "anyone?"))
	// alice's next answer comes after the server has handled the message
	_, err = alice.UsersRequest()
	req.NoError(err)

	// 8. bob comes back under the same name and gets what alice sends again
	bobAgain, bobAgainStorage, err := connect(t, log, server.address, "bob")
	req.NoError(err)
	req.Equal("bob", bobAgain.Name())
	req.NoError(alice.SendMessage("bob", "hi"))
	frame = receive(t, bobAgain)
	req.Equal("alice", frame.From)
	req.Equal("hi", frame.Text)
	history, err = bobAgainStorage.GetHistory(lo.ToPtr("alice"), nil)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("hi", history[0].Text)
}

func Test_Connection_Refused(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given nothing listens on the address
	listener, err := tcp.Listen("127.0.0.1:0")
	req.NoError(err)
	address := listener.Addr().String()
	req.NoError(listener.Close())

	_, _, err = connect(t, log, address, "alice")

	req.ErrorIs(err, errors.ErrConnectionFailed)
}

func Test_Server_Stop_Is_Reported_To_Clients(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db := openBadger(t)
	defer db.Close()

	repository, err := repositories.NewServerRepository(db, log)
	req.NoError(err)
	reactor := runtime.NewReactor(log, runtime.DefaultConfig(), repository, runtime.NewMetrics(prometheus.NewRegistry()))
	listener, err := tcp.Listen("127.0.0.1:0")
	req.NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	supervisor := workers.NewSupervisor(log)
	supervisor.Add(reactor, workers.NewAcceptor(log, listener, reactor))
	stopped := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(stopped)
	}()

	alice, _, err := connect(t, log, listener.Addr().String(), "alice")
	req.NoError(err)

	// When the server stops
	cancel()
	<-stopped

	// Then alice learns it and is logged out
	select {
	case <-alice.ConnectionLost():
	case <-time.After(3 * time.Second):
		req.Fail("connection loss not reported")
	}
	active, err := repository.ActiveUsersList()
	req.NoError(err)
	req.Empty(active)
}
