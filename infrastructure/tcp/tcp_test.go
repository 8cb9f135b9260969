package tcp

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	_ contract.Listener = (*Listener)(nil)
	_ contract.Dialer   = (*Dialer)(nil)
)

func TestListener_And_Dialer_Exchange_Frames(t *testing.T) {
	req := require.New(t)
	listener, err := Listen("127.0.0.1:0")
	req.NoError(err)
	defer listener.Close()

	accepted := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			accepted <- err
			return
		}
		defer conn.Close()
		frame, err := conn.Receive()
		if err != nil {
			accepted <- err
			return
		}
		accepted <- conn.Send(domain.ListResponse([]string{frame.UserName()}))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := NewDialer().Dial(ctx, listener.Addr().String())
	req.NoError(err)
	defer conn.Close()

	req.NoError(conn.Send(domain.NewPresence("alice")))
	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	reply, err := conn.Receive()
	req.NoError(err)
	req.Equal([]string{"alice"}, reply.ListInfo)
	req.NoError(<-accepted)
}

func TestDialer_Refused(t *testing.T) {
	listener, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = NewDialer().Dial(context.Background(), address)
	require.Error(t, err)
}
