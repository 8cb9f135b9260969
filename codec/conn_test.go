package codec

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pipe(t *testing.T) (*StreamConn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return NewStreamConn(server), client
}

func TestStreamConn_Send_And_Receive(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	a, b := NewStreamConn(server), NewStreamConn(client)

	frames := []domain.Frame{domain.NewPresence("alice"), domain.NewMessage("alice", "bob", "hi")}
	go func() {
		for _, f := range frames {
			_ = a.Send(f)
		}
	}()

	// Frames come out one by one in order
	for _, want := range frames {
		got, err := b.Receive()
		req.NoError(err)
		req.Equal(want, got)
	}
}

func TestStreamConn_Receive_Two_Frames_In_One_Write(t *testing.T) {
	req := require.New(t)
	conn, raw := pipe(t)

	go func() {
		_, _ = raw.Write([]byte(`{"response":200}` + "\n" + `{"response":400,"error":"name taken"}` + "\n"))
	}()

	first, err := conn.Receive()
	req.NoError(err)
	req.Equal(domain.OK(), first)

	second, err := conn.Receive()
	req.NoError(err)
	req.Equal(domain.BadRequest(domain.ReasonNameTaken), second)
}

func TestStreamConn_Receive_Rejects_Frame_Without_Delimiter_In_Bound(t *testing.T) {
	conn, raw := pipe(t)

	go func() {
		_, _ = raw.Write([]byte(`{"mess_text":"` + strings.Repeat("x", 2*domain.MaxFrameSize)))
	}()

	_, err := conn.Receive()
	require.ErrorIs(t, err, errors.ErrMalformedFrame)
}

func TestStreamConn_Receive_Truncated_Stream(t *testing.T) {
	conn, raw := pipe(t)

	go func() {
		_, _ = raw.Write([]byte(`{"action":"exit"`))
		_ = raw.Close()
	}()

	_, err := conn.Receive()
	require.ErrorIs(t, err, errors.ErrMalformedFrame)
}

func TestStreamConn_Receive_Non_Object(t *testing.T) {
	conn, raw := pipe(t)

	go func() {
		_, _ = raw.Write([]byte("[1,2,3]\n"))
	}()

	_, err := conn.Receive()
	require.ErrorIs(t, err, errors.ErrNonObjectFrame)
}

func TestStreamConn_Receive_Continues_After_Invalid_Field(t *testing.T) {
	req := require.New(t)
	conn, raw := pipe(t)

	go func() {
		_, _ = raw.Write([]byte(`{"action":"exit","account_name":5}` + "\n" + `{"action":"exit","account_name":"alice"}` + "\n"))
	}()

	_, err := conn.Receive()
	req.ErrorIs(err, errors.ErrInvalidField)
	req.False(IsFatal(err))

	frame, err := conn.Receive()
	req.NoError(err)
	req.Equal("alice", frame.AccountName)
}

func TestStreamConn_Receive_Resumes_After_Timeout(t *testing.T) {
	req := require.New(t)
	conn, raw := pipe(t)
	resume := make(chan struct{})

	go func() {
		_, _ = raw.Write([]byte(`{"action":"exit",`))
		<-resume
		_, _ = raw.Write([]byte(`"account_name":"alice"}` + "\n"))
	}()

	// Given a read deadline expiring in the middle of a frame
	req.NoError(conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	_, err := conn.Receive()
	req.True(IsTimeout(err))
	req.False(IsFatal(err))

	// When the rest of the frame arrives
	close(resume)
	req.NoError(conn.SetReadDeadline(time.Time{}))
	frame, err := conn.Receive()

	// Then the frame is decoded whole
	req.NoError(err)
	req.Equal(domain.Frame{Action: domain.ActionExit, AccountName: "alice"}, frame)
}

func TestStreamConn_Send_Oversized_Writes_Nothing(t *testing.T) {
	req := require.New(t)
	conn, raw := pipe(t)

	err := conn.Send(domain.NewMessage("alice", "bob", strings.Repeat("x", domain.MaxFrameSize)))
	req.ErrorIs(err, errors.ErrFrameTooLarge)

	// Nothing reached the peer
	req.NoError(raw.SetReadDeadline(time.Now().Add(50 * time.Millisecond)))
	n, err := raw.Read(make([]byte, 16))
	req.Zero(n)
	req.True(IsTimeout(err))
}
