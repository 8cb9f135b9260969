package codec

import (
	"bufio"
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// Conn is the frame-level view of a connection. Server and client components only
// exchange whole frames through it.
type Conn interface {
	Send(frame domain.Frame) error
	Receive() (domain.Frame, error)
	SetReadDeadline(t time.Time) error
	RemoteAddr() net.Addr
	Close() error
}

// StreamConn frames a byte stream with one JSON object per line.
type StreamConn struct {
	conn    net.Conn
	reader  *bufio.Reader
	pending []byte
	writeMu sync.Mutex
}

func NewStreamConn(conn net.Conn) *StreamConn {
	return &StreamConn{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, domain.MaxFrameSize+1),
	}
}

// Send encodes the whole frame before writing, so a frame that is too large is never
// partially written.
func (c *StreamConn) Send(frame domain.Frame) error {
	data, err := Encode(frame)
	if err != nil {
		return err
	}
	data = append(data, delimiter)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.conn.Write(data)
	return err
}

// Receive reads at most domain.MaxFrameSize bytes plus the delimiter. Bytes of a frame
// interrupted by a read deadline are kept for the next call.
func (c *StreamConn) Receive() (domain.Frame, error) {
	chunk, err := c.reader.ReadSlice(delimiter)
	if errors.Is(err, bufio.ErrBufferFull) || len(c.pending)+len(chunk) > domain.MaxFrameSize+1 {
		c.pending = c.pending[:0]
		return domain.Frame{}, fmt.Errorf("%w: no delimiter within %d bytes", errors.ErrMalformedFrame, domain.MaxFrameSize)
	}
	c.pending = append(c.pending, chunk...)

	switch {
	case err == nil:
		frame, decodeErr := Decode(c.pending[:len(c.pending)-1])
		c.pending = c.pending[:0]
		return frame, decodeErr
	case errors.Is(err, io.EOF) && len(c.pending) > 0:
		c.pending = c.pending[:0]
		return domain.Frame{}, fmt.Errorf("%w: stream ended mid-frame", errors.ErrMalformedFrame)
	default:
		return domain.Frame{}, err
	}
}

func (c *StreamConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *StreamConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *StreamConn) Close() error {
	return c.conn.Close()
}

// IsTimeout reports whether err is an expired read deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsFatal reports whether a receive error leaves the stream unusable.
func IsFatal(err error) bool {
	return err != nil && !IsTimeout(err) && !errors.Is(err, errors.ErrInvalidField)
}
