// Package codec turns frames into bytes and back. Frames travel as UTF-8 JSON objects,
// one per line, never longer than domain.MaxFrameSize.
package codec

import (
	"bytes"
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	"fmt"
)

const delimiter = '\n'

// Encode serializes a frame without its delimiter.
func Encode(frame domain.Frame) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(frame); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedFrame, err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte{delimiter})
	if len(data) > domain.MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", errors.ErrFrameTooLarge, len(data), domain.MaxFrameSize)
	}
	return data, nil
}

// Decode parses one frame. Input longer than domain.MaxFrameSize is treated as a
// truncated read and rejected. A well formed object whose fields have the wrong type
// gives errors.ErrInvalidField: the stream itself is still in sync.
func Decode(data []byte) (domain.Frame, error) {
	if len(data) > domain.MaxFrameSize {
		return domain.Frame{}, fmt.Errorf("%w: %d bytes, limit %d", errors.ErrMalformedFrame, len(data), domain.MaxFrameSize)
	}
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return domain.Frame{}, fmt.Errorf("%w: invalid json", errors.ErrMalformedFrame)
	}
	if trimmed[0] != '{' {
		return domain.Frame{}, fmt.Errorf("%w: got %q", errors.ErrNonObjectFrame, trimmed[0])
	}
	var frame domain.Frame
	if err := json.Unmarshal(trimmed, &frame); err != nil {
		return domain.Frame{}, fmt.Errorf("%w: %v", errors.ErrInvalidField, err)
	}
	return frame, nil
}
