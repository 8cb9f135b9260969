package codec

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode_Decode_RoundTrip(t *testing.T) {
	frames := map[string]domain.Frame{
		"presence":       domain.NewPresence("alice"),
		"message":        domain.NewMessage("alice", "bob", "héllo <b>&</b> \"quoted\""),
		"exit":           domain.NewExit("alice"),
		"get contacts":   domain.NewGetContacts("alice"),
		"add contact":    domain.NewAddContact("alice", "bob"),
		"remove contact": domain.NewRemoveContact("alice", "bob"),
		"users request":  domain.NewUsersRequest("alice"),
		"ok":             domain.OK(),
		"bad request":    domain.BadRequest(domain.ReasonNameTaken),
		"list":           domain.ListResponse([]string{"bob", "clara"}),
	}
	for name, frame := range frames {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			data, err := Encode(frame)
			req.NoError(err)
			req.NotContains(string(data), "\n")

			decoded, err := Decode(data)
			req.NoError(err)
			req.Equal(frame, decoded)
		})
	}
}

func TestEncode_Keeps_Html_Characters(t *testing.T) {
	data, err := Encode(domain.NewMessage("alice", "bob", "<3 & more"))
	require.NoError(t, err)
	require.Contains(t, string(data), "<3 & more")
}

func TestEncode_Rejects_Oversized_Frame(t *testing.T) {
	req := require.New(t)

	// Given a message whose text alone exceeds the frame size
	frame := domain.NewMessage("alice", "bob", strings.Repeat("x", domain.MaxFrameSize))

	// When encoding
	data, err := Encode(frame)

	// Then nothing is produced
	req.ErrorIs(err, errors.ErrFrameTooLarge)
	req.Nil(data)
}

func TestEncode_Accepts_Frame_At_Limit(t *testing.T) {
	req := require.New(t)
	base, err := Encode(domain.Frame{Action: domain.ActionMessage, Text: "x"})
	req.NoError(err)

	// Grow the text so the encoded frame is exactly MaxFrameSize bytes
	text := strings.Repeat("x", domain.MaxFrameSize-len(base)+1)
	data, err := Encode(domain.Frame{Action: domain.ActionMessage, Text: text})
	req.NoError(err)
	req.Len(data, domain.MaxFrameSize)

	_, err = Encode(domain.Frame{Action: domain.ActionMessage, Text: text + "x"})
	req.ErrorIs(err, errors.ErrFrameTooLarge)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{"action":`, errors.ErrMalformedFrame},
		{"empty", ``, errors.ErrMalformedFrame},
		{"array", `["presence"]`, errors.ErrNonObjectFrame},
		{"string", `"presence"`, errors.ErrNonObjectFrame},
		{"number", `42`, errors.ErrNonObjectFrame},
		{"wrong field type", `{"action":"message","time":"yesterday"}`, errors.ErrInvalidField},
		{"wrong text type", `{"action":"message","time":1,"from":"alice","to":"bob","mess_text":5}`, errors.ErrInvalidField},
		{"wrong user type", `{"action":"get-contacts","user":5}`, errors.ErrInvalidField},
		{"wrong response type", `{"response":"ok"}`, errors.ErrInvalidField},
		{"oversized", `{"mess_text":"` + strings.Repeat("x", domain.MaxFrameSize) + `"}`, errors.ErrMalformedFrame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecode_Ignores_Unknown_Fields(t *testing.T) {
	frame, err := Decode([]byte(`{"action":"exit","account_name":"alice","extra":{"a":1}}`))
	require.NoError(t, err)
	require.Equal(t, domain.ActionExit, frame.Action)
	require.Equal(t, "alice", frame.AccountName)
}
