package domain

import (
	"chat-relay/errors"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUser_Nested_Form_Is_Preserved(t *testing.T) {
	req := require.New(t)

	// Given a presence frame with a nested user
	presence := NewPresence("alice")

	// When it goes through JSON and back
	data, err := json.Marshal(presence)
	req.NoError(err)
	req.Contains(string(data), `"user":{"account_name":"alice"}`)

	var decoded Frame
	req.NoError(json.Unmarshal(data, &decoded))

	// Then the user field keeps its nested form
	req.Equal(presence, decoded)
	req.True(decoded.User.Nested)
}

func TestUser_Plain_Form_Is_Preserved(t *testing.T) {
	req := require.New(t)
	frame := NewGetContacts("bob")

	data, err := json.Marshal(frame)
	req.NoError(err)
	req.Contains(string(data), `"user":"bob"`)

	var decoded Frame
	req.NoError(json.Unmarshal(data, &decoded))
	req.Equal(frame, decoded)
	req.False(decoded.User.Nested)
	req.Equal("bob", decoded.UserName())
}

func TestUser_Rejects_Other_Json_Types(t *testing.T) {
	var frame Frame
	err := json.Unmarshal([]byte(`{"action":"presence","user":42}`), &frame)
	require.Error(t, err)
}

func TestFrame_Validate(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		wantErr bool
	}{
		{"presence", NewPresence("alice"), false},
		{"presence without user", Frame{Action: ActionPresence, Time: Now()}, true},
		{"presence without time", Frame{Action: ActionPresence, User: &User{AccountName: "alice", Nested: true}}, true},
		{"presence with plain user", Frame{Action: ActionPresence, Time: Now(), User: &User{AccountName: "alice"}}, true},
		{"presence with colon in name", NewPresence("al:ice"), true},
		{"presence with long name", NewPresence(strings.Repeat("a", 65)), true},
		{"message", NewMessage("alice", "bob", "hi"), false},
		{"message without text", NewMessage("alice", "bob", ""), true},
		{"message without destination", NewMessage("alice", "", "hi"), true},
		{"message without time", Frame{Action: ActionMessage, From: "alice", To: "bob", Text: "hi"}, true},
		{"exit", NewExit("alice"), false},
		{"exit without account", Frame{Action: ActionExit}, true},
		{"get contacts", NewGetContacts("alice"), false},
		{"get contacts without user", Frame{Action: ActionGetContacts}, true},
		{"add contact", NewAddContact("alice", "bob"), false},
		{"add contact without contact", NewAddContact("alice", ""), true},
		{"remove contact", NewRemoveContact("alice", "bob"), false},
		{"users request", NewUsersRequest("alice"), false},
		{"missing action", Frame{Time: Now()}, true},
		{"unknown action", Frame{Action: "dance"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestListResponse_Never_Nil(t *testing.T) {
	frame := ListResponse(nil)
	require.NotNil(t, frame.ListInfo)
	require.Equal(t, StatusAccepted, frame.Response)
	require.True(t, frame.IsResponse())
}

func TestNewPort(t *testing.T) {
	req := require.New(t)

	port, err := NewPort(DefaultPort)
	req.NoError(err)
	req.Equal(Port(7777), port)

	_, err = NewPort(80)
	req.ErrorIs(err, errors.ErrInvalidPort)

	_, err = NewPort(70000)
	req.ErrorIs(err, errors.ErrInvalidPort)

	_, err = NewPort(MinPort)
	req.NoError(err)
}
