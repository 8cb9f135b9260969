// Package domain contains the protocol vocabulary shared by the server and the client:
// frames, actions, response codes and the records exposed by the storage gateways.
// No network or storage logic should be added here.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// MaxFrameSize is the maximum length in bytes of one encoded frame, delimiter excluded.
const MaxFrameSize = 1024

type Action string

const (
	ActionPresence      Action = "presence"
	ActionMessage       Action = "message"
	ActionExit          Action = "exit"
	ActionGetContacts   Action = "get-contacts"
	ActionAddContact    Action = "add-contact"
	ActionRemoveContact Action = "remove-contact"
	ActionUsersRequest  Action = "users-request"
)

// Known reports whether a is part of the protocol.
func (a Action) Known() bool {
	switch a {
	case ActionPresence, ActionMessage, ActionExit, ActionGetContacts,
		ActionAddContact, ActionRemoveContact, ActionUsersRequest:
		return true
	}
	return false
}

const (
	StatusOK         = 200
	StatusAccepted   = 202
	StatusBadRequest = 400
)

// Error texts sent back with a 400 response.
const (
	ReasonNameTaken          = "name taken"
	ReasonBadRequest         = "bad request"
	ReasonStorageUnavailable = "storage unavailable"
)

// Frame is one protocol unit. Requests carry an Action, responses carry a Response code.
type Frame struct {
	Action      Action   `json:"action,omitempty"`
	Time        float64  `json:"time,omitempty"`
	User        *User    `json:"user,omitempty"`
	AccountName string   `json:"account_name,omitempty"`
	From        string   `json:"from,omitempty"`
	To          string   `json:"to,omitempty"`
	Text        string   `json:"mess_text,omitempty"`
	Response    int      `json:"response,omitempty"`
	Error       string   `json:"error,omitempty"`
	ListInfo    []string `json:"list_info,omitempty"`
}

// IsResponse reports whether the frame answers a request.
func (f Frame) IsResponse() bool {
	return f.Response != 0
}

// User is the "user" field of a frame. The presence handshake sends it as a nested
// {"account_name": ...} object while contact requests send a bare name; the form read
// is the form written back.
type User struct {
	AccountName string
	Nested      bool
}

type nestedUser struct {
	AccountName string `json:"account_name"`
}

func (u User) MarshalJSON() ([]byte, error) {
	if u.Nested {
		return json.Marshal(nestedUser{AccountName: u.AccountName})
	}
	return json.Marshal(u.AccountName)
}

func (u *User) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty user field")
	}
	switch data[0] {
	case '"':
		u.Nested = false
		return json.Unmarshal(data, &u.AccountName)
	case '{':
		var n nestedUser
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		u.AccountName = n.AccountName
		u.Nested = true
		return nil
	default:
		return fmt.Errorf("user field must be a string or an object, got %s", data)
	}
}

// UserName returns the account name carried by the "user" field, or "" when absent.
func (f Frame) UserName() string {
	if f.User == nil {
		return ""
	}
	return f.User.AccountName
}

// Now returns the protocol timestamp: epoch seconds with sub-second precision.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func NewPresence(name string) Frame {
	return Frame{
		Action: ActionPresence,
		Time:   Now(),
		User:   &User{AccountName: name, Nested: true},
	}
}

func NewMessage(from, to, text string) Frame {
	return Frame{
		Action: ActionMessage,
		Time:   Now(),
		From:   from,
		To:     to,
		Text:   text,
	}
}

func NewExit(name string) Frame {
	return Frame{Action: ActionExit, Time: Now(), AccountName: name}
}

func NewGetContacts(name string) Frame {
	return Frame{Action: ActionGetContacts, Time: Now(), User: &User{AccountName: name}}
}

func NewAddContact(name, contact string) Frame {
	return Frame{Action: ActionAddContact, Time: Now(), User: &User{AccountName: name}, AccountName: contact}
}

func NewRemoveContact(name, contact string) Frame {
	return Frame{Action: ActionRemoveContact, Time: Now(), User: &User{AccountName: name}, AccountName: contact}
}

func NewUsersRequest(name string) Frame {
	return Frame{Action: ActionUsersRequest, Time: Now(), AccountName: name}
}

func OK() Frame {
	return Frame{Response: StatusOK}
}

func BadRequest(reason string) Frame {
	return Frame{Response: StatusBadRequest, Error: reason}
}

// ListResponse answers get-contacts and users-request.
func ListResponse(items []string) Frame {
	if items == nil {
		items = []string{}
	}
	return Frame{Response: StatusAccepted, ListInfo: items}
}
