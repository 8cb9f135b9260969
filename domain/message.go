package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryMessage is one message kept in the client history.
type HistoryMessage struct {
	ID   uuid.UUID
	From string
	To   string
	Text string
	At   time.Time
}

// KnownUser is a user the server has seen at least once.
type KnownUser struct {
	Name      string
	LastLogin time.Time
}

// ActiveUser is a user currently logged in, with the peer address of its connection.
type ActiveUser struct {
	Name      string
	IP        string
	Port      int
	LoginTime time.Time
}

type LoginRecord struct {
	Name string
	IP   string
	Port int
	At   time.Time
}

// MessageStat counts messages routed from and to a user.
type MessageStat struct {
	Name      string
	LastLogin time.Time
	Sent      int
	Accepted  int
}
