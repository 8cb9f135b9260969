//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
)

// IServerStorage is the persistence boundary of the server: users, sessions,
// contacts and routing counters.
type IServerStorage interface {
	UserLogin(name, ip string, port int) error
	UserLogout(name string) error
	UsersList() ([]domain.KnownUser, error)
	ActiveUsersList() ([]domain.ActiveUser, error)
	LoginHistory(name *string) ([]domain.LoginRecord, error)
	GetContacts(name string) ([]string, error)
	AddContact(user, contact string) error
	RemoveContact(user, contact string) error
	ProcessMessage(from, to string) error
	MessageHistory() ([]domain.MessageStat, error)
}

// IClientStorage keeps the local state of one client: contacts and known users
// mirrored from the server, and the message history.
type IClientStorage interface {
	AddContact(contact string) error
	DelContact(contact string) error
	AddUsers(users []string) error
	GetContacts() ([]string, error)
	GetUsers() ([]string, error)
	CheckUser(user string) (bool, error)
	CheckContact(contact string) (bool, error)
	SaveMessage(from, to, text string) error
	GetHistory(from, to *string) ([]domain.HistoryMessage, error)
	SearchHistory(ctx context.Context, text string, limit int) ([]domain.HistoryMessage, error)
}
