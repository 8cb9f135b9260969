package repositories

import (
	"chat-relay/domain"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server key layout:
//
//	user:{name}                   known user, last login
//	active:{name}                 online user, ip, port, login time
//	login:{name}:{ts019}          one login
//	contact:{user}:{contact}      contact edge
//	stats:{name}                  sent and accepted message counters
//
// Names never contain ':' (see domain.ValidateName).
const (
	userPrefix    = "user:"
	activePrefix  = "active:"
	loginPrefix   = "login:"
	contactPrefix = "contact:"
	statsPrefix   = "stats:"
)

type ServerRepository struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

// NewServerRepository wraps db. Online users left by a previous run are dropped:
// nobody is connected to a server that just started.
func NewServerRepository(db *badger.DB, log *slog.Logger) (*ServerRepository, error) {
	if err := db.DropPrefix([]byte(activePrefix)); err != nil {
		return nil, storageError("clear active users", err)
	}
	return &ServerRepository{db: db, log: log, now: time.Now}, nil
}

// UserLogin records a login: the user becomes known, online, and the login is added
// to its history.
func (r *ServerRepository) UserLogin(name, ip string, port int) error {
	at := r.now()
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := set(txn, userPrefix+name, map[string]any{
			"name":       name,
			"last_login": formatTime(at),
		}); err != nil {
			return err
		}
		if err := set(txn, activePrefix+name, map[string]any{
			"name":       name,
			"ip":         ip,
			"port":       port,
			"login_time": formatTime(at),
		}); err != nil {
			return err
		}
		if err := set(txn, loginPrefix+name+":"+timeKey(at), map[string]any{
			"name": name,
			"ip":   ip,
			"port": port,
			"at":   formatTime(at),
		}); err != nil {
			return err
		}
		found, err := exists(txn, statsPrefix+name)
		if err != nil || found {
			return err
		}
		return set(txn, statsPrefix+name, map[string]any{"sent": 0, "accepted": 0})
	})
	return storageError("user login", err)
}

func (r *ServerRepository) UserLogout(name string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(activePrefix + name))
	})
	return storageError("user logout", err)
}

func (r *ServerRepository) UsersList() ([]domain.KnownUser, error) {
	var users []domain.KnownUser
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, userPrefix, func(_ string, record *structpb.Struct) error {
			users = append(users, domain.KnownUser{
				Name:      stringField(record, "name"),
				LastLogin: timeField(record, "last_login"),
			})
			return nil
		})
	})
	return users, storageError("users list", err)
}

func (r *ServerRepository) ActiveUsersList() ([]domain.ActiveUser, error) {
	var users []domain.ActiveUser
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, activePrefix, func(_ string, record *structpb.Struct) error {
			users = append(users, domain.ActiveUser{
				Name:      stringField(record, "name"),
				IP:        stringField(record, "ip"),
				Port:      intField(record, "port"),
				LoginTime: timeField(record, "login_time"),
			})
			return nil
		})
	})
	return users, storageError("active users list", err)
}

// LoginHistory returns the logins of name, or of every user when name is nil,
// grouped by user and oldest first.
func (r *ServerRepository) LoginHistory(name *string) ([]domain.LoginRecord, error) {
	prefix := loginPrefix
	if name != nil {
		prefix += *name + ":"
	}
	var history []domain.LoginRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefix, func(_ string, record *structpb.Struct) error {
			history = append(history, domain.LoginRecord{
				Name: stringField(record, "name"),
				IP:   stringField(record, "ip"),
				Port: intField(record, "port"),
				At:   timeField(record, "at"),
			})
			return nil
		})
	})
	return history, storageError("login history", err)
}

func (r *ServerRepository) GetContacts(name string) ([]string, error) {
	prefix := contactPrefix + name + ":"
	var contacts []string
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefix, func(key string, _ *structpb.Struct) error {
			contacts = append(contacts, strings.TrimPrefix(key, prefix))
			return nil
		})
	})
	return contacts, storageError("get contacts", err)
}

// AddContact adds the edge user -> contact. Unknown contacts and existing edges are
// ignored.
func (r *ServerRepository) AddContact(user, contact string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		known, err := exists(txn, userPrefix+contact)
		if err != nil {
			return err
		}
		if !known {
			r.log.Debug("Contact is not a known user", "user", user, "contact", contact)
			return nil
		}
		return set(txn, contactPrefix+user+":"+contact, map[string]any{"added": formatTime(r.now())})
	})
	return storageError("add contact", err)
}

func (r *ServerRepository) RemoveContact(user, contact string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(contactPrefix + user + ":" + contact))
	})
	return storageError("remove contact", err)
}

// ProcessMessage counts one message sent by from and accepted by to.
func (r *ServerRepository) ProcessMessage(from, to string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := r.increment(txn, from, "sent"); err != nil {
			return err
		}
		return r.increment(txn, to, "accepted")
	})
	return storageError("process message", err)
}

func (r *ServerRepository) increment(txn *badger.Txn, name, counter string) error {
	record, err := get(txn, statsPrefix+name)
	if err != nil {
		return err
	}
	stats := map[string]any{"sent": 0, "accepted": 0}
	if record != nil {
		stats["sent"] = intField(record, "sent")
		stats["accepted"] = intField(record, "accepted")
	}
	stats[counter] = stats[counter].(int) + 1
	return set(txn, statsPrefix+name, stats)
}

// MessageHistory returns the message counters of every user with their last login.
func (r *ServerRepository) MessageHistory() ([]domain.MessageStat, error) {
	var stats []domain.MessageStat
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, statsPrefix, func(key string, record *structpb.Struct) error {
			name := strings.TrimPrefix(key, statsPrefix)
			stat := domain.MessageStat{
				Name:     name,
				Sent:     intField(record, "sent"),
				Accepted: intField(record, "accepted"),
			}
			user, err := get(txn, userPrefix+name)
			if err != nil {
				return err
			}
			if user != nil {
				stat.LastLogin = timeField(user, "last_login")
			}
			stats = append(stats, stat)
			return nil
		})
	})
	return stats, storageError("message history", err)
}
