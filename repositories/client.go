package repositories

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client key layout:
//
//	known:{name}                  user known by the server
//	contact:{name}                contact of the local user
//	history:{ts019}:{uuid}        one message, sent or received
//
// Message texts are also indexed in bluge, the document id being the badger key.
const (
	knownPrefix   = "known:"
	historyPrefix = "history:"
	textField     = "text"

	defaultSearchLimit = 20
)

type ClientRepository struct {
	db    *badger.DB
	index *bluge.Writer
	log   *slog.Logger
	now   func() time.Time
}

// NewClientRepository wraps db and index. The contact list is dropped: it is
// reloaded from the server after every connection.
func NewClientRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger) (*ClientRepository, error) {
	if err := db.DropPrefix([]byte(contactPrefix)); err != nil {
		return nil, storageError("clear contacts", err)
	}
	return &ClientRepository{db: db, index: index, log: log, now: time.Now}, nil
}

func (r *ClientRepository) AddContact(contact string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return set(txn, contactPrefix+contact, map[string]any{"name": contact})
	})
	return storageError("add contact", err)
}

func (r *ClientRepository) DelContact(contact string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(contactPrefix + contact))
	})
	return storageError("delete contact", err)
}

// AddUsers replaces the known users with users.
func (r *ClientRepository) AddUsers(users []string) error {
	if err := r.db.DropPrefix([]byte(knownPrefix)); err != nil {
		return storageError("clear known users", err)
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, user := range lo.Uniq(users) {
			if err := set(txn, knownPrefix+user, map[string]any{"name": user}); err != nil {
				return err
			}
		}
		return nil
	})
	return storageError("add users", err)
}

func (r *ClientRepository) GetContacts() ([]string, error) {
	contacts, err := r.names(contactPrefix)
	return contacts, storageError("get contacts", err)
}

func (r *ClientRepository) GetUsers() ([]string, error) {
	users, err := r.names(knownPrefix)
	return users, storageError("get users", err)
}

func (r *ClientRepository) CheckUser(user string) (bool, error) {
	found, err := r.has(knownPrefix + user)
	return found, storageError("check user", err)
}

func (r *ClientRepository) CheckContact(contact string) (bool, error) {
	found, err := r.has(contactPrefix + contact)
	return found, storageError("check contact", err)
}

// SaveMessage stores a message and indexes its text. A failed indexation is logged,
// the message stays in the history.
func (r *ClientRepository) SaveMessage(from, to, text string) error {
	message := domain.HistoryMessage{ID: uuid.New(), From: from, To: to, Text: text, At: r.now()}
	key := historyPrefix + timeKey(message.At) + ":" + message.ID.String()

	err := r.db.Update(func(txn *badger.Txn) error {
		return set(txn, key, map[string]any{
			"id":   message.ID.String(),
			"from": message.From,
			"to":   message.To,
			"text": message.Text,
			"at":   formatTime(message.At),
		})
	})
	if err != nil {
		return storageError("save message", err)
	}

	doc := bluge.NewDocument(key).
		AddField(bluge.NewTextField(textField, text)).
		AddField(bluge.NewKeywordField("from", from)).
		AddField(bluge.NewKeywordField("to", to))
	if err := r.index.Update(doc.ID(), doc); err != nil {
		r.log.Warn("Message not indexed", "key", key, "error", err)
	}
	return nil
}

// GetHistory returns the messages matching the optional sender and recipient,
// oldest first.
func (r *ClientRepository) GetHistory(from, to *string) ([]domain.HistoryMessage, error) {
	var history []domain.HistoryMessage
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, historyPrefix, func(_ string, record *structpb.Struct) error {
			message, err := toHistoryMessage(record)
			if err != nil {
				return err
			}
			history = append(history, message)
			return nil
		})
	})
	if err != nil {
		return nil, storageError("get history", err)
	}
	return lo.Filter(history, func(m domain.HistoryMessage, _ int) bool {
		return (from == nil || m.From == *from) && (to == nil || m.To == *to)
	}), nil
}

// SearchHistory returns up to limit messages whose text matches text, best match
// first.
func (r *ClientRepository) SearchHistory(ctx context.Context, text string, limit int) ([]domain.HistoryMessage, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	reader, err := r.index.Reader()
	if err != nil {
		return nil, storageError("open index", err)
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewMatchQuery(text).SetField(textField)
	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, storageError("search history", err)
	}

	var keys []string
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				keys = append(keys, string(value))
			}
			return true
		})
		if err == nil {
			match, err = matches.Next()
		}
	}
	if err != nil {
		return nil, storageError("search history", err)
	}

	var found []domain.HistoryMessage
	err = r.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			record, err := get(txn, key)
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			message, err := toHistoryMessage(record)
			if err != nil {
				return err
			}
			found = append(found, message)
		}
		return nil
	})
	return found, storageError("search history", err)
}

func (r *ClientRepository) names(prefix string) ([]string, error) {
	var names []string
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefix, func(key string, _ *structpb.Struct) error {
			names = append(names, strings.TrimPrefix(key, prefix))
			return nil
		})
	})
	return names, err
}

func (r *ClientRepository) has(key string) (bool, error) {
	var found bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = exists(txn, key)
		return err
	})
	return found, err
}

func toHistoryMessage(record *structpb.Struct) (domain.HistoryMessage, error) {
	id, err := uuid.Parse(stringField(record, "id"))
	if err != nil {
		return domain.HistoryMessage{}, err
	}
	return domain.HistoryMessage{
		ID:   id,
		From: stringField(record, "from"),
		To:   stringField(record, "to"),
		Text: stringField(record, "text"),
		At:   timeField(record, "at"),
	}, nil
}
