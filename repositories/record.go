package repositories

import (
	"chat-relay/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Records are stored as protobuf Struct messages. Timestamps are kept as RFC 3339
// strings because Struct numbers are float64.

func encodeRecord(fields map[string]any) ([]byte, error) {
	record, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(record)
}

func decodeRecord(data []byte) (*structpb.Struct, error) {
	var record structpb.Struct
	if err := proto.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func stringField(record *structpb.Struct, name string) string {
	return record.GetFields()[name].GetStringValue()
}

func intField(record *structpb.Struct, name string) int {
	return int(record.GetFields()[name].GetNumberValue())
}

func timeField(record *structpb.Struct, name string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, stringField(record, name))
	if err != nil {
		return time.Time{}
	}
	return t
}

// timeKey renders t so that keys sort chronologically.
func timeKey(t time.Time) string {
	return fmt.Sprintf("%019d", t.UnixNano())
}

// scan decodes every record whose key starts with prefix, in key order.
func scan(txn *badger.Txn, prefix string, fn func(key string, record *structpb.Struct) error) error {
	options := badger.DefaultIteratorOptions
	options.Prefix = []byte(prefix)
	it := txn.NewIterator(options)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := string(item.Key())
		err := item.Value(func(val []byte) error {
			record, err := decodeRecord(val)
			if err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			return fn(key, record)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// get decodes the record stored under key. Missing keys return nil without error.
func get(txn *badger.Txn, key string) (*structpb.Struct, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record *structpb.Struct
	err = item.Value(func(val []byte) error {
		record, err = decodeRecord(val)
		return err
	})
	return record, err
}

func set(txn *badger.Txn, key string, fields map[string]any) error {
	data, err := encodeRecord(fields)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func storageError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", errors.ErrStorage, operation, err)
}
