package repositories

import (
	"fmt"
	"log/slog"
	"room-relay/contract"
	"room-relay/domain/chat"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ contract.MessageStore = MessageRepository{}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// OpenInMemory opens a badger instance that never touches the disk. Room
// logs must not outlive the process.
func OpenInMemory(debug bool) (*badger.DB, error) {
	options := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)
	if debug {
		options = options.WithLoggingLevel(badger.DEBUG)
	}
	return badger.Open(options)
}

// Append stores a message under "msg:{log_id}:{seq_padded}".
// The 19-digit zero padding keeps lexicographical order equal to insertion
// order, independently of message timestamps.
func (m MessageRepository) Append(logID string, seq uint64, message chat.Message) error {
	record, err := toRecord(message)
	if err != nil {
		return err
	}
	bytes, err := proto.Marshal(record)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(logID, seq), bytes)
	})
}

// List returns every message of a log in insertion order.
func (m MessageRepository) List(logID string) ([]chat.Message, error) {
	var records [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := logPrefix(logID)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			records = append(records, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]chat.Message, 0, len(records))
	for _, b := range records {
		var record structpb.Struct
		if err = proto.Unmarshal(b, &record); err != nil {
			return nil, err
		}
		message, err := fromRecord(&record)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Drop discards a whole log. Keys are deleted through a write batch, so
// appends to other logs keep going while it runs.
func (m MessageRepository) Drop(logID string) error {
	var keys [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := logPrefix(logID)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("drop log %s: %w", logID, err)
	}

	batch := m.db.NewWriteBatch()
	defer batch.Cancel()
	for _, key := range keys {
		if err = batch.Delete(key); err != nil {
			return fmt.Errorf("drop log %s: %w", logID, err)
		}
	}
	if err = batch.Flush(); err != nil {
		return fmt.Errorf("drop log %s: %w", logID, err)
	}
	m.log.Debug("Message log dropped", "log_id", logID, "messages", len(keys))
	return nil
}

func logPrefix(logID string) []byte {
	return []byte(fmt.Sprintf("msg:%s:", logID))
}

func messageKey(logID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d", logID, seq))
}

func toRecord(message chat.Message) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":      message.ID.String(),
		"room":    string(message.RoomID),
		"author":  message.SenderID,
		"content": message.Body,
		"at":      message.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func fromRecord(record *structpb.Struct) (chat.Message, error) {
	fields := record.GetFields()
	parsedID, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return chat.Message{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, fields["at"].GetStringValue())
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Message{
		ID:        parsedID,
		RoomID:    chat.RoomID(fields["room"].GetStringValue()),
		SenderID:  fields["author"].GetStringValue(),
		Body:      fields["content"].GetStringValue(),
		CreatedAt: at.UTC(),
	}, nil
}
