//go:generate go run go.uber.org/mock/mockgen -source=journal.go -destination=../mocks/mock_journal.go -package=mocks
// Package storage persists the chat transcript locally. The engine keeps a
// session alive only in memory; the journal is what survives a restart and
// what the search index is built from.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"pairpad/domain"
)

// Journal is an append-only record of chat messages keyed by room.
// The key is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the message UUID as a collision
//     disconnector if two messages arrive at the same nanosecond.
type Journal struct {
	db  *badger.DB
	log *slog.Logger
}

func NewJournal(db *badger.DB, log *slog.Logger) *Journal {
	return &Journal{db: db, log: log}
}

// Open creates a badger-backed journal at path. An empty path opens an
// in-memory database, used by tests and the throwaway dev setup.
func Open(path string, log *slog.Logger) (*Journal, error) {
	var options badger.Options
	if path == "" {
		options = badger.DefaultOptions("").WithInMemory(true)
	} else {
		options = badger.DefaultOptions(path)
	}
	db, err := badger.Open(options.WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, err
	}
	return NewJournal(db, log), nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Append persists one message. Re-appending the same message is idempotent:
// the key embeds the message ID, so a redelivered event overwrites its own
// entry instead of duplicating it.
func (j *Journal) Append(roomID string, message domain.ChatMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		roomID,
		message.SentAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Recent returns the last limit messages of a room in chronological order.
// A reverse prefix scan collects the newest entries first; thanks to the
// padded timestamp in the key no value needs to be decoded to sort.
func (j *Journal) Recent(roomID string, limit int) ([]domain.ChatMessage, error) {
	var byteMessages [][]byte
	err := j.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", roomID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past every possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(byteMessages) == limit {
				j.log.Debug("Journal scan limit reached", "room", roomID, "limit", limit)
				break
			}
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0, len(byteMessages))
	for _, b := range byteMessages {
		var message domain.ChatMessage
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return lo.Reverse(messages), nil
}
