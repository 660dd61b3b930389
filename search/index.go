// Package search maintains a full-text index over the journaled chat
// transcript and answers /find queries from the terminal client.
package search

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"pairpad/contract"
	"pairpad/domain"
)

// Index wraps a bluge writer. Each chat message becomes one document keyed
// by its message ID, so re-indexing a redelivered message is an update, not
// a duplicate.
type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(writer *bluge.Writer, log *slog.Logger) *Index {
	return &Index{writer: writer, log: log}
}

// OpenIndex creates a bluge-backed index at path. An empty path keeps the
// index in memory for tests and the dev setup.
func OpenIndex(path string, log *slog.Logger) (*Index, error) {
	var config bluge.Config
	if path == "" {
		config = bluge.InMemoryOnlyConfig()
	} else {
		config = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(config)
	if err != nil {
		return nil, err
	}
	return NewIndex(writer, log), nil
}

func (i *Index) Close() error { return i.writer.Close() }

func (i *Index) Index(roomID string, message domain.ChatMessage) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField("room", roomID)).
		AddField(bluge.NewKeywordField("author", message.DisplayName).StoreValue()).
		AddField(bluge.NewTextField("text", message.Text).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.SentAt))
	return i.writer.Update(doc.ID(), doc)
}

// Search runs a match query over the message text, restricted to one room.
func (i *Index) Search(ctx context.Context, roomID, terms string, limit int) ([]contract.SearchHit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("text")).
		AddMust(bluge.NewTermQuery(roomID).SetField("room"))

	if limit <= 0 {
		limit = defaultLimit
	}
	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []contract.SearchHit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var hit contract.SearchHit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "author":
				hit.Author = string(value)
			case "text":
				hit.Text = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}

	i.log.Debug("Search done", "room", roomID, "terms", terms, "hits", len(hits))
	return hits, nil
}
