// Package sink holds engine notification consumers that live outside the
// rendering layer.
package sink

import (
	"context"
	"log/slog"

	"pairpad/contract"
	"pairpad/domain/event"
)

// JournalSink persists every chat message the engine appends and feeds the
// search index. It runs on the engine loop, so failures are logged and
// swallowed rather than propagated: losing one journal entry must never
// stall the session.
type JournalSink struct {
	journal contract.IJournal
	index   contract.ISearchIndex
	log     *slog.Logger
}

func NewJournalSink(journal contract.IJournal, index contract.ISearchIndex, log *slog.Logger) *JournalSink {
	return &JournalSink{journal: journal, index: index, log: log}
}

// Consume is called by the engine for every notification.
func (s *JournalSink) Consume(_ context.Context, n event.Notification) error {
	appended, ok := n.(event.ChatAppended)
	if !ok {
		return nil
	}

	if err := s.journal.Append(appended.RoomID, appended.Message); err != nil {
		s.log.Warn("Journal append failed", "room", appended.RoomID, "err", err)
		return nil
	}
	if err := s.index.Index(appended.RoomID, appended.Message); err != nil {
		s.log.Warn("Index update failed", "room", appended.RoomID, "err", err)
	}
	return nil
}
