package storage_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pairpad/domain"
	"pairpad/storage"
)

func openJournal(t *testing.T) *storage.Journal {
	t.Helper()
	journal, err := storage.Open("", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })
	return journal
}

func message(name, text string, at time.Time) domain.ChatMessage {
	return domain.ChatMessage{
		ID:            uuid.New(),
		ParticipantID: uuid.NewString(),
		DisplayName:   name,
		Text:          text,
		SentAt:        at.UTC(),
	}
}

func Test_Append_And_Recent_Chronological(t *testing.T) {
	req := require.New(t)
	journal := openJournal(t)

	at := time.Now().UTC()
	messages := []domain.ChatMessage{
		message("alice", "first", at),
		message("bob", "second", at.Add(time.Minute)),
		message("carol", "third", at.Add(2*time.Minute)),
	}
	for _, m := range messages {
		req.NoError(journal.Append("r1", m))
	}

	fetched, err := journal.Recent("r1", 0)
	req.NoError(err)
	req.Len(fetched, len(messages))
	req.Equal(messages, fetched)
}

func Test_Recent_Limit_Keeps_Newest(t *testing.T) {
	req := require.New(t)
	journal := openJournal(t)

	at := time.Now().UTC()
	for i, text := range []string{"old", "mid", "new"} {
		req.NoError(journal.Append("r1", message("alice", text, at.Add(time.Duration(i)*time.Minute))))
	}

	fetched, err := journal.Recent("r1", 2)
	req.NoError(err)
	req.Len(fetched, 2)
	req.Equal("mid", fetched[0].Text)
	req.Equal("new", fetched[1].Text)
}

func Test_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	journal := openJournal(t)

	at := time.Now().UTC()
	req.NoError(journal.Append("r1", message("alice", "here", at)))
	req.NoError(journal.Append("r2", message("bob", "elsewhere", at)))

	fetched, err := journal.Recent("r1", 0)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("here", fetched[0].Text)
}

func Test_Redelivery_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	journal := openJournal(t)

	m := message("alice", "once", time.Now())
	req.NoError(journal.Append("r1", m))
	req.NoError(journal.Append("r1", m))

	fetched, err := journal.Recent("r1", 0)
	req.NoError(err)
	req.Len(fetched, 1)
}
