package search_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pairpad/domain"
	"pairpad/search"
)

func openIndex(t *testing.T) *search.Index {
	t.Helper()
	index, err := search.OpenIndex("", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func indexed(t *testing.T, index *search.Index, roomID, author, text string) domain.ChatMessage {
	t.Helper()
	message := domain.ChatMessage{
		ID:            uuid.New(),
		ParticipantID: uuid.NewString(),
		DisplayName:   author,
		Text:          text,
		SentAt:        time.Now().UTC(),
	}
	require.NoError(t, index.Index(roomID, message))
	return message
}

func TestIndex_FindsByTerm(t *testing.T) {
	req := require.New(t)
	index := openIndex(t)

	sent := indexed(t, index, "r1", "alice", "the deploy script is broken again")
	indexed(t, index, "r1", "bob", "lunch at noon")

	hits, err := index.Search(context.Background(), "r1", "deploy", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(sent.ID.String(), hits[0].MessageID)
	req.Equal("alice", hits[0].Author)
	req.Contains(hits[0].Text, "deploy")
}

func TestIndex_CaseInsensitive(t *testing.T) {
	req := require.New(t)
	index := openIndex(t)
	indexed(t, index, "r1", "alice", "Kubernetes rollout strategy")

	for _, terms := range []string{"kubernetes", "KUBERNETES", "KuBeRnEtEs"} {
		hits, err := index.Search(context.Background(), "r1", terms, 10)
		req.NoError(err, "terms: %s", terms)
		req.Len(hits, 1, "terms: %s", terms)
	}
}

func TestIndex_RoomIsolation(t *testing.T) {
	req := require.New(t)
	index := openIndex(t)

	indexed(t, index, "r1", "alice", "secret project alpha")
	indexed(t, index, "r2", "bob", "secret project beta")

	hits, err := index.Search(context.Background(), "r1", "secret", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Contains(hits[0].Text, "alpha")
}

func TestIndex_ReindexSameMessageIsUpdate(t *testing.T) {
	req := require.New(t)
	index := openIndex(t)

	message := indexed(t, index, "r1", "alice", "flaky websocket reconnect")
	req.NoError(index.Index("r1", message))

	hits, err := index.Search(context.Background(), "r1", "reconnect", 10)
	req.NoError(err)
	req.Len(hits, 1)
}

func TestNewQuery_ParsesTermsAndFlags(t *testing.T) {
	req := require.New(t)

	query := search.NewQuery(`/find deploy script --limit 5 --room 7f3a`)
	req.Equal("deploy script", query.Terms)
	req.Equal(5, query.Limit)
	req.Equal("7f3a", query.RoomID)
}

func TestNewQuery_Defaults(t *testing.T) {
	req := require.New(t)

	query := search.NewQuery(`/find "broken build"`)
	req.Equal("broken build", query.Terms)
	req.Equal(10, query.Limit)
	req.Empty(query.RoomID)
}

func TestNewQuery_IgnoresBadLimit(t *testing.T) {
	req := require.New(t)

	query := search.NewQuery(`/find panic --limit zero`)
	req.Equal("panic", query.Terms)
	req.Equal(10, query.Limit)
}
