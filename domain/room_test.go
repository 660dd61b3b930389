package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRoomState_ReplaceRoster_DropsStaleEntries(t *testing.T) {
	state := NewRoomState()
	state.ReplaceRoster([]Participant{
		{ID: "a", DisplayName: "alice"},
		{ID: "b", DisplayName: "bob"},
	})
	state.Cursors["a"] = CursorPosition{Line: 1, Column: 2}
	state.Cursors["b"] = CursorPosition{Line: 3, Column: 4}

	// bob leaves: the event carries the new roster wholesale
	state.ReplaceRoster([]Participant{{ID: "a", DisplayName: "alice"}})

	require.Len(t, state.Roster, 1)
	require.Equal(t, "alice", state.Roster["a"].DisplayName)
	require.NotContains(t, state.Cursors, "b")
	require.Contains(t, state.Cursors, "a")
}

func TestRoomState_Hydrate_ReplacesChatLogWholesale(t *testing.T) {
	state := NewRoomState()
	state.AppendChat(ChatMessage{Text: "stale"})

	snap := RoomSnapshot{
		RoomID:   "r1",
		RoomName: "pairing",
		Language: "go",
		Document: "package main",
		Roster:   []Participant{{ID: "a", DisplayName: "alice"}},
		ChatHistory: []ChatMessage{
			{ID: uuid.New(), ParticipantID: "a", DisplayName: "alice", Text: "hi", SentAt: time.Now()},
		},
	}
	state.Hydrate(snap)

	require.Equal(t, "package main", state.Document)
	require.Len(t, state.ChatLog, 1)
	require.Equal(t, "hi", state.ChatLog[0].Text)
	require.Len(t, state.Roster, 1)
}

func TestRoomState_Snapshot_IsDetached(t *testing.T) {
	state := NewRoomState()
	state.Document = "v1"
	state.AppendChat(ChatMessage{Text: "one"})

	snap := state.Snapshot()
	state.Document = "v2"
	state.AppendChat(ChatMessage{Text: "two"})

	require.Equal(t, "v1", snap.Document)
	require.Len(t, snap.ChatHistory, 1)
}
