package event_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pairpad/domain"
	"pairpad/domain/event"
	"pairpad/errors"
)

func TestDecode_DocumentUpdated(t *testing.T) {
	raw := []byte(`{"type":"document_updated","participant_id":"p1","text":"package main"}`)

	evt, err := event.Decode(raw)
	require.NoError(t, err)

	update, ok := evt.(event.DocumentUpdated)
	require.True(t, ok)
	require.Equal(t, "p1", update.ParticipantID)
	require.Equal(t, "package main", update.Text)
}

func TestDecode_UnknownTypeIsDropped(t *testing.T) {
	raw := []byte(`{"type":"presence_v2","payload":{}}`)

	_, err := event.Decode(raw)
	require.ErrorIs(t, err, errors.ErrUnknownEventType)
}

func TestDecode_PingIsNoOp(t *testing.T) {
	evt, err := event.Decode([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	require.IsType(t, event.Ping{}, evt)
}

func TestDecode_MalformedFrame(t *testing.T) {
	_, err := event.Decode([]byte(`{"type":`))
	require.Error(t, err)
}

func TestEncodeDecode_ChatMessage(t *testing.T) {
	msg := domain.ChatMessage{
		ID:            uuid.New(),
		ParticipantID: "p1",
		DisplayName:   "alice",
		Text:          "hello",
		SentAt:        time.Now().UTC().Truncate(time.Second),
	}

	raw, err := event.Encode(event.ChatMessage{Message: msg})
	require.NoError(t, err)

	evt, err := event.Decode(raw)
	require.NoError(t, err)

	chat, ok := evt.(event.ChatMessage)
	require.True(t, ok)
	require.Equal(t, msg, chat.Message)
}

func TestEncodeDecode_Roster(t *testing.T) {
	roster := []domain.Participant{
		{ID: "a", DisplayName: "alice"},
		{ID: "b", DisplayName: "bob"},
	}

	raw, err := event.Encode(event.ParticipantLeft{Roster: roster})
	require.NoError(t, err)

	evt, err := event.Decode(raw)
	require.NoError(t, err)

	left, ok := evt.(event.ParticipantLeft)
	require.True(t, ok)
	require.Equal(t, roster, left.Roster)
}
