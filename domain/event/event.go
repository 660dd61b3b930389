// Package event defines the discriminated frames pushed by the backend and
// the notifications the engine emits towards its sinks. Decoding is kept
// here so the transport stays free of business types.
package event

import (
	"encoding/json"
	"fmt"

	"pairpad/domain"
	"pairpad/errors"
)

const (
	TypePing              = "ping"
	TypeParticipantJoined = "participant_joined"
	TypeParticipantLeft   = "participant_left"
	TypeDocumentUpdated   = "document_updated"
	TypeCursorUpdated     = "cursor_updated"
	TypeChatMessage       = "chat_message"
)

// ServerEvent is one decoded frame from the push channel, applied by the
// engine in arrival order.
type ServerEvent interface {
	EventType() string
}

// Ping is the periodic keep-alive frame. It must be accepted as a no-op.
type Ping struct{}

func (Ping) EventType() string { return TypePing }

// ParticipantJoined carries the room roster wholesale, not a diff.
type ParticipantJoined struct {
	Roster []domain.Participant `json:"roster"`
}

func (ParticipantJoined) EventType() string { return TypeParticipantJoined }

type ParticipantLeft struct {
	Roster []domain.Participant `json:"roster"`
}

func (ParticipantLeft) EventType() string { return TypeParticipantLeft }

// DocumentUpdated replaces the document wholesale. ParticipantID identifies
// the author so recipients can suppress their own echo.
type DocumentUpdated struct {
	ParticipantID string `json:"participant_id"`
	Text          string `json:"text"`
}

func (DocumentUpdated) EventType() string { return TypeDocumentUpdated }

type CursorUpdated struct {
	ParticipantID string                `json:"participant_id"`
	Position      domain.CursorPosition `json:"position"`
}

func (CursorUpdated) EventType() string { return TypeCursorUpdated }

type ChatMessage struct {
	Message domain.ChatMessage
}

func (ChatMessage) EventType() string { return TypeChatMessage }

// ChannelUp and ChannelDown are synthesized by the transport itself, never
// sent by the backend. They flow through the same ordered stream so the
// engine observes connectivity transitions in sequence with events.
type ChannelUp struct{}

func (ChannelUp) EventType() string { return "_channel_up" }

type ChannelDown struct {
	Err error
}

func (ChannelDown) EventType() string { return "_channel_down" }

// Decode parses a raw frame into its concrete event. Unknown types return
// ErrUnknownEventType so the caller can log and drop them: that is the
// forward-compatibility contract of the channel.
func Decode(raw []byte) (ServerEvent, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch envelope.Type {
	case TypePing:
		return Ping{}, nil
	case TypeParticipantJoined:
		var e ParticipantJoined
		return e, json.Unmarshal(raw, &e)
	case TypeParticipantLeft:
		var e ParticipantLeft
		return e, json.Unmarshal(raw, &e)
	case TypeDocumentUpdated:
		var e DocumentUpdated
		return e, json.Unmarshal(raw, &e)
	case TypeCursorUpdated:
		var e CursorUpdated
		return e, json.Unmarshal(raw, &e)
	case TypeChatMessage:
		var msg domain.ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return ChatMessage{Message: msg}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEventType, envelope.Type)
	}
}

// Encode is the mirror of Decode, used by the reference backend to build
// frames. The type discriminator is injected next to the payload fields.
func Encode(e ServerEvent) ([]byte, error) {
	var payload any = e
	if chat, ok := e.(ChatMessage); ok {
		payload = chat.Message
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	typeRaw, _ := json.Marshal(e.EventType())
	fields["type"] = typeRaw
	return json.Marshal(fields)
}
