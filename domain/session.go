// Package domain contains core concepts of the collaborative editor.
// It defines the client-local room mirror, participants, messages and the
// session state machines. No network, timer, or UI logic belongs here.
package domain

import "github.com/google/uuid"

// ConnectionState reflects liveness of the push channel as seen by the engine.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// MembershipState is the room join state machine:
// Idle -> Joining -> (Joined | JoinFailed).
type MembershipState int

const (
	Idle MembershipState = iota
	Joining
	Joined
	JoinFailed
)

func (s MembershipState) String() string {
	switch s {
	case Joining:
		return "joining"
	case Joined:
		return "joined"
	case JoinFailed:
		return "join_failed"
	default:
		return "idle"
	}
}

// Session identifies one room membership. It is owned by a single engine
// instance and discarded when the participant leaves.
type Session struct {
	ID            uuid.UUID
	RoomID        string
	ParticipantID string
	DisplayName   string
	Connection    ConnectionState
}

func NewSession(displayName string) Session {
	return Session{
		ID:            uuid.New(),
		ParticipantID: uuid.NewString(),
		DisplayName:   displayName,
		Connection:    Disconnected,
	}
}
