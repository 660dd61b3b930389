package event

import "pairpad/domain"

// Notification is an engine-originated event consumed by UI-facing sinks:
// renderers, the chat journal, metrics. Sinks must be fast, they run on the
// engine loop.
type Notification interface {
	Kind() string
}

type ConnectionChanged struct {
	State domain.ConnectionState
}

func (ConnectionChanged) Kind() string { return "connection_changed" }

// RoomJoined carries the hydrated baseline after a successful join.
type RoomJoined struct {
	Session  domain.Session
	Snapshot domain.RoomSnapshot
}

func (RoomJoined) Kind() string { return "room_joined" }

type JoinFailed struct {
	Err error
}

func (JoinFailed) Kind() string { return "join_failed" }

type RoomLeft struct{}

func (RoomLeft) Kind() string { return "room_left" }

// DocumentReplaced reports a remote edit applied to the local mirror. Local
// optimistic edits are not reported, the caller already has them.
type DocumentReplaced struct {
	ParticipantID string
	Text          string
}

func (DocumentReplaced) Kind() string { return "document_replaced" }

type RosterUpdated struct {
	Roster []domain.Participant
}

func (RosterUpdated) Kind() string { return "roster_updated" }

type CursorMoved struct {
	ParticipantID string
	Position      domain.CursorPosition
}

func (CursorMoved) Kind() string { return "cursor_moved" }

type ChatAppended struct {
	RoomID  string
	Message domain.ChatMessage
}

func (ChatAppended) Kind() string { return "chat_appended" }

// SyncFailed reports a failed mutating request. Optimistic local state is
// kept and no automatic retry is performed.
type SyncFailed struct {
	Op  string
	Err error
}

func (SyncFailed) Kind() string { return "sync_failed" }

// ActionRejected reports a local-origin action refused before any network
// call (validation, single-flight, membership guards).
type ActionRejected struct {
	Action string
	Err    error
}

func (ActionRejected) Kind() string { return "action_rejected" }

type DocumentSaved struct{}

func (DocumentSaved) Kind() string { return "document_saved" }

type RunStarted struct{}

func (RunStarted) Kind() string { return "run_started" }

type RunCompleted struct {
	Result domain.RunResult
}

func (RunCompleted) Kind() string { return "run_completed" }
