package runtime

import (
	"context"

	"pairpad/domain"
	"pairpad/domain/event"
	"pairpad/errors"
)

// MoveCursor publishes the local cursor immediately. Cursor updates are
// cheap and staleness is more jarring than request volume, so there is no
// debounce here.
func (e *Engine) MoveCursor(position domain.CursorPosition) error {
	return e.enqueue(cmdCursor{position: position})
}

func (e *Engine) handleCursor(cmd cmdCursor) {
	if e.membership != domain.Joined {
		e.reject("cursor", errors.ErrNotInRoom)
		return
	}
	e.state.Cursors[e.session.ParticipantID] = cmd.position
	e.publish()

	roomID := e.state.RoomID
	participantID := e.session.ParticipantID
	position := cmd.position
	e.spawn(func(ctx context.Context) completion {
		return updateDone{op: "cursor", err: e.backend.UpdateCursor(ctx, roomID, participantID, position)}
	})
}

// applyCursorUpdated overwrites unconditionally, the local participant
// included: cursor echo is an idempotent overwrite with the same value.
func (e *Engine) applyCursorUpdated(evt event.CursorUpdated) {
	e.state.Cursors[evt.ParticipantID] = evt.Position
	e.publish()
	e.notify(event.CursorMoved{ParticipantID: evt.ParticipantID, Position: evt.Position})
}

// applyRoster installs the event's roster wholesale. Join and leave carry
// the full membership, so no diffing logic exists to get stale.
func (e *Engine) applyRoster(roster []domain.Participant) {
	e.state.ReplaceRoster(roster)
	e.publish()
	e.notify(event.RosterUpdated{Roster: e.state.Snapshot().Roster})
}
