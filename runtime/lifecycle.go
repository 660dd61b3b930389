package runtime

import (
	"context"

	"pairpad/domain"
	"pairpad/domain/event"
	"pairpad/errors"
)

// Create starts the create-then-join flow: the new room id is fed straight
// into the join path, so a failed join of a fresh room looks exactly like a
// failed join of an existing one.
func (e *Engine) Create(name, language string) error {
	if err := domain.ValidateRoomName(name); err != nil {
		return err
	}
	return e.enqueue(cmdCreate{name: name, language: language})
}

func (e *Engine) Join(roomID string) error {
	if err := domain.ValidateRoomID(roomID); err != nil {
		return err
	}
	return e.enqueue(cmdJoin{roomID: roomID})
}

// Leave tears the session down: the push channel goes to its terminal
// closed state and in-flight request results are discarded.
func (e *Engine) Leave() error {
	return e.enqueue(cmdLeave{})
}

func (e *Engine) handleCreate(cmd cmdCreate) {
	if !e.canJoin() {
		e.reject("create", errors.ErrAlreadyInRoom)
		return
	}
	e.setMembership(domain.Joining)
	e.spawn(func(ctx context.Context) completion {
		roomID, err := e.backend.CreateRoom(ctx, cmd.name, cmd.language)
		return createDone{roomID: roomID, err: err}
	})
}

func (e *Engine) handleJoin(cmd cmdJoin) {
	if !e.canJoin() {
		e.reject("join", errors.ErrAlreadyInRoom)
		return
	}
	e.setMembership(domain.Joining)
	e.requestJoin(cmd.roomID)
}

// canJoin: a failed previous attempt does not pin the engine, only an
// active or pending membership does.
func (e *Engine) canJoin() bool {
	return e.membership != domain.Joining && e.membership != domain.Joined
}

func (e *Engine) requestJoin(roomID string) {
	participant := domain.Participant{
		ID:          e.session.ParticipantID,
		DisplayName: e.session.DisplayName,
	}
	e.spawn(func(ctx context.Context) completion {
		snap, err := e.backend.JoinRoom(ctx, roomID, participant)
		return joinDone{snapshot: snap, err: err}
	})
}

func (e *Engine) completeCreate(done createDone) {
	if done.err != nil {
		e.setMembership(domain.JoinFailed)
		e.notify(event.JoinFailed{Err: done.err})
		return
	}
	e.requestJoin(done.roomID)
}

func (e *Engine) completeJoin(done joinDone) {
	if done.err != nil {
		e.setMembership(domain.JoinFailed)
		e.notify(event.JoinFailed{Err: done.err})
		return
	}

	e.session.RoomID = done.snapshot.RoomID
	e.state.Hydrate(done.snapshot)
	e.setMembership(domain.Joined)

	// The push channel exists only for a live membership; it reconnects on
	// its own until the session closes.
	e.channel = e.dial(done.snapshot.RoomID, e.session.ParticipantID)
	e.sup.Start(e.ctx, e.channel)

	e.notify(event.RoomJoined{Session: e.session, Snapshot: e.state.Snapshot()})
}

func (e *Engine) handleLeave() {
	e.notify(event.RoomLeft{})
	e.log.Info("Leaving room", "room_id", e.session.RoomID)
}
