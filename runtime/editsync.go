package runtime

import (
	"context"
	"time"

	"pairpad/domain"
	"pairpad/domain/event"
	"pairpad/errors"
)

// EditDocument applies an optimistic local write and re-arms the debounce
// timer. The timer is re-armed, never stacked: only the latest text is ever
// sent upstream.
func (e *Engine) EditDocument(text string) error {
	return e.enqueue(cmdEdit{text: text})
}

// Save asks the backend to persist the authoritative document.
func (e *Engine) Save() error {
	return e.enqueue(cmdSave{})
}

func (e *Engine) handleEdit(cmd cmdEdit) {
	if e.membership != domain.Joined {
		e.reject("edit", errors.ErrNotInRoom)
		return
	}
	e.state.Document = cmd.text
	e.dirty = true
	e.armDebounce()
	e.publish()
}

func (e *Engine) armDebounce() {
	if e.debounce != nil {
		if !e.debounce.Stop() {
			select {
			case <-e.debounce.C:
			default:
			}
		}
		e.debounce.Reset(e.opts.DebounceInterval)
		return
	}
	e.debounce = time.NewTimer(e.opts.DebounceInterval)
}

func (e *Engine) debounceC() <-chan time.Time {
	if e.debounce == nil {
		return nil
	}
	return e.debounce.C
}

// flushDocument fires when the debounce window closes: exactly one upstream
// update, carrying the latest text. A failed update keeps the optimistic
// local value; the next keystroke's cycle is the de facto retry.
func (e *Engine) flushDocument() {
	if !e.dirty || e.membership != domain.Joined {
		return
	}
	e.dirty = false

	roomID := e.state.RoomID
	participantID := e.session.ParticipantID
	text := e.state.Document
	e.spawn(func(ctx context.Context) completion {
		return updateDone{op: "document", err: e.backend.UpdateDocument(ctx, roomID, participantID, text)}
	})
}

func (e *Engine) handleSave() {
	if e.membership != domain.Joined {
		e.reject("save", errors.ErrNotInRoom)
		return
	}
	roomID := e.state.RoomID
	e.spawn(func(ctx context.Context) completion {
		return updateDone{op: "save", err: e.backend.SaveDocument(ctx, roomID)}
	})
}

func (e *Engine) completeUpdate(done updateDone) {
	if done.err != nil {
		e.notify(event.SyncFailed{Op: done.op, Err: done.err})
		return
	}
	if done.op == "save" {
		e.notify(event.DocumentSaved{})
	}
}

// applyDocumentUpdated replaces the mirror wholesale, unless the event is
// the echo of our own write: the optimistic value is already correct and
// re-applying it would fight the debounce cycle.
func (e *Engine) applyDocumentUpdated(evt event.DocumentUpdated) {
	if evt.ParticipantID == e.session.ParticipantID {
		return
	}
	e.state.Document = evt.Text
	e.dirty = false
	e.publish()
	e.notify(event.DocumentReplaced{ParticipantID: evt.ParticipantID, Text: evt.Text})
}
