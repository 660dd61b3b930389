package runtime

import (
	"context"

	"pairpad/domain"
	"pairpad/domain/event"
	"pairpad/errors"
)

// SendChat submits one message. Empty or whitespace-only text is rejected
// here, before any network call. The message is not appended optimistically:
// it joins the log only when it comes back over the push channel, so every
// participant, the author included, sees the backend's delivery order.
func (e *Engine) SendChat(text string) error {
	if err := domain.ValidateChatText(text); err != nil {
		return err
	}
	return e.enqueue(cmdChat{text: text})
}

func (e *Engine) handleChat(cmd cmdChat) {
	if e.membership != domain.Joined {
		e.reject("chat", errors.ErrNotInRoom)
		return
	}
	if e.chatBusy {
		// Guards against duplicate submits while a send is in flight.
		e.reject("chat", errors.ErrChatInFlight)
		return
	}
	e.chatBusy = true

	roomID := e.state.RoomID
	participant := domain.Participant{
		ID:          e.session.ParticipantID,
		DisplayName: e.session.DisplayName,
	}
	e.spawn(func(ctx context.Context) completion {
		return chatDone{err: e.backend.SendChatMessage(ctx, roomID, participant, cmd.text)}
	})
}

func (e *Engine) completeChat(done chatDone) {
	e.chatBusy = false
	if done.err != nil {
		e.notify(event.SyncFailed{Op: "chat", Err: done.err})
	}
}

// applyChatMessage appends in arrival order; the log is append-only.
func (e *Engine) applyChatMessage(msg domain.ChatMessage) {
	e.state.AppendChat(msg)
	e.publish()
	e.notify(event.ChatAppended{RoomID: e.state.RoomID, Message: msg})
}
