package errors

import "fmt"

var (
	ErrInvalidDisplayName = fmt.Errorf("display name must be 3-15 alphanumeric or underscore characters")
	ErrEmptyRoomName      = fmt.Errorf("room name is empty")
	ErrEmptyRoomID        = fmt.Errorf("room id is empty")
	ErrEmptyMessage       = fmt.Errorf("chat message is empty")
	ErrNotInRoom          = fmt.Errorf("not currently in a room")
	ErrAlreadyInRoom      = fmt.Errorf("already joined or joining a room")
	ErrChatInFlight       = fmt.Errorf("a chat message is already being sent")
	ErrRunInFlight        = fmt.Errorf("a run request is already in progress")
	ErrSessionClosed      = fmt.Errorf("session is closed")
	ErrUnknownEventType   = fmt.Errorf("unknown event type")
	ErrRoomNotFound       = fmt.Errorf("room not found")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
