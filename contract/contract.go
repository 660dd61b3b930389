//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"pairpad/domain"
	"pairpad/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IBackend is the request/response surface of the room service. The backend
// owns authoritative room state; the engine only mirrors it.
type IBackend interface {
	CreateRoom(ctx context.Context, name, language string) (string, error)
	GetRoom(ctx context.Context, roomID string) (domain.RoomInfo, error)
	JoinRoom(ctx context.Context, roomID string, participant domain.Participant) (domain.RoomSnapshot, error)
	UpdateDocument(ctx context.Context, roomID, participantID, text string) error
	UpdateCursor(ctx context.Context, roomID, participantID string, position domain.CursorPosition) error
	SendChatMessage(ctx context.Context, roomID string, participant domain.Participant, text string) error
	SaveDocument(ctx context.Context, roomID string) error
	RunCode(ctx context.Context, language, source, stdin string) (domain.RunResult, error)
}

// IChannel delivers server events in arrival order, plus synthesized
// connectivity transitions. The stream closes only when the channel worker
// stops for good.
type IChannel interface {
	Worker
	Events() <-chan event.ServerEvent
}

// EventSink consumes engine notifications. Sinks run on the engine loop and
// must not block.
type EventSink interface {
	Consume(ctx context.Context, n event.Notification) error
}

// IJournal persists chat messages locally, keyed so that redelivery of the
// same message cannot duplicate history.
type IJournal interface {
	Append(roomID string, msg domain.ChatMessage) error
	Recent(roomID string, limit int) ([]domain.ChatMessage, error)
}

type SearchHit struct {
	MessageID string
	Author    string
	Text      string
}

// ISearchIndex is the full-text index over journaled chat.
type ISearchIndex interface {
	Index(roomID string, msg domain.ChatMessage) error
	Search(ctx context.Context, roomID, terms string, limit int) ([]SearchHit, error)
}
