package runtime

import "pairpad/domain"

// command is a local-origin action entering the dispatch loop.
type command interface{}

type cmdCreate struct {
	name     string
	language string
}

type cmdJoin struct {
	roomID string
}

type cmdEdit struct {
	text string
}

type cmdCursor struct {
	position domain.CursorPosition
}

type cmdChat struct {
	text string
}

type cmdSave struct{}

type cmdRun struct {
	stdin string
}

type cmdLeave struct{}

// completion is the result of an off-loop request re-entering the loop.
type completion interface{}

type createDone struct {
	roomID string
	err    error
}

type joinDone struct {
	snapshot domain.RoomSnapshot
	err      error
}

// updateDone covers fire-and-forget mutations: document, cursor, save.
type updateDone struct {
	op  string
	err error
}

type chatDone struct {
	err error
}

type runDone struct {
	result domain.RunResult
	err    error
}
