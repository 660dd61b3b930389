package runtime

import (
	"context"

	"pairpad/domain"
	"pairpad/domain/event"
	"pairpad/errors"
)

// RunCode ships the current document to the execution service. Single-flight
// per engine instance: a request while one is outstanding is a no-op.
func (e *Engine) RunCode(stdin string) error {
	return e.enqueue(cmdRun{stdin: stdin})
}

func (e *Engine) handleRun(cmd cmdRun) {
	if e.membership != domain.Joined {
		e.reject("run", errors.ErrNotInRoom)
		return
	}
	if e.runBusy {
		e.reject("run", errors.ErrRunInFlight)
		return
	}
	e.runBusy = true
	e.notify(event.RunStarted{})

	language := e.state.Language
	source := e.state.Document
	e.spawn(func(ctx context.Context) completion {
		result, err := e.backend.RunCode(ctx, language, source, cmd.stdin)
		return runDone{result: result, err: err}
	})
}

// completeRun folds a transport failure into the result shape, so callers
// never distinguish "the request failed" from "the program exited non-zero".
func (e *Engine) completeRun(done runDone) {
	e.runBusy = false
	result := done.result
	if done.err != nil {
		result = domain.RunResult{
			Stdout:   "",
			Stderr:   done.err.Error(),
			ExitCode: -1,
		}
	}
	e.notify(event.RunCompleted{Result: result})
}
