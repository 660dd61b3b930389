package workers_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"pairpad/runtime/workers"
)

type countingWorker struct {
	runs    atomic.Int32
	outcome func(run int32) error
}

func (w *countingWorker) Run(ctx context.Context) error {
	return w.outcome(w.runs.Add(1))
}

func TestSupervisor_RestartsCrashedWorker(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sup := workers.NewSupervisor(log)

	worker := &countingWorker{outcome: func(run int32) error {
		if run == 1 {
			return fmt.Errorf("transient failure")
		}
		return nil // second run finishes cleanly
	}}
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not drain")
	}
	require.Equal(t, int32(2), worker.runs.Load())
}

func TestSupervisor_RecoversPanic(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sup := workers.NewSupervisor(log)

	worker := &countingWorker{outcome: func(run int32) error {
		if run == 1 {
			panic("boom")
		}
		return nil
	}}
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not recover from panic")
	}
	require.Equal(t, int32(2), worker.runs.Load())
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sup := workers.NewSupervisor(log)

	started := make(chan struct{})
	worker := &countingWorker{}
	worker.outcome = func(run int32) error {
		close(started)
		return nil
	}
	blocking := workerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	sup.Add(worker, blocking)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	<-started
	sup.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not drain the supervisor")
	}
}

type workerFunc func(ctx context.Context) error

func (f workerFunc) Run(ctx context.Context) error { return f(ctx) }
