package e2e

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"pairpad/backend"
	"pairpad/contract"
	"pairpad/devserver"
	"pairpad/domain/event"
	"pairpad/runtime"
	"pairpad/runtime/workers"
	"pairpad/transport"
)

// BaseSuite starts one backend for the whole suite and hands out fully wired
// client engines, each with its own supervisor and push channel.
type BaseSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger

	backendURL string
	server     *httptest.Server
}

func (s *BaseSuite) SetupSuite() {
	cfg, err := LoadConfig()
	s.Require().NoError(err)
	s.Config = cfg
	s.Log = logs.GetLoggerFromString(cfg.LogLevel)

	if cfg.BackendAddr != "" {
		s.backendURL = cfg.BackendAddr
		return
	}
	s.server = httptest.NewServer(devserver.NewServer(s.Log, time.Minute).Handler())
	s.backendURL = s.server.URL
}

func (s *BaseSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

// Participant is one simulated user: an engine plus its recorded
// notifications.
type Participant struct {
	Engine *runtime.Engine
	Sink   *RecordingSink

	sup    *workers.Supervisor
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *BaseSuite) NewParticipant(displayName string) *Participant {
	client, err := backend.NewClient(s.Log, s.backendURL, s.Config.Timeout)
	s.Require().NoError(err)

	dial := func(roomID, participantID string) contract.IChannel {
		return transport.NewChannel(s.Log, client.EventsURL(roomID, participantID), transport.Options{
			ReconnectDelay: 200 * time.Millisecond,
			ReadTimeout:    time.Minute,
		})
	}

	sup := workers.NewSupervisor(s.Log)
	engine, err := runtime.NewEngine(s.Log, client, dial, sup, displayName, runtime.Options{
		DebounceInterval: s.Config.Debounce,
	})
	s.Require().NoError(err)

	recording := NewRecordingSink()
	engine.AddSinks(recording)
	sup.Add(engine)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	p := &Participant{Engine: engine, Sink: recording, sup: sup, cancel: cancel, done: done}
	s.T().Cleanup(p.Close)
	return p
}

func (p *Participant) Close() {
	p.cancel()
	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
	}
}

// RecordingSink buffers notifications so scenarios can await them.
type RecordingSink struct {
	ch chan event.Notification
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{ch: make(chan event.Notification, 256)}
}

func (s *RecordingSink) Consume(_ context.Context, n event.Notification) error {
	s.ch <- n
	return nil
}

// Await returns the first notification match accepts, discarding the rest.
func (s *BaseSuite) Await(sink *RecordingSink, match func(event.Notification) bool) event.Notification {
	s.T().Helper()
	deadline := time.After(s.Config.Timeout)
	for {
		select {
		case n := <-sink.ch:
			if match(n) {
				return n
			}
		case <-deadline:
			s.Require().FailNow("timed out waiting for notification")
			return nil
		}
	}
}

func (s *BaseSuite) AwaitKind(sink *RecordingSink, kind string) event.Notification {
	s.T().Helper()
	return s.Await(sink, func(n event.Notification) bool { return n.Kind() == kind })
}
