// Package runtime hosts the synchronization engine: a single-threaded,
// event-driven loop that owns one room membership. All mutation of the room
// mirror happens on that loop, in reaction to a local command, a push-channel
// event, or a timer. Blocking I/O is delegated to request goroutines whose
// completions re-enter the same loop.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pairpad/contract"
	"pairpad/domain"
	"pairpad/domain/event"
	"pairpad/errors"
)

// ChannelDialer builds the push channel for a freshly joined room. The
// engine starts it under its supervisor once the join response arrives.
type ChannelDialer func(roomID, participantID string) contract.IChannel

const DefaultDebounceInterval = 300 * time.Millisecond

type Options struct {
	DebounceInterval time.Duration // local edits quieter than this are coalesced
	CommandBuffer    int
}

func (o Options) withDefaults() Options {
	if o.DebounceInterval <= 0 {
		o.DebounceInterval = DefaultDebounceInterval
	}
	if o.CommandBuffer <= 0 {
		o.CommandBuffer = 64
	}
	return o
}

// Status is the published view handed to the rendering layer. It is a copy:
// the engine never shares its live state.
type Status struct {
	Session    domain.Session
	Membership domain.MembershipState
	Room       domain.RoomSnapshot
}

type Engine struct {
	log     *slog.Logger
	backend contract.IBackend
	dial    ChannelDialer
	sup     contract.ISupervisor
	opts    Options

	// Loop-owned state. Nothing below is touched off-loop.
	session    domain.Session
	membership domain.MembershipState
	state      *domain.RoomState
	channel    contract.IChannel
	debounce   *time.Timer
	dirty      bool
	chatBusy   bool
	runBusy    bool

	sinks       []contract.EventSink
	commands    chan command
	completions chan completion

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	statusMu  sync.RWMutex
	published Status
}

// NewEngine validates the display name once, before any join or create
// attempt, and binds it to a fresh session identity.
func NewEngine(log *slog.Logger, backend contract.IBackend, dial ChannelDialer,
	sup contract.ISupervisor, displayName string, opts Options) (*Engine, error) {
	if err := domain.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	e := &Engine{
		log:         log,
		backend:     backend,
		dial:        dial,
		sup:         sup,
		opts:        opts,
		session:     domain.NewSession(displayName),
		membership:  domain.Idle,
		state:       domain.NewRoomState(),
		commands:    make(chan command, opts.CommandBuffer),
		completions: make(chan completion, opts.CommandBuffer),
	}
	e.publish()
	return e, nil
}

// AddSinks registers notification consumers. Must be called before Run.
func (e *Engine) AddSinks(sinks ...contract.EventSink) {
	e.sinks = append(e.sinks, sinks...)
}

// Run is the dispatch loop. It returns nil on context cancellation or
// explicit leave; the supervisor never restarts a clean stop.
func (e *Engine) Run(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)
	defer e.shutdown()

	for {
		select {
		case <-e.ctx.Done():
			return nil
		case cmd := <-e.commands:
			if stop := e.handleCommand(cmd); stop {
				return nil
			}
		case evt, ok := <-e.channelEvents():
			if !ok {
				e.channel = nil
				continue
			}
			e.applyServerEvent(evt)
		case <-e.debounceC():
			e.debounce = nil
			e.flushDocument()
		case done := <-e.completions:
			e.handleCompletion(done)
		}
	}
}

func (e *Engine) channelEvents() <-chan event.ServerEvent {
	if e.channel == nil {
		return nil
	}
	return e.channel.Events()
}

func (e *Engine) handleCommand(cmd command) bool {
	switch cmd := cmd.(type) {
	case cmdCreate:
		e.handleCreate(cmd)
	case cmdJoin:
		e.handleJoin(cmd)
	case cmdEdit:
		e.handleEdit(cmd)
	case cmdCursor:
		e.handleCursor(cmd)
	case cmdChat:
		e.handleChat(cmd)
	case cmdSave:
		e.handleSave()
	case cmdRun:
		e.handleRun(cmd)
	case cmdLeave:
		e.handleLeave()
		return true
	}
	return false
}

func (e *Engine) handleCompletion(done completion) {
	switch done := done.(type) {
	case createDone:
		e.completeCreate(done)
	case joinDone:
		e.completeJoin(done)
	case updateDone:
		e.completeUpdate(done)
	case chatDone:
		e.completeChat(done)
	case runDone:
		e.completeRun(done)
	}
}

// applyServerEvent applies one push frame in arrival order. No reordering,
// no batching.
func (e *Engine) applyServerEvent(evt event.ServerEvent) {
	switch evt := evt.(type) {
	case event.ChannelUp:
		e.setConnection(domain.Connected)
	case event.ChannelDown:
		e.setConnection(domain.Disconnected)
	case event.DocumentUpdated:
		e.applyDocumentUpdated(evt)
	case event.CursorUpdated:
		e.applyCursorUpdated(evt)
	case event.ParticipantJoined:
		e.applyRoster(evt.Roster)
	case event.ParticipantLeft:
		e.applyRoster(evt.Roster)
	case event.ChatMessage:
		e.applyChatMessage(evt.Message)
	case event.Ping:
		// already filtered by the transport
	default:
		e.log.Debug("Ignoring event", "type", evt.EventType())
	}
}

func (e *Engine) setConnection(state domain.ConnectionState) {
	if e.session.Connection == state {
		return
	}
	e.session.Connection = state
	e.publish()
	e.notify(event.ConnectionChanged{State: state})
}

func (e *Engine) setMembership(state domain.MembershipState) {
	e.membership = state
	e.publish()
}

// spawn runs one request off-loop. A completion arriving after the session
// closed is discarded rather than applied to torn-down state.
func (e *Engine) spawn(fn func(ctx context.Context) completion) {
	ctx := e.ctx
	go func() {
		done := fn(ctx)
		select {
		case e.completions <- done:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) enqueue(cmd command) error {
	if e.closed.Load() {
		return errors.ErrSessionClosed
	}
	select {
	case e.commands <- cmd:
		return nil
	default:
		e.log.Warn("Command queue full, dropping", "command", fmt.Sprintf("%T", cmd))
		return nil
	}
}

func (e *Engine) notify(n event.Notification) {
	for _, sink := range e.sinks {
		if err := sink.Consume(e.ctx, n); err != nil {
			e.log.Warn("Sink failed", "kind", n.Kind(), "err", err)
		}
	}
}

func (e *Engine) reject(action string, err error) {
	e.log.Debug("Action rejected", "action", action, "err", err)
	e.notify(event.ActionRejected{Action: action, Err: err})
}

func (e *Engine) publish() {
	status := Status{
		Session:    e.session,
		Membership: e.membership,
		Room:       e.state.Snapshot(),
	}
	e.statusMu.Lock()
	e.published = status
	e.statusMu.Unlock()
}

// Status returns the latest published view, safe to read from any goroutine.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.published
}

func (e *Engine) shutdown() {
	e.closed.Store(true)
	e.cancel()
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
}
