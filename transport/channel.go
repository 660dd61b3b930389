// Package transport maintains the one-way push channel carrying room events
// from the backend to the engine. The channel detects dead connections via a
// read deadline and re-establishes itself after a fixed delay. It never
// requests replay: events published while disconnected are lost, which is
// the accepted at-most-once delivery model.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"pairpad/domain/event"
)

// State is the channel lifecycle:
// Connecting -> Open -> (Error -> Reconnecting -> Connecting) | Closed.
// Closed is terminal and reached only on explicit leave.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateError
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateError:
		return "error"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "closed"
	}
}

type Options struct {
	ReconnectDelay time.Duration // delay between a drop and the next dial
	ReadTimeout    time.Duration // silence longer than this is a dead connection
}

const (
	DefaultReconnectDelay = 5 * time.Second
	DefaultReadTimeout    = 90 * time.Second
)

func (o Options) withDefaults() Options {
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	return o
}

// Channel is a contract.IChannel over a WebSocket. Run dials, pumps frames
// into Events in arrival order, and reconnects until its context is
// canceled. ChannelUp/ChannelDown markers are interleaved into the same
// stream so consumers see connectivity transitions in order.
type Channel struct {
	log    *slog.Logger
	url    string
	dialer *websocket.Dialer
	opts   Options
	events chan event.ServerEvent
	state  atomic.Int32
}

func NewChannel(log *slog.Logger, url string, opts Options) *Channel {
	return &Channel{
		log:    log,
		url:    url,
		dialer: websocket.DefaultDialer,
		opts:   opts.withDefaults(),
		events: make(chan event.ServerEvent, 64),
	}
}

func (c *Channel) Events() <-chan event.ServerEvent {
	return c.events
}

func (c *Channel) State() State {
	return State(c.state.Load())
}

func (c *Channel) setState(s State) {
	c.state.Store(int32(s))
}

// Run keeps the channel alive until ctx is canceled. It returns nil so the
// supervisor treats cancellation as a clean stop, never a crash to restart.
func (c *Channel) Run(ctx context.Context) error {
	defer func() {
		c.setState(StateClosed)
		close(c.events)
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		c.setState(StateConnecting)

		conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !c.backoff(ctx, fmt.Errorf("dial %s: %w", c.url, err)) {
				return nil
			}
			continue
		}

		c.setState(StateOpen)
		c.log.Info("Push channel open", "url", c.url)
		c.emit(ctx, event.ChannelUp{})

		err = c.pump(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		if !c.backoff(ctx, err) {
			return nil
		}
	}
}

// backoff publishes the drop and waits out the reconnect delay. It returns
// false when the context was canceled while waiting.
func (c *Channel) backoff(ctx context.Context, cause error) bool {
	c.setState(StateError)
	c.log.Warn("Push channel down", "err", cause)
	c.emit(ctx, event.ChannelDown{Err: cause})

	c.setState(StateReconnecting)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.opts.ReconnectDelay):
		return true
	}
}

// pump reads frames until the connection dies. Every frame, pings included,
// pushes the read deadline forward; a fully silent connection times out and
// takes the error path.
func (c *Channel) pump(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout)); err != nil {
			return err
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		evt, err := event.Decode(raw)
		if err != nil {
			// Unknown types are the forward-compatibility contract:
			// log, drop, keep the connection.
			c.log.Warn("Dropping frame", "err", err)
			continue
		}
		if _, ok := evt.(event.Ping); ok {
			continue
		}
		if !c.emit(ctx, evt) {
			return nil
		}
	}
}

func (c *Channel) emit(ctx context.Context, evt event.ServerEvent) bool {
	select {
	case c.events <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}
