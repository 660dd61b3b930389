package transport_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"pairpad/domain/event"
	"pairpad/transport"
)

var upgrader = websocket.Upgrader{}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func nextEvent(t *testing.T, events <-chan event.ServerEvent) event.ServerEvent {
	t.Helper()
	select {
	case evt, ok := <-events:
		require.True(t, ok, "event stream closed early")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestChannel_DeliversFramesInOrder(t *testing.T) {
	frames := []string{
		`{"type":"participant_joined","roster":[{"participant_id":"a","display_name":"alice"}]}`,
		`{"type":"wall_clock_sync","epoch":12}`, // unknown: logged and dropped
		`{"type":"ping"}`,                       // keep-alive: no-op
		`{"type":"document_updated","participant_id":"a","text":"x"}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		for _, frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		}
		// Keep the connection open so no reconnect interferes.
		time.Sleep(time.Second)
		_ = conn.Close()
	}))
	defer srv.Close()

	channel := transport.NewChannel(logs.GetLoggerFromLevel(slog.LevelDebug), wsURL(srv), transport.Options{
		ReconnectDelay: 50 * time.Millisecond,
		ReadTimeout:    time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = channel.Run(ctx) }()

	require.IsType(t, event.ChannelUp{}, nextEvent(t, channel.Events()))

	joined, ok := nextEvent(t, channel.Events()).(event.ParticipantJoined)
	require.True(t, ok)
	require.Len(t, joined.Roster, 1)

	update, ok := nextEvent(t, channel.Events()).(event.DocumentUpdated)
	require.True(t, ok)
	require.Equal(t, "x", update.Text)
}

func TestChannel_ReconnectsAfterFixedDelay(t *testing.T) {
	var mu sync.Mutex
	var dials []time.Time

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		dials = append(dials, time.Now())
		first := len(dials) == 1
		mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		if first {
			// Drop the first connection immediately to force the error path.
			_ = conn.Close()
			return
		}
		time.Sleep(time.Second)
		_ = conn.Close()
	}))
	defer srv.Close()

	delay := 200 * time.Millisecond
	channel := transport.NewChannel(logs.GetLoggerFromLevel(slog.LevelDebug), wsURL(srv), transport.Options{
		ReconnectDelay: delay,
		ReadTimeout:    time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = channel.Run(ctx) }()

	require.IsType(t, event.ChannelUp{}, nextEvent(t, channel.Events()))
	down, ok := nextEvent(t, channel.Events()).(event.ChannelDown)
	require.True(t, ok)
	require.Error(t, down.Err)
	require.IsType(t, event.ChannelUp{}, nextEvent(t, channel.Events()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, dials, 2)
	// The new attempt happens after the fixed backoff, not before.
	require.GreaterOrEqual(t, dials[1].Sub(dials[0]), delay)
}

func TestChannel_ClosedOnlyOnExplicitStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		time.Sleep(time.Second)
		_ = conn.Close()
	}))
	defer srv.Close()

	channel := transport.NewChannel(logs.GetLoggerFromLevel(slog.LevelDebug), wsURL(srv), transport.Options{
		ReconnectDelay: 50 * time.Millisecond,
		ReadTimeout:    time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- channel.Run(ctx) }()

	require.IsType(t, event.ChannelUp{}, nextEvent(t, channel.Events()))
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not stop")
	}
	require.Equal(t, transport.StateClosed, channel.State())

	// The stream is closed for good; no further events can arrive.
	for range channel.Events() {
	}
}
