package e2e

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pairpad/domain"
	"pairpad/domain/event"
)

type collaborationSuite struct {
	BaseSuite
}

func TestCollaborationSuite(t *testing.T) {
	suite.Run(t, &collaborationSuite{})
}

// Two participants share one room: edits, cursors, chat and execution all
// travel through the real HTTP and WebSocket surface.
func (s *collaborationSuite) TestPairSession() {
	alice := s.NewParticipant("alice_01")
	bob := s.NewParticipant("bob_01")

	var roomID string

	s.Run("Step 1: Alice creates the room and is connected", func() {
		s.Require().NoError(alice.Engine.Create("standup", "go"))
		joined := s.AwaitKind(alice.Sink, "room_joined").(event.RoomJoined)
		roomID = joined.Snapshot.RoomID
		s.Require().NotEmpty(roomID)

		connected := s.AwaitKind(alice.Sink, "connection_changed").(event.ConnectionChanged)
		s.Require().Equal(domain.Connected, connected.State)
	})

	s.Run("Step 2: Bob joins and both rosters converge", func() {
		s.Require().NoError(bob.Engine.Join(roomID))
		joined := s.AwaitKind(bob.Sink, "room_joined").(event.RoomJoined)
		s.Require().Len(joined.Snapshot.Roster, 2)

		updated := s.AwaitKind(alice.Sink, "roster_updated").(event.RosterUpdated)
		s.Require().Len(updated.Roster, 2)
	})

	s.Run("Step 3: Alice types, Bob receives exactly her final text", func() {
		s.Require().NoError(alice.Engine.EditDocument("package main"))
		s.Require().NoError(alice.Engine.EditDocument("package main\n\nfunc main() {}"))

		replaced := s.AwaitKind(bob.Sink, "document_replaced").(event.DocumentReplaced)
		s.Require().Equal(alice.Engine.Status().Session.ParticipantID, replaced.ParticipantID)
		s.Require().Equal("package main\n\nfunc main() {}", replaced.Text)
		s.Require().Equal(replaced.Text, bob.Engine.Status().Room.Document)

		// Alice's own mirror is untouched by the broadcast.
		s.Require().Equal(replaced.Text, alice.Engine.Status().Room.Document)
	})

	s.Run("Step 4: Cursor movement reaches the peer", func() {
		s.Require().NoError(bob.Engine.MoveCursor(domain.CursorPosition{Line: 2, Column: 10}))

		moved := s.Await(alice.Sink, func(n event.Notification) bool {
			cursor, ok := n.(event.CursorMoved)
			return ok && cursor.ParticipantID == bob.Engine.Status().Session.ParticipantID
		}).(event.CursorMoved)
		s.Require().Equal(domain.CursorPosition{Line: 2, Column: 10}, moved.Position)
	})

	s.Run("Step 5: Chat arrives to everyone in server order", func() {
		s.Require().NoError(alice.Engine.SendChat("ready?"))
		s.AwaitKind(alice.Sink, "chat_appended")
		s.Require().NoError(bob.Engine.SendChat("ready"))

		second := s.Await(bob.Sink, func(n event.Notification) bool {
			chat, ok := n.(event.ChatAppended)
			return ok && chat.Message.Text == "ready"
		}).(event.ChatAppended)
		s.Require().Equal("bob_01", second.Message.DisplayName)

		log := bob.Engine.Status().Room.ChatHistory
		s.Require().Len(log, 2)
		s.Require().Equal("ready?", log[0].Text)
		s.Require().Equal("ready", log[1].Text)
	})

	s.Run("Step 6: Run round-trips through the execution endpoint", func() {
		s.Require().NoError(alice.Engine.RunCode("42\n"))
		completed := s.AwaitKind(alice.Sink, "run_completed").(event.RunCompleted)
		s.Require().Zero(completed.Result.ExitCode)
		s.Require().Contains(completed.Result.Stdout, "42")
	})

	s.Run("Step 7: Bob leaves and Alice sees the roster shrink", func() {
		s.Require().NoError(bob.Engine.Leave())
		s.AwaitKind(bob.Sink, "room_left")

		shrunk := s.Await(alice.Sink, func(n event.Notification) bool {
			updated, ok := n.(event.RosterUpdated)
			return ok && len(updated.Roster) == 1
		}).(event.RosterUpdated)
		s.Require().Equal("alice_01", shrunk.Roster[0].DisplayName)
	})
}

// A whole burst of keystrokes within the debounce window must reach the peer
// as a single update carrying the final text.
func (s *collaborationSuite) TestDebounceCollapsesBursts() {
	alice := s.NewParticipant("alice_02")
	bob := s.NewParticipant("bob_02")

	s.Require().NoError(alice.Engine.Create("burst", "go"))
	joined := s.AwaitKind(alice.Sink, "room_joined").(event.RoomJoined)
	s.Require().NoError(bob.Engine.Join(joined.Snapshot.RoomID))
	s.AwaitKind(bob.Sink, "room_joined")

	for _, text := range []string{"a", "ab", "abc", "abcd"} {
		s.Require().NoError(alice.Engine.EditDocument(text))
	}

	first := s.AwaitKind(bob.Sink, "document_replaced").(event.DocumentReplaced)
	s.Require().Equal("abcd", first.Text)

	// No further document frame follows the collapsed one.
	quiet := time.After(4 * s.Config.Debounce)
	for {
		select {
		case n := <-bob.Sink.ch:
			s.Require().NotEqual("document_replaced", n.Kind(), "burst must collapse into one update")
		case <-quiet:
			return
		}
	}
}
