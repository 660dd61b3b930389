package devserver

import (
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"pairpad/domain"
	"pairpad/domain/event"
)

// subscriberBuffer bounds the per-connection outbox. A subscriber that
// cannot drain this many frames is dropped rather than allowed to stall
// the room.
const subscriberBuffer = 64

type subscriber struct {
	participantID string
	frames        chan []byte
}

// room is the authoritative state of one collaboration session. All access
// goes through the mutex; broadcasts never block on slow subscribers.
type room struct {
	mu sync.Mutex

	id       string
	name     string
	language string
	document string
	savedAt  time.Time

	roster      map[string]domain.Participant
	cursors     map[string]domain.CursorPosition
	chatHistory []domain.ChatMessage
	subscribers map[string]*subscriber

	log *slog.Logger
}

func newRoom(id, name, language string, log *slog.Logger) *room {
	return &room{
		id:          id,
		name:        name,
		language:    language,
		roster:      make(map[string]domain.Participant),
		cursors:     make(map[string]domain.CursorPosition),
		subscribers: make(map[string]*subscriber),
		log:         log.With("room", id),
	}
}

func (r *room) info() domain.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.RoomInfo{ID: r.id, Name: r.name, Language: r.language}
}

// join adds the participant and announces the new roster to everyone,
// including the joiner's own push channel once it attaches.
func (r *room) join(p domain.Participant) domain.RoomSnapshot {
	r.mu.Lock()
	r.roster[p.ID] = p
	snap := r.snapshotLocked()
	frame := r.encodeLocked(event.ParticipantJoined{Roster: rosterValues(r.roster)})
	r.mu.Unlock()

	r.broadcast(frame, "")
	return snap
}

func (r *room) leave(participantID string) {
	r.mu.Lock()
	delete(r.roster, participantID)
	delete(r.cursors, participantID)
	if sub, ok := r.subscribers[participantID]; ok {
		close(sub.frames)
		delete(r.subscribers, participantID)
	}
	frame := r.encodeLocked(event.ParticipantLeft{Roster: rosterValues(r.roster)})
	r.mu.Unlock()

	r.broadcast(frame, "")
}

// updateDocument applies a last-write-wins replace and fans it out to every
// participant except the author.
func (r *room) updateDocument(participantID, text string) {
	r.mu.Lock()
	r.document = text
	frame := r.encodeLocked(event.DocumentUpdated{ParticipantID: participantID, Text: text})
	r.mu.Unlock()

	r.broadcast(frame, participantID)
}

func (r *room) updateCursor(participantID string, position domain.CursorPosition) {
	r.mu.Lock()
	r.cursors[participantID] = position
	frame := r.encodeLocked(event.CursorUpdated{ParticipantID: participantID, Position: position})
	r.mu.Unlock()

	r.broadcast(frame, participantID)
}

// appendChat stamps the message server-side and fans it out to everyone,
// author included. Clients render chat only on arrival.
func (r *room) appendChat(message domain.ChatMessage) {
	r.mu.Lock()
	r.chatHistory = append(r.chatHistory, message)
	frame := r.encodeLocked(event.ChatMessage{Message: message})
	r.mu.Unlock()

	r.broadcast(frame, "")
}

func (r *room) save() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedAt = time.Now().UTC()
	r.log.Info("Document saved", "bytes", len(r.document), "at", r.savedAt)
}

// subscribe attaches a push channel for one participant, replacing any
// previous one for the same id.
func (r *room) subscribe(participantID string) *subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.subscribers[participantID]; ok {
		close(old.frames)
	}
	sub := &subscriber{
		participantID: participantID,
		frames:        make(chan []byte, subscriberBuffer),
	}
	r.subscribers[participantID] = sub
	return sub
}

// unsubscribe detaches sub and reports whether it was still the active
// subscription for its participant. A false return means a newer connection
// took over and the caller must not touch presence.
func (r *room) unsubscribe(sub *subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.subscribers[sub.participantID]; ok && current == sub {
		close(current.frames)
		delete(r.subscribers, sub.participantID)
		return true
	}
	return false
}

func (r *room) broadcast(frame []byte, skipParticipantID string) {
	if frame == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, sub := range r.subscribers {
		if id == skipParticipantID {
			continue
		}
		select {
		case sub.frames <- frame:
		default:
			r.log.Warn("Dropping slow subscriber", "participant", id)
			close(sub.frames)
			delete(r.subscribers, id)
		}
	}
}

func (r *room) snapshotLocked() domain.RoomSnapshot {
	return domain.RoomSnapshot{
		RoomID:      r.id,
		RoomName:    r.name,
		Language:    r.language,
		Document:    r.document,
		Roster:      rosterValues(r.roster),
		Cursors:     lo.Assign(map[string]domain.CursorPosition{}, r.cursors),
		ChatHistory: append([]domain.ChatMessage(nil), r.chatHistory...),
	}
}

func (r *room) encodeLocked(evt event.ServerEvent) []byte {
	frame, err := event.Encode(evt)
	if err != nil {
		r.log.Error("Frame encode failed", "type", evt.EventType(), "err", err)
		return nil
	}
	return frame
}

func rosterValues(roster map[string]domain.Participant) []domain.Participant {
	return lo.Values(roster)
}
