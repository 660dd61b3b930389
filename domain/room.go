package domain

import "github.com/samber/lo"

// RoomInfo is the backend's description of a room, without live state.
type RoomInfo struct {
	ID       string `json:"room_id"`
	Name     string `json:"room_name"`
	Language string `json:"language"`
}

// RoomSnapshot is the full room picture carried by a join response, and the
// read-only view handed to the rendering layer.
type RoomSnapshot struct {
	RoomID      string                    `json:"room_id"`
	RoomName    string                    `json:"room_name"`
	Language    string                    `json:"language"`
	Document    string                    `json:"text"`
	Roster      []Participant             `json:"roster"`
	Cursors     map[string]CursorPosition `json:"cursors,omitempty"`
	ChatHistory []ChatMessage             `json:"chat_history"`
}

// RoomState is the client-local mirror of a room. It is mutated only by the
// engine loop: either by applying authoritative push events or by optimistic
// local writes that are also sent upstream.
type RoomState struct {
	RoomID   string
	RoomName string
	Language string
	Document string
	Roster   map[string]Participant
	Cursors  map[string]CursorPosition
	ChatLog  []ChatMessage
}

func NewRoomState() *RoomState {
	return &RoomState{
		Roster:  make(map[string]Participant),
		Cursors: make(map[string]CursorPosition),
	}
}

// Hydrate replaces the whole mirror with the baseline carried by a join
// response. Live events are layered on afterwards.
func (s *RoomState) Hydrate(snap RoomSnapshot) {
	s.RoomID = snap.RoomID
	s.RoomName = snap.RoomName
	s.Language = snap.Language
	s.Document = snap.Document
	s.ChatLog = append([]ChatMessage(nil), snap.ChatHistory...)
	s.Cursors = make(map[string]CursorPosition, len(snap.Cursors))
	for id, pos := range snap.Cursors {
		s.Cursors[id] = pos
	}
	s.replaceRoster(snap.Roster)
}

// ReplaceRoster installs the roster carried by a membership event wholesale,
// so duplicate or stale entries cannot accumulate. Cursor entries of
// participants no longer present are dropped with them.
func (s *RoomState) ReplaceRoster(roster []Participant) {
	s.replaceRoster(roster)
	for id := range s.Cursors {
		if _, ok := s.Roster[id]; !ok {
			delete(s.Cursors, id)
		}
	}
}

func (s *RoomState) replaceRoster(roster []Participant) {
	s.Roster = make(map[string]Participant, len(roster))
	for _, p := range roster {
		s.Roster[p.ID] = p
	}
}

// AppendChat keeps the chat log append-only, in delivery order.
func (s *RoomState) AppendChat(msg ChatMessage) {
	s.ChatLog = append(s.ChatLog, msg)
}

// Snapshot returns a deep copy safe to hand outside the engine loop.
func (s *RoomState) Snapshot() RoomSnapshot {
	cursors := make(map[string]CursorPosition, len(s.Cursors))
	for id, pos := range s.Cursors {
		cursors[id] = pos
	}
	return RoomSnapshot{
		RoomID:      s.RoomID,
		RoomName:    s.RoomName,
		Language:    s.Language,
		Document:    s.Document,
		Roster:      lo.Values(s.Roster),
		Cursors:     cursors,
		ChatHistory: append([]ChatMessage(nil), s.ChatLog...),
	}
}
