// Package devserver is an in-memory reference backend for local development
// and the end-to-end tests. It implements the same REST and push contract
// the production room service exposes, without persistence or auth.
package devserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"pairpad/domain"
	"pairpad/domain/event"
)

// DefaultPingInterval matches the liveness contract of the client: well
// under its read timeout, so a healthy connection never goes stale.
const DefaultPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Server struct {
	log          *slog.Logger
	pingInterval time.Duration

	mu    sync.Mutex
	rooms map[string]*room
}

func NewServer(log *slog.Logger, pingInterval time.Duration) *Server {
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}
	return &Server{
		log:          log,
		pingInterval: pingInterval,
		rooms:        make(map[string]*room),
	}
}

// Handler builds the REST and push routes.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/api/rooms", s.handleCreateRoom).Methods("POST")
	router.HandleFunc("/api/rooms/{room_id}", s.handleGetRoom).Methods("GET")
	router.HandleFunc("/api/rooms/{room_id}/join", s.handleJoin).Methods("POST")
	router.HandleFunc("/api/rooms/{room_id}/document", s.handleDocument).Methods("PUT")
	router.HandleFunc("/api/rooms/{room_id}/cursor", s.handleCursor).Methods("PUT")
	router.HandleFunc("/api/rooms/{room_id}/chat", s.handleChat).Methods("POST")
	router.HandleFunc("/api/rooms/{room_id}/save", s.handleSave).Methods("POST")
	router.HandleFunc("/api/rooms/{room_id}/events", s.handleEvents).Methods("GET")
	router.HandleFunc("/api/execute", s.handleExecute).Methods("POST")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	return router
}

func (s *Server) room(roomID string) (*room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	return r, ok
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, req *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "room name is required")
		return
	}
	if in.Language == "" {
		in.Language = "go"
	}

	id := uuid.NewString()
	r := newRoom(id, in.Name, in.Language, s.log)
	s.mu.Lock()
	s.rooms[id] = r
	s.mu.Unlock()

	s.log.Info("Room created", "room", id, "name", in.Name, "language", in.Language)
	writeJSON(w, http.StatusCreated, r.info())
}

func (s *Server) handleGetRoom(w http.ResponseWriter, req *http.Request) {
	r, ok := s.room(mux.Vars(req)["room_id"])
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, r.info())
}

func (s *Server) handleJoin(w http.ResponseWriter, req *http.Request) {
	r, ok := s.room(mux.Vars(req)["room_id"])
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	var participant domain.Participant
	if err := json.NewDecoder(req.Body).Decode(&participant); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if participant.ID == "" || participant.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "participant id and display name are required")
		return
	}

	snap := r.join(participant)
	s.log.Info("Participant joined", "room", snap.RoomID, "participant", participant.ID, "name", participant.DisplayName)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDocument(w http.ResponseWriter, req *http.Request) {
	r, ok := s.room(mux.Vars(req)["room_id"])
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	var in struct {
		ParticipantID string `json:"participant_id"`
		Text          string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	r.updateDocument(in.ParticipantID, in.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCursor(w http.ResponseWriter, req *http.Request) {
	r, ok := s.room(mux.Vars(req)["room_id"])
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	var in struct {
		ParticipantID string                `json:"participant_id"`
		Position      domain.CursorPosition `json:"position"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	r.updateCursor(in.ParticipantID, in.Position)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChat(w http.ResponseWriter, req *http.Request) {
	r, ok := s.room(mux.Vars(req)["room_id"])
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	var in struct {
		ParticipantID string `json:"participant_id"`
		DisplayName   string `json:"display_name"`
		Text          string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		writeError(w, http.StatusBadRequest, "message text is required")
		return
	}

	// The server stamps id and time: arrival order here is the order every
	// client renders.
	r.appendChat(domain.ChatMessage{
		ID:            uuid.New(),
		ParticipantID: in.ParticipantID,
		DisplayName:   in.DisplayName,
		Text:          in.Text,
		SentAt:        time.Now().UTC(),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSave(w http.ResponseWriter, req *http.Request) {
	r, ok := s.room(mux.Vars(req)["room_id"])
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	r.save()
	w.WriteHeader(http.StatusNoContent)
}

// handleExecute is a deterministic stub. It never runs the submitted code;
// it echoes enough structure for clients to exercise the full run flow.
func (s *Server) handleExecute(w http.ResponseWriter, req *http.Request) {
	var in struct {
		Language string `json:"language"`
		Source   string `json:"source"`
		Stdin    string `json:"stdin"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	result := domain.RunResult{ExitCode: 0}
	switch {
	case strings.TrimSpace(in.Source) == "":
		result = domain.RunResult{Stderr: "empty source\n", ExitCode: 1}
	default:
		result.Stdout = fmt.Sprintf("[dev runner] %s: %d bytes accepted\n", in.Language, len(in.Source))
		if in.Stdin != "" {
			result.Stdout += "stdin: " + in.Stdin
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvents upgrades to a WebSocket and streams room frames plus
// app-level pings until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, req *http.Request) {
	r, ok := s.room(mux.Vars(req)["room_id"])
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	participantID := req.URL.Query().Get("participant_id")
	if participantID == "" {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "err", err)
		return
	}

	sub := r.subscribe(participantID)
	defer conn.Close()
	// Presence follows the push channel: when it goes away for good, the
	// participant has left.
	defer func() {
		if r.unsubscribe(sub) {
			r.leave(participantID)
		}
	}()

	// Reader goroutine only notices the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingFrame, _ := event.Encode(event.Ping{})
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.TextMessage, pingFrame); err != nil {
				return
			}
		case frame, open := <-sub.frames:
			if !open {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
