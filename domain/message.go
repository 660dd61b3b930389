package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is immutable once created. Ordering is the order of arrival
// over the push channel, which mirrors the backend's fan-out order.
type ChatMessage struct {
	ID            uuid.UUID `json:"message_id"`
	ParticipantID string    `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	Text          string    `json:"text"`
	SentAt        time.Time `json:"timestamp"`
}

// RunResult is the outcome of a code execution request. A failed request is
// folded into the same shape so callers never special-case transport errors.
type RunResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}
