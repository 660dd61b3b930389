package domain

// Participant is one connected user: an opaque id plus a human display name.
type Participant struct {
	ID          string `json:"participant_id"`
	DisplayName string `json:"display_name"`
}

// CursorPosition is last-write-wins per participant, no history retained.
type CursorPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}
