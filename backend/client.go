// Package backend implements the HTTP side of the room service contract.
// All mutating calls carry the participant id and display name so the
// backend can attribute edits, cursors and chat.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"pairpad/domain"
	"pairpad/errors"
)

type Client struct {
	log     *slog.Logger
	baseURL *url.URL
	http    *http.Client
}

func NewClient(log *slog.Logger, rawURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", rawURL, err)
	}
	return &Client{
		log:     log,
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// EventsURL builds the push channel endpoint for a room membership,
// switching the scheme to its WebSocket counterpart.
func (c *Client) EventsURL(roomID, participantID string) string {
	u := c.baseURL.JoinPath("api", "rooms", roomID, "events")
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("participant_id", participantID)
	u.RawQuery = q.Encode()
	return u.String()
}

type createRoomRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

func (c *Client) CreateRoom(ctx context.Context, name, language string) (string, error) {
	var resp domain.RoomInfo
	err := c.do(ctx, http.MethodPost, []string{"api", "rooms"}, createRoomRequest{Name: name, Language: language}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) GetRoom(ctx context.Context, roomID string) (domain.RoomInfo, error) {
	var resp domain.RoomInfo
	err := c.do(ctx, http.MethodGet, []string{"api", "rooms", roomID}, nil, &resp)
	return resp, err
}

func (c *Client) JoinRoom(ctx context.Context, roomID string, participant domain.Participant) (domain.RoomSnapshot, error) {
	var snap domain.RoomSnapshot
	err := c.do(ctx, http.MethodPost, []string{"api", "rooms", roomID, "join"}, participant, &snap)
	return snap, err
}

type documentUpdate struct {
	ParticipantID string `json:"participant_id"`
	Text          string `json:"text"`
}

func (c *Client) UpdateDocument(ctx context.Context, roomID, participantID, text string) error {
	return c.do(ctx, http.MethodPut, []string{"api", "rooms", roomID, "document"},
		documentUpdate{ParticipantID: participantID, Text: text}, nil)
}

type cursorUpdate struct {
	ParticipantID string                `json:"participant_id"`
	Position      domain.CursorPosition `json:"position"`
}

func (c *Client) UpdateCursor(ctx context.Context, roomID, participantID string, position domain.CursorPosition) error {
	return c.do(ctx, http.MethodPut, []string{"api", "rooms", roomID, "cursor"},
		cursorUpdate{ParticipantID: participantID, Position: position}, nil)
}

type chatRequest struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Text          string `json:"text"`
}

func (c *Client) SendChatMessage(ctx context.Context, roomID string, participant domain.Participant, text string) error {
	return c.do(ctx, http.MethodPost, []string{"api", "rooms", roomID, "chat"},
		chatRequest{ParticipantID: participant.ID, DisplayName: participant.DisplayName, Text: text}, nil)
}

func (c *Client) SaveDocument(ctx context.Context, roomID string) error {
	return c.do(ctx, http.MethodPost, []string{"api", "rooms", roomID, "save"}, struct{}{}, nil)
}

type runRequest struct {
	Language string `json:"language"`
	Source   string `json:"source"`
	Stdin    string `json:"stdin"`
}

func (c *Client) RunCode(ctx context.Context, language, source, stdin string) (domain.RunResult, error) {
	var result domain.RunResult
	err := c.do(ctx, http.MethodPost, []string{"api", "execute"},
		runRequest{Language: language, Source: source, Stdin: stdin}, &result)
	return result, err
}

type errorPayload struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method string, path []string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	u := c.baseURL.JoinPath(path...)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errors.ErrRoomNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload errorPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			return fmt.Errorf("backend refused %s: %s", u.Path, payload.Error)
		}
		return fmt.Errorf("backend refused %s: status %d", u.Path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("malformed backend response: %w", err)
		}
	}
	return nil
}
