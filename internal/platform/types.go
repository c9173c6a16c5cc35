package platform

import "time"

// CallSnapshot is the platform's current view of a call: its status plus the
// full event history reported so far.
type CallSnapshot struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	Events       []Event `json:"events"`
	RecordingURL string  `json:"recording_url,omitempty"`
}

// Event is one remote-reported occurrence on a call. The Data payload is
// interpreted by type-specific handlers downstream.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Assistant is the remote assistant configuration. This service only reads
// and forwards it; assistant behavior is owned by the platform.
type Assistant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model,omitempty"`
	Voice        string    `json:"voice,omitempty"`
	FirstMessage string    `json:"first_message,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// AssistantRequest carries the writable assistant fields.
type AssistantRequest struct {
	Name         string `json:"name,omitempty"`
	Model        string `json:"model,omitempty"`
	Voice        string `json:"voice,omitempty"`
	FirstMessage string `json:"first_message,omitempty"`
}

type PhoneNumber struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Provider    string `json:"provider,omitempty"`
	AssistantID string `json:"assistant_id,omitempty"`
}
